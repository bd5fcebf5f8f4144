package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/face-attendance/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance API server",
	Long: `Start the Face Attendance API server.
The server exposes the enrollment and recognition endpoints used by the
kiosk frontend, plus identity, attendance and diagnostic endpoints.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Printf("Connecting to PostgreSQL database...\n")
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Gallery loaded with %d identities\n", a.gallery.Size())
	fmt.Printf("Descriptor index built with %d descriptors\n", a.index.Count())

	port := a.cfg.Web.Port
	if p := mustGetInt(cmd, "port"); p != 0 {
		port = p
	}
	host := a.cfg.Web.Host
	if h := mustGetString(cmd, "host"); h != "" {
		host = h
	}

	server := web.NewServer(port, host, web.Deps{
		Pipeline:    a.service,
		Gallery:     a.gallery,
		Identities:  a.identities,
		Descriptors: a.descriptors,
		Attendance:  a.attendance,
		Index:       a.index,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Attendance API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

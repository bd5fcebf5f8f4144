package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/face-attendance/internal/recognition"
	"github.com/spf13/cobra"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "Manage enrolled identities",
}

var identitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled identities",
	RunE:  runIdentitiesList,
}

var identitiesDeleteCmd = &cobra.Command{
	Use:   "delete [identity id]",
	Short: "Delete an identity and its descriptors",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentitiesDelete,
}

func init() {
	rootCmd.AddCommand(identitiesCmd)
	identitiesCmd.AddCommand(identitiesListCmd)
	identitiesCmd.AddCommand(identitiesDeleteCmd)
}

func runIdentitiesList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	identities, err := a.identities.List(ctx)
	if err != nil {
		return fmt.Errorf("listing identities: %w", err)
	}

	if len(identities) == 0 {
		fmt.Println("No identities enrolled")
		return nil
	}

	descriptors, err := a.descriptors.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("listing descriptors: %w", err)
	}
	counts := make(map[recognition.IdentityID]int)
	for _, d := range descriptors {
		counts[d.IdentityID]++
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTORS\tCREATED")
	for _, identity := range identities {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			identity.ID, identity.Name, counts[identity.ID],
			identity.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runIdentitiesDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	id := recognition.IdentityID(args[0])
	if err := a.service.DeleteIdentity(ctx, id); err != nil {
		return fmt.Errorf("deleting identity: %w", err)
	}

	fmt.Printf("Deleted identity %s\n", id)
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/postgres"
	"github.com/kozaktomas/face-attendance/internal/detector"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/pipeline"
)

// app bundles the wired collaborators shared by the CLI commands.
type app struct {
	cfg         *config.Config
	detector    *detector.Client
	identities  database.IdentityWriter
	descriptors database.DescriptorWriter
	attendance  database.AttendanceWriter
	gallery     *gallery.Manager
	index       *database.DescriptorIndex
	service     *pipeline.Service
}

// initApp connects to PostgreSQL, runs migrations, loads the gallery and
// builds the in-memory descriptor index. Every command that touches storage
// goes through here.
func initApp(ctx context.Context) (*app, error) {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	if err := postgres.Initialize(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	identities, err := database.GetIdentityWriter()
	if err != nil {
		return nil, err
	}
	descriptors, err := database.GetDescriptorWriter()
	if err != nil {
		return nil, err
	}
	attendance, err := database.GetAttendanceWriter()
	if err != nil {
		return nil, err
	}

	manager := gallery.NewManager(identities, descriptors)
	if err := manager.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("failed to load gallery: %w", err)
	}

	index := database.NewDescriptorIndex()
	stored, err := descriptors.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list descriptors: %w", err)
	}
	if err := index.Build(stored); err != nil {
		return nil, fmt.Errorf("failed to build descriptor index: %w", err)
	}

	client := detector.NewClient(cfg.Detector.URL)

	rec := cfg.Recognition
	service, err := pipeline.NewService(pipeline.Config{
		Detector:             client,
		Gallery:              manager,
		Identities:           identities,
		Descriptors:          descriptors,
		Attendance:           attendance,
		Index:                index,
		RequiredSamples:      rec.RequiredEnrollmentSamples,
		QualityThreshold:     rec.EnrollmentQualityThreshold,
		RecognitionThreshold: rec.RecognitionThreshold,
		DistanceThreshold:    rec.DistanceThreshold,
		DistanceScale:        rec.DistanceScale,
		ReferenceFaceArea:    rec.ReferenceFaceArea,
		Cooldown:             rec.Cooldown(),
		MaxAttempts:          rec.MaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create recognition service: %w", err)
	}

	return &app{
		cfg:         cfg,
		detector:    client,
		identities:  identities,
		descriptors: descriptors,
		attendance:  attendance,
		gallery:     manager,
		index:       index,
		service:     service,
	}, nil
}

// Close releases the database pool.
func (a *app) Close() {
	if postgres.IsAvailable() {
		_ = postgres.GetGlobalPool().Close()
	}
}

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/sqlite"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/config"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema (STORAGE_BACKEND=postgres|sqlite)",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), "down", steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context(), "up", 0)
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context(), "version", 0)
			},
		},
	)
	return cmd
}

func runMigrate(ctx context.Context, action string, steps int) error {
	cfg, err := config.LoadStoreConfigFromEnv()
	if err != nil {
		return fmt.Errorf("invalid store config: %w", err)
	}

	var (
		version   uint
		dirty, ok bool
	)
	switch cfg.Backend {
	case "postgres":
		switch action {
		case "up":
			err = postgres.MigrateUp(cfg.DatabaseURL)
		case "down":
			err = postgres.MigrateDown(cfg.DatabaseURL, steps)
		case "version":
			version, dirty, ok, err = postgres.MigrationVersion(cfg.DatabaseURL)
		}
	case "sqlite":
		db, openErr := sqlite.Open(ctx, cfg.SQLitePath)
		if openErr != nil {
			return fmt.Errorf("open sqlite: %w", openErr)
		}
		defer db.Close()
		switch action {
		case "up":
			err = sqlite.ApplyMigrations(db)
		case "down":
			err = sqlite.RollbackMigrations(db, steps)
		case "version":
			version, dirty, ok, err = sqlite.MigrationVersion(db)
		}
	default:
		return fmt.Errorf("migrate needs STORAGE_BACKEND=postgres or sqlite, got %q", cfg.Backend)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", action, err)
	}

	if action == "version" {
		if !ok {
			fmt.Println("no migrations applied")
			return nil
		}
		fmt.Printf("version %d (dirty=%t)\n", version, dirty)
		return nil
	}
	logger.Info("migrations done", slog.String("action", action), slog.String("backend", cfg.Backend))
	return nil
}

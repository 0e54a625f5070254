package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/config"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/seed"
)

func seedCmd() *cobra.Command {
	var (
		file      string
		useSample bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load trips and countries from a YAML fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				f   seed.Fixture
				err error
			)
			switch {
			case file != "" && useSample:
				return errors.New("--file and --sample are mutually exclusive")
			case file != "":
				f, err = seed.LoadFile(file)
			case useSample:
				f, err = seed.Sample()
			default:
				return errors.New("one of --file or --sample is required")
			}
			if err != nil {
				return err
			}

			cfg, err := config.LoadStoreConfigFromEnv()
			if err != nil {
				return fmt.Errorf("invalid store config: %w", err)
			}
			if cfg.Backend == "memory" {
				return errors.New("seeding the memory store has no lasting effect; set STORAGE_BACKEND")
			}

			sb, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer sb.Close()

			ids, err := seed.Apply(cmd.Context(), sb.store, f)
			if err != nil {
				return err
			}
			logger.Info("seeded trips", slog.Int("count", len(ids)), slog.String("backend", cfg.Backend))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to a YAML trips fixture")
	cmd.Flags().BoolVar(&useSample, "sample", false, "load the built-in demo catalog")
	return cmd
}

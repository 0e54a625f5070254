package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/config"
	"github.com/Overland-East-Bay/trip-booking-api/internal/platform/logging"
)

const serviceName = "trip-booking-api"

// version is overridden at build time via -ldflags "-X ...commands.version=...".
var version = "dev"

var logger *slog.Logger

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Trip booking HTTP API",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lc := config.LoadLogConfigFromEnv()
			logger = logging.New(logging.Config{
				Service: serviceName,
				Version: version,
				Env:     lc.Env,
				Level:   lc.Level,
				Format:  lc.Format,
			})
			return nil
		},
		// Running the binary without a subcommand serves the API.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())
	return root
}

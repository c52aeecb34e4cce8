package cmd

import (
	"context"

	"github.com/linuxfest/backend/internal/pkg/metrics"
	"github.com/linuxfest/backend/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server.

The server will:
- Connect to PostgreSQL and apply pending migrations
- Create the configured superadmin if no admin exists yet
- Serve the API under the configured base path, plus /health and /metrics
- Shut down gracefully on SIGINT/SIGTERM`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, lgr, err := loadConfig()
	if err != nil {
		return err
	}

	metrics.Init(Version, GitCommit)

	srv, err := server.NewServer(ctx, cfg, lgr, Version)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize server")
		return err
	}
	return srv.Run(ctx)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/linuxfest/backend/internal/bootstrap"
	"github.com/linuxfest/backend/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configPath string

// newRootCommand builds the command tree. Running without a subcommand starts the server.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "linuxfest",
		Short: "LinuxFest backend - teachers, workshops and participants",
		Long: `LinuxFest backend serves the festival's public workshop catalogue and the
admin API used to manage teachers, workshops, pictures and enrollments.

Configuration is read from configs/config.yaml (or --config), a .env file and
environment variables, in increasing order of precedence.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", filepath.Join("configs", "config.yaml"), "config file path")

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newAdminCommand())
	root.AddCommand(newTokenCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command
func Execute() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	return bootstrap.LoadConfigAndSetupLogger(configPath)
}

// openDependencies connects to PostgreSQL and wires the services for one-shot commands.
// The returned func closes the pool.
func openDependencies(ctx context.Context) (*bootstrap.Dependencies, func(), error) {
	cfg, lgr, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, nil, errors.New("this command needs the postgres database driver")
	}

	pool, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, nil, err
	}
	deps, err := bootstrap.BuildDependencies(cfg, bootstrap.PostgresStores(pool), pool, Version, lgr)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return deps, pool.Close, nil
}

package cmd

import (
	"github.com/linuxfest/backend/internal/bootstrap"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply the SQL files of the migrations directory that have not been applied yet.
Each file runs in its own transaction and is recorded in schema_migrations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := bootstrap.SetupDatabase(cmd.Context(), cfg, lgr)
			if err != nil {
				return err
			}
			defer pool.Close()
			return bootstrap.RunMigrations(cmd.Context(), cfg, pool, lgr)
		},
	}
}

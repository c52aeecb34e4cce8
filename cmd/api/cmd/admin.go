package cmd

import (
	"fmt"

	"github.com/linuxfest/backend/internal/app/models"
	"github.com/spf13/cobra"
)

func newAdminCommand() *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	var (
		password string
		role     string
	)
	createCmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an admin account",
		Long: `Create an admin account with one of the roles:

  superadmin     - every action
  workshopAdmin  - workshop management, reading and editing teachers, reading users
  reporter       - read-only access

Examples:
  linuxfest admin create sara --password 's3cret-pass' --role workshopAdmin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeDB, err := openDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			admin, err := deps.AuthService.CreateAdmin(cmd.Context(), args[0], password, models.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %q (id %d, role %s)\n", admin.Username, admin.ID, admin.Role)
			return nil
		},
	}
	createCmd.Flags().StringVar(&password, "password", "", "account password (at least 8 characters)")
	createCmd.Flags().StringVar(&role, "role", string(models.RoleReporter), "account role")
	_ = createCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(createCmd)
	return adminCmd
}

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and revoke access tokens",
		Long: `Access tokens are bearer JWTs recorded in the active token list.
A token stops working as soon as it is revoked, even before it expires.`,
	}

	var (
		adminName string
		userEmail string
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an access token for an admin or a participant",
		Long: `Issue an access token. The token is printed once and cannot be retrieved later.

Examples:
  linuxfest token issue --admin sara
  linuxfest token issue --user ali@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (adminName == "") == (userEmail == "") {
				return errors.New("exactly one of --admin or --user is required")
			}

			deps, closeDB, err := openDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			var (
				token     string
				expiresAt time.Time
			)
			if adminName != "" {
				token, expiresAt, err = deps.AuthService.IssueAdminToken(cmd.Context(), adminName)
			} else {
				token, expiresAt, err = deps.AuthService.IssueUserToken(cmd.Context(), userEmail)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprintf(out, "Expires: %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	issueCmd.Flags().StringVar(&adminName, "admin", "", "admin username")
	issueCmd.Flags().StringVar(&userEmail, "user", "", "participant email")

	revokeCmd := &cobra.Command{
		Use:   "revoke <token>",
		Short: "Revoke an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeDB, err := openDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			if err := deps.AuthService.RevokeToken(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token revoked")
			return nil
		},
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired and old revoked tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeDB, err := openDependencies(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			removed, err := deps.AuthService.CleanupTokens(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d tokens\n", removed)
			return nil
		},
	}

	tokenCmd.AddCommand(issueCmd, revokeCmd, cleanupCmd)
	return tokenCmd
}

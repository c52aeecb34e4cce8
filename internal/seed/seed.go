package seed

import (
	"context"
	"errors"

	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/config"
	"github.com/rs/zerolog"
)

// AdminEnsurer creates an admin account when none exists
type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, username, password string, role models.Role) (bool, error)
}

// CreateDefaultData creates the configured superadmin on a fresh database.
// Nothing happens when no credentials are configured or an admin already exists.
func CreateDefaultData(ctx context.Context, admins AdminEnsurer, cfg *config.Config, lgr zerolog.Logger) error {
	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		lgr.Debug().Msg("No default admin configured, skipping seed")
		return nil
	}

	created, err := admins.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password, models.RoleSuperAdmin)
	if err != nil {
		return errors.Join(errors.New("failed to create default admin"), err)
	}
	if created {
		lgr.Info().Str("username", cfg.Admin.Username).Msg("Default superadmin created")
	}
	return nil
}

package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/linuxfest/backend/internal/app/models"
	"github.com/linuxfest/backend/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnsurer struct {
	calls    int
	username string
	role     models.Role
	err      error
}

func (f *fakeEnsurer) EnsureAdmin(_ context.Context, username, _ string, role models.Role) (bool, error) {
	f.calls++
	f.username = username
	f.role = role
	return f.err == nil, f.err
}

func TestCreateDefaultDataSkipsWithoutCredentials(t *testing.T) {
	ensurer := &fakeEnsurer{}
	cfg := &config.Config{}
	cfg.Admin.Username = "root"

	require.NoError(t, CreateDefaultData(context.Background(), ensurer, cfg, zerolog.Nop()))
	assert.Zero(t, ensurer.calls)
}

func TestCreateDefaultDataCreatesSuperadmin(t *testing.T) {
	ensurer := &fakeEnsurer{}
	cfg := &config.Config{}
	cfg.Admin.Username = "root"
	cfg.Admin.Password = "correct-horse"

	require.NoError(t, CreateDefaultData(context.Background(), ensurer, cfg, zerolog.Nop()))
	assert.Equal(t, 1, ensurer.calls)
	assert.Equal(t, "root", ensurer.username)
	assert.Equal(t, models.RoleSuperAdmin, ensurer.role)
}

func TestCreateDefaultDataPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	ensurer := &fakeEnsurer{err: boom}
	cfg := &config.Config{}
	cfg.Admin.Username = "root"
	cfg.Admin.Password = "correct-horse"

	err := CreateDefaultData(context.Background(), ensurer, cfg, zerolog.Nop())
	assert.ErrorIs(t, err, boom)
}

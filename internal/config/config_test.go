package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/api/v1", cfg.Server.BasePath)
	assert.Equal(t, int64(10_000_000), cfg.Storage.MaxUploadSize)
	assert.Equal(t, MissingTeacherReject, cfg.Workshops.MissingTeacherPolicy)
	assert.Equal(t, "uploads", cfg.Storage.Root)
}

func TestLoadConfigFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
  base_path: "api/v2/"
jwt:
  secret: from-file
storage:
  site_version: "2025"
workshops:
  missing_teacher_policy: Allow
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATELIMIT_RPS", "2.5")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "/api/v2", cfg.Server.BasePath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, "2025", cfg.Storage.SiteVersion)
	assert.Equal(t, MissingTeacherAllow, cfg.Workshops.MissingTeacherPolicy)
	assert.InDelta(t, 2.5, cfg.RateLimit.RPS, 0.0001)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing secret", "jwt:\n  secret: \"\"\n"},
		{"bad policy", "jwt:\n  secret: x\nworkshops:\n  missing_teacher_policy: ignore\n"},
		{"bad site version", "jwt:\n  secret: x\nstorage:\n  site_version: ../etc\n"},
		{"bad duration", "jwt:\n  secret: x\n  access_token_expiration: forever\n"},
		{"zero upload size", "jwt:\n  secret: x\nstorage:\n  max_upload_size: 0\n"},
		{"unknown driver", "jwt:\n  secret: x\ndatabase:\n  driver: sqlite\n"},
		{"postgres without host", "jwt:\n  secret: x\ndatabase:\n  host: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestEnvInvalidValue(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("DB_MAX_OPEN_CONNS", "many")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigMemoryDriverNeedsNoHost(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: x\ndatabase:\n  driver: Memory\n  host: \"\"\nadmin:\n  username: root\n")
	t.Setenv("ADMIN_PASSWORD", "correct-horse")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "root", cfg.Admin.Username)
	assert.Equal(t, "correct-horse", cfg.Admin.Password)
	assert.Equal(t, int64(64<<20), cfg.Server.MaxBodySize)
}

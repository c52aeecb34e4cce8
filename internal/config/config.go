package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers. The memory driver keeps everything in process and is meant for local development.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Missing teacher policies for workshop create/update.
const (
	MissingTeacherReject = "reject"
	MissingTeacherAllow  = "allow"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string   `yaml:"port" env:"SERVER_PORT"`
		Mode            string   `yaml:"mode" env:"SERVER_MODE"`
		BasePath        string   `yaml:"base_path" env:"SERVER_BASE_PATH"`
		AllowedOrigins  []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
		ReadTimeout     string   `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    string   `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout string   `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
		MaxBodySize     int64    `yaml:"max_body_size" env:"SERVER_MAX_BODY_SIZE"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Storage struct {
		Root          string `yaml:"root" env:"STORAGE_ROOT"`
		SiteVersion   string `yaml:"site_version" env:"SITE_VERSION"`
		MaxUploadSize int64  `yaml:"max_upload_size" env:"STORAGE_MAX_UPLOAD_SIZE"`
	} `yaml:"storage"`

	Workshops struct {
		MissingTeacherPolicy string `yaml:"missing_teacher_policy" env:"WORKSHOPS_MISSING_TEACHER_POLICY"`
	} `yaml:"workshops"`

	// Admin is created on startup when no admin account exists yet
	Admin struct {
		Username string `yaml:"username" env:"ADMIN_USERNAME"`
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
	} `yaml:"admin"`

	RateLimit struct {
		Enabled bool    `yaml:"enabled" env:"RATELIMIT_ENABLED"`
		RPS     float64 `yaml:"rps" env:"RATELIMIT_RPS"`
		Burst   int     `yaml:"burst" env:"RATELIMIT_BURST"`
	} `yaml:"ratelimit"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env never overrides variables already present in the process environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	normalize(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BasePath = "/api/v1"
	config.Server.AllowedOrigins = []string{"*"}
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "30s"
	config.Server.ShutdownTimeout = "10s"
	config.Server.MaxBodySize = 64 << 20

	// Database defaults
	config.Database.Driver = DriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "linuxfest"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	// JWT defaults
	config.JWT.AccessTokenExpiration = "720h"
	config.JWT.Issuer = "linuxfest"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Storage defaults
	config.Storage.Root = "uploads"
	config.Storage.SiteVersion = "v1"
	config.Storage.MaxUploadSize = 10_000_000

	config.Workshops.MissingTeacherPolicy = MissingTeacherReject

	config.RateLimit.Enabled = true
	config.RateLimit.RPS = 10
	config.RateLimit.Burst = 20
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return applyEnv(reflect.ValueOf(config))
}

func normalize(config *Config) {
	config.Server.BasePath = "/" + strings.Trim(strings.TrimSpace(config.Server.BasePath), "/")
	if config.Server.BasePath == "/" {
		config.Server.BasePath = ""
	}
	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))
	config.Workshops.MissingTeacherPolicy = strings.ToLower(strings.TrimSpace(config.Workshops.MissingTeacherPolicy))
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"server read timeout":         config.Server.ReadTimeout,
		"server write timeout":        config.Server.WriteTimeout,
		"server shutdown timeout":     config.Server.ShutdownTimeout,
		"database conn max lifetime":  config.Database.ConnMaxLifetime,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Server.MaxBodySize <= 0 {
		return fmt.Errorf("server max body size must be positive")
	}

	if config.Storage.Root == "" {
		return fmt.Errorf("storage root is required")
	}
	if config.Storage.SiteVersion == "" || strings.ContainsAny(config.Storage.SiteVersion, `/\.`) {
		return fmt.Errorf("storage site version must be a single path segment")
	}
	if config.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("storage max upload size must be positive")
	}

	switch config.Workshops.MissingTeacherPolicy {
	case MissingTeacherReject, MissingTeacherAllow:
	default:
		return fmt.Errorf("unknown missing teacher policy %q", config.Workshops.MissingTeacherPolicy)
	}

	if config.RateLimit.Enabled && (config.RateLimit.RPS <= 0 || config.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive when enabled")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "production" || c.Server.Mode == "release"
}

package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/linuxfest/backend/internal/app/controllers"
	appMigrations "github.com/linuxfest/backend/internal/app/migrations"
	"github.com/linuxfest/backend/internal/app/models/dto"
	appRepos "github.com/linuxfest/backend/internal/app/repositories"
	"github.com/linuxfest/backend/internal/app/repositories/memory"
	appRoutes "github.com/linuxfest/backend/internal/app/routes"
	appServices "github.com/linuxfest/backend/internal/app/services"
	"github.com/linuxfest/backend/internal/config"
	"github.com/linuxfest/backend/internal/db"
	appMiddleware "github.com/linuxfest/backend/internal/middleware"
	pkgAuth "github.com/linuxfest/backend/internal/pkg/auth"
	"github.com/linuxfest/backend/internal/pkg/filestorage"
	"github.com/linuxfest/backend/internal/pkg/helpers"
	"github.com/linuxfest/backend/internal/pkg/logger"
	"github.com/linuxfest/backend/internal/seed"
)

// Stores is the set of persistence backends the services are built on
type Stores struct {
	Teachers    appServices.TeacherRepository
	Workshops   appServices.WorkshopRepository
	Enrollments appServices.EnrollmentRepository
	Users       appServices.UserRepository
	Admins      appServices.AdminRepository
	Tokens      appServices.TokenRepository
}

// PostgresStores wires the pgx repositories
func PostgresStores(pool *pgxpool.Pool) Stores {
	repos := appRepos.NewRepositories(pool)
	return Stores{
		Teachers:    repos.TeacherRepository,
		Workshops:   repos.WorkshopRepository,
		Enrollments: repos.EnrollmentRepository,
		Users:       repos.UserRepository,
		Admins:      repos.AdminRepository,
		Tokens:      repos.TokenRepository,
	}
}

// MemoryStores wires the in-process repositories
func MemoryStores(store *memory.Store) Stores {
	return Stores{
		Teachers:    store.Teachers,
		Workshops:   store.Workshops,
		Enrollments: store.Enrollments,
		Users:       store.Users,
		Admins:      store.Admins,
		Tokens:      store.Tokens,
	}
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config *config.Config
	Logger zerolog.Logger

	Stores      Stores
	FileStorage *filestorage.LocalStorage
	Pipeline    *filestorage.Pipeline
	JWTService  *pkgAuth.JWTService

	AuthService     *appServices.AuthService
	TeacherService  appServices.TeacherService
	WorkshopService appServices.WorkshopService
	UserService     appServices.UserService
	PictureService  appServices.PictureService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	level := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  level,
		Pretty: cfg.Logging.Format == "text",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(level)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL. Migrations are applied separately by RunMigrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("Establishing database connection...")
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return pool, nil
}

// RunMigrations applies pending migrations from the configured directory
func RunMigrations(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, lgr zerolog.Logger) error {
	migrator := appMigrations.NewMigrator(pool, lgr.With().Str("component", "migrations").Logger())
	if err := migrator.MigrateFromDirectory(ctx, cfg.Database.MigrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// BuildDependencies initializes services, middleware and controllers on top of stores.
// pinger backs the health endpoint and may be nil.
func BuildDependencies(cfg *config.Config, stores Stores, pinger appControllers.Pinger, version string, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Logger: lgr, Stores: stores}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.Root, cfg.Storage.SiteVersion)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.Pipeline = filestorage.NewPipeline(deps.FileStorage, cfg.Storage.MaxUploadSize)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 720*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	component := func(name string) zerolog.Logger {
		return lgr.With().Str("component", name).Logger()
	}

	deps.AuthService = appServices.NewAuthService(stores.Admins, stores.Users, stores.Tokens, deps.JWTService, component("auth"))
	deps.WorkshopService = appServices.NewWorkshopService(
		stores.Workshops,
		stores.Teachers,
		stores.Enrollments,
		stores.Users,
		deps.Pipeline,
		appServices.MissingTeacherPolicy(cfg.Workshops.MissingTeacherPolicy),
		component("workshops"),
	)
	deps.TeacherService = appServices.NewTeacherService(stores.Teachers, stores.Workshops, deps.Pipeline, component("teachers"))
	deps.UserService = appServices.NewUserService(stores.Users, stores.Tokens, deps.WorkshopService, component("users"))
	deps.PictureService = appServices.NewPictureService(stores.Workshops, stores.Teachers, deps.Pipeline, component("pictures"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService)

	links := dto.NewLinks(cfg.Server.BasePath)
	deps.Controllers = appRoutes.Controllers{
		Teacher:  appControllers.NewTeacherController(deps.TeacherService, links),
		Workshop: appControllers.NewWorkshopController(deps.WorkshopService, links),
		Picture:  appControllers.NewPictureController(deps.PictureService, links),
		User:     appControllers.NewUserController(deps.UserService, links),
		Health:   appControllers.NewHealthController(pinger, version),
	}

	return deps, nil
}

// SeedDefaults creates the configured superadmin on an empty admin table
func SeedDefaults(ctx context.Context, deps *Dependencies) error {
	return seed.CreateDefaultData(ctx, deps.AuthService, deps.Config, deps.Logger)
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Storage.MaxUploadSize
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogging(lgr.With().Str("component", "http").Logger()),
		appMiddleware.Metrics(),
	)
	if cfg.RateLimit.Enabled {
		router.Use(appMiddleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Handler())
	}
	router.Use(appMiddleware.RequestSize(cfg.Server.MaxBodySize))

	appRoutes.SetupRouter(router, cfg.Server.BasePath, deps.Controllers, deps.AuthMiddleware)
	return router, nil
}

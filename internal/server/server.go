package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/linuxfest/backend/internal/app/controllers"
	"github.com/linuxfest/backend/internal/app/repositories/memory"
	"github.com/linuxfest/backend/internal/bootstrap"
	"github.com/linuxfest/backend/internal/config"
	"github.com/linuxfest/backend/internal/pkg/helpers"
)

// tokenCleanupInterval is how often expired and revoked access tokens are purged
const tokenCleanupInterval = time.Hour

// Server holds the state for the HTTP server.
type Server struct {
	config  *config.Config
	handler http.Handler
	deps    *bootstrap.Dependencies
	dbPool  *pgxpool.Pool
	logger  zerolog.Logger
	http    *http.Server
}

// NewServer builds a server from configuration: database, migrations, seed data and routes.
func NewServer(ctx context.Context, cfg *config.Config, lgr zerolog.Logger, version string) (*Server, error) {
	s := &Server{config: cfg, logger: lgr}

	var (
		stores bootstrap.Stores
		pinger controllers.Pinger
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		lgr.Warn().Msg("Using in-memory storage, data is lost on exit")
		stores = bootstrap.MemoryStores(memory.NewStore())
	default:
		pool, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
		if err != nil {
			return nil, fmt.Errorf("failed to setup database: %w", err)
		}
		if err := bootstrap.RunMigrations(ctx, cfg, pool, lgr); err != nil {
			pool.Close()
			return nil, err
		}
		s.dbPool = pool
		stores = bootstrap.PostgresStores(pool)
		pinger = pool
	}

	deps, err := bootstrap.BuildDependencies(cfg, stores, pinger, version, lgr)
	if err != nil {
		s.closeDB()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}
	s.deps = deps

	if err := bootstrap.SeedDefaults(ctx, deps); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	router, err := bootstrap.SetupRouter(cfg, deps, lgr)
	if err != nil {
		s.closeDB()
		return nil, err
	}
	s.handler = withCORS(cfg, router)

	return s, nil
}

// Dependencies exposes the wired services, e.g. for CLI commands
func (s *Server) Dependencies() *bootstrap.Dependencies {
	return s.deps
}

func withCORS(cfg *config.Config, handler http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         600,
	}).Handler(handler)
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.handler,
		ReadTimeout:  helpers.ParseDuration(s.config.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: helpers.ParseDuration(s.config.Server.WriteTimeout, 30*time.Second),
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go s.cleanupTokens(ctx)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Str("basePath", s.config.Server.BasePath).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.closeDB()
			return fmt.Errorf("error starting server: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown signal received, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

func (s *Server) cleanupTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.deps.AuthService.CleanupTokens(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("Access token cleanup failed")
				continue
			}
			s.logger.Debug().Int64("removed", removed).Msg("Access token cleanup done")
		}
	}
}

func (s *Server) closeDB() {
	if s.dbPool != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.dbPool.Close()
		s.dbPool = nil
	}
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := helpers.ParseDuration(s.config.Server.ShutdownTimeout, 10*time.Second)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var shutdownErr error
	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = fmt.Errorf("server shutdown completed with errors: %w", err)
		}
	}

	s.closeDB()
	s.logger.Info().Msg("Server shutdown process complete.")
	return shutdownErr
}

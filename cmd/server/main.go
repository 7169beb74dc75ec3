// Command server runs the book-backend HTTP API.
//
// Startup order:
//  1. Load .env (optional) and environment configuration
//  2. Configure zerolog (level, optional pretty console output)
//  3. Open SQLite, migrate the schema, seed the built-in boards
//  4. Set up OpenTelemetry tracing (optional, OTLP gRPC)
//  5. Build the catalog client and the curation model client
//  6. Register routes and serve until SIGINT/SIGTERM
//
// @title           Book Backend API
// @version         1.0
// @description     Book discovery and community service: cached catalog lists, bookmarks, boards, reviews, activity levels, and model-backed curation.
// @BasePath        /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	_ "github.com/jandibook/go-book-backend/docs"
	"github.com/jandibook/go-book-backend/internal/catalog"
	"github.com/jandibook/go-book-backend/internal/config"
	"github.com/jandibook/go-book-backend/internal/curator"
	httpapi "github.com/jandibook/go-book-backend/internal/http"
	"github.com/jandibook/go-book-backend/internal/observability"
	"github.com/jandibook/go-book-backend/internal/repo"
	"github.com/jandibook/go-book-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}
	if err := repo.EnsureBoards(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("seed boards")
	}

	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Fatal().Err(err).Msg("attach gorm tracing")
		}
	}

	src := catalog.New(catalog.Config{
		TTBKey:     cfg.Catalog.TTBKey,
		ListURL:    cfg.Catalog.ListURL,
		LookupURL:  cfg.Catalog.LookupURL,
		SearchURL:  cfg.Catalog.SearchURL,
		APIVersion: cfg.Catalog.APIVersion,
		Timeout:    cfg.Catalog.Timeout,
		MaxRPS:     cfg.Catalog.MaxRPS,
	})
	gen := curator.NewOpenAI(curator.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Timeout: cfg.OpenAI.Timeout,
	})

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, src, gen, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("serve")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := shutdownOTel(ctx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("bye")
}

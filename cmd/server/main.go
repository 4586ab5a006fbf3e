// Package main implements the entry point for the unit session API
// server, which runs conversational self-assessment units and produces
// scored, privacy-filtered results.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/unit-api/internal/api"
	"github.com/phrazzld/unit-api/internal/config"
	"github.com/phrazzld/unit-api/internal/content"
	"github.com/phrazzld/unit-api/internal/domain"
	"github.com/phrazzld/unit-api/internal/ephemeral"
	"github.com/phrazzld/unit-api/internal/events"
	"github.com/phrazzld/unit-api/internal/insight"
	"github.com/phrazzld/unit-api/internal/platform/gemini"
	"github.com/phrazzld/unit-api/internal/platform/logger"
	"github.com/phrazzld/unit-api/internal/platform/postgres"
	"github.com/phrazzld/unit-api/internal/scoring"
	"github.com/phrazzld/unit-api/internal/service"
)

// Sweep cadences for the process-local stores. Raw answers are swept
// aggressively so expired text lingers for seconds at most; the score
// cache and quota counters tolerate coarser intervals.
const (
	answerSweepInterval = 30 * time.Second
	cacheSweepInterval  = 5 * time.Minute
	quotaSweepInterval  = time.Hour
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"content_dir", cfg.Unit.ContentDir,
		"locale", cfg.Unit.Locale)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Durable stores.
	profileStore := postgres.NewPostgresProfileStore(db)
	sessionStore := postgres.NewPostgresSessionStore(db)
	resultStore := postgres.NewPostgresResultStore(db)
	eventStore := postgres.NewPostgresEventStore(db)
	emitter := events.NewStoreEmitter(eventStore, appLogger)

	// Process-local stores with background sweeps.
	answers := ephemeral.NewMemoryAnswerStore(domain.SessionTTL, appLogger)
	go answers.Run(ctx, answerSweepInterval)

	scoreCache := scoring.NewMemoryScoreCache(appLogger)
	go scoreCache.Run(ctx, cacheSweepInterval)

	quota := scoring.NewMemoryQuotaCounter()
	go quota.Run(ctx, quotaSweepInterval)

	engine := scoring.NewEngine(
		scoreCache,
		quota,
		scoring.NewMemoryEnergyHistory(),
		appLogger,
	)

	generator := buildInsightGenerator(ctx, appLogger, cfg.LLM)

	units, err := service.NewUnitService(service.UnitServiceConfig{
		DB:           db,
		ProfileStore: profileStore,
		SessionStore: sessionStore,
		ResultStore:  resultStore,
		Answers:      answers,
		Engine:       engine,
		Catalogs:     content.NewLoader(cfg.Unit.ContentDir, cfg.Unit.Locale),
		Generator:    generator,
		Fallback:     insight.NewFallbackGenerator(),
		Emitter:      emitter,
		Logger:       appLogger,
		ModelName:    cfg.LLM.ModelName,
	})
	if err != nil {
		return fmt.Errorf("failed to build unit service: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(api.NewUnitHandler(units)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openDatabase connects through the pgx stdlib driver and verifies the
// connection before returning.
func openDatabase(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// buildInsightGenerator returns the Gemini generator when configured, or
// nil so the service runs fallback-only.
func buildInsightGenerator(ctx context.Context, appLogger *slog.Logger, cfg config.LLMConfig) insight.Generator {
	if cfg.GeminiAPIKey == "" {
		slog.Info("no Gemini API key configured, insights use rule-based fallback")
		return nil
	}

	generator, err := gemini.NewInsightGenerator(ctx, appLogger, cfg)
	if err != nil {
		slog.Warn("failed to initialize Gemini generator, insights use rule-based fallback",
			"error", err)
		return nil
	}
	return generator
}

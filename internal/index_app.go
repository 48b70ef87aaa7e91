// Package internal provides application initialization and runtime logic for
// both services.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/ostrander/smithy/internal/api"
	"github.com/ostrander/smithy/internal/embedding"
	"github.com/ostrander/smithy/internal/events"
	"github.com/ostrander/smithy/internal/mcpserver"
	"github.com/ostrander/smithy/internal/pattern"
	"github.com/ostrander/smithy/internal/registry"
	"github.com/ostrander/smithy/internal/storage"
)

// RunIndex starts the component index service.
func RunIndex(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	if err := cfg.ValidateIndex(); err != nil {
		return err
	}

	logger := newLogger(cfg)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("registry_path", cfg.Registry.Path),
		slog.String("corpus_dir", cfg.Patterns.CorpusDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	reg, err := registry.Open(cfg.Registry.Path)
	if err != nil {
		return fmt.Errorf("init registry: %w", err)
	}

	corpus, err := storage.NewCorpus(cfg.Patterns.CorpusDir)
	if err != nil {
		return fmt.Errorf("init corpus: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Patterns.DBPath), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	store, err := pattern.OpenStore(cfg.Patterns.DBPath)
	if err != nil {
		return fmt.Errorf("init pattern store: %w", err)
	}
	defer store.Close()

	embedder := embedding.NewOpenAI(cfg.Embedding.APIKey, cfg.Embedding.Model,
		cfg.Embedding.BaseURL, cfg.Embedding.Dimension)
	engine := pattern.NewEngine(corpus, store, embedder, logger)

	// Initial index. A failure (typically the embedding backend being down)
	// is logged, not fatal: the registry endpoints still work and a reindex
	// can be triggered later.
	if _, err := engine.Index(ctx, false); err != nil {
		logger.Warn("initial pattern indexing failed", slog.String("error", err.Error()))
	}

	if app.mcpMode {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(reg, engine).ServeStdio()
	}

	broker := events.NewBroker()
	defer broker.Close()

	h := api.NewIndexHandler(reg, engine, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", api.NewIndexRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Patterns.Watch {
		g.Go(func() error {
			if err := pattern.Watch(gCtx, engine, corpus.Root(), logger); err != nil {
				logger.Warn("corpus watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return awaitShutdown(gCtx, httpServer, logger)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// awaitShutdown blocks until a termination signal or group cancellation, then
// drains the HTTP server.
func awaitShutdown(ctx context.Context, httpServer *http.Server, logger *slog.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
	}

	return nil
}

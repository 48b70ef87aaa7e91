package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/ostrander/smithy/internal/api"
	"github.com/ostrander/smithy/internal/generator"
	"github.com/ostrander/smithy/internal/llm"
	"github.com/ostrander/smithy/internal/validator"
)

// RunGenerator starts the component generator service.
func RunGenerator(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	if err := cfg.ValidateGenerator(); err != nil {
		return err
	}

	logger := newLogger(cfg)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("patterns_url", cfg.Generator.PatternsURL),
		slog.String("model", cfg.LLM.Model),
		slog.String("log_level", cfg.App.LogLevel.String()))

	var patterns generator.PatternSource
	if cfg.Generator.PatternsURL != "" {
		patterns = generator.NewHTTPPatternSource(cfg.Generator.PatternsURL,
			&http.Client{Timeout: 15 * time.Second})
	}

	gen := llm.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.MaxTokens)
	orch := generator.New(patterns, gen, validator.New(nil), cfg.Generator.MaxRetries, logger)

	h := api.NewGeneratorHandler(orch)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", api.NewGeneratorRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

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

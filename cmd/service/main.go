// Package main runs the meme generator web service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsamuelsen/meme-generator/internal/adapters/http"
	"github.com/jsamuelsen/meme-generator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/meme-generator/internal/bootstrap"
	"github.com/jsamuelsen/meme-generator/internal/platform/config"
	"github.com/jsamuelsen/meme-generator/internal/platform/logging"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
func run(ctx context.Context) error {
	cfg, err := config.Load(bootstrap.Profile())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := bootstrap.NewLogger(cfg, os.Stdout)
	logging.SetDefault(logger)

	logger.Info("starting meme generator",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	tel, err := bootstrap.NewTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	c, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}

	server := http.New(&cfg.Server, logger)

	routes := http.NewDefaultRouterConfig(logger, &cfg.App,
		handlers.NewHealthHandler(c.Health, handlers.NewBuildInfo(Version, Commit, BuildTime)))
	routes.QuoteHandler = handlers.NewQuoteHandler(c.Quotes)
	routes.MemeHandler = handlers.NewMemeHandler(c.Memes, cfg.Images.Dir)
	routes.WebHandler = handlers.NewWebHandler(c.Memes)
	routes.StaticDir = cfg.Meme.OutputDir

	http.SetupRouter(server.Engine(), routes)

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}

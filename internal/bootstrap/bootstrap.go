// Package bootstrap assembles the meme generator from configuration.
// Both the HTTP service and the CLI build their components here so the two
// entry points cannot drift apart.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jsamuelsen/meme-generator/internal/adapters/catalog"
	"github.com/jsamuelsen/meme-generator/internal/adapters/clients"
	"github.com/jsamuelsen/meme-generator/internal/adapters/images"
	"github.com/jsamuelsen/meme-generator/internal/adapters/ingest"
	"github.com/jsamuelsen/meme-generator/internal/adapters/meme"
	"github.com/jsamuelsen/meme-generator/internal/app"
	"github.com/jsamuelsen/meme-generator/internal/platform/config"
	"github.com/jsamuelsen/meme-generator/internal/platform/logging"
	"github.com/jsamuelsen/meme-generator/internal/platform/telemetry"
	"github.com/jsamuelsen/meme-generator/internal/ports"
)

// DownloadServiceName identifies the remote image downstream.
const DownloadServiceName = "image-download"

// Components holds the wired application.
type Components struct {
	Dispatcher *ingest.Dispatcher
	Quotes     *app.QuoteService
	Engine     *meme.Engine
	Catalog    *catalog.Directory
	Client     *clients.Client
	Fetcher    *images.Fetcher
	Memes      *app.MemeService
	Health     *ports.DefaultHealthRegistry
}

// NewLogger builds the root logger from the log section, writing to w.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var filePath string
	if cfg.Log.File.Enabled {
		filePath = cfg.Log.File.Path
	}

	return logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File:    fileConfig(cfg.Log.File, filePath),
	}, w)
}

func fileConfig(f config.LogFileConfig, path string) logging.FileConfig {
	return logging.FileConfig{
		Enabled:    path != "",
		Path:       path,
		MaxSizeMB:  f.MaxSizeMB,
		MaxBackups: f.MaxBackups,
		MaxAgeDays: f.MaxAgeDays,
		Compress:   f.Compress,
	}
}

// NewDispatcher builds the quote ingestion pipeline. Failures always go to
// the logger and, when ingest.diagnostics.path is set, to a rolling JSON file.
func NewDispatcher(cfg *config.Config, metrics *telemetry.PipelineMetrics, logger *slog.Logger) *ingest.Dispatcher {
	sink := ports.DiagnosticsSink(ingest.NewLogSink(logger))

	if path := cfg.Ingest.Diagnostics.Path; path != "" {
		diag := logging.NewFileLogger(fileConfig(cfg.Log.File, path), cfg.Log.Level)
		sink = ingest.Sinks(sink, ingest.NewLogSink(diag))
	}

	return ingest.NewDispatcher(ingest.DispatcherConfig{
		Ingestors: ingest.DefaultIngestors(newPDFExtractor(cfg.Ingest.PDF, logger)),
		Sink:      sink,
		Metrics:   metrics,
		Logger:    logger,
	})
}

// newPDFExtractor honours the configured backend and falls back to the
// native extractor when pdftotext cannot be found.
func newPDFExtractor(cfg config.PDFConfig, logger *slog.Logger) ingest.PDFExtractor {
	if cfg.Extractor != ingest.ExtractorPdfToText {
		return ingest.NewNativePDFExtractor()
	}

	ext := ingest.NewPdfToTextExtractor(cfg.PdfToTextPath, logger)
	if err := ext.Available(); err != nil {
		logger.Warn("falling back to native pdf extraction", slog.Any("error", err))
		return ingest.NewNativePDFExtractor()
	}

	return ext
}

// NewEngine builds the compositor.
func NewEngine(cfg *config.Config, metrics *telemetry.PipelineMetrics, logger *slog.Logger) *meme.Engine {
	return meme.NewEngine(meme.Config{
		OutputDir: cfg.Meme.OutputDir,
		FileName:  cfg.Meme.FileName,
		Width:     cfg.Meme.Width,
		FontPath:  cfg.Meme.FontPath,
		FontSize:  cfg.Meme.FontSize,
		Margin:    cfg.Meme.Margin,
	}, metrics, logger)
}

// Profile returns the configuration profile named by APP_ENVIRONMENT.
func Profile() string {
	if p := os.Getenv("APP_ENVIRONMENT"); p != "" {
		return p
	}

	return "local"
}

// NewTelemetry installs the OTLP providers described by the telemetry section.
func NewTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Provider, error) {
	return telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
}

// Build wires every component and loads the configured quote sources.
// A quote source that cannot be ingested at all fails the build.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	metrics := telemetry.MustPipelineMetrics()

	c := &Components{
		Dispatcher: NewDispatcher(cfg, metrics, logger),
		Engine:     NewEngine(cfg, metrics, logger),
		Catalog:    catalog.NewDirectory(cfg.Images.Dir, cfg.Images.Extensions),
		Health:     ports.NewHealthRegistry(),
	}

	c.Quotes = app.NewQuoteService(app.QuoteServiceConfig{
		Source:  c.Dispatcher,
		Sources: cfg.Quotes.Sources,
		Logger:  logger,
	})

	if err := c.Quotes.Load(ctx); err != nil {
		return nil, err
	}

	client, err := clients.New(clients.FromConfig(DownloadServiceName, cfg.Client, logger))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	c.Client = client

	tempDir := filepath.Join(os.TempDir(), "meme-downloads")
	if err := os.MkdirAll(tempDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating download dir: %w", err)
	}

	c.Fetcher = images.NewFetcher(client, images.Config{
		MaxBytes: cfg.Download.MaxBytes,
		TempDir:  tempDir,
		Logger:   logger,
	})

	c.Memes = app.NewMemeService(app.MemeServiceConfig{
		Renderer: c.Engine,
		Quotes:   c.Quotes,
		Catalog:  c.Catalog,
		Fetcher:  c.Fetcher,
		Logger:   logger,
	})

	for _, checker := range []ports.HealthChecker{c.Engine, c.Quotes, c.Catalog, c.Client} {
		if err := c.Health.Register(checker); err != nil {
			return nil, fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	return c, nil
}

package ingest

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/meme-generator/internal/domain"
	"github.com/jsamuelsen/meme-generator/internal/platform/logging"
	"github.com/jsamuelsen/meme-generator/internal/platform/telemetry"
	"github.com/jsamuelsen/meme-generator/internal/ports"
)

// Dispatcher routes a source file to the first ingestor that claims it.
// Ingestors are consulted in a fixed order, so dispatch is deterministic.
type Dispatcher struct {
	ingestors []ports.QuoteIngestor
	sink      ports.DiagnosticsSink
	metrics   *telemetry.PipelineMetrics
	logger    *slog.Logger
}

// DispatcherConfig contains the dispatcher's collaborators.
type DispatcherConfig struct {
	// Ingestors in priority order. Empty means DefaultIngestors(nil).
	Ingestors []ports.QuoteIngestor

	// Sink receives every failure. Nil discards them.
	Sink ports.DiagnosticsSink

	// Metrics is optional.
	Metrics *telemetry.PipelineMetrics

	Logger *slog.Logger
}

// DefaultIngestors returns the built-in ingestors in priority order:
// CSV, DOCX, PDF, then plain text.
func DefaultIngestors(pdf PDFExtractor) []ports.QuoteIngestor {
	return []ports.QuoteIngestor{
		NewCSVIngestor(),
		NewDocxIngestor(),
		NewPDFIngestor(pdf),
		NewTextIngestor(),
	}
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if len(cfg.Ingestors) == 0 {
		cfg.Ingestors = DefaultIngestors(nil)
	}

	if cfg.Sink == nil {
		cfg.Sink = discardSink{}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Dispatcher{
		ingestors: cfg.Ingestors,
		sink:      cfg.Sink,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// IngestorFor returns the ingestor that claims path, or nil.
func (d *Dispatcher) IngestorFor(path string) ports.QuoteIngestor {
	for _, ing := range d.ingestors {
		if ing.CanIngest(path) {
			return ing
		}
	}

	return nil
}

// Parse implements ports.QuoteSource.
func (d *Dispatcher) Parse(ctx context.Context, path string) (domain.ParseResult, error) {
	ing := d.IngestorFor(path)
	if ing == nil {
		return domain.ParseResult{}, domain.NewUnsupportedFormatError(path)
	}

	ctx, endSpan := telemetry.StartSpan(ctx, "ingest.parse",
		attribute.String("quote.path", path),
		attribute.String("quote.format", string(ing.Format())),
	)
	defer endSpan(nil)

	start := time.Now()
	result := ing.Parse(ctx, path)

	for _, f := range result.Failures {
		d.sink.Report(ctx, f)
	}

	d.metrics.RecordIngest(ctx, string(ing.Format()), len(result.Quotes), len(result.Failures))

	d.logger.Log(ctx, logging.LevelTrace, "parsed quote source",
		slog.String("path", path),
		slog.String("format", string(ing.Format())),
		slog.Int("quotes", len(result.Quotes)),
		slog.Int("failures", len(result.Failures)),
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

// ParseAll implements ports.QuoteSource. Files are parsed sequentially and
// their batches concatenated in the order given.
func (d *Dispatcher) ParseAll(ctx context.Context, paths []string) (domain.ParseResult, error) {
	var all domain.ParseResult

	for _, path := range paths {
		result, err := d.Parse(ctx, path)
		if err != nil {
			return all, err
		}

		all.Merge(result)
	}

	return all, nil
}

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics records quote ingestion and meme rendering.
// A nil *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	quotesIngested metric.Int64Counter
	quoteFailures  metric.Int64Counter
	memesGenerated metric.Int64Counter
	renderDuration metric.Float64Histogram
}

// NewPipelineMetrics creates the ingestion and rendering instruments on the
// global meter provider.
func NewPipelineMetrics() (*PipelineMetrics, error) {
	meter := otel.Meter(instrumentationName)

	quotesIngested, err := meter.Int64Counter(
		"quotes.ingested.total",
		metric.WithDescription("Quotes extracted from source files"),
	)
	if err != nil {
		return nil, err
	}

	quoteFailures, err := meter.Int64Counter(
		"quotes.failures.total",
		metric.WithDescription("Records or files that failed to parse"),
	)
	if err != nil {
		return nil, err
	}

	memesGenerated, err := meter.Int64Counter(
		"memes.generated.total",
		metric.WithDescription("Memes rendered, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	renderDuration, err := meter.Float64Histogram(
		"memes.render.duration",
		metric.WithDescription("Meme render duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		quotesIngested: quotesIngested,
		quoteFailures:  quoteFailures,
		memesGenerated: memesGenerated,
		renderDuration: renderDuration,
	}, nil
}

// MustPipelineMetrics is NewPipelineMetrics that reports instrument errors to
// the otel error handler and returns nil instead of failing.
func MustPipelineMetrics() *PipelineMetrics {
	m, err := NewPipelineMetrics()
	if err != nil {
		otel.Handle(err)
		return nil
	}

	return m
}

// RecordIngest records the outcome of parsing one source file.
func (m *PipelineMetrics) RecordIngest(ctx context.Context, format string, quotes, failures int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("format", format))
	m.quotesIngested.Add(ctx, int64(quotes), attrs)
	m.quoteFailures.Add(ctx, int64(failures), attrs)
}

// RecordRender records one render attempt.
func (m *PipelineMetrics) RecordRender(ctx context.Context, elapsed time.Duration, err error) {
	if m == nil {
		return
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.memesGenerated.Add(ctx, 1, attrs)
	m.renderDuration.Record(ctx, elapsed.Seconds(), attrs)
}

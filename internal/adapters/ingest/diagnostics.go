package ingest

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jsamuelsen/meme-generator/internal/domain"
	"github.com/jsamuelsen/meme-generator/internal/ports"
)

// LogSink writes each failure as a structured warning.
// Pair it with logging.NewFileLogger to keep a dedicated error log.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Report implements ports.DiagnosticsSink.
func (s *LogSink) Report(ctx context.Context, failure domain.Failure) {
	s.logger.WarnContext(ctx, "quote ingestion failure",
		slog.String("path", failure.Path),
		slog.String("format", string(failure.Format)),
		slog.Int("line", failure.Line),
		slog.Any("error", failure.Err),
	)
}

// Collector keeps reported failures in memory. Safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	failures []domain.Failure
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report implements ports.DiagnosticsSink.
func (c *Collector) Report(_ context.Context, failure domain.Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures = append(c.failures, failure)
}

// Failures returns a copy of the failures reported so far.
func (c *Collector) Failures() []domain.Failure {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Failure, len(c.failures))
	copy(out, c.failures)

	return out
}

// multiSink fans a failure out to several sinks in order.
type multiSink []ports.DiagnosticsSink

// Report implements ports.DiagnosticsSink.
func (m multiSink) Report(ctx context.Context, failure domain.Failure) {
	for _, s := range m {
		s.Report(ctx, failure)
	}
}

// Sinks combines sinks into one. Nil sinks are dropped.
func Sinks(sinks ...ports.DiagnosticsSink) ports.DiagnosticsSink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}

	return out
}

// discardSink drops every failure.
type discardSink struct{}

func (discardSink) Report(context.Context, domain.Failure) {}

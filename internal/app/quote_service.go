// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/jsamuelsen/meme-generator/internal/domain"
	"github.com/jsamuelsen/meme-generator/internal/ports"
)

// QuoteService holds the quotes ingested from the configured sources.
// It depends on port interfaces, not concrete implementations.
type QuoteService struct {
	source  ports.QuoteSource
	sources []string
	logger  *slog.Logger
	intN    func(int) int

	mu     sync.RWMutex
	quotes []domain.Quote
	loaded bool
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	// Source routes each file to its ingestor. Required.
	Source ports.QuoteSource

	// Sources are the quote files, ingested in order.
	Sources []string

	Logger *slog.Logger

	// IntN picks a random index in [0, n). Defaults to math/rand/v2.IntN.
	IntN func(n int) int
}

// NewQuoteService creates a quote service. It panics without a Source.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Source == nil {
		panic("app: QuoteService requires a QuoteSource")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.IntN == nil {
		cfg.IntN = rand.IntN
	}

	return &QuoteService{
		source:  cfg.Source,
		sources: slices.Clone(cfg.Sources),
		logger:  cfg.Logger.With(slog.String("component", "quote_service")),
		intN:    cfg.IntN,
	}
}

// Load ingests every configured source and replaces the held quotes.
// Per-record failures are left to the diagnostics sink; only an
// unsupported source aborts the load.
func (s *QuoteService) Load(ctx context.Context) error {
	s.logger.InfoContext(ctx, "loading quotes", slog.Int("sources", len(s.sources)))

	result, err := s.source.ParseAll(ctx, s.sources)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load quotes", slog.Any("error", err))
		return fmt.Errorf("loading quotes: %w", err)
	}

	s.mu.Lock()
	s.quotes = result.Quotes
	s.loaded = true
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "quotes loaded",
		slog.Int("quotes", len(result.Quotes)),
		slog.Int("failures", len(result.Failures)),
	)

	return nil
}

// All returns a copy of the loaded quotes in ingestion order.
func (s *QuoteService) All() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.quotes)
}

// Count returns the number of loaded quotes.
func (s *QuoteService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// Random returns a uniformly chosen quote.
// Returns domain.ErrNotFound when no quotes are loaded.
func (s *QuoteService) Random() (domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.quotes) == 0 {
		return domain.Quote{}, domain.NewNotFoundError("quote", "random")
	}

	return s.quotes[s.intN(len(s.quotes))], nil
}

// FindByBody returns the first quote whose body matches, ignoring case and
// typographic quotation marks.
func (s *QuoteService) FindByBody(body string) (domain.Quote, error) {
	return s.find("body", body, func(q domain.Quote) string { return q.Body })
}

// FindByAuthor returns the first quote attributed to author, ignoring case.
func (s *QuoteService) FindByAuthor(author string) (domain.Quote, error) {
	return s.find("author", author, func(q domain.Quote) string { return q.Author })
}

func (s *QuoteService) find(field, value string, key func(domain.Quote) string) (domain.Quote, error) {
	want := domain.Normalize(value)
	if want == "" {
		return domain.Quote{}, domain.NewValidationError(field, "must not be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.quotes {
		if strings.EqualFold(key(q), want) {
			return q, nil
		}
	}

	return domain.Quote{}, domain.NewNotFoundError("quote", field+"="+want)
}

// Name implements ports.HealthChecker.
func (s *QuoteService) Name() string {
	return "quotes"
}

// Check fails until quotes have been loaded and while none are held.
func (s *QuoteService) Check(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return domain.NewUnavailableError("quotes", "not loaded")
	}

	if len(s.quotes) == 0 {
		return domain.NewUnavailableError("quotes", "no quotes loaded")
	}

	return nil
}

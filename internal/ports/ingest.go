// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter on anything that touches the filesystem or network
//   - Return domain types, never library or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrImageLoad, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/jsamuelsen/meme-generator/internal/domain"
)

// QuoteIngestor extracts quotes from one source file format.
// Implementations are stateless and safe to reuse across files.
type QuoteIngestor interface {
	// Format identifies the file format handled by this ingestor.
	Format() domain.Format

	// CanIngest reports whether the path's extension is handled.
	// It never touches the filesystem.
	CanIngest(path string) bool

	// Parse reads the file and returns every quote found in document order.
	// Parse never fails: an unreadable file yields an empty batch with one
	// file-level failure, and malformed records are recorded and skipped.
	Parse(ctx context.Context, path string) domain.ParseResult
}

// QuoteSource routes quote files to the ingestor that understands them.
type QuoteSource interface {
	// Parse ingests a single file.
	// Returns domain.ErrUnsupportedFormat when no ingestor accepts the path.
	Parse(ctx context.Context, path string) (domain.ParseResult, error)

	// ParseAll ingests the paths in order and concatenates their batches.
	// It stops at the first unsupported path.
	ParseAll(ctx context.Context, paths []string) (domain.ParseResult, error)
}

// DiagnosticsSink receives non-fatal ingestion failures.
// Report must not block ingestion on slow sinks and never returns an error.
type DiagnosticsSink interface {
	Report(ctx context.Context, failure domain.Failure)
}

// QuoteFinder answers lookups over the loaded quotes.
type QuoteFinder interface {
	// Random returns a uniformly chosen quote.
	// Returns domain.ErrNotFound when no quotes are loaded.
	Random() (domain.Quote, error)

	// FindByBody returns the first quote whose body matches, ignoring case.
	// Returns domain.ErrNotFound when nothing matches.
	FindByBody(body string) (domain.Quote, error)

	// FindByAuthor returns the first quote by author, ignoring case.
	// Returns domain.ErrNotFound when nothing matches.
	FindByAuthor(author string) (domain.Quote, error)
}

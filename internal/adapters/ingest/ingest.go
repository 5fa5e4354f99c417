// Package ingest implements quote ingestors for plain text, CSV, DOCX and PDF
// sources, and the dispatcher that routes a file to the ingestor claiming it.
//
// Every ingestor follows the same error policy: a malformed record is recorded
// in the returned batch and skipped, and a file that cannot be read yields an
// empty batch with a single file-level failure. Ingestors never return errors
// and never panic out of Parse.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jsamuelsen/meme-generator/internal/domain"
)

// extension reports whether path ends with ext. Matching is case-sensitive.
func extension(path, ext string) bool {
	return strings.HasSuffix(path, ext)
}

// fileFailure builds the result for a file that could not be read at all.
func fileFailure(path string, format domain.Format, err error) domain.ParseResult {
	var result domain.ParseResult
	result.Fail(path, format, 0, domain.NewParseFailureError(path, format, 0, err))

	return result
}

// collectLine turns one "body - author" line into a quote. Lines without the
// separator are skipped without a failure.
func collectLine(result *domain.ParseResult, path string, format domain.Format, line int, text string) {
	body, author, ok := domain.SplitQuoteLine(text)
	if !ok {
		return
	}

	result.Add(path, format, line, body, author)
}

// bomAwareFile is an open file decoded to UTF-8. A leading UTF-8 or UTF-16
// byte order mark selects the encoding and is stripped; without one the
// content is read as UTF-8.
type bomAwareFile struct {
	io.Reader
	f *os.File
}

func (b *bomAwareFile) Close() error {
	return b.f.Close()
}

func openDecoded(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())

	return &bomAwareFile{Reader: transform.NewReader(f, decoder), f: f}, nil
}

// recoverParse converts a panic inside a parser into a file-level failure.
func recoverParse(result *domain.ParseResult, path string, format domain.Format) {
	if r := recover(); r != nil {
		*result = fileFailure(path, format, fmt.Errorf("parser panic: %v", r))
	}
}

// cancelled reports a context error as a file-level failure.
func cancelled(ctx context.Context, path string, format domain.Format) (domain.ParseResult, bool) {
	if err := ctx.Err(); err != nil {
		return fileFailure(path, format, err), true
	}

	return domain.ParseResult{}, false
}

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

const (
	// ExtractorPdfToText selects the external pdftotext utility.
	ExtractorPdfToText = "pdftotext"

	// pageSeparator is written by pdftotext between pages.
	pageSeparator = "\f"
)

// PdfToTextExtractor shells out to poppler's pdftotext. The utility writes to
// an intermediate temp file which is always removed before returning.
type PdfToTextExtractor struct {
	binary string
	logger *slog.Logger
}

// NewPdfToTextExtractor creates an extractor running binary. An empty binary
// resolves "pdftotext" from PATH.
func NewPdfToTextExtractor(binary string, logger *slog.Logger) *PdfToTextExtractor {
	if binary == "" {
		binary = ExtractorPdfToText
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PdfToTextExtractor{binary: binary, logger: logger}
}

// Name implements PDFExtractor.
func (*PdfToTextExtractor) Name() string {
	return ExtractorPdfToText
}

// Available reports whether the binary can be resolved.
func (e *PdfToTextExtractor) Available() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("pdftotext not available: %w", err)
	}

	return nil
}

// ExtractPages implements PDFExtractor.
func (e *PdfToTextExtractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	tmp, err := os.CreateTemp("", "quotes-*.txt")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmp.Name()
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			e.logger.WarnContext(ctx, "failed to remove pdftotext output",
				slog.String("path", tmpPath),
				slog.Any("error", rmErr),
			)
		}
	}()

	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.binary, "-enc", "UTF-8", path, tmpPath)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		return nil, fmt.Errorf("running %s: %w: %s", e.binary, err, strings.TrimSpace(string(out)))
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("reading pdftotext output: %w", err)
	}

	pages := strings.Split(string(data), pageSeparator)

	// pdftotext terminates the last page with a form feed as well.
	if n := len(pages); n > 0 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}

	return pages, nil
}

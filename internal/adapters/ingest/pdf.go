package ingest

import (
	"context"
	"errors"
	"strings"

	"github.com/jsamuelsen/meme-generator/internal/domain"
)

// errUnmappedGlyphs marks a line drawn with a font whose codes have no
// Unicode mapping. The pdftotext extractor may still read such files.
var errUnmappedGlyphs = errors.New("text uses a font without a unicode mapping")

// PDFExtractor turns a PDF file into the plain text of each page.
type PDFExtractor interface {
	// Name identifies the extractor in logs and configuration.
	Name() string

	// ExtractPages returns the text of every page in page order.
	ExtractPages(ctx context.Context, path string) ([]string, error)
}

// PDFIngestor reads one "body - author" quote per text line from .pdf files.
type PDFIngestor struct {
	extractor PDFExtractor
}

// NewPDFIngestor creates a PDF ingestor backed by extractor.
// A nil extractor selects the native pdfcpu extractor.
func NewPDFIngestor(extractor PDFExtractor) *PDFIngestor {
	if extractor == nil {
		extractor = NewNativePDFExtractor()
	}

	return &PDFIngestor{extractor: extractor}
}

// Format implements ports.QuoteIngestor.
func (*PDFIngestor) Format() domain.Format {
	return domain.FormatPDF
}

// CanIngest implements ports.QuoteIngestor.
func (*PDFIngestor) CanIngest(path string) bool {
	return extension(path, ".pdf")
}

// Extractor returns the configured text extractor.
func (p *PDFIngestor) Extractor() PDFExtractor {
	return p.extractor
}

// Parse implements ports.QuoteIngestor.
// Line numbers run across pages, so a failure points at the n-th extracted
// line of the document.
func (p *PDFIngestor) Parse(ctx context.Context, path string) (result domain.ParseResult) {
	defer recoverParse(&result, path, domain.FormatPDF)

	if res, done := cancelled(ctx, path, domain.FormatPDF); done {
		return res
	}

	pages, err := p.extractor.ExtractPages(ctx, path)
	if err != nil {
		return fileFailure(path, domain.FormatPDF, err)
	}

	line := 0
	for _, page := range pages {
		for _, text := range splitLines(page) {
			line++

			if strings.Contains(text, replacementChar) {
				result.Fail(path, domain.FormatPDF, line,
					domain.NewParseFailureError(path, domain.FormatPDF, line, errUnmappedGlyphs))

				continue
			}

			collectLine(&result, path, domain.FormatPDF, line, text)
		}
	}

	return result
}

// splitLines splits on \n, \r\n and lone \r.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	return strings.Split(s, "\n")
}

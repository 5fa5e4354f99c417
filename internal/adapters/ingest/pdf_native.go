package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ExtractorNative selects the pdfcpu based extractor.
const ExtractorNative = "native"

var disableConfigDir sync.Once

// NativePDFExtractor reads PDFs in process with pdfcpu and decodes the
// text-showing operators of each page's content stream through the page's
// font resources: ToUnicode maps, Type0 two-byte codes and simple-font
// encodings with their Differences.
type NativePDFExtractor struct{}

// NewNativePDFExtractor creates the pdfcpu extractor. pdfcpu's user config
// directory is disabled so extraction never writes to the home directory.
func NewNativePDFExtractor() *NativePDFExtractor {
	disableConfigDir.Do(api.DisableConfigDir)

	return &NativePDFExtractor{}
}

// Name implements PDFExtractor.
func (*NativePDFExtractor) Name() string {
	return ExtractorNative
}

// ExtractPages implements PDFExtractor.
func (*NativePDFExtractor) ExtractPages(ctx context.Context, path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	pdfCtx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages = make([]string, 0, pdfCtx.PageCount)
	fontCache := make(map[types.IndirectRef]*pdfFont)

	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageDict, _, _, err := pdfCtx.PageDict(pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNr, err)
		}

		fonts := fontResources(pdfCtx.XRefTable, pageDict, fontCache)

		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil {
			return nil, fmt.Errorf("page %d content: %w", pageNr, err)
		}

		if r == nil {
			pages = append(pages, "")
			continue
		}

		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("page %d content: %w", pageNr, err)
		}

		pages = append(pages, pageText(data, fonts))
	}

	return pages, nil
}

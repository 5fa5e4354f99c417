package ingest

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jsamuelsen/meme-generator/internal/domain"
)

const (
	// maxXMLDepth guards against deeply nested (XML bomb) documents.
	maxXMLDepth = 256

	// maxDocumentXMLBytes caps the decompressed size of word/document.xml.
	maxDocumentXMLBytes = 64 << 20

	docxDocumentPart = "word/document.xml"
)

// wordNamespaces are the WordprocessingML namespaces (transitional and strict).
// Elements from other vocabularies, such as DrawingML a:p, are ignored.
var wordNamespaces = map[string]bool{
	"http://schemas.openxmlformats.org/wordprocessingml/2006/main": true,
	"http://purl.oclc.org/ooxml/wordprocessingml/main":             true,
}

var (
	errMissingSeparator = errors.New(`paragraph has no " - " separator`)
	errNestingDepth     = fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)
	errNoDocumentPart   = errors.New(docxDocumentPart + " not found in archive")
)

// DocxIngestor reads one quote per non-empty paragraph from .docx files.
type DocxIngestor struct{}

// NewDocxIngestor creates a DOCX ingestor.
func NewDocxIngestor() *DocxIngestor {
	return &DocxIngestor{}
}

// Format implements ports.QuoteIngestor.
func (*DocxIngestor) Format() domain.Format {
	return domain.FormatDocx
}

// CanIngest implements ports.QuoteIngestor.
func (*DocxIngestor) CanIngest(path string) bool {
	return extension(path, ".docx")
}

// Parse implements ports.QuoteIngestor.
// A non-empty paragraph without the separator is recorded as a failure for
// that paragraph; the rest of the document is still read.
func (*DocxIngestor) Parse(ctx context.Context, path string) (result domain.ParseResult) {
	defer recoverParse(&result, path, domain.FormatDocx)

	if res, done := cancelled(ctx, path, domain.FormatDocx); done {
		return res
	}

	paragraphs, err := readDocxParagraphs(ctx, path)
	if err != nil {
		return fileFailure(path, domain.FormatDocx, err)
	}

	for _, p := range paragraphs {
		body, author, ok := domain.SplitQuoteLine(p.text)
		if !ok {
			result.Fail(path, domain.FormatDocx, p.index,
				domain.NewParseFailureError(path, domain.FormatDocx, p.index, errMissingSeparator))

			continue
		}

		result.Add(path, domain.FormatDocx, p.index, body, author)
	}

	return result
}

// paragraph is the visible text of one w:p element. index is its 1-based
// position among all paragraphs of the document.
type paragraph struct {
	index int
	text  string
}

func readDocxParagraphs(ctx context.Context, path string) ([]paragraph, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var part *zip.File
	for _, f := range r.File {
		if f.Name == docxDocumentPart {
			part = f
			break
		}
	}

	if part == nil {
		return nil, errNoDocumentPart
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", docxDocumentPart, err)
	}
	defer rc.Close()

	return walkDocumentXML(ctx, io.LimitReader(rc, maxDocumentXMLBytes))
}

// walkDocumentXML collects non-empty paragraphs in document order. Text comes
// from w:t runs only; w:tab becomes a tab and w:br or w:cr a space. Paragraphs
// nested inside text boxes are reported separately from their host.
func walkDocumentXML(ctx context.Context, r io.Reader) ([]paragraph, error) {
	decoder := xml.NewDecoder(r)

	var (
		out    []paragraph
		open   []*strings.Builder
		starts []int
		seen   int
		depth  int
		inText int
		inProp int
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", docxDocumentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return nil, errNestingDepth
			}

			if !wordNamespaces[t.Name.Space] {
				continue
			}

			switch t.Name.Local {
			case "p":
				seen++
				open = append(open, &strings.Builder{})
				starts = append(starts, seen)

				if err := ctx.Err(); err != nil {
					return nil, err
				}
			case "t":
				inText++
			case "pPr", "rPr":
				inProp++
			case "tab":
				// w:tabs inside paragraph properties declares tab stops.
				if inProp == 0 && len(open) > 0 {
					open[len(open)-1].WriteByte('\t')
				}
			case "br", "cr":
				if len(open) > 0 {
					open[len(open)-1].WriteByte(' ')
				}
			}

		case xml.CharData:
			if inText > 0 && len(open) > 0 {
				open[len(open)-1].Write(t)
			}

		case xml.EndElement:
			depth--

			if !wordNamespaces[t.Name.Space] {
				continue
			}

			switch t.Name.Local {
			case "t":
				if inText > 0 {
					inText--
				}
			case "pPr", "rPr":
				if inProp > 0 {
					inProp--
				}
			case "p":
				if len(open) == 0 {
					continue
				}

				text := open[len(open)-1].String()
				index := starts[len(starts)-1]
				open = open[:len(open)-1]
				starts = starts[:len(starts)-1]

				if strings.TrimSpace(text) != "" {
					out = append(out, paragraph{index: index, text: text})
				}
			}
		}
	}

	return out, nil
}

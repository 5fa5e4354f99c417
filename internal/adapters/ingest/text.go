package ingest

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/jsamuelsen/meme-generator/internal/domain"
)

// maxLineBytes bounds a single line of a plain-text source.
const maxLineBytes = 1 << 20

var errLineTooLong = errors.New("line longer than 1 MiB")

// TextIngestor reads one "body - author" quote per line from .txt files.
type TextIngestor struct{}

// NewTextIngestor creates a plain-text ingestor.
func NewTextIngestor() *TextIngestor {
	return &TextIngestor{}
}

// Format implements ports.QuoteIngestor.
func (*TextIngestor) Format() domain.Format {
	return domain.FormatText
}

// CanIngest implements ports.QuoteIngestor.
func (*TextIngestor) CanIngest(path string) bool {
	return extension(path, ".txt")
}

// Parse implements ports.QuoteIngestor.
func (*TextIngestor) Parse(ctx context.Context, path string) (result domain.ParseResult) {
	defer recoverParse(&result, path, domain.FormatText)

	if res, done := cancelled(ctx, path, domain.FormatText); done {
		return res
	}

	rc, err := openDecoded(path)
	if err != nil {
		return fileFailure(path, domain.FormatText, err)
	}
	defer rc.Close()

	reader := bufio.NewReaderSize(rc, 64*1024)

	line := 0
	for {
		text, tooLong, err := readLine(reader)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fileFailure(path, domain.FormatText, err)
		}

		line++

		if res, done := cancelled(ctx, path, domain.FormatText); done {
			return res
		}

		if tooLong {
			result.Fail(path, domain.FormatText, line,
				domain.NewParseFailureError(path, domain.FormatText, line, errLineTooLong))

			continue
		}

		collectLine(&result, path, domain.FormatText, line, text)
	}

	return result
}

// readLine returns the next line without its terminator. A line longer than
// maxLineBytes is consumed and reported as tooLong with empty text.
func readLine(r *bufio.Reader) (text string, tooLong bool, err error) {
	var buf []byte

	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", false, err
		}

		if !tooLong {
			if len(buf)+len(chunk) > maxLineBytes {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

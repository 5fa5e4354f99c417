package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"io"

	"github.com/jsamuelsen/meme-generator/internal/domain"
)

// CSVIngestor reads quotes from two-column .csv files.
// The first row is always treated as a header and discarded.
type CSVIngestor struct{}

// NewCSVIngestor creates a CSV ingestor.
func NewCSVIngestor() *CSVIngestor {
	return &CSVIngestor{}
}

// Format implements ports.QuoteIngestor.
func (*CSVIngestor) Format() domain.Format {
	return domain.FormatCSV
}

// CanIngest implements ports.QuoteIngestor.
func (*CSVIngestor) CanIngest(path string) bool {
	return extension(path, ".csv")
}

// Parse implements ports.QuoteIngestor.
// Rows with a field count other than two are skipped silently. A row the CSV
// reader rejects is recorded as a failure and reading continues.
func (*CSVIngestor) Parse(ctx context.Context, path string) (result domain.ParseResult) {
	defer recoverParse(&result, path, domain.FormatCSV)

	if res, done := cancelled(ctx, path, domain.FormatCSV); done {
		return res
	}

	rc, err := openDecoded(path)
	if err != nil {
		return fileFailure(path, domain.FormatCSV, err)
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		row++

		if res, done := cancelled(ctx, path, domain.FormatCSV); done {
			return res
		}

		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return fileFailure(path, domain.FormatCSV, err)
			}

			result.Fail(path, domain.FormatCSV, row, domain.NewParseFailureError(path, domain.FormatCSV, row, err))

			continue
		}

		if row == 1 || len(record) != 2 {
			continue
		}

		result.Add(path, domain.FormatCSV, row, record[0], record[1])
	}

	return result
}

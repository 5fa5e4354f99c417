package domain

// Format identifies a quote source file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatDocx Format = "docx"
	FormatPDF  Format = "pdf"
	FormatText Format = "txt"
)

// Failure is a non-fatal problem met while parsing a quote source.
// Line is the 1-based record position (line, row, paragraph) or 0 when the
// whole file failed.
type Failure struct {
	Path   string
	Format Format
	Line   int
	Err    error
}

// ParseResult is an ordered batch of quotes plus the failures collected
// while producing it.
type ParseResult struct {
	Quotes   []Quote
	Failures []Failure
}

// Merge appends other to r, keeping order.
func (r *ParseResult) Merge(other ParseResult) {
	r.Quotes = append(r.Quotes, other.Quotes...)
	r.Failures = append(r.Failures, other.Failures...)
}

// Add records a candidate quote or its failure.
func (r *ParseResult) Add(path string, format Format, line int, body, author string) {
	q, err := NewQuote(body, author)
	if err != nil {
		r.Fail(path, format, line, err)
		return
	}

	r.Quotes = append(r.Quotes, q)
}

// Fail records a failure at the given record position.
func (r *ParseResult) Fail(path string, format Format, line int, err error) {
	r.Failures = append(r.Failures, Failure{
		Path:   path,
		Format: format,
		Line:   line,
		Err:    err,
	})
}

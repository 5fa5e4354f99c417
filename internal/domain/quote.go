// Package domain contains core business entities and rules.
package domain

import "strings"

// Quote is a normalized quotation ready for rendering.
// This is a domain entity - it has no knowledge of external systems.
// Two quotes with equal fields are interchangeable.
type Quote struct {
	// Body is the text of the quote.
	Body string

	// Author is who said or wrote the quote.
	Author string
}

// typographicReplacements maps typographic quotation marks to their ASCII
// equivalents. Targets are disjoint code points, so the result does not
// depend on the order the pairs are applied in.
var typographicReplacements = []string{
	"\u201c", `"`, // left double quotation mark
	"\u201d", `"`, // right double quotation mark
	"\u2018", "'", // left single quotation mark
	"\u2019", "'", // right single quotation mark
}

var typographicReplacer = strings.NewReplacer(typographicReplacements...)

// Normalize trims surrounding whitespace and replaces typographic quotation
// marks with plain ASCII. Normalize is idempotent.
func Normalize(s string) string {
	return typographicReplacer.Replace(strings.TrimSpace(s))
}

// NewQuote builds a Quote from raw extracted strings.
// Returns an InvalidRecordError if either field is empty after trimming.
func NewQuote(body, author string) (Quote, error) {
	body = Normalize(body)
	if body == "" {
		return Quote{}, NewInvalidRecordError("body", "must not be empty")
	}

	author = Normalize(author)
	if author == "" {
		return Quote{}, NewInvalidRecordError("author", "must not be empty")
	}

	return Quote{Body: body, Author: author}, nil
}

// String renders the quote as `"body" - author`.
func (q Quote) String() string {
	return `"` + q.Body + `" - ` + q.Author
}

// QuoteSeparator splits a quote line into body and author.
const QuoteSeparator = " - "

// SplitQuoteLine splits line on the first QuoteSeparator.
// ok is false when the line does not contain the separator.
func SplitQuoteLine(line string) (body, author string, ok bool) {
	return strings.Cut(line, QuoteSeparator)
}

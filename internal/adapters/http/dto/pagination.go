package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

const (
	// DefaultLimit is the page size when none is requested.
	DefaultLimit = 20

	// MaxLimit is the largest page size accepted.
	MaxLimit = 100
)

// ErrInvalidCursor is returned for cursors this service did not issue.
var ErrInvalidCursor = errors.New("invalid cursor")

// PaginationRequest holds the query parameters of a paged listing.
type PaginationRequest struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns Limit clamped to [1, MaxLimit], or DefaultLimit when unset.
func (p PaginationRequest) GetLimit() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// PaginatedResponse is one page of a listing in ingestion order.
type PaginatedResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// cursor is the JSON payload behind an opaque cursor string.
type cursor struct {
	Offset *int `json:"o"`
}

// EncodeCursor returns the opaque cursor for a page starting at offset.
func EncodeCursor(offset int) string {
	b, _ := json.Marshal(cursor{Offset: &offset})
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor returns the offset encoded in s. The empty cursor is offset 0.
func DecodeCursor(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, ErrInvalidCursor
	}

	var c cursor
	if err := json.Unmarshal(b, &c); err != nil || c.Offset == nil || *c.Offset < 0 {
		return 0, ErrInvalidCursor
	}

	return *c.Offset, nil
}

// Paginate returns the page of items selected by req. The slice is not
// copied; callers map the items before serializing.
func Paginate[T any](items []T, req PaginationRequest) (*PaginatedResponse[T], error) {
	start, err := DecodeCursor(req.Cursor)
	if err != nil {
		return nil, err
	}

	start = min(start, len(items))
	end := min(start+req.GetLimit(), len(items))

	resp := &PaginatedResponse[T]{Items: items[start:end]}
	if end < len(items) {
		resp.HasMore = true
		resp.NextCursor = EncodeCursor(end)
	}

	return resp, nil
}

// MapPage converts the items of a page, keeping its cursor.
func MapPage[T, U any](p *PaginatedResponse[T], fn func(T) U) PaginatedResponse[U] {
	out := PaginatedResponse[U]{
		Items:      make([]U, len(p.Items)),
		NextCursor: p.NextCursor,
		HasMore:    p.HasMore,
	}

	for i, item := range p.Items {
		out.Items[i] = fn(item)
	}

	return out
}

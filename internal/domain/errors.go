// Package domain holds the quote and meme types and the errors the meme
// generator reports. Adapters map the errors to HTTP statuses and CLI output.
package domain

import (
	"errors"
	"fmt"
)

// Every typed error below unwraps to one of these sentinels.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("unavailable")

	// ErrInvalidRecord is a candidate quote rejected by NewQuote and
	// ErrParseFailure a quote file, or one record in it, that could not be read.
	ErrInvalidRecord     = errors.New("invalid record")
	ErrParseFailure      = errors.New("parse failure")
	ErrUnsupportedFormat = errors.New("unsupported format")

	ErrImageLoad  = errors.New("image load failed")
	ErrImageWrite = errors.New("image write failed")
)

// NotFoundError names the missing entity and, when known, its key.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError is a request that cannot be served as given. Field names
// the offending input so handlers can report it per field.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue also records the rejected value for logging.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// UnavailableError is a dependency, such as a remote image host, that
// cannot currently serve.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// InvalidRecordError reports which quote field failed normalization.
type InvalidRecordError struct {
	Field  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid record: %s %s", e.Field, e.Reason)
}

func (e *InvalidRecordError) Unwrap() error {
	return ErrInvalidRecord
}

func NewInvalidRecordError(field, reason string) error {
	return &InvalidRecordError{Field: field, Reason: reason}
}

// ParseFailureError describes a record or file that could not be parsed.
// Line is 0 for file-level failures.
type ParseFailureError struct {
	Path   string
	Format Format
	Line   int
	Cause  error
}

func (e *ParseFailureError) Error() string {
	msg := fmt.Sprintf("parse %s file %s", e.Format, e.Path)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at record %d", msg, e.Line)
	}

	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}

	return msg
}

func (e *ParseFailureError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrParseFailure}
	}

	return []error{ErrParseFailure, e.Cause}
}

func NewParseFailureError(path string, format Format, line int, cause error) error {
	return &ParseFailureError{Path: path, Format: format, Line: line, Cause: cause}
}

// UnsupportedFormatError is returned when no parser accepts a path.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("cannot ingest file at %s: unsupported format", e.Path)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

func NewUnsupportedFormatError(path string) error {
	return &UnsupportedFormatError{Path: path}
}

// ImageLoadError is returned when a source image cannot be decoded.
type ImageLoadError struct {
	Path  string
	Cause error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("loading image %s: %v", e.Path, e.Cause)
}

func (e *ImageLoadError) Unwrap() []error {
	return []error{ErrImageLoad, e.Cause}
}

func NewImageLoadError(path string, cause error) error {
	return &ImageLoadError{Path: path, Cause: cause}
}

// ImageWriteError is returned when the rendered image cannot be persisted.
type ImageWriteError struct {
	Path  string
	Cause error
}

func (e *ImageWriteError) Error() string {
	return fmt.Sprintf("writing image %s: %v", e.Path, e.Cause)
}

func (e *ImageWriteError) Unwrap() []error {
	return []error{ErrImageWrite, e.Cause}
}

func NewImageWriteError(path string, cause error) error {
	return &ImageWriteError{Path: path, Cause: cause}
}

func IsNotFound(err error) bool          { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool        { return errors.Is(err, ErrValidation) }
func IsUnavailable(err error) bool       { return errors.Is(err, ErrUnavailable) }
func IsInvalidRecord(err error) bool     { return errors.Is(err, ErrInvalidRecord) }
func IsParseFailure(err error) bool      { return errors.Is(err, ErrParseFailure) }
func IsUnsupportedFormat(err error) bool { return errors.Is(err, ErrUnsupportedFormat) }
func IsImageLoad(err error) bool         { return errors.Is(err, ErrImageLoad) }
func IsImageWrite(err error) bool        { return errors.Is(err, ErrImageWrite) }

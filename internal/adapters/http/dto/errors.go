// Package dto holds the HTTP wire types shared by the handlers: the error
// envelope, pagination and request validation.
package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/meme-generator/internal/domain"
	"github.com/jsamuelsen/meme-generator/internal/platform/logging"
)

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail is the machine-readable code, a message, and per-field
// messages for validation failures.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

const (
	ErrorCodeBadRequest        = "BAD_REQUEST"
	ErrorCodeValidation        = "VALIDATION_ERROR"
	ErrorCodeNotFound          = "NOT_FOUND"
	ErrorCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrorCodeImageLoad         = "IMAGE_LOAD_FAILED"
	ErrorCodeTimeout           = "TIMEOUT"
	ErrorCodeUnavailable       = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)

var codeStatus = map[string]int{
	ErrorCodeBadRequest:        http.StatusBadRequest,
	ErrorCodeValidation:        http.StatusBadRequest,
	ErrorCodeNotFound:          http.StatusNotFound,
	ErrorCodeUnsupportedFormat: http.StatusUnsupportedMediaType,
	ErrorCodeImageLoad:         http.StatusUnprocessableEntity,
	ErrorCodeTimeout:           http.StatusGatewayTimeout,
	ErrorCodeUnavailable:       http.StatusServiceUnavailable,
}

// traceIDKey is the gin context key a handler may set to override the
// correlation id reported in errors.
const traceIDKey = "trace_id"

// NewErrorResponse creates an error body.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// HTTPStatusFromCode returns the status an error code is sent with.
func HTTPStatusFromCode(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// MapError classifies err. Domain errors keep their message; anything
// unrecognised becomes a generic INTERNAL_ERROR so paths and causes never
// reach the client.
func MapError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	var (
		validation *domain.ValidationError
		resp       *ErrorResponse
	)

	switch {
	case errors.As(err, &validation):
		resp = NewErrorResponse(ErrorCodeValidation, err.Error())
		if validation.Field != "" {
			resp.Error.Details = map[string]string{validation.Field: validation.Message}
		}
	case domain.IsNotFound(err):
		resp = NewErrorResponse(ErrorCodeNotFound, err.Error())
	case domain.IsUnsupportedFormat(err):
		resp = NewErrorResponse(ErrorCodeUnsupportedFormat, err.Error())
	case domain.IsImageLoad(err):
		resp = NewErrorResponse(ErrorCodeImageLoad, err.Error())
	case domain.IsUnavailable(err):
		resp = NewErrorResponse(ErrorCodeUnavailable, "a dependency is temporarily unavailable: "+err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		resp = NewErrorResponse(ErrorCodeTimeout, "request timeout exceeded")
	default:
		resp = NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}

	return HTTPStatusFromCode(resp.Error.Code), resp
}

// HandleError writes err as a JSON error. Internal errors are logged in full.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	status, resp := MapError(err)

	if status == http.StatusInternalServerError {
		ctx := c.Request.Context()
		logging.FromContext(ctx).ErrorContext(ctx, "internal error", slog.Any("error", err))
	}

	write(c, status, resp)
}

// HandleRequestError writes a 400 for a request that failed BindAndValidate,
// BindQueryAndValidate or Paginate. Undecodable input is reported with
// message; field failures are listed under details.
func HandleRequestError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrValidation):
		resp := NewErrorResponse(ErrorCodeValidation, "request validation failed")
		resp.Error.Details = ValidationErrors(err)
		write(c, http.StatusBadRequest, resp)
	case errors.Is(err, ErrBinding):
		write(c, http.StatusBadRequest, NewErrorResponse(ErrorCodeBadRequest, message))
	case errors.Is(err, ErrInvalidCursor):
		write(c, http.StatusBadRequest, NewErrorResponse(ErrorCodeBadRequest, err.Error()))
	default:
		HandleError(c, err)
	}
}

func write(c *gin.Context, status int, resp *ErrorResponse) {
	resp.TraceID = GetTraceID(c)
	c.JSON(status, resp)
}

// GetTraceID returns the id that ties an error response to the logs: a
// trace_id set on the gin context, else the active span's trace id, else
// the X-Request-ID header.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(traceIDKey); ok {
		id, _ := v.(string)
		return id
	}

	if c.Request == nil {
		return ""
	}

	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return c.GetHeader("X-Request-ID")
}

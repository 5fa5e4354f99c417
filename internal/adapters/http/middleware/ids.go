// Package middleware provides the Gin middleware shared by the meme pages,
// the JSON API and the static meme files.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/meme-generator/internal/platform/logging"
)

const (
	// HeaderRequestID identifies a single request.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID ties together every request made on behalf of one
	// upstream transaction, including remote image downloads.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyRequestID is the gin.Context key holding the request ID.
	ContextKeyRequestID = "request_id"

	// ContextKeyCorrelationID is the gin.Context key holding the correlation ID.
	ContextKeyCorrelationID = "correlation_id"

	// maxIDLength bounds a client-supplied ID before it is echoed back.
	maxIDLength = 128
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	correlationIDKey
)

// idSpec describes one propagated identifier.
type idSpec struct {
	header string
	ginKey string
	ctxKey ctxKey
	enrich func(ctx context.Context, id string) context.Context
}

var (
	requestIDSpec     = idSpec{HeaderRequestID, ContextKeyRequestID, requestIDKey, logging.WithRequestID}
	correlationIDSpec = idSpec{HeaderCorrelationID, ContextKeyCorrelationID, correlationIDKey, logging.WithCorrelationID}
)

// RequestID returns middleware that accepts a well-formed X-Request-ID or
// generates a UUID. The ID is echoed in the response, stored on the gin and
// request contexts, and attached to the context logger.
func RequestID() gin.HandlerFunc {
	return propagate(requestIDSpec)
}

// CorrelationID is RequestID for X-Correlation-ID. The outbound image
// client forwards it so downloads can be traced back to the meme request.
func CorrelationID() gin.HandlerFunc {
	return propagate(correlationIDSpec)
}

func propagate(spec idSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(spec.header)
		if !validID(id) {
			id = uuid.NewString()
		}

		c.Set(spec.ginKey, id)
		c.Header(spec.header, id)

		ctx := context.WithValue(c.Request.Context(), spec.ctxKey, id)
		c.Request = c.Request.WithContext(spec.enrich(ctx, id))

		c.Next()
	}
}

// validID accepts short IDs made of characters safe in headers and logs.
func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}

	return true
}

// GetRequestID returns the request ID stored by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID stored by CorrelationID, or "".
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

// RequestIDFromContext returns the request ID carried by ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, requestIDKey)
}

// CorrelationIDFromContext returns the correlation ID carried by ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, correlationIDKey)
}

// ContextWithRequestID stores a request ID in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithCorrelationID stores a correlation ID in ctx.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func idFromContext(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(key).(string)

	return id
}

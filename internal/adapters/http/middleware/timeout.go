package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Deadline returns middleware that bounds the request context by timeout.
// Ingestion, downloads and rendering all observe the context; when it
// expires they fail with context.DeadlineExceeded and the handler maps
// that to a 504.
func Deadline(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

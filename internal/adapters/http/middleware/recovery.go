package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/meme-generator/internal/adapters/http/dto"
	"github.com/jsamuelsen/meme-generator/internal/platform/logging"
)

// panicPage is served to browsers when a page handler panics. The regular
// templates are not used because they may be what failed.
const panicPage = `<!DOCTYPE html>
<html><head><title>Internal Server Error</title></head>
<body><h1>Something went wrong</h1><p class="error">The meme could not be made. Please try again.</p></body></html>`

// Recovery returns middleware that turns a panic into a 500 response.
// The panic and its stack are logged at ERROR with the request's trace ID.
// Browsers asking for HTML get a static error page; everything else gets
// the standard JSON error envelope. Nothing is written if the handler had
// already started its response.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			reqLogger, ok := logging.Lookup(c.Request.Context())
			if !ok {
				reqLogger = logger
			}

			traceID := dto.GetTraceID(c)

			reqLogger.Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("trace_id", traceID),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
				c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(panicPage))
				c.Abort()

				return
			}

			errResp := dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred")
			errResp.TraceID = traceID

			c.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
		}()

		c.Next()
	}
}

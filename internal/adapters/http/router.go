package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/meme-generator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/meme-generator/internal/adapters/http/middleware"
	"github.com/jsamuelsen/meme-generator/internal/platform/config"
	"github.com/jsamuelsen/meme-generator/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds page and API requests, including any remote
// image download and the render.
const DefaultRequestTimeout = 30 * time.Second

// healthPrefix groups the probe endpoints.
const healthPrefix = "/-/"

// RouterConfig contains configuration for setting up the router.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// QuoteHandler serves /api/v1/quotes.
	QuoteHandler *handlers.QuoteHandler

	// MemeHandler serves /api/v1/memes.
	MemeHandler *handlers.MemeHandler

	// WebHandler serves the HTML pages at / and /create.
	WebHandler *handlers.WebHandler

	// StaticDir is served under handlers.StaticPrefix. Empty disables it.
	StaticDir string

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health and static meme files)
//  6. Deadline - request deadline on pages and the API
//
// Route groups:
//   - /-/ (internal): health endpoints
//   - /static/: rendered memes
//   - /, /create: HTML pages
//   - /api/v1/: JSON API
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Tracing(cfg.AppConfig.Name, healthPrefix),
		telemetry.Metrics(),
		middleware.Logging(cfg.Logger, healthPrefix, handlers.StaticPrefix),
	)

	// Health endpoints get no deadline so probes see real latency.
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(engine)
	}

	if cfg.StaticDir != "" {
		engine.Static(handlers.StaticPrefix, cfg.StaticDir)
	}

	timed := engine.Group("")
	if cfg.Timeout > 0 {
		timed.Use(middleware.Deadline(cfg.Timeout))
	}

	if cfg.WebHandler != nil {
		cfg.WebHandler.RegisterWebRoutes(timed)
	}

	setupAPIRoutes(timed.Group("/api/v1"), cfg)
}

// setupAPIRoutes registers the JSON API.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(rg)
	}

	if cfg.MemeHandler != nil {
		cfg.MemeHandler.RegisterMemeRoutes(rg)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with the health handler and
// the default timeout. Callers add the meme and quote handlers.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	healthHandler *handlers.HealthHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		Timeout:       DefaultRequestTimeout,
	}
}

package telemetry

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

// HeaderTraceID carries the active trace ID back to the caller.
const HeaderTraceID = "X-Trace-ID"

// Tracing returns otelgin middleware that starts a server span per request.
// Paths under any of skipPrefixes (health probes) are not traced.
func Tracing(serviceName string, skipPrefixes ...string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, otelgin.WithFilter(func(r *http.Request) bool {
		for _, p := range skipPrefixes {
			if strings.HasPrefix(r.URL.Path, p) {
				return false
			}
		}

		return true
	}))
}

type httpCollectors struct {
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

var (
	collectorsOnce sync.Once
	collectors     *httpCollectors
)

// defaultCollectors registers the HTTP collectors on the default Prometheus
// registry once; /-/metrics serves that registry.
func defaultCollectors() *httpCollectors {
	collectorsOnce.Do(func() {
		collectors = newHTTPCollectors(prometheus.DefaultRegisterer)
	})

	return collectors
}

func newHTTPCollectors(reg prometheus.Registerer) *httpCollectors {
	c := &httpCollectors{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meme",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meme",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
	}

	reg.MustRegister(c.duration, c.inFlight)

	return c
}

// Metrics returns middleware that records request latency and in-flight
// requests in Prometheus, and echoes the trace ID started by Tracing.
func Metrics() gin.HandlerFunc {
	return defaultCollectors().middleware()
}

func (m *httpCollectors) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		start := time.Now()

		m.inFlight.Inc()
		defer m.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.duration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

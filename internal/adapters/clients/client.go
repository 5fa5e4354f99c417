package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/meme-generator/internal/adapters/http/middleware"
	"github.com/jsamuelsen/meme-generator/internal/platform/config"
	"github.com/jsamuelsen/meme-generator/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/meme-generator/internal/adapters/clients"

	defaultTimeout      = 30 * time.Second
	defaultJitterFactor = 0.25
	defaultUserAgent    = "meme-generator"

	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// State is the circuit breaker state.
type State = gobreaker.State

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// Config configures an HTTP client instance.
type Config struct {
	// BaseURL resolves relative targets. Absolute http(s) targets are used
	// as given, which is how remote images are fetched.
	BaseURL string

	// ServiceName identifies the downstream in logs, spans and metrics.
	ServiceName string

	// Timeout bounds a single attempt. Retries and backoff come on top.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	UserAgent string
	Logger    *slog.Logger
}

// FromConfig builds a client Config from the application's client section.
func FromConfig(serviceName string, cfg config.ClientConfig, logger *slog.Logger) *Config {
	return &Config{
		ServiceName: serviceName,
		Timeout:     cfg.Timeout,
		Retry:       cfg.Retry,
		Circuit:     cfg.CircuitBreaker,
		Transport:   cfg.Transport,
		Logger:      logger,
	}
}

// Client downloads over HTTP with retry, a circuit breaker, tracing and
// request id propagation.
type Client struct {
	http      *http.Client
	baseURL   string
	name      string
	userAgent string
	retry     config.RetryConfig
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	tracer    trace.Tracer

	duration metric.Float64Histogram
	requests metric.Int64Counter
}

// New creates a client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "download_client"), slog.String("downstream", cfg.ServiceName))

	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of outbound HTTP requests including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requests, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Outbound HTTP requests by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		http:      &http.Client{Timeout: timeout, Transport: newTransport(cfg.Transport)},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		name:      cfg.ServiceName,
		userAgent: userAgent,
		retry:     retry,
		breaker:   newBreaker(cfg.ServiceName, cfg.Circuit, logger),
		tracer:    otel.Tracer(instrumentationName),
		duration:  duration,
		requests:  requests,
	}, nil
}

// newBreaker opens after MaxFailures consecutive failed calls, probes with
// up to HalfOpenLimit requests once Timeout has passed, and closes after
// HalfOpenLimit consecutive probe successes. Cancellation is not a failure.
func newBreaker(name string, cc config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	maxFailures := uint32(max(cc.MaxFailures, 1))
	halfOpen := uint32(max(cc.HalfOpenLimit, 1))

	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: halfOpen,
		Timeout:     cc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

func newTransport(tc config.TransportConfig) *http.Transport {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        tc.MaxIdleConns,
		MaxIdleConnsPerHost: tc.MaxIdleConnsPerHost,
		IdleConnTimeout:     tc.IdleConnTimeout,
	}

	if t.MaxIdleConns <= 0 {
		t.MaxIdleConns = defaultMaxIdleConns
	}

	if t.MaxIdleConnsPerHost <= 0 {
		t.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
	}

	if t.IdleConnTimeout <= 0 {
		t.IdleConnTimeout = defaultIdleConnTimeout
	}

	return t
}

// newBackOff builds the exponential schedule between attempts.
func newBackOff(rc config.RetryConfig) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = rc.InitialInterval
	b.MaxInterval = rc.MaxInterval
	b.Multiplier = rc.Multiplier
	b.RandomizationFactor = rc.JitterFactor

	if b.RandomizationFactor <= 0 {
		b.RandomizationFactor = defaultJitterFactor
	}

	return b
}

// statusError is a retryable response status.
type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("server responded %d", e.code) }

// Do sends req through the circuit breaker, retrying transport errors,
// 5xx and 429 responses. Only bodiless requests are safe to retry.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.name),
		slog.String("method", req.Method),
		slog.String("host", req.URL.Host),
	)

	c.setHeaders(ctx, req)

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", logging.RedactURL(req.URL.String())),
			attribute.String("peer.service", c.name),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return backoff.Retry(ctx, c.attempt(ctx, req),
			backoff.WithBackOff(newBackOff(c.retry)),
			backoff.WithMaxTries(uint(c.retry.MaxAttempts)), //nolint:gosec // validated positive
			backoff.WithNotify(func(err error, wait time.Duration) {
				logger.Debug("retrying request", slog.Any("error", err), slog.Duration("backoff", wait))
			}),
		)
	})

	elapsed := time.Since(start)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.record(ctx, req.Method, 0, elapsed, "circuit_open")
		logger.Warn("request blocked by circuit breaker")

		return nil, ErrCircuitOpen

	case errors.Is(err, context.Canceled):
		c.record(ctx, req.Method, 0, elapsed, "context_canceled")
		return nil, err

	case err != nil:
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, req.Method, 0, elapsed, "error")
		logger.Error("request failed", slog.Duration("duration", elapsed), slog.Any("error", err))

		return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}

	c.record(ctx, req.Method, resp.StatusCode, elapsed, fmt.Sprintf("%dxx", resp.StatusCode/100))
	logger.Debug("request completed", slog.Int("status", resp.StatusCode), slog.Duration("duration", elapsed))

	return resp, nil
}

// attempt returns one try of req. Errors that cannot succeed on retry are
// marked permanent.
func (c *Client) attempt(ctx context.Context, req *http.Request) backoff.Operation[*http.Response] {
	return func() (*http.Response, error) {
		resp, err := c.http.Do(req.WithContext(ctx))
		if err != nil {
			if retryable(err) {
				return nil, err
			}

			return nil, backoff.Permanent(err)
		}

		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			return nil, &statusError{code: resp.StatusCode}
		}

		return resp, nil
	}
}

// Get performs an HTTP GET. target is an absolute http(s) URL or a path
// relative to BaseURL.
func (c *Client) Get(ctx context.Context, target string) (*http.Response, error) {
	u, err := c.resolve(target)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return c.Do(ctx, req)
}

// CircuitState returns the circuit breaker state.
func (c *Client) CircuitState() State {
	return c.breaker.State()
}

// Name implements ports.HealthChecker.
func (c *Client) Name() string {
	return c.name
}

// Check fails while the circuit is open.
func (c *Client) Check(_ context.Context) error {
	if c.breaker.State() == StateOpen {
		return ErrCircuitOpen
	}

	return nil
}

// Optional marks the download client as non-critical for readiness.
func (c *Client) Optional() bool {
	return true
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)

	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}
}

func (c *Client) resolve(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if !u.IsAbs() {
		if c.baseURL == "" {
			return "", fmt.Errorf("%w: relative target %q without base URL", ErrInvalidURL, target)
		}

		return c.baseURL + "/" + strings.TrimPrefix(target, "/"), nil
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q not allowed", ErrInvalidURL, u.Scheme)
	}

	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return u.String(), nil
}

func (c *Client) record(ctx context.Context, method string, status int, elapsed time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.name),
		attribute.String("result", result),
	}

	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	opt := metric.WithAttributes(attrs...)
	c.duration.Record(ctx, elapsed.Seconds(), opt)
	c.requests.Add(ctx, 1, opt)
}

// retryable reports whether a transport error may succeed on another try.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}

package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/meme-generator/internal/adapters/http/dto"
	"github.com/jsamuelsen/meme-generator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/meme-generator/internal/platform/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 2 * time.Second,
		MaxRequestSize:  1 << 20,
	}
}

// TestServerNew wires the engine, address and timeouts from config.
func TestServerNew(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     int
		wantAddr string
	}{
		{name: "loopback", host: "127.0.0.1", port: 8080, wantAddr: "127.0.0.1:8080"},
		{name: "all interfaces", host: "0.0.0.0", port: 3000, wantAddr: "0.0.0.0:3000"},
		{name: "dynamic port", host: "localhost", port: 0, wantAddr: "localhost:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testServerConfig()
			cfg.Host = tt.host
			cfg.Port = tt.port

			srv := New(cfg, discardLogger())

			require.NotNil(t, srv.Engine())
			assert.Same(t, cfg, srv.Config())
			assert.Equal(t, tt.wantAddr, srv.Addr())
			assert.Equal(t, cfg.ReadTimeout, srv.httpServer.ReadTimeout)
			assert.Equal(t, cfg.WriteTimeout, srv.httpServer.WriteTimeout)
			assert.Equal(t, cfg.IdleTimeout, srv.httpServer.IdleTimeout)
		})
	}
}

// TestServerServe serves a request and stops when the context is cancelled.
func TestServerServe(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(testServerConfig(), logger)

	srv.Engine().GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for server to shutdown")
	}
}

// TestServerRun_ListenError surfaces an address that cannot be bound.
func TestServerRun_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testServerConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port

	srv := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err = srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

// TestServerShutdownIdle shuts down a server that never started.
func TestServerShutdownIdle(t *testing.T) {
	srv := New(testServerConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, srv.Shutdown(context.Background()))
}

// TestMaxBodySize rejects oversized bodies and leaves bodiless requests alone.
func TestMaxBodySize(t *testing.T) {
	engine := gin.New()
	engine.Use(maxBodySize(4))
	engine.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}

		c.String(http.StatusOK, string(body))
	})
	engine.GET("/echo", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{name: "small body", method: http.MethodPost, body: "abc", want: http.StatusOK},
		{name: "large body", method: http.MethodPost, body: "abcdefgh", want: http.StatusRequestEntityTooLarge},
		{name: "no body", method: http.MethodGet, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, "/echo", body))

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

// TestNewDefaultRouterConfig tests creating a default router configuration.
func TestNewDefaultRouterConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCfg := &config.AppConfig{
		Name:        "test-app",
		Environment: "test",
		Version:     "1.0.0",
	}
	healthHandler := handlers.NewHealthHandler(nil, handlers.BuildInfo{})

	cfg := NewDefaultRouterConfig(logger, appCfg, healthHandler)

	assert.Equal(t, logger, cfg.Logger)
	assert.Equal(t, appCfg, cfg.AppConfig)
	assert.Equal(t, healthHandler, cfg.HealthHandler)
	assert.Equal(t, DefaultRequestTimeout, cfg.Timeout)
	assert.Nil(t, cfg.QuoteHandler)
	assert.Nil(t, cfg.MemeHandler)
	assert.Nil(t, cfg.WebHandler)
}

// TestSetupRouter_ServesMemeRoutes checks page, API and static routes are wired.
func TestSetupRouter_ServesMemeRoutes(t *testing.T) {
	engine := gin.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "meme.png"), []byte("png"), 0o600))

	cfg := NewDefaultRouterConfig(logger, &config.AppConfig{Name: "test-service"}, nil)
	cfg.QuoteHandler = handlers.NewQuoteHandler(nil)
	cfg.MemeHandler = handlers.NewMemeHandler(nil, "")
	cfg.WebHandler = handlers.NewWebHandler(nil)
	cfg.StaticDir = staticDir

	SetupRouter(engine, cfg)

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /",
		"GET /create",
		"POST /create",
		"GET /api/v1/quotes",
		"GET /api/v1/quotes/random",
		"POST /api/v1/memes",
		"GET /static/*filepath",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/meme.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())
}

// TestSetupRouter_Recovery answers panics with HTML for browsers and the
// JSON envelope for API clients.
func TestSetupRouter_Recovery(t *testing.T) {
	engine := gin.New()
	SetupRouter(engine, NewDefaultRouterConfig(discardLogger(), &config.AppConfig{Name: "test-service"}, nil))
	engine.GET("/boom", func(*gin.Context) { panic("font exploded") })

	tests := []struct {
		name        string
		accept      string
		wantType    string
		wantContent string
	}{
		{name: "browser", accept: "text/html,application/xhtml+xml", wantType: "text/html", wantContent: `class="error"`},
		{name: "api client", accept: "application/json", wantType: "application/json", wantContent: dto.ErrorCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/boom", nil)
			req.Header.Set("Accept", tt.accept)

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), tt.wantType)
			assert.Contains(t, w.Body.String(), tt.wantContent)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

// TestSetupRouter_HealthWithoutDeadline keeps probes outside the request deadline.
func TestSetupRouter_HealthWithoutDeadline(t *testing.T) {
	engine := gin.New()
	health := handlers.NewHealthHandler(nil, handlers.NewBuildInfo("1.2.3", "abc", "now"))

	cfg := NewDefaultRouterConfig(discardLogger(), &config.AppConfig{Name: "test-service"}, health)
	cfg.Timeout = time.Nanosecond
	SetupRouter(engine, cfg)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/build", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var info handlers.BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "1.2.3", info.Version)
}

//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jsamuelsen/meme-generator/internal/adapters/http"
	"github.com/jsamuelsen/meme-generator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/meme-generator/internal/app"
	"github.com/jsamuelsen/meme-generator/internal/bootstrap"
	"github.com/jsamuelsen/meme-generator/internal/platform/config"
	"github.com/jsamuelsen/meme-generator/internal/ports"
)

// pipelineConfig writes quote files and a photo into a temp dir and returns a
// validated config pointing at them.
func pipelineConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()

	txt := filepath.Join(dir, "dogs.txt")
	require.NoError(t, os.WriteFile(txt, []byte(
		"\ufeffBark like no one is listening - Rex\nTo bork or not to bork - Bork\n"), 0o600))

	csvPath := filepath.Join(dir, "more.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"body,author\n\u201cChase the mailman\u201d,Skittle\nmissing author,\n"), 0o600))

	photos := filepath.Join(dir, "photos")
	require.NoError(t, os.MkdirAll(photos, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(photos, "dog.png"), pngBytes(t, 300, 150), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(photos, "notes.txt"), []byte("ignored"), 0o600))

	cfg, err := config.Load("test")
	require.NoError(t, err)

	cfg.Quotes.Sources = []string{txt, csvPath}
	cfg.Images.Dir = photos
	cfg.Meme.OutputDir = filepath.Join(dir, "static")
	cfg.Meme.Width = 200
	cfg.Meme.FontPath = filepath.Join(dir, "missing.ttf")
	cfg.Log.Level = "error"

	require.NoError(t, cfg.Validate())

	return cfg
}

func buildPipeline(t *testing.T) (*bootstrap.Components, *config.Config) {
	t.Helper()

	cfg := pipelineConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := bootstrap.Build(context.Background(), cfg, logger)
	require.NoError(t, err)

	return c, cfg
}

// TestPipeline_IngestsAllFormats loads txt and csv sources in order and
// normalizes typographic quotes.
func TestPipeline_IngestsAllFormats(t *testing.T) {
	c, _ := buildPipeline(t)

	quotes := c.Quotes.All()
	require.Len(t, quotes, 3)

	assert.Equal(t, "Bark like no one is listening", quotes[0].Body)
	assert.Equal(t, "Bork", quotes[1].Author)
	assert.Equal(t, `"Chase the mailman"`, quotes[2].Body)
	assert.Equal(t, "Skittle", quotes[2].Author)
}

// TestPipeline_GenerateWritesPNG renders a random meme end to end.
func TestPipeline_GenerateWritesPNG(t *testing.T) {
	c, cfg := buildPipeline(t)

	meme, err := c.Memes.Generate(context.Background(), app.GenerateRequest{Author: "rex"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.Meme.OutputDir, cfg.Meme.FileName), meme.Path)
	assert.Equal(t, "Bark like no one is listening\n- Rex", meme.Caption)

	f, err := os.Open(meme.Path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Width)
	assert.Equal(t, 100, img.Height)

	health := c.Health.CheckAll(context.Background())
	assert.Equal(t, ports.HealthStatusHealthy, health.Status, health.Checks)
}

// newTestServer serves a freshly built pipeline through the real router.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	c, cfg := buildPipeline(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	routes := apphttp.NewDefaultRouterConfig(logger, &cfg.App, handlers.NewHealthHandler(c.Health, handlers.BuildInfo{}))
	routes.QuoteHandler = handlers.NewQuoteHandler(c.Quotes)
	routes.MemeHandler = handlers.NewMemeHandler(c.Memes, cfg.Images.Dir)
	routes.WebHandler = handlers.NewWebHandler(c.Memes)
	routes.StaticDir = cfg.Meme.OutputDir

	engine := gin.New()
	apphttp.SetupRouter(engine, routes)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return server
}

// TestPipeline_HTTP serves the API, the pages and the rendered file through
// the real router, including concurrent requests against one output file.
func TestPipeline_HTTP(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, string(page))
	assert.Contains(t, string(page), `src="/static/meme.png?v=`)

	var wg sync.WaitGroup
	codes := make([]int, 8)

	for i := range codes {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			body := fmt.Sprintf(`{"body":"To bork or not to bork","width":%d}`, 100+i)

			resp, err := http.Post(server.URL+"/api/v1/memes", "application/json", strings.NewReader(body))
			if err != nil {
				return
			}
			defer resp.Body.Close()

			codes[i] = resp.StatusCode
		}(i)
	}

	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusCreated, code, "request %d", i)
	}

	resp, err = http.Post(server.URL+"/api/v1/memes", "application/json", strings.NewReader(`{"author":"Garfield"}`))
	require.NoError(t, err)

	var errResp struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Error.Code)
	assert.Contains(t, errResp.Error.Details, "body")

	resp, err = http.Get(server.URL + "/static/meme.png")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

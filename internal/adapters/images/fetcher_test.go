package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/meme-generator/internal/adapters/clients"
	"github.com/jsamuelsen/meme-generator/internal/domain"
	"github.com/jsamuelsen/meme-generator/internal/platform/config"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	rng := rand.New(rand.NewPCG(uint64(w), uint64(h)))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(rng.UintN(256)), G: uint8(rng.UintN(256)), B: uint8(rng.UintN(256)), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func newTestFetcher(t *testing.T, maxBytes int64) (*Fetcher, string) {
	t.Helper()

	client, err := clients.New(&clients.Config{
		ServiceName: "image-download",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   100,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
	})
	require.NoError(t, err)

	dir := t.TempDir()

	return NewFetcher(client, Config{
		MaxBytes: maxBytes,
		TempDir:  dir,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}), dir
}

func serve(t *testing.T, status int, contentType string, body []byte) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetcher_Fetch(t *testing.T) {
	data := pngBytes(t, 20, 10)
	srv := serve(t, http.StatusOK, "image/png", data)
	f, dir := newTestFetcher(t, 1<<20)

	path, release, err := f.Fetch(context.Background(), srv.URL+"/dogs/rex.PNG?size=large")
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, ".png", path[len(path)-4:])

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	release()
	assert.NoFileExists(t, path)
	assertEmptyDir(t, dir)

	assert.NotPanics(t, release, "release is idempotent")
}

func TestFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		ctype  string
		body   []byte
		max    int64
		check  func(error) bool
	}{
		{name: "not found", status: http.StatusNotFound, body: []byte("nope"), max: 1 << 20, check: domain.IsUnavailable},
		{name: "html page", status: http.StatusOK, ctype: "text/html", body: []byte("<html><body>dog</body></html>"), max: 1 << 20, check: domain.IsImageLoad},
		{name: "empty body", status: http.StatusOK, ctype: "image/png", body: nil, max: 1 << 20, check: domain.IsImageLoad},
		{name: "too large", status: http.StatusOK, ctype: "image/png", body: nil, max: 64, check: domain.IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			if tt.name == "too large" {
				body = pngBytes(t, 200, 200)
			}

			srv := serve(t, tt.status, tt.ctype, body)
			f, dir := newTestFetcher(t, tt.max)

			path, release, err := f.Fetch(context.Background(), srv.URL+"/img.png")

			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
			assert.Empty(t, path)
			require.NotNil(t, release)
			assertEmptyDir(t, dir)
		})
	}
}

func TestFetcher_Fetch_LimitAcrossSniffBoundary(t *testing.T) {
	data := pngBytes(t, 300, 300)
	require.Greater(t, len(data), sniffLen)

	srv := serve(t, http.StatusOK, "image/png", data)

	f, _ := newTestFetcher(t, int64(len(data)))
	path, release, err := f.Fetch(context.Background(), srv.URL+"/exact.png")
	require.NoError(t, err)
	defer release()
	assert.FileExists(t, path)

	f, dir := newTestFetcher(t, int64(len(data)-1))
	_, _, err = f.Fetch(context.Background(), srv.URL+"/over.png")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assertEmptyDir(t, dir)
}

func TestFetcher_Fetch_InvalidURL(t *testing.T) {
	f, _ := newTestFetcher(t, 1<<20)

	for _, u := range []string{"", "ftp://example.com/a.png", "not a url/at all"} {
		t.Run(u, func(t *testing.T) {
			_, release, err := f.Fetch(context.Background(), u)

			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.NotNil(t, release)
		})
	}
}

func TestFetcher_Fetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	f, _ := newTestFetcher(t, 1<<20)

	_, _, err := f.Fetch(context.Background(), addr+"/gone.png")
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestExtensionOf(t *testing.T) {
	tests := map[string]string{
		"https://x.test/a.jpg":        ".jpg",
		"https://x.test/a.JPEG?q=1":   ".jpeg",
		"https://x.test/a.webp#frag":  ".webp",
		"https://x.test/download":     "",
		"https://x.test/a.exe":        "",
		"https://x.test/dir.png/file": "",
	}

	for in, want := range tests {
		assert.Equal(t, want, extensionOf(in), in)
	}
}

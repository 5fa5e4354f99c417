// Package images downloads remote photographs into scoped temporary files.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/jsamuelsen/meme-generator/internal/adapters/clients"
	"github.com/jsamuelsen/meme-generator/internal/domain"
	"github.com/jsamuelsen/meme-generator/internal/platform/logging"
)

// DefaultMaxBytes caps a download when Config.MaxBytes is unset.
const DefaultMaxBytes = 10 << 20

// sniffLen is the prefix inspected by http.DetectContentType.
const sniffLen = 512

var errNotImage = errors.New("response is not an image")

// Getter performs GET requests. *clients.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, target string) (*http.Response, error)
}

// Config configures a Fetcher.
type Config struct {
	// MaxBytes bounds the downloaded body.
	MaxBytes int64

	// TempDir holds downloads. Empty means os.TempDir().
	TempDir string

	Logger *slog.Logger
}

// Fetcher implements ports.ImageFetcher over the resilient HTTP client.
type Fetcher struct {
	client   Getter
	maxBytes int64
	tempDir  string
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(client Getter, cfg Config) *Fetcher {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Fetcher{
		client:   client,
		maxBytes: cfg.MaxBytes,
		tempDir:  cfg.TempDir,
		logger:   cfg.Logger,
	}
}

// Fetch downloads rawURL and returns the local path and a release function
// that deletes it. On error nothing is left on disk and release is a no-op.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, func(), error) {
	noop := func() {}

	resp, err := f.client.Get(ctx, rawURL)
	if err != nil {
		switch {
		case errors.Is(err, clients.ErrInvalidURL):
			return "", noop, domain.NewValidationErrorWithValue("image_url", "must be an http or https URL", rawURL)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return "", noop, err
		default:
			return "", noop, domain.NewUnavailableError("image-download", err.Error())
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", noop, domain.NewUnavailableError("image-download",
			fmt.Sprintf("%s responded %d", logging.RedactURL(rawURL), resp.StatusCode))
	}

	tmp, err := os.CreateTemp(f.tempDir, "meme-src-*"+extensionOf(rawURL))
	if err != nil {
		return "", noop, fmt.Errorf("creating download file: %w", err)
	}

	name := tmp.Name()
	release := f.releaser(name)

	if err := f.copyBody(tmp, resp.Body, rawURL); err != nil {
		_ = tmp.Close()
		release()
		return "", noop, err
	}

	if err := tmp.Close(); err != nil {
		release()
		return "", noop, fmt.Errorf("closing download file: %w", err)
	}

	f.logger.DebugContext(ctx, "remote image downloaded",
		slog.String("url", logging.RedactURL(rawURL)),
		slog.String("path", name),
	)

	return name, release, nil
}

// copyBody streams at most maxBytes into dst after checking the content looks
// like an image.
func (f *Fetcher) copyBody(dst io.Writer, body io.Reader, rawURL string) error {
	head := make([]byte, sniffLen)

	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return domain.NewUnavailableError("image-download", err.Error())
	}
	head = head[:n]

	if n == 0 || !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return domain.NewImageLoadError(logging.RedactURL(rawURL), errNotImage)
	}

	if int64(n) > f.maxBytes {
		return f.tooLarge(rawURL)
	}

	if _, err := dst.Write(head); err != nil {
		return fmt.Errorf("writing download file: %w", err)
	}

	remaining := f.maxBytes - int64(n)

	written, err := io.Copy(dst, io.LimitReader(body, remaining+1))
	if err != nil {
		return domain.NewUnavailableError("image-download", err.Error())
	}

	if written > remaining {
		return f.tooLarge(rawURL)
	}

	return nil
}

func (f *Fetcher) tooLarge(rawURL string) error {
	return domain.NewValidationErrorWithValue("image_url",
		fmt.Sprintf("image exceeds %d bytes", f.maxBytes), logging.RedactURL(rawURL))
}

func (f *Fetcher) releaser(name string) func() {
	var once sync.Once

	return func() {
		once.Do(func() {
			if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
				f.logger.Warn("failed to remove downloaded image",
					slog.String("path", name),
					slog.String("error", err.Error()),
				)
			}
		})
	}
}

// extensionOf keeps a recognizable image extension so the temp file name is
// self-describing. Decoding never depends on it.
func extensionOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	switch ext := strings.ToLower(path.Ext(u.Path)); ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".tif", ".tiff":
		return ext
	default:
		return ""
	}
}


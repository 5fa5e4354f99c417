package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jsamuelsen/meme-generator/internal/domain"
	"github.com/jsamuelsen/meme-generator/internal/ports"
)

var errEmptyArtifact = errors.New("rendered file is empty")

// GenerateRequest is a partially specified meme. Empty fields are resolved:
// ImagePath, then ImageURL, then a random catalog image; a random quote when
// both Body and Author are empty, otherwise the missing half is looked up.
type GenerateRequest struct {
	ImagePath string
	ImageURL  string
	Body      string
	Author    string
	Width     int

	// ImageRoot confines ImagePath when set: a relative ImagePath is taken
	// relative to it and a path outside it is rejected.
	ImageRoot string
}

// Normalized treats form placeholders ("", " ", "-") as absent and trims
// every text field.
func (r GenerateRequest) Normalized() GenerateRequest {
	return GenerateRequest{
		ImagePath: placeholder(r.ImagePath),
		ImageURL:  placeholder(r.ImageURL),
		Body:      placeholder(r.Body),
		Author:    placeholder(r.Author),
		Width:     r.Width,
		ImageRoot: r.ImageRoot,
	}
}

func placeholder(s string) string {
	s = strings.TrimSpace(s)
	if s == "-" {
		return ""
	}

	return s
}

// MemeService composes memes from the catalog, remote images and quotes.
// Quotes and images are resolved concurrently; rendering and verifying the
// output are serialized because every meme is written to the same file.
type MemeService struct {
	renderer ports.MemeRenderer
	catalog  ports.ImageCatalog
	fetcher  ports.ImageFetcher
	quotes   ports.QuoteFinder
	exec     *Executor
	logger   *slog.Logger
	intN     func(int) int

	mu sync.Mutex
}

// MemeServiceConfig contains configuration for the meme service.
type MemeServiceConfig struct {
	// Renderer draws and persists the meme. Required.
	Renderer ports.MemeRenderer

	// Quotes resolves missing caption halves. Required.
	Quotes ports.QuoteFinder

	// Catalog supplies random images. Nil disables random images.
	Catalog ports.ImageCatalog

	// Fetcher downloads ImageURL. Nil disables remote images.
	Fetcher ports.ImageFetcher

	Logger *slog.Logger

	// IntN picks a random index in [0, n). Defaults to math/rand/v2.IntN.
	IntN func(n int) int
}

// NewMemeService creates a meme service. It panics without a Renderer or
// Quotes.
func NewMemeService(cfg MemeServiceConfig) *MemeService {
	if cfg.Renderer == nil {
		panic("app: MemeService requires a MemeRenderer")
	}

	if cfg.Quotes == nil {
		panic("app: MemeService requires a QuoteFinder")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.IntN == nil {
		cfg.IntN = rand.IntN
	}

	logger := cfg.Logger.With(slog.String("component", "meme_service"))

	return &MemeService{
		renderer: cfg.Renderer,
		catalog:  cfg.Catalog,
		fetcher:  cfg.Fetcher,
		quotes:   cfg.Quotes,
		exec:     NewExecutor(logger),
		logger:   logger,
		intN:     cfg.IntN,
	}
}

// Generate resolves req into a full MemeRequest and renders it.
func (s *MemeService) Generate(ctx context.Context, req GenerateRequest) (*domain.Meme, error) {
	req = req.Normalized()

	meme, err := Execute(ctx, s.exec, Operation[GenerateRequest, *domain.Meme, *domain.Meme, *domain.Meme]{
		Name:     "generate_meme",
		Validate: s.validate,
		Perform:  s.perform,
		Verify:   verifyArtifact,
	}, req)
	if err != nil {
		return nil, fmt.Errorf("generating meme: %w", err)
	}

	return meme, nil
}

func (s *MemeService) validate(_ context.Context, req GenerateRequest) error {
	if req.Width < 0 {
		return domain.NewValidationErrorWithValue("width", "must not be negative", req.Width)
	}

	if req.ImagePath == "" && req.ImageURL != "" && s.fetcher == nil {
		return domain.NewValidationError("image_url", "remote images are disabled")
	}

	if req.ImagePath == "" && req.ImageURL == "" && s.catalog == nil {
		return domain.NewValidationError("image_path", "required when no image catalog is configured")
	}

	if req.ImagePath != "" && req.ImageRoot != "" {
		if _, err := confinePath(req.ImageRoot, req.ImagePath); err != nil {
			return err
		}
	}

	return nil
}

func (s *MemeService) perform(ctx context.Context, req GenerateRequest) (*domain.Meme, error) {
	body, author, err := s.resolveQuote(req.Body, req.Author)
	if err != nil {
		return nil, err
	}

	path, release, err := s.resolveImage(ctx, req)
	if err != nil {
		return nil, err
	}
	defer release()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.renderer.MakeMeme(ctx, domain.MemeRequest{
		ImagePath: path,
		Body:      body,
		Author:    author,
		Width:     req.Width,
	})
}

// verifyArtifact checks the rendered file exists and is non-empty. The
// renderer replaces the file by rename, so a concurrent render never leaves
// it partially written.
func verifyArtifact(_ context.Context, _ GenerateRequest, meme *domain.Meme) (*domain.Meme, error) {
	info, err := os.Stat(meme.Path)
	if err != nil {
		return nil, domain.NewImageWriteError(meme.Path, err)
	}

	if info.Size() == 0 {
		return nil, domain.NewImageWriteError(meme.Path, errEmptyArtifact)
	}

	return meme, nil
}

// resolveQuote completes a caption. An unmatched half is a validation error
// naming the field that could not be filled.
func (s *MemeService) resolveQuote(body, author string) (string, string, error) {
	switch {
	case body != "" && author != "":
		return body, author, nil

	case body != "":
		q, err := s.quotes.FindByBody(body)
		if err != nil {
			if domain.IsNotFound(err) {
				return "", "", domain.NewValidationErrorWithValue("author", "no known quote matches body", body)
			}
			return "", "", err
		}
		return body, q.Author, nil

	case author != "":
		q, err := s.quotes.FindByAuthor(author)
		if err != nil {
			if domain.IsNotFound(err) {
				return "", "", domain.NewValidationErrorWithValue("body", "no known quote by author", author)
			}
			return "", "", err
		}
		return q.Body, author, nil

	default:
		q, err := s.quotes.Random()
		if err != nil {
			return "", "", err
		}
		return q.Body, q.Author, nil
	}
}

// resolveImage returns a local image path and a release function that is
// never nil.
func (s *MemeService) resolveImage(ctx context.Context, req GenerateRequest) (string, func(), error) {
	noop := func() {}

	switch {
	case req.ImagePath != "" && req.ImageRoot != "":
		path, err := confinePath(req.ImageRoot, req.ImagePath)
		return path, noop, err

	case req.ImagePath != "":
		return req.ImagePath, noop, nil

	case req.ImageURL != "":
		return s.fetcher.Fetch(ctx, req.ImageURL)

	default:
		paths, err := s.catalog.List(ctx)
		if err != nil {
			return "", noop, err
		}

		path := paths[s.intN(len(paths))]
		s.logger.DebugContext(ctx, "picked random image", slog.String("path", path))

		return path, noop, nil
	}
}

// confinePath resolves path against root and rejects it unless it names
// something inside root.
func confinePath(root, path string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving image root: %w", err)
	}

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(rootAbs, target)
	}

	target = filepath.Clean(target)

	rel, err := filepath.Rel(rootAbs, target)
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return "", domain.NewValidationErrorWithValue("image_path", "must name a file inside the image directory", path)
	}

	return target, nil
}

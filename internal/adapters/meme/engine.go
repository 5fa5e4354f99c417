// Package meme implements the image compositor: it resizes a photograph,
// draws a two-line caption near the bottom edge and writes the result as PNG.
package meme

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Decoders for the supported source formats.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/jsamuelsen/meme-generator/internal/domain"
	"github.com/jsamuelsen/meme-generator/internal/platform/telemetry"
)

// Defaults applied by NewEngine to zero-valued Config fields.
const (
	DefaultFileName = "meme.png"
	DefaultFontPath = "arial.ttf"
	DefaultFontSize = 20
	DefaultMargin   = 10
)

// maxSourcePixels bounds the decoded size of a source image and
// maxOutputPixels the canvas it is scaled onto.
const (
	maxSourcePixels = 64 << 20
	maxOutputPixels = 40 << 20
)

// Config contains compositor settings.
type Config struct {
	// OutputDir receives rendered memes. Created on demand.
	OutputDir string

	// FileName is the fixed name of the rendered file inside OutputDir.
	FileName string

	// Width is the default target width.
	Width int

	// FontPath points at a TrueType or OpenType font.
	FontPath string

	// FontSize is in pixels.
	FontSize float64

	// Margin is the distance between the last baseline and the bottom edge.
	// Zero means DefaultMargin.
	Margin int
}

// Engine renders memes. It is safe for concurrent use, but concurrent
// renders into the same OutputDir overwrite one another.
type Engine struct {
	cfg      Config
	typeface *typeface
	metrics  *telemetry.PipelineMetrics
	logger   *slog.Logger
}

// NewEngine creates a compositor. A font that cannot be loaded is logged and
// replaced by a built-in bitmap face.
func NewEngine(cfg Config, metrics *telemetry.PipelineMetrics, logger *slog.Logger) *Engine {
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(os.TempDir(), "memes")
	}

	if cfg.FileName == "" {
		cfg.FileName = DefaultFileName
	}

	if cfg.Width <= 0 {
		cfg.Width = domain.DefaultMemeWidth
	}

	if cfg.FontSize <= 0 {
		cfg.FontSize = DefaultFontSize
	}

	if cfg.Margin <= 0 {
		cfg.Margin = DefaultMargin
	}

	if logger == nil {
		logger = slog.Default()
	}

	tf, err := loadTypeface(cfg.FontPath, cfg.FontSize)
	if err != nil {
		logger.Warn("using fallback font",
			slog.String("font_path", cfg.FontPath),
			slog.String("error", err.Error()),
		)
	}

	return &Engine{
		cfg:      cfg,
		typeface: tf,
		metrics:  metrics,
		logger:   logger,
	}
}

// OutputPath returns the path every render is written to.
func (e *Engine) OutputPath() string {
	return filepath.Join(e.cfg.OutputDir, e.cfg.FileName)
}

// MakeMeme renders req and writes it to OutputPath.
func (e *Engine) MakeMeme(ctx context.Context, req domain.MemeRequest) (meme *domain.Meme, err error) {
	start := time.Now()
	defer func() { e.metrics.RecordRender(ctx, time.Since(start), err) }()

	req.Body = domain.Normalize(req.Body)
	req.Author = domain.Normalize(req.Author)

	if err := validate(&req, e.cfg.Width); err != nil {
		return nil, err
	}

	src, err := decodeImage(req.ImagePath)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	height := scaledHeight(bounds.Dx(), bounds.Dy(), req.Width)
	if height < 1 {
		height = 1
	}

	if int64(req.Width)*int64(height) > maxOutputPixels {
		return nil, domain.NewValidationErrorWithValue("width",
			fmt.Sprintf("scaled image of %dx%d exceeds %d pixels", req.Width, height, maxOutputPixels), req.Width)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, req.Width, height))
	xdraw.BiLinear.Scale(canvas, canvas.Bounds(), src, bounds, xdraw.Src, nil)

	lines := req.Caption()

	face, release := e.typeface.face()
	defer release()

	layout := layoutCaption(face, lines, req.Width, height, e.cfg.Margin)
	drawCaption(canvas, face, lines, layout)

	out := e.OutputPath()
	if err := writePNG(canvas, out); err != nil {
		return nil, err
	}

	e.logger.DebugContext(ctx, "meme rendered",
		slog.String("source", req.ImagePath),
		slog.String("path", out),
		slog.Int("width", req.Width),
		slog.Int("height", height),
	)

	return &domain.Meme{
		Path:    out,
		Source:  req.ImagePath,
		Width:   req.Width,
		Height:  height,
		Caption: strings.Join(lines, "\n"),
	}, nil
}

func validate(req *domain.MemeRequest, defaultWidth int) error {
	if req.Body == "" {
		return domain.NewValidationError("body", "must not be empty")
	}

	if req.Author == "" {
		return domain.NewValidationError("author", "must not be empty")
	}

	if req.ImagePath == "" {
		return domain.NewValidationError("path", "must not be empty")
	}

	switch {
	case req.Width == 0:
		req.Width = defaultWidth
	case req.Width < 0:
		return domain.NewValidationErrorWithValue("width", "must be positive", req.Width)
	case req.Width > maxOutputPixels:
		return domain.NewValidationErrorWithValue("width", "too large", req.Width)
	}

	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewImageLoadError(path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, domain.NewImageLoadError(path, err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, domain.NewImageLoadError(path, errors.New("image has no pixels"))
	}

	if cfg.Width*cfg.Height > maxSourcePixels {
		return nil, domain.NewImageLoadError(path,
			fmt.Errorf("image of %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxSourcePixels))
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, domain.NewImageLoadError(path, err)
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, domain.NewImageLoadError(path, err)
	}

	return img, nil
}

func drawCaption(dst xdraw.Image, face font.Face, lines []string, layout captionLayout) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
	}

	for i, line := range lines {
		d.Dot = fixed.P(layout.X, layout.Baselines[i])
		d.DrawString(line)
	}
}

// writePNG encodes img next to path and renames it into place so readers
// never observe a partial file.
func writePNG(img image.Image, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewImageWriteError(path, err)
	}

	tmp, err := os.CreateTemp(dir, ".meme-*.png")
	if err != nil {
		return domain.NewImageWriteError(path, err)
	}

	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := png.Encode(tmp, img); err != nil {
		_ = tmp.Close()
		return domain.NewImageWriteError(path, err)
	}

	if err := tmp.Close(); err != nil {
		return domain.NewImageWriteError(path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return domain.NewImageWriteError(path, err)
	}

	committed = true

	return nil
}

// Name implements ports.HealthChecker.
func (e *Engine) Name() string {
	return "output-dir"
}

// Check verifies that the output directory is writable.
func (e *Engine) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(e.cfg.OutputDir, 0o755); err != nil {
		return domain.NewUnavailableError("output-dir", err.Error())
	}

	probe, err := os.CreateTemp(e.cfg.OutputDir, ".probe-*")
	if err != nil {
		return domain.NewUnavailableError("output-dir", err.Error())
	}

	name := probe.Name()
	_ = probe.Close()

	return os.Remove(name)
}

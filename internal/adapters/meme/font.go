package meme

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// fontDPI is fixed so that the configured size is in pixels.
const fontDPI = 72

// fallbackFace is used whenever the preferred font cannot be loaded.
var fallbackFace font.Face = basicfont.Face7x13

// typeface produces faces for rendering. The parsed font is shared; a new
// face is created per render because opentype faces are not safe for
// concurrent use.
type typeface struct {
	font *opentype.Font
	size float64
}

// loadTypeface parses the font at path. Any failure is returned so the caller
// can log it; rendering then uses the fallback face.
func loadTypeface(path string, size float64) (*typeface, error) {
	if path == "" {
		return nil, fmt.Errorf("no font configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}

	return &typeface{font: f, size: size}, nil
}

// face returns a ready-to-use face and a release function.
// A nil typeface, or one that fails to build a face, yields the fallback.
func (t *typeface) face() (font.Face, func()) {
	if t == nil {
		return fallbackFace, func() {}
	}

	f, err := opentype.NewFace(t.font, &opentype.FaceOptions{
		Size:    t.size,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fallbackFace, func() {}
	}

	return f, func() { _ = f.Close() }
}

package meme

import (
	"golang.org/x/image/font"
)

// scaledHeight returns round(width*srcH/srcW) using integer arithmetic.
func scaledHeight(srcW, srcH, width int) int {
	if srcW <= 0 {
		return 0
	}

	return (2*width*srcH + srcW) / (2 * srcW)
}

// captionLayout positions caption lines on an image.
type captionLayout struct {
	// X is the left edge shared by all lines. It is negative when the
	// caption is wider than the image.
	X int

	// Baselines holds the baseline y of each line, top to bottom.
	Baselines []int

	// Width and Height are the dimensions of the text block.
	Width  int
	Height int
}

// layoutCaption centers the text block horizontally and places the last
// baseline margin pixels above the bottom edge. Lines are left-aligned
// within the block and never wrapped.
func layoutCaption(face font.Face, lines []string, imgW, imgH, margin int) captionLayout {
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()

	width := 0
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > width {
			width = w
		}
	}

	n := len(lines)
	last := imgH - margin

	baselines := make([]int, n)
	for i := range baselines {
		baselines[i] = last - (n-1-i)*lineHeight
	}

	height := 0
	if n > 0 {
		height = (n-1)*lineHeight + ascent + descent
	}

	return captionLayout{
		X:         (imgW - width) / 2,
		Baselines: baselines,
		Width:     width,
		Height:    height,
	}
}

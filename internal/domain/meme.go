package domain

// DefaultMemeWidth is the rendered width used when a request does not set one.
const DefaultMemeWidth = 500

// MemeRequest describes one composition: a source image and its caption.
type MemeRequest struct {
	// ImagePath is the local path of the source photograph.
	ImagePath string

	// Body is the quote text drawn on the first caption line.
	Body string

	// Author is drawn on the second caption line as "- Author".
	Author string

	// Width is the target width. Zero means DefaultMemeWidth.
	Width int
}

// Caption returns the two caption lines drawn onto the image.
func (r MemeRequest) Caption() []string {
	return []string{r.Body, "- " + r.Author}
}

// Meme is a rendered artifact persisted by the compositor.
type Meme struct {
	// Path is where the rendered image was written.
	Path string

	// Source is the image the meme was rendered from.
	Source string

	// Width and Height are the rendered dimensions.
	Width  int
	Height int

	// Caption is the text actually drawn, lines joined by "\n".
	Caption string
}

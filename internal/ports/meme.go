package ports

import (
	"context"

	"github.com/jsamuelsen/meme-generator/internal/domain"
)

// MemeRenderer composites a caption onto an image and persists the result.
type MemeRenderer interface {
	// MakeMeme renders req and returns the persisted artifact.
	// Returns domain.ErrValidation for an empty caption, domain.ErrImageLoad
	// when the source cannot be decoded and domain.ErrImageWrite when the
	// output cannot be written.
	MakeMeme(ctx context.Context, req domain.MemeRequest) (*domain.Meme, error)
}

// ImageCatalog lists the local photographs available for random selection.
type ImageCatalog interface {
	// List returns image paths in a stable order.
	// Returns domain.ErrNotFound if the catalog holds no images.
	List(ctx context.Context) ([]string, error)
}

// ImageFetcher downloads a remote image to a local temporary file.
type ImageFetcher interface {
	// Fetch stores the image at url locally and returns its path together
	// with a release function that removes it. release is never nil and is
	// safe to call more than once.
	// Returns domain.ErrUnavailable if the remote host cannot serve the image.
	Fetch(ctx context.Context, url string) (path string, release func(), err error)
}

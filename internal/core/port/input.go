package port

import (
	"context"
	"thumbs3/internal/core/domain"
)

type InputResolver interface {
	// Resolve turns a local path or a URL into a readable local file, downloading it if needed.
	Resolve(ctx context.Context, arg string) (domain.SourceImage, error)
}

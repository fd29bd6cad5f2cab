package port

import "context"

type ImageRenderer interface {
	// Render decodes the image at srcPath, scales it to fit inside width x height while keeping its aspect ratio and
	// writes it as JPEG to dstPath, creating missing parent directories. A zero width and height skips scaling.
	// It returns the dimensions of the written image.
	Render(ctx context.Context, srcPath, dstPath string, width, height uint) (int, int, error)
	// Inspect returns the dimensions of the image at path without rendering it.
	Inspect(ctx context.Context, path string) (int, int, error)
}

package converter

import (
	"context"
	"fmt"
	"image"
	"os"
)

func (n *NativeConverter) Inspect(_ context.Context, path string) (int, int, error) {
	return decodeSize(path)
}

func (m *MagickConverter) Inspect(_ context.Context, path string) (int, int, error) {
	return decodeSize(path)
}

func decodeSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("error opening image %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("error reading image header %w", err)
	}

	return cfg.Width, cfg.Height, nil
}

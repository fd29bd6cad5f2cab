package converter

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	// decoders available to the native renderer
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// NativeConverter renders thumbnails in-process with a Catmull-Rom resampler.
type NativeConverter struct {
	quality int
}

func NewNativeConverter(quality int) *NativeConverter {
	return &NativeConverter{quality: quality}
}

func (n *NativeConverter) Render(ctx context.Context, srcPath, dstPath string, width, height uint) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return 0, 0, fmt.Errorf("error opening source image %w", err)
	}
	defer in.Close()

	src, format, err := image.Decode(in)
	if err != nil {
		return 0, 0, fmt.Errorf("error decoding source image %w", err)
	}

	bounds := src.Bounds()
	w, h := FitWithin(bounds.Dx(), bounds.Dy(), width, height)

	log.Debug().
		Str("format", format).
		Int("srcWidth", bounds.Dx()).
		Int("srcHeight", bounds.Dy()).
		Int("width", w).
		Int("height", h).
		Msg("rendering thumbnail")

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha channel, transparent areas end up white
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(canvas, canvas.Bounds(), src, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), src, bounds, draw.Over, nil)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return 0, 0, fmt.Errorf("error creating directory for %s: %w", dstPath, err)
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return 0, 0, fmt.Errorf("error creating thumbnail file %w", err)
	}

	if err := jpeg.Encode(out, canvas, &jpeg.Options{Quality: n.quality}); err != nil {
		out.Close()
		return 0, 0, fmt.Errorf("error encoding thumbnail %w", err)
	}

	if err := out.Close(); err != nil {
		return 0, 0, fmt.Errorf("error writing thumbnail %w", err)
	}

	return w, h, nil
}

// FitWithin returns the largest size with the aspect ratio of srcW x srcH that fits inside boxW x boxH.
// A zero box side leaves that axis unbounded and images are never enlarged.
func FitWithin(srcW, srcH int, boxW, boxH uint) (int, int) {
	if srcW <= 0 || srcH <= 0 || (boxW == 0 && boxH == 0) {
		return srcW, srcH
	}

	scale := 1.0
	if boxW > 0 {
		scale = math.Min(scale, float64(boxW)/float64(srcW))
	}
	if boxH > 0 {
		scale = math.Min(scale, float64(boxH)/float64(srcH))
	}

	if scale >= 1 {
		return srcW, srcH
	}

	return fitSide(srcW, scale, boxW), fitSide(srcH, scale, boxH)
}

func fitSide(side int, scale float64, box uint) int {
	v := int(math.Round(float64(side) * scale))
	if box > 0 && v > int(box) {
		v = int(box)
	}
	if v < 1 {
		v = 1
	}
	return v
}

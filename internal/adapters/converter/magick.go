package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// MagickConverter renders thumbnails by shelling out to ImageMagick.
type MagickConverter struct {
	magickBinary []string
	quality      int
}

func NewMagickConverter(quality int) (*MagickConverter, error) {
	eh := &MagickConverter{quality: quality}
	commands := [][]string{{"magick", "convert", "-version"}, {"convert", "-version"}}

	for _, command := range commands {
		_, err := exec.Command(command[0], command[1:]...).Output()
		if err != nil {
			log.Debug().Strs("commands", command).Msg("binary not found")
			continue
		}

		log.Debug().Strs("commands", command).Msg("binary found")
		eh.magickBinary = command[:len(command)-1]
		break
	}

	if len(eh.magickBinary) == 0 {
		return nil, errors.New("magick binary not available")
	}

	return eh, nil
}

func (m *MagickConverter) Render(ctx context.Context, srcPath, dstPath string, width, height uint) (int, int, error) {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return 0, 0, fmt.Errorf("error creating directory for %s: %w", dstPath, err)
	}

	args := make([]string, 0, len(m.magickBinary)+12)
	args = append(args, m.magickBinary...)
	// first frame only, flattened onto white
	args = append(args, srcPath+"[0]", "-background", "white", "-alpha", "remove", "-alpha", "off")

	if geometry := Geometry(width, height); geometry != "" {
		args = append(args, "-resize", geometry)
	}

	args = append(args, "-quality", fmt.Sprintf("%d", m.quality), "jpeg:"+dstPath)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Error().Bytes("magickStderr", out).Msg("magick commands failed")
		return 0, 0, fmt.Errorf("magick failed: %w", err)
	}

	log.Debug().Msg("magick commands finished")

	return decodeSize(dstPath)
}

// Geometry returns an ImageMagick shrink-only geometry for the box, or "" when no resize is requested.
func Geometry(width, height uint) string {
	switch {
	case width == 0 && height == 0:
		return ""
	case height == 0:
		return fmt.Sprintf("%dx>", width)
	case width == 0:
		return fmt.Sprintf("x%d>", height)
	default:
		return fmt.Sprintf("%dx%d>", width, height)
	}
}

package converter

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometry(t *testing.T) {
	tests := []struct {
		name   string
		width  uint
		height uint
		want   string
	}{
		{name: "no resize", width: 0, height: 0, want: ""},
		{name: "box", width: 100, height: 75, want: "100x75>"},
		{name: "width only", width: 100, height: 0, want: "100x>"},
		{name: "height only", width: 0, height: 75, want: "x75>"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Geometry(tc.width, tc.height))
		})
	}
}

func TestMagickRender(t *testing.T) {
	_, errMagick := exec.LookPath("magick")
	_, errConvert := exec.LookPath("convert")
	if errMagick != nil && errConvert != nil {
		t.Skip("imagemagick not installed")
	}

	c, err := NewMagickConverter(80)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "cat.png")
	writePNG(t, src, 800, 600)

	dst := filepath.Join(t.TempDir(), "nested", "cat.jpg")

	w, h, err := c.Render(t.Context(), src, dst, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, w)
	assert.Equal(t, 75, h)
}

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() Options {
	return Options{
		Key:    "key",
		Secret: "secret",
		Bucket: "bucket",
		UseSSL: true,
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig(validOptions())
	require.NoError(t, err)

	assert.Equal(t, OutputText, cfg.Output)
	assert.Equal(t, RendererNative, cfg.Renderer)
	assert.Equal(t, DefaultJPEGQuality, cfg.JPEGQuality)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Empty(t, cfg.Thumbnails)
}

func TestNewConfigParsesThumbnails(t *testing.T) {
	opts := validOptions()
	opts.ThumbSizes = []string{"100x100:$-thumb.jpg", "0x0:originals/$.jpg"}

	cfg, err := NewConfig(opts)
	require.NoError(t, err)

	require.Len(t, cfg.Thumbnails, 2)
	assert.Equal(t, ThumbnailSpec{Width: 100, Height: 100, Template: "$-thumb.jpg"}, cfg.Thumbnails[0])
	assert.True(t, cfg.Thumbnails[1].Passthrough())
}

func TestNewConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
	}{
		{
			name:   "missing key",
			mutate: func(o *Options) { o.Key = "" },
		},
		{
			name:   "missing secret",
			mutate: func(o *Options) { o.Secret = " " },
		},
		{
			name:   "missing bucket",
			mutate: func(o *Options) { o.Bucket = "" },
		},
		{
			name:   "unknown output",
			mutate: func(o *Options) { o.Output = "xml" },
		},
		{
			name:   "post without callback",
			mutate: func(o *Options) { o.Output = "post" },
		},
		{
			name: "post with relative callback",
			mutate: func(o *Options) {
				o.Output = "post"
				o.CallbackURL = "/hook"
			},
		},
		{
			name:   "malformed thumbnail",
			mutate: func(o *Options) { o.ThumbSizes = []string{"100x100:ok.jpg", "abcx10:file"} },
		},
		{
			name:   "unknown renderer",
			mutate: func(o *Options) { o.Renderer = "gimp" },
		},
		{
			name:   "quality out of range",
			mutate: func(o *Options) { o.JPEGQuality = 101 },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := validOptions()
			tc.mutate(&opts)

			_, err := NewConfig(opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
			assert.Equal(t, ExitFatal, ExitCode(err))
		})
	}
}

func TestNewConfigPost(t *testing.T) {
	opts := validOptions()
	opts.Output = "POST"
	opts.CallbackURL = "https://example.com/hook"

	cfg, err := NewConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, OutputPost, cfg.Output)
	assert.Equal(t, "https://example.com/hook", cfg.CallbackURL)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitDownload, ExitCode(fmt.Errorf("%w: boom", ErrDownload)))
	assert.Equal(t, ExitFatal, ExitCode(fmt.Errorf("%w: boom", ErrRender)))
	assert.Equal(t, ExitFatal, ExitCode(fmt.Errorf("%w: boom", ErrCallback)))
	assert.Equal(t, ExitFatal, ExitCode(fmt.Errorf("%w: boom", ErrStorage)))
	assert.Equal(t, ExitFatal, ExitCode(errors.New("unknown")))
}

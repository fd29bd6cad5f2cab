package domain

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultEndpoint    = "s3.amazonaws.com"
	DefaultRegion      = "us-east-1"
	DefaultJPEGQuality = 75
)

// Options holds the raw, unvalidated settings collected from flags, env and config file.
type Options struct {
	Key            string
	Secret         string
	Bucket         string
	Endpoint       string
	Region         string
	UseSSL         bool
	TempFolder     string
	KeepTemp       bool
	UploadOriginal bool
	ThumbSizes     []string
	Output         string
	CallbackURL    string
	Renderer       string
	JPEGQuality    int
}

// Config is the validated settings of a single run. It is built once by NewConfig and never mutated.
type Config struct {
	Key            string
	Secret         string
	Bucket         string
	Endpoint       string
	Region         string
	UseSSL         bool
	TempFolder     string
	KeepTemp       bool
	UploadOriginal bool
	Thumbnails     []ThumbnailSpec
	Output         OutputFormat
	CallbackURL    string
	Renderer       RendererKind
	JPEGQuality    int
}

// NewConfig validates every option and returns the resulting Config. No I/O is performed.
func NewConfig(opts Options) (Config, error) {
	if strings.TrimSpace(opts.Key) == "" {
		return Config{}, fmt.Errorf("%w: no access key specified", ErrConfig)
	}
	if strings.TrimSpace(opts.Secret) == "" {
		return Config{}, fmt.Errorf("%w: no secret key specified", ErrConfig)
	}
	if strings.TrimSpace(opts.Bucket) == "" {
		return Config{}, fmt.Errorf("%w: no bucket specified", ErrConfig)
	}

	output := OutputFormat(strings.ToLower(strings.TrimSpace(opts.Output)))
	if output == "" {
		output = OutputText
	}

	switch output {
	case OutputText, OutputJSON:
	case OutputPost:
		if opts.CallbackURL == "" {
			return Config{}, fmt.Errorf("%w: callback url shall be specified for post output type", ErrConfig)
		}
		u, err := url.Parse(opts.CallbackURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return Config{}, fmt.Errorf("%w: invalid callback url %q", ErrConfig, opts.CallbackURL)
		}
	default:
		return Config{}, fmt.Errorf("%w: unknown output format %q, expected text, json or post", ErrConfig, opts.Output)
	}

	renderer := RendererKind(strings.ToLower(strings.TrimSpace(opts.Renderer)))
	if renderer == "" {
		renderer = RendererNative
	}
	if renderer != RendererNative && renderer != RendererMagick {
		return Config{}, fmt.Errorf("%w: unknown renderer %q, expected native or magick", ErrConfig, opts.Renderer)
	}

	quality := opts.JPEGQuality
	if quality == 0 {
		quality = DefaultJPEGQuality
	}
	if quality < 1 || quality > 100 {
		return Config{}, fmt.Errorf("%w: jpeg quality must be between 1 and 100, got %d", ErrConfig, quality)
	}

	thumbnails := make([]ThumbnailSpec, 0, len(opts.ThumbSizes))
	for _, raw := range opts.ThumbSizes {
		spec, err := ParseThumbnailSpec(strings.TrimSpace(raw))
		if err != nil {
			return Config{}, err
		}
		thumbnails = append(thumbnails, spec)
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = DefaultRegion
	}

	return Config{
		Key:            opts.Key,
		Secret:         opts.Secret,
		Bucket:         opts.Bucket,
		Endpoint:       endpoint,
		Region:         region,
		UseSSL:         opts.UseSSL,
		TempFolder:     opts.TempFolder,
		KeepTemp:       opts.KeepTemp,
		UploadOriginal: opts.UploadOriginal,
		Thumbnails:     thumbnails,
		Output:         output,
		CallbackURL:    opts.CallbackURL,
		Renderer:       renderer,
		JPEGQuality:    quality,
	}, nil
}

package file

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"thumbs3/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// Resolver turns the command line argument into a local source image.
type Resolver struct {
	tempDir string
	client  *http.Client
}

// NewResolver returns a Resolver that stores downloaded images in tempDir, or os.TempDir() when empty.
func NewResolver(tempDir string) *Resolver {
	return &Resolver{tempDir: tempDir, client: &http.Client{}}
}

func (r *Resolver) Resolve(ctx context.Context, arg string) (domain.SourceImage, error) {
	if IsRegularFile(arg) {
		name := filepath.Base(arg)
		log.Debug().Str("path", arg).Msg("using local source file")

		return domain.SourceImage{
			Path:     arg,
			Origin:   domain.Local,
			BaseName: trimExt(name),
			Filename: name,
		}, nil
	}

	u, err := url.Parse(arg)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.SourceImage{}, fmt.Errorf("%w: %q is neither a local file nor an http(s) url", domain.ErrDownload, arg)
	}

	name := FilenameFromURL(arg)

	p, err := r.download(ctx, arg, strings.ToLower(path.Ext(name)))
	if err != nil {
		return domain.SourceImage{}, fmt.Errorf("%w: %s: %w", domain.ErrDownload, arg, err)
	}

	return domain.SourceImage{
		Path:     p,
		Origin:   domain.Remote,
		BaseName: trimExt(name),
		Filename: name,
	}, nil
}

// download streams the body of rawURL into a fresh temp file and returns its path. Nothing is left on disk on failure.
func (r *Resolver) download(ctx context.Context, rawURL, extension string) (string, error) {
	l := log.With().Str("url", rawURL).Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request %w", err)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error executing request %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		l.Error().Int("status", res.StatusCode).Msg("source download rejected")
		return "", fmt.Errorf("unexpected status code on download: %d", res.StatusCode)
	}

	f, err := CreateTempFile(r.tempDir, extension)
	if err != nil {
		return "", err
	}

	n, err := io.Copy(f, res.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("error saving download %w", err)
	}

	l.Debug().Int64("bytes", n).Str("path", f.Name()).Msg("downloaded source image")

	return f.Name(), nil
}

// FilenameFromURL returns the last path segment of a percent-decoded URL.
func FilenameFromURL(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}

	u, err := url.Parse(decoded)
	if err != nil {
		return ""
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}

	return name
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"thumbs3/internal/core/domain"
	"thumbs3/internal/core/port"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StoreConnector opens the object store. It is called once per run, after the source has been resolved.
type StoreConnector func(ctx context.Context) (port.ObjectStore, error)

// Pipeline resolves one source image, renders and uploads its thumbnails and reports the uploads.
type Pipeline struct {
	cfg      domain.Config
	resolver port.InputResolver
	renderer port.ImageRenderer
	connect  StoreConnector
	reporter port.Reporter
}

func NewPipeline(cfg domain.Config, resolver port.InputResolver, renderer port.ImageRenderer, connect StoreConnector,
	reporter port.Reporter) *Pipeline {
	return &Pipeline{cfg: cfg, resolver: resolver, renderer: renderer, connect: connect, reporter: reporter}
}

// Run processes arg end to end. Only upload failures are recovered, any other error aborts the run and is returned
// after temporary files have been cleaned up.
func (p *Pipeline) Run(ctx context.Context, arg string) error {
	l := log.With().Str("input", arg).Logger()

	source, err := p.resolver.Resolve(ctx, arg)
	if err != nil {
		return err
	}
	if source.Origin == domain.Remote && !p.cfg.KeepTemp {
		defer removeFile(source.Path)
	}

	l.Info().Str("path", source.Path).Str("origin", string(source.Origin)).Msg("resolved source image")

	root, err := p.stagingRoot()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRender, err)
	}
	if !p.cfg.KeepTemp {
		defer removeDir(root)
	}

	store, err := p.connect(ctx)
	if err != nil {
		return fmt.Errorf("%w: check your key/secret and bucket name: %w", domain.ErrStorage, err)
	}

	records := make([]domain.UploadRecord, 0, len(p.cfg.Thumbnails)+1)

	if p.cfg.UploadOriginal {
		rec, ok, err := p.uploadOriginal(ctx, l, store, source)
		if err != nil {
			return err
		}
		if ok {
			records = append(records, rec)
		}
	}

	for _, spec := range p.cfg.Thumbnails {
		rec, ok, err := p.processThumbnail(ctx, l, store, source, root, spec)
		if err != nil {
			return err
		}
		if ok {
			records = append(records, rec)
		}
	}

	l.Info().Int("uploaded", len(records)).Str("output", string(p.cfg.Output)).Msg("reporting results")

	return p.reporter.Report(ctx, records)
}

func (p *Pipeline) processThumbnail(ctx context.Context, l zerolog.Logger, store port.ObjectStore,
	source domain.SourceImage, root string, spec domain.ThumbnailSpec) (domain.UploadRecord, bool, error) {
	key := domain.ExpandTemplate(spec.Template, source.BaseName)
	sl := l.With().Str("key", key).Uint("width", spec.Width).Uint("height", spec.Height).Logger()

	if err := validateKey(key); err != nil {
		return domain.UploadRecord{}, false, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}

	thumb := domain.RenderedThumbnail{
		Path: filepath.Join(root, filepath.FromSlash(key)),
		Key:  key,
	}

	var err error
	thumb.Width, thumb.Height, err = p.renderer.Render(ctx, source.Path, thumb.Path, spec.Width, spec.Height)
	if err != nil {
		return domain.UploadRecord{}, false, fmt.Errorf("%w: %s: %w", domain.ErrRender, key, err)
	}
	sl.Debug().Int("actualWidth", thumb.Width).Int("actualHeight", thumb.Height).Msg("rendered thumbnail")

	if !upload(ctx, sl, store, thumb.Key, thumb.Path) {
		return domain.UploadRecord{}, false, nil
	}

	return domain.UploadRecord{
		Filename: thumb.Key,
		URL:      store.PublicURL(thumb.Key),
		Width:    thumb.Width,
		Height:   thumb.Height,
	}, true, nil
}

func (p *Pipeline) uploadOriginal(ctx context.Context, l zerolog.Logger, store port.ObjectStore,
	source domain.SourceImage) (domain.UploadRecord, bool, error) {
	key := domain.ExpandTemplate(domain.Placeholder+originalExt(source), source.BaseName)
	sl := l.With().Str("key", key).Bool("original", true).Logger()

	if err := validateKey(key); err != nil {
		return domain.UploadRecord{}, false, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}

	width, height, err := p.renderer.Inspect(ctx, source.Path)
	if err != nil {
		return domain.UploadRecord{}, false, fmt.Errorf("%w: %s: %w", domain.ErrRender, source.Path, err)
	}

	if !upload(ctx, sl, store, key, source.Path) {
		return domain.UploadRecord{}, false, nil
	}

	return domain.UploadRecord{
		Filename: key,
		URL:      store.PublicURL(key),
		Width:    width,
		Height:   height,
	}, true, nil
}

// upload reports whether the object was stored. Failures are logged and never abort the run.
func upload(ctx context.Context, l zerolog.Logger, store port.ObjectStore, key, path string) bool {
	if err := store.Upload(ctx, key, path); err != nil {
		l.Error().Err(fmt.Errorf("%w: %w", domain.ErrUpload, err)).Msg("skipping object")
		return false
	}

	l.Info().Msg("uploaded object")
	return true
}

// stagingRoot creates a fresh folder for this run's renders, inside the configured temp folder when one is set.
// Nothing outside it is ever written or removed.
func (p *Pipeline) stagingRoot() (string, error) {
	if p.cfg.TempFolder != "" {
		if err := os.MkdirAll(p.cfg.TempFolder, 0o755); err != nil {
			return "", fmt.Errorf("error creating temp folder %s: %w", p.cfg.TempFolder, err)
		}
	}

	root, err := os.MkdirTemp(p.cfg.TempFolder, "thumbs3-*")
	if err != nil {
		return "", fmt.Errorf("error creating staging folder %w", err)
	}
	return root, nil
}

func originalExt(source domain.SourceImage) string {
	if ext := strings.ToLower(filepath.Ext(source.Filename)); ext != "" {
		return ext
	}

	mt, err := mimetype.DetectFile(source.Path)
	if err != nil {
		return ""
	}
	return mt.Extension()
}

func validateKey(key string) error {
	if key == "" || strings.HasSuffix(key, "/") || strings.HasPrefix(key, "/") {
		return fmt.Errorf("expanded object key %q is not a file name", key)
	}
	return nil
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("could not clean up temp file")
		return
	}
	log.Debug().Str("path", path).Msg("cleaned up temp file")
}

func removeDir(path string) {
	if err := os.RemoveAll(path); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("could not clean up temp folder")
		return
	}
	log.Debug().Str("path", path).Msg("cleaned up temp folder")
}

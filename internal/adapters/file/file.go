package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// CreateTempFile opens a new uuid-named file with the given extension in dir. An empty dir means os.TempDir(), a
// missing one is created.
func CreateTempFile(dir, extension string) (*os.File, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	if dir == "" {
		dir = os.TempDir()
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating temp folder %s: %w", dir, err)
	}

	// O_EXCL: never truncate a file this run did not create
	f, err := os.OpenFile(filepath.Join(dir, id.String()+extension), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("error creating temp file %w", err)
	}

	log.Debug().Str("path", f.Name()).Msg("created temp file")

	return f, nil
}

// IsRegularFile reports whether path names an existing regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

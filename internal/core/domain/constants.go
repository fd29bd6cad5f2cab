package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfig      = errors.New("invalid configuration")
	ErrInvalidSpec = fmt.Errorf("%w: invalid thumbnail spec", ErrConfig)
	ErrDownload    = errors.New("failed to download source image")
	ErrRender      = errors.New("failed to render thumbnail")
	ErrStorage     = errors.New("failed to connect to object store")
	ErrUpload      = errors.New("failed to upload object")
	ErrCallback    = errors.New("failed to post results to callback url")
)

const (
	ExitOK       = 0
	ExitDownload = 2
	ExitFatal    = 3
)

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrDownload):
		return ExitDownload
	default:
		return ExitFatal
	}
}

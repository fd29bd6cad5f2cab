package port

import (
	"context"
	"thumbs3/internal/core/domain"
)

type Reporter interface {
	// Report delivers the records of every successful upload.
	Report(ctx context.Context, records []domain.UploadRecord) error
}

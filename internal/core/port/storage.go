package port

import "context"

type ObjectStore interface {
	// Upload stores the file at localPath under key and makes it publicly readable.
	Upload(ctx context.Context, key, localPath string) error
	// PublicURL returns the address under which an uploaded key can be fetched anonymously.
	PublicURL(key string) string
}

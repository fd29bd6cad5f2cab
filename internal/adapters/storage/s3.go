package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"thumbs3/internal/core/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

const aclHeader = "x-amz-acl"

// S3Config encapsulates the connection info for S3 or an S3-compatible service.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// S3 uploads objects into a single bucket with public-read visibility.
type S3 struct {
	client *minio.Client
	bucket string
	host   string
}

// NewS3 connects to the endpoint and verifies that the bucket exists.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket must be provided")
	}

	host, secure := splitEndpoint(cfg.Endpoint, cfg.UseSSL)
	if host == "" {
		host = domain.DefaultEndpoint
	}

	// one attempt per request, failures are reported and never retried
	minio.MaxRetry = 1

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating s3 client %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("error checking bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
	}

	log.Debug().Str("endpoint", host).Str("bucket", cfg.Bucket).Bool("secure", secure).Msg("connected to object store")

	return &S3{
		client: client,
		bucket: cfg.Bucket,
		host:   host,
	}, nil
}

func (s *S3) Upload(ctx context.Context, key, localPath string) error {
	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(localPath); err == nil {
		contentType = mt.String()
	}

	info, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{aclHeader: "public-read"},
	})
	if err != nil {
		return fmt.Errorf("error uploading %s: %w", key, err)
	}

	log.Debug().Str("key", info.Key).Int64("bytes", info.Size).Str("contentType", contentType).Msg("uploaded object")

	return nil
}

func (s *S3) PublicURL(key string) string {
	return PublicURL(s.bucket, s.host, key)
}

// PublicURL builds the virtual-hosted style address of a public object.
func PublicURL(bucket, host, key string) string {
	return fmt.Sprintf("http://%s.%s/%s", bucket, host, strings.TrimPrefix(key, "/"))
}

// splitEndpoint strips an optional scheme from endpoint. An explicit scheme overrides useSSL.
func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	endpoint = strings.TrimSpace(endpoint)
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		u, err := url.Parse(endpoint)
		if err == nil {
			return u.Host, u.Scheme == "https"
		}
	}
	return strings.TrimSuffix(strings.TrimPrefix(endpoint, "//"), "/"), useSSL
}

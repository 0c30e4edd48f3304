package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/osouvenir/souvenirs/internal/config"
)

// Storage defines the interface for picture file storage
type Storage interface {
	// Save stores a file under the given name
	Save(ctx context.Context, name string, file io.Reader) error

	// Delete removes a stored file
	Delete(ctx context.Context, name string) error

	// URL returns the URL clients use to fetch the file
	URL(name string) string
}

// New creates the storage selected by STORAGE_DRIVER
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case cfg.StorageLocal:
		slog.Info("initializing local storage", "dir", c.ImagesDirectory)
		return NewLocalStorage(c.ImagesDirectory, c.UploadsURLPrefix)
	case cfg.StorageS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:        c.S3Region,
			Bucket:        c.S3Bucket,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			Endpoint:      c.S3Endpoint,
			UsePathStyle:  c.S3UsePathStyle,
			PresignExpiry: c.S3PresignExpiry,
		})
	}
	return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
}

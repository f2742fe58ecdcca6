package repository

import (
	"context"
	"io"
)

// StorageRepository defines the interface for object storage operations
type StorageRepository interface {
	EnsureBucket(ctx context.Context) error
	Upload(ctx context.Context, key, localPath string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

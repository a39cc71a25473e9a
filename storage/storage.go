package storage

import (
	"context"
	"fmt"
	"io"

	"workdrive/config"
)

// Storage persists and serves file bytes under a relative path computed by the
// file service. The service owns path derivation; backends only move bytes.
type Storage interface {
	Save(ctx context.Context, relPath string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, relPath string) (io.ReadCloser, error)
	Remove(ctx context.Context, relPath string) error
}

func New(cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStorage(cfg.BasePath)
	case "minio":
		return NewMinioStorage(&cfg.Minio)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (s *LocalStorage) Save(_ context.Context, relPath string, r io.Reader, _ int64, _ string) error {
	absPath := filepath.Join(s.basePath, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return err
	}

	dst, err := os.Create(absPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		_ = os.Remove(absPath)
		return err
	}
	return dst.Close()
}

func (s *LocalStorage) Open(_ context.Context, relPath string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.basePath, filepath.FromSlash(relPath)))
}

func (s *LocalStorage) Remove(_ context.Context, relPath string) error {
	return os.Remove(filepath.Join(s.basePath, filepath.FromSlash(relPath)))
}

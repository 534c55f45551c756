// Package blob fetches and removes email attachment files.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/a3tai/copa-listings/internal/config"
)

// ErrNotFound is returned when a storage path does not exist.
var ErrNotFound = errors.New("blob not found")

// Storage is an attachment store addressed by storage path.
type Storage interface {
	// Download opens the file at storagePath.
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes the file at storagePath. Missing files are not an error.
	Delete(ctx context.Context, storagePath string) error
}

// NewStorage builds the backend selected by cfg.Type.
func NewStorage(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case config.StorageLocal:
		return NewLocalStorage(cfg.LocalPath)
	case config.StorageS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// ReadAll downloads storagePath fully into memory.
func ReadAll(ctx context.Context, s Storage, storagePath string) ([]byte, error) {
	rc, err := s.Download(ctx, storagePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", storagePath, err)
	}
	return data, nil
}

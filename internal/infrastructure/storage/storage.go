package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/application/media"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ObjectStorage is the full storage surface used at startup and by the media layer
type ObjectStorage interface {
	media.ObjectStorageService
	EnsureBucket(ctx context.Context) error
}

// ErrUnmanagedKey is returned for keys outside the product image and avatar prefixes
var ErrUnmanagedKey = errors.New("storage key outside managed prefixes")

var managedPrefixes = []string{media.ProductImagePrefix, media.AvatarPrefix}

// checkKey accepts clean keys under one of the managed prefixes
func checkKey(key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	for _, prefix := range managedPrefixes {
		if media.KeyWithin(key, prefix) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnmanagedKey, key)
}

var (
	_ ObjectStorage = (*S3ObjectStorage)(nil)
	_ ObjectStorage = (*StubObjectStorage)(nil)
)

// New builds the configured storage driver and, when enabled, ensures the bucket exists
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (ObjectStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case "s3":
		s, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if cfg.EnsureBucket {
			if err := s.EnsureBucket(ctx); err != nil {
				return nil, err
			}
		}
		logger.Info("using S3 object storage", zap.String("bucket", s.Bucket()))
		return s, nil
	case "stub", "":
		logger.Warn("using stub object storage; uploads are not persisted")
		return NewStubObjectStorage(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

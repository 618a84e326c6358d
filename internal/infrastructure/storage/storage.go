// Package storage keeps uploaded profile images either on the local disk
// or in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"

	"syncchat.backend/internal/config"
	"syncchat.backend/internal/domain/services"
)

// New builds the storage backend selected by cfg.Driver
func New(ctx context.Context, cfg config.StorageConfig) (services.FileStorage, error) {
	switch cfg.Driver {
	case config.StorageDriverLocal, "":
		return NewLocalStorage(cfg.LocalDir)
	case config.StorageDriverS3:
		return NewS3Storage(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

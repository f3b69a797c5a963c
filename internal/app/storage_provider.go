package app

import (
	"context"
	"fmt"

	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
	"github.com/yungbote/osteobridge-backend/internal/platform/storage"
)

var newGCSStore = func(ctx context.Context, log *logger.Logger, cfg storage.GCSConfig) (storage.BlobStore, error) {
	return storage.NewGCS(ctx, log, cfg)
}

// resolveBlobStore picks the PDB file backend: GCS when a bucket is
// configured, the local upload folder otherwise.
func resolveBlobStore(ctx context.Context, log *logger.Logger, cfg Config) (storage.BlobStore, error) {
	switch cfg.StorageDriver {
	case storage.DriverGCS:
		log.Info("Selecting object storage provider", "driver", storage.DriverGCS, "bucket", cfg.GCS.Bucket)
		store, err := newGCSStore(ctx, log, cfg.GCS)
		if err != nil {
			log.Error("Object storage provider bootstrap failed", "driver", storage.DriverGCS, "error", err)
			return nil, fmt.Errorf("init gcs store: %w", err)
		}
		return store, nil
	case storage.DriverFilesystem, "":
		log.Info("Selecting object storage provider", "driver", storage.DriverFilesystem, "root", cfg.UploadFolder)
		store, err := storage.NewFilesystem(cfg.UploadFolder)
		if err != nil {
			return nil, fmt.Errorf("init filesystem store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

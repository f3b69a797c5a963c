package app

import (
	"context"
	"fmt"

	"github.com/yungbote/osteobridge-backend/internal/clients/redis"
	"github.com/yungbote/osteobridge-backend/internal/observability"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
	"github.com/yungbote/osteobridge-backend/internal/platform/storage"
)

type Clients struct {
	ListingCache redis.ListingCache
	Blobs        storage.BlobStore
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	cache, err := redis.NewListingCache(log, cfg.Redis, metrics)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis listing cache: %w", err)
	}

	// Blob store
	blobs, err := resolveBlobStore(ctx, log, cfg)
	if err != nil {
		_ = cache.Close()
		return Clients{}, err
	}

	return Clients{ListingCache: cache, Blobs: blobs}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.ListingCache != nil {
		_ = c.ListingCache.Close()
	}
	if closer, ok := c.Blobs.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

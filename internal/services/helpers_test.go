package services

import (
	"context"
	"sync"

	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
)

func dbcFor(ctx context.Context) dbctx.Context { return dbctx.Context{Ctx: ctx} }

// countingCache loads every time and counts invalidations.
type countingCache struct {
	mu          sync.Mutex
	loads       int
	invalidated int
}

func (c *countingCache) GetOrLoad(ctx context.Context, _ string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
	return load(ctx)
}

func (c *countingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}

func (c *countingCache) Close() error { return nil }

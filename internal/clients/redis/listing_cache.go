package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/osteobridge-backend/internal/observability"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

// ListingCache caches serialized read models. Invalidate drops every entry
// at once by bumping a version that is part of each key.
type ListingCache interface {
	GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) ([]byte, error)) ([]byte, error)
	Invalidate(ctx context.Context) error
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

type listingCache struct {
	log     *logger.Logger
	rdb     *goredis.Client
	prefix  string
	ttl     time.Duration
	metrics *observability.Metrics
	group   singleflight.Group
}

// NewListingCache connects to Redis. With an empty Addr it returns a cache
// that always loads.
func NewListingCache(log *logger.Logger, cfg Config, metrics *observability.Metrics) (ListingCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		log.Info("REDIS_ADDR not set; listing cache disabled")
		return NoopCache{}, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewListingCacheFromClient(log, rdb, cfg, metrics), nil
}

func NewListingCacheFromClient(log *logger.Logger, rdb *goredis.Client, cfg Config, metrics *observability.Metrics) ListingCache {
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "osteobridge:organisms"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &listingCache{
		log:     log.With("service", "RedisListingCache"),
		rdb:     rdb,
		prefix:  prefix,
		ttl:     ttl,
		metrics: metrics,
	}
}

func (c *listingCache) versionKey() string { return c.prefix + ":version" }

func (c *listingCache) version(ctx context.Context) (string, error) {
	v, err := c.rdb.Get(ctx, c.versionKey()).Result()
	if errors.Is(err, goredis.Nil) {
		return "0", nil
	}
	return v, err
}

func (c *listingCache) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	ver, err := c.version(ctx)
	if err != nil {
		c.log.Warn("listing cache unavailable; loading directly", "error", err)
		return load(ctx)
	}
	full := fmt.Sprintf("%s:v%s:%s", c.prefix, ver, key)

	raw, err := c.rdb.Get(ctx, full).Bytes()
	if err == nil {
		c.metrics.CacheLookup("organisms", true)
		return raw, nil
	}
	if !errors.Is(err, goredis.Nil) {
		c.log.Warn("listing cache read failed; loading directly", "key", full, "error", err)
		return load(ctx)
	}
	c.metrics.CacheLookup("organisms", false)

	v, err, _ := c.group.Do(full, func() (any, error) {
		data, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if setErr := c.rdb.Set(ctx, full, data, c.ttl).Err(); setErr != nil {
			c.log.Warn("listing cache write failed", "key", full, "error", setErr)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *listingCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, c.versionKey()).Err(); err != nil {
		return fmt.Errorf("invalidate listing cache: %w", err)
	}
	return nil
}

func (c *listingCache) Close() error { return c.rdb.Close() }

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) GetOrLoad(ctx context.Context, _ string, load func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	return load(ctx)
}

func (NoopCache) Invalidate(context.Context) error { return nil }

func (NoopCache) Close() error { return nil }

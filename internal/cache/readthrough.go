package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/neo-impact-service/internal/observability"
)

// Cache kinds, used as key prefixes and metric labels.
const (
	KindNEO        = "neo"
	KindNEORaw     = "neo_raw"
	KindFeed       = "feed"
	KindBrowse     = "browse"
	KindPhysical   = "physical"
	KindEnrichment = "enrichment"
	KindImpact     = "impact"
)

// LoadFunc produces the value for a missing key.
type LoadFunc func(ctx context.Context) ([]byte, error)

// Cache is a read-through cache over a Store. Concurrent misses on the same
// key share one load. The shared load runs detached from the caller's
// cancellation, so a caller that gives up early still leaves the value
// cached for the next request. Only successful loads are stored.
type Cache struct {
	store   Store
	group   singleflight.Group
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a read-through cache.
func New(store Store, metrics *observability.Metrics, logger *slog.Logger) *Cache {
	return &Cache{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// GetOrLoad returns the cached bytes for kind/key, loading and storing them
// with the given ttl on a miss. A store read failure is treated as a miss.
func (c *Cache) GetOrLoad(ctx context.Context, kind, key string, ttl time.Duration, load LoadFunc) ([]byte, error) {
	fullKey := kind + ":" + key

	value, ok, err := c.store.Get(ctx, fullKey)
	switch {
	case err != nil:
		c.metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		c.logger.Warn("cache read failed, loading", "key", fullKey, "error", err)
	case ok:
		c.metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
		return value, nil
	default:
		c.metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
	}

	ch := c.group.DoChan(fullKey, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(loadCtx, fullKey, v, ttl); err != nil {
			c.logger.Warn("cache write failed", "key", fullKey, "error", err)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Fetch is the typed form of GetOrLoad: values are stored as JSON and every
// caller, cold or warm, receives the decoded copy, so a fresh result and a
// cached one serialize identically.
func Fetch[T any](ctx context.Context, c *Cache, kind, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var out T
	raw, err := c.GetOrLoad(ctx, kind, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", kind, err)
		}
		return b, nil
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode cached %s: %w", kind, err)
	}
	return out, nil
}

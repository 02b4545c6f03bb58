package cache

import (
	"context"
	"strings"
	"time"

	"github.com/couchcryptid/neo-impact-service/internal/domain"
)

// CachedProvider wraps a PhysicalProvider with the read-through cache.
type CachedProvider struct {
	inner domain.PhysicalProvider
	cache *Cache
	ttl   time.Duration
}

// NewCachedProvider creates a cache decorator around a physical catalog.
func NewCachedProvider(inner domain.PhysicalProvider, cache *Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache, ttl: ttl}
}

func (p *CachedProvider) Name() domain.Source {
	return p.inner.Name()
}

func (p *CachedProvider) Lookup(ctx context.Context, designation string) (domain.PhysicalFields, error) {
	key := string(p.inner.Name()) + "|" + strings.ToLower(strings.TrimSpace(designation))
	return Fetch(ctx, p.cache, KindPhysical, key, p.ttl, func(ctx context.Context) (domain.PhysicalFields, error) {
		return p.inner.Lookup(ctx, designation)
	})
}

// CachedCatalog wraps a NEOCatalog with the read-through cache.
type CachedCatalog struct {
	inner domain.NEOCatalog
	cache *Cache
	ttl   time.Duration
}

// NewCachedCatalog creates a cache decorator around the NEO catalog.
func NewCachedCatalog(inner domain.NEOCatalog, cache *Cache, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachedCatalog) FetchNEO(ctx context.Context, id string) (domain.NEORecord, error) {
	return Fetch(ctx, c.cache, KindNEO, id, c.ttl, func(ctx context.Context) (domain.NEORecord, error) {
		return c.inner.FetchNEO(ctx, id)
	})
}

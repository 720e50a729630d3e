package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
)

// CatalogCache serves read results from a CatalogCacheStore and collapses
// concurrent misses for the same key into one load.
//
// Each namespace carries a generation that Invalidate bumps. A load only
// stores its result if the generation is unchanged, and loads of different
// generations never share a singleflight call.
type CatalogCache struct {
	store CatalogCacheStore
	ttl   time.Duration
	sf    singleflight.Group

	genMu       sync.RWMutex
	generations map[string]uint64
}

// NewCatalogCache returns a disabled cache when store is nil or ttl <= 0.
func NewCatalogCache(store CatalogCacheStore, ttl time.Duration) *CatalogCache {
	return &CatalogCache{store: store, ttl: ttl, generations: make(map[string]uint64)}
}

func (c *CatalogCache) generation(namespace string) uint64 {
	c.genMu.RLock()
	defer c.genMu.RUnlock()
	return c.generations[namespace]
}

// storeIfCurrent writes payload only while namespace is still at gen. The read
// lock is held across the write so a concurrent Invalidate either sees the
// entry and deletes it, or bumps the generation first and the write is skipped.
func (c *CatalogCache) storeIfCurrent(ctx context.Context, namespace, key string, gen uint64, payload []byte) {
	c.genMu.RLock()
	defer c.genMu.RUnlock()
	if c.generations[namespace] != gen {
		observability.RecordCatalogCacheEvent(ctx, namespace, "set_skipped_stale")
		return
	}
	if err := c.store.Set(ctx, namespace, key, payload, c.ttl); err != nil {
		observability.RecordCatalogCacheEvent(ctx, namespace, "set_error")
		slog.WarnContext(ctx, "catalog cache write failed", "namespace", namespace, "error", err)
	}
}

func (c *CatalogCache) enabled() bool {
	return c != nil && c.store != nil && c.ttl > 0
}

// Invalidate drops a namespace. Failures are logged and otherwise ignored
// so that a cache outage never fails a write.
func (c *CatalogCache) Invalidate(ctx context.Context, namespace string) {
	if !c.enabled() {
		return
	}
	c.genMu.Lock()
	c.generations[namespace]++
	c.genMu.Unlock()
	if err := c.store.InvalidateNamespace(ctx, namespace); err != nil {
		observability.RecordCatalogCacheEvent(ctx, namespace, "invalidate_error")
		slog.WarnContext(ctx, "catalog cache invalidation failed", "namespace", namespace, "error", err)
		return
	}
	observability.RecordCatalogCacheEvent(ctx, namespace, "invalidate")
}

func (c *CatalogCache) lookup(ctx context.Context, namespace, key string) ([]byte, bool) {
	var (
		payload []byte
		ok      bool
		age     time.Duration
		err     error
	)
	if withAge, supportsAge := c.store.(CatalogCacheStoreWithAge); supportsAge {
		payload, ok, age, err = withAge.GetWithAge(ctx, namespace, key)
	} else {
		payload, ok, err = c.store.Get(ctx, namespace, key)
	}
	if err != nil {
		observability.RecordCatalogCacheEvent(ctx, namespace, "get_error")
		slog.WarnContext(ctx, "catalog cache read failed", "namespace", namespace, "error", err)
		return nil, false
	}
	if ok {
		observability.RecordCatalogCacheEntryAge(ctx, namespace, age)
	}
	return payload, ok
}

// cachedLoad returns the cached value for namespace/key or runs load and
// stores its result. Cache errors degrade to a direct load.
func cachedLoad[T any](ctx context.Context, c *CatalogCache, namespace, key string, load func(context.Context) (T, error)) (T, error) {
	if !c.enabled() {
		return load(ctx)
	}
	if payload, ok := c.lookup(ctx, namespace, key); ok {
		var cached T
		if err := json.Unmarshal(payload, &cached); err == nil {
			observability.RecordCatalogCacheEvent(ctx, namespace, "hit")
			return cached, nil
		}
		observability.RecordCatalogCacheEvent(ctx, namespace, "decode_error")
	}

	gen := c.generation(namespace)
	flightKey := namespace + "|" + strconv.FormatUint(gen, 10) + "|" + key
	result, err, shared := c.sf.Do(flightKey, func() (any, error) {
		observability.RecordCatalogCacheEvent(ctx, namespace, "miss")
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if payload, marshalErr := json.Marshal(value); marshalErr == nil {
			c.storeIfCurrent(ctx, namespace, key, gen, payload)
		}
		return value, nil
	})
	if shared {
		observability.RecordCatalogCacheEvent(ctx, namespace, "singleflight_shared")
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

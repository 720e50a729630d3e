package service

import (
	"context"
	"sync"
	"time"
)

const (
	CatalogNamespaceProductSearch = "products.search"
	CatalogNamespaceSaleStats     = "sales.stats"
)

// CatalogCacheStore holds serialized read results keyed by namespace.
// Invalidating a namespace drops every key stored under it.
type CatalogCacheStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
}

type CatalogCacheStoreWithAge interface {
	CatalogCacheStore
	GetWithAge(ctx context.Context, namespace, key string) ([]byte, bool, time.Duration, error)
}

type NoopCatalogCacheStore struct{}

func NewNoopCatalogCacheStore() *NoopCatalogCacheStore {
	return &NoopCatalogCacheStore{}
}

func (s *NoopCatalogCacheStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopCatalogCacheStore) GetWithAge(context.Context, string, string) ([]byte, bool, time.Duration, error) {
	return nil, false, 0, nil
}

func (s *NoopCatalogCacheStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopCatalogCacheStore) InvalidateNamespace(context.Context, string) error {
	return nil
}

type catalogCacheEntry struct {
	payload   []byte
	storedAt  time.Time
	expiresAt time.Time
}

type InMemoryCatalogCacheStore struct {
	mu         sync.Mutex
	now        func() time.Time
	namespaces map[string]map[string]catalogCacheEntry
}

func NewInMemoryCatalogCacheStore() *InMemoryCatalogCacheStore {
	return &InMemoryCatalogCacheStore{
		now:        func() time.Time { return time.Now().UTC() },
		namespaces: make(map[string]map[string]catalogCacheEntry),
	}
}

func (s *InMemoryCatalogCacheStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	payload, ok, _, err := s.GetWithAge(ctx, namespace, key)
	return payload, ok, err
}

// GetWithAge evicts the entry when it has expired.
func (s *InMemoryCatalogCacheStore) GetWithAge(_ context.Context, namespace, key string) ([]byte, bool, time.Duration, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.namespaces[namespace]
	if !ok {
		return nil, false, 0, nil
	}
	entry, ok := entries[key]
	if !ok {
		return nil, false, 0, nil
	}
	if !now.Before(entry.expiresAt) {
		delete(entries, key)
		if len(entries) == 0 {
			delete(s.namespaces, namespace)
		}
		return nil, false, 0, nil
	}
	age := max(now.Sub(entry.storedAt), 0)
	return append([]byte(nil), entry.payload...), true, age, nil
}

func (s *InMemoryCatalogCacheStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.namespaces[namespace]
	if !ok {
		entries = make(map[string]catalogCacheEntry)
		s.namespaces[namespace] = entries
	}
	entries[key] = catalogCacheEntry{
		payload:   append([]byte(nil), value...),
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}
	return nil
}

func (s *InMemoryCatalogCacheStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	delete(s.namespaces, namespace)
	s.mu.Unlock()
	return nil
}

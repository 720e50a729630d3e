package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCatalogCacheStore keeps every key of a namespace in a set so the
// namespace can be dropped without SCAN.
type RedisCatalogCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisCatalogCacheStore(client redis.UniversalClient, prefix string) *RedisCatalogCacheStore {
	if prefix == "" {
		prefix = "bazar_catalog_cache"
	}
	return &RedisCatalogCacheStore{client: client, prefix: prefix}
}

func (s *RedisCatalogCacheStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	value, ok, _, err := s.GetWithAge(ctx, namespace, key)
	return value, ok, err
}

func (s *RedisCatalogCacheStore) GetWithAge(ctx context.Context, namespace, key string) ([]byte, bool, time.Duration, error) {
	if s.client == nil {
		return nil, false, 0, nil
	}
	values, err := s.client.MGet(ctx, s.dataKey(namespace, key), s.storedAtKey(namespace, key)).Result()
	if err != nil {
		return nil, false, 0, err
	}
	payload, ok := values[0].(string)
	if !ok {
		return nil, false, 0, nil
	}
	var age time.Duration
	if raw, ok := values[1].(string); ok {
		if nanos, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
			age = max(time.Since(time.Unix(0, nanos)), 0)
		}
	}
	return []byte(payload), true, age, nil
}

func (s *RedisCatalogCacheStore) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	dataKey := s.dataKey(namespace, key)
	storedAtKey := s.storedAtKey(namespace, key)
	indexKey := s.indexKey(namespace)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, dataKey, value, ttl)
	pipe.Set(ctx, storedAtKey, strconv.FormatInt(time.Now().UTC().UnixNano(), 10), ttl)
	pipe.SAdd(ctx, indexKey, dataKey, storedAtKey)
	pipe.Expire(ctx, indexKey, ttl+time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisCatalogCacheStore) InvalidateNamespace(ctx context.Context, namespace string) error {
	if s.client == nil {
		return nil
	}
	indexKey := s.indexKey(namespace)
	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := s.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, indexKey)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisCatalogCacheStore) dataKey(namespace, key string) string {
	return fmt.Sprintf("%s:data:%s:%s", s.prefix, namespace, hashCacheKey(key))
}

func (s *RedisCatalogCacheStore) storedAtKey(namespace, key string) string {
	return fmt.Sprintf("%s:stored_at:%s:%s", s.prefix, namespace, hashCacheKey(key))
}

func (s *RedisCatalogCacheStore) indexKey(namespace string) string {
	return fmt.Sprintf("%s:index:%s", s.prefix, namespace)
}

func hashCacheKey(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:16])
}

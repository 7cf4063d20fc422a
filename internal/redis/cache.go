package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tripmatch/internal/domain"
)

// CacheStore caches ride/trip lookups in Redis so confirmation
// evaluations avoid a database round trip per request.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// TargetCacheTTL bounds staleness of cached departure data. Departures
// rarely change, but an owner can edit a posting, so keep it short.
const TargetCacheTTL = 60 * time.Second

// CachedTarget is the subset of a ride/trip the engine needs.
type CachedTarget struct {
	OwnerID     string    `json:"owner_id"`
	DepartureAt time.Time `json:"departure_at"`
}

func targetKey(target domain.TargetRef) string {
	return fmt.Sprintf("cache:target:%s:%s", target.Kind, target.ID)
}

// GetTarget retrieves a cached ride/trip snapshot. A cache miss returns
// (nil, nil).
func (s *CacheStore) GetTarget(ctx context.Context, target domain.TargetRef) (*CachedTarget, error) {
	data, err := s.client.Get(ctx, targetKey(target)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached CachedTarget
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

// SetTarget stores a ride/trip snapshot in cache.
func (s *CacheStore) SetTarget(ctx context.Context, target domain.TargetRef, cached CachedTarget) error {
	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, targetKey(target), data, TargetCacheTTL).Err()
}

// InvalidateTarget removes a ride/trip snapshot from cache.
func (s *CacheStore) InvalidateTarget(ctx context.Context, target domain.TargetRef) error {
	return s.client.Del(ctx, targetKey(target)).Err()
}

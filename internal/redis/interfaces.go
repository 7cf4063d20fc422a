package redis

import (
	"context"
	"time"

	"tripmatch/internal/domain"
)

// TargetCacheInterface defines the interface for ride/trip snapshot caching.
type TargetCacheInterface interface {
	GetTarget(ctx context.Context, target domain.TargetRef) (*CachedTarget, error)
	SetTarget(ctx context.Context, target domain.TargetRef, cached CachedTarget) error
	InvalidateTarget(ctx context.Context, target domain.TargetRef) error
}

// SweepLockInterface defines the interface for the expiry-sweep lock.
type SweepLockInterface interface {
	AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseSweepLock(ctx context.Context) error
}

// Ensure concrete types implement interfaces.
var (
	_ TargetCacheInterface = (*CacheStore)(nil)
	_ SweepLockInterface   = (*LockStore)(nil)
)

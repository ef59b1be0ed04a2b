package redis

import (
	"context"
	"time"
)

// StatusCacheInterface defines the interface for payment status caching.
type StatusCacheInterface interface {
	Get(ctx context.Context, paymentID string) (*CachedStatus, error)
	Set(ctx context.Context, paymentID string, entry CachedStatus) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquirePaymentLock(ctx context.Context, paymentID string, ttl time.Duration) (bool, error)
	ReleasePaymentLock(ctx context.Context, paymentID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ StatusCacheInterface = (*StatusCache)(nil)
	_ LockStoreInterface   = (*LockStore)(nil)
)

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusCache caches resolved payment statuses in Redis. Only terminal
// statuses are cached: pending records still need the expiration check on
// every read.
type StatusCache struct {
	client *redis.Client
}

// NewStatusCache creates a new StatusCache.
func NewStatusCache(client *redis.Client) *StatusCache {
	return &StatusCache{client: client}
}

// StatusCacheTTL bounds how long a terminal status is served from cache.
const StatusCacheTTL = 5 * time.Minute

const statusCachePrefix = "cache:payment:"

// CachedStatus represents a cached payment status entry.
type CachedStatus struct {
	Status  string `json:"status"`
	OrderID string `json:"order_id"`
}

// Get retrieves a cached status. Returns nil on cache miss.
func (s *StatusCache) Get(ctx context.Context, paymentID string) (*CachedStatus, error) {
	data, err := s.client.Get(ctx, statusCachePrefix+paymentID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get cached status: %w", err)
	}

	var cached CachedStatus
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached status: %w", err)
	}

	return &cached, nil
}

// Set caches a status entry.
func (s *StatusCache) Set(ctx context.Context, paymentID string, entry CachedStatus) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cached status: %w", err)
	}

	return s.client.Set(ctx, statusCachePrefix+paymentID, data, StatusCacheTTL).Err()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SpyBeast07/lms-system/internal/domain"
)

// StatsCache caches school dashboard stats in Redis with a short TTL.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a stats cache with the given TTL.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(schoolID string) string {
	return "lms:stats:school:" + schoolID
}

// Get returns the cached stats for a school, or (nil, nil) on a cache miss.
func (c *StatsCache) Get(ctx context.Context, schoolID string) (*domain.SchoolStats, error) {
	data, err := c.client.Get(ctx, statsKey(schoolID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached stats: %w", err)
	}

	var stats domain.SchoolStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decode cached stats: %w", err)
	}

	return &stats, nil
}

// Set stores the stats for a school.
func (c *StatsCache) Set(ctx context.Context, stats *domain.SchoolStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	if err := c.client.Set(ctx, statsKey(stats.SchoolID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}

	return nil
}

// Invalidate drops the cached stats for a school.
func (c *StatsCache) Invalidate(ctx context.Context, schoolID string) error {
	if err := c.client.Del(ctx, statsKey(schoolID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached stats: %w", err)
	}
	return nil
}

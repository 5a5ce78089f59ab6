package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dashboardKeyPrefix = "stats:dashboard:" // stats:dashboard:{user_id}

// Cache keeps computed dashboards in Redis. A nil *Cache is a valid no-op cache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func DashboardKey(userID string) string {
	return dashboardKeyPrefix + userID
}

// Get reports a miss as (nil, false, nil).
func (c *Cache) Get(ctx context.Context, userID string) (*DashboardStats, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	data, err := c.client.Get(ctx, DashboardKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	var d DashboardStats
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal dashboard stats: %w", err)
	}
	return &d, true, nil
}

func (c *Cache) Set(ctx context.Context, userID string, d *DashboardStats) error {
	if c == nil || d == nil {
		return nil
	}

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard stats: %w", err)
	}
	if err := c.client.Set(ctx, DashboardKey(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache dashboard stats: %w", err)
	}
	return nil
}

// Invalidate drops the cached dashboards of every given user in one round trip.
func (c *Cache) Invalidate(ctx context.Context, userIDs ...string) error {
	if c == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(userIDs))
	pipe := c.client.Pipeline()
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		pipe.Del(ctx, DashboardKey(id))
	}
	if len(seen) == 0 {
		return nil
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate dashboard stats: %w", err)
	}
	return nil
}

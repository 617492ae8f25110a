package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// overviewCacheTTL bounds staleness for cached overview digests between
// ingestions.
const overviewCacheTTL = 5 * time.Minute

// OverviewCache caches overview digests in Redis, keyed by profile,
// reference date, and a per-profile version counter. Invalidation bumps
// the counter so stale keys simply expire.
type OverviewCache struct {
	client *redis.Client
}

// NewOverviewCache wraps a Redis client. A nil client yields a nil
// cache, which callers treat as "caching disabled".
func NewOverviewCache(client *redis.Client) *OverviewCache {
	if client == nil {
		return nil
	}
	return &OverviewCache{client: client}
}

func (c *OverviewCache) versionKey(profileID uuid.UUID) string {
	return fmt.Sprintf("overview:ver:%s", profileID)
}

func (c *OverviewCache) dataKey(profileID uuid.UUID, version int64, refDate time.Time) string {
	return fmt.Sprintf("overview:%s:%d:%s", profileID, version, refDate.Format("2006-01-02"))
}

// Get returns the cached overview for the pair, or (nil, nil) on a miss.
func (c *OverviewCache) Get(ctx context.Context, profileID uuid.UUID, refDate time.Time) (*Overview, error) {
	version, err := c.client.Get(ctx, c.versionKey(profileID)).Int64()
	if errors.Is(err, redis.Nil) {
		version = 0
	} else if err != nil {
		return nil, err
	}

	raw, err := c.client.Get(ctx, c.dataKey(profileID, version, refDate)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var overview Overview
	if err := json.Unmarshal(raw, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// Set stores an overview under the profile's current version.
func (c *OverviewCache) Set(ctx context.Context, profileID uuid.UUID, refDate time.Time, overview *Overview) error {
	version, err := c.client.Get(ctx, c.versionKey(profileID)).Int64()
	if errors.Is(err, redis.Nil) {
		version = 0
	} else if err != nil {
		return err
	}

	raw, err := json.Marshal(overview)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.dataKey(profileID, version, refDate), raw, overviewCacheTTL).Err()
}

// Invalidate bumps the profile's version counter, orphaning every
// cached overview for that profile until it expires.
func (c *OverviewCache) Invalidate(ctx context.Context, profileID uuid.UUID) error {
	return c.client.Incr(ctx, c.versionKey(profileID)).Err()
}

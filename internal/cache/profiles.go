package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adaptix/adaptix/internal/signals"
)

// ProfileCache memoizes the latest OptimizationProfile per session in redis
// so the rendering layer can fetch it without recomputation. The engines
// themselves never read from here; cross-session state lives outside the
// core on purpose. A nil cache drops writes and misses all reads.
type ProfileCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProfileCache(rdb *redis.Client, ttl time.Duration) *ProfileCache {
	if rdb == nil {
		return nil
	}
	return &ProfileCache{rdb: rdb, ttl: ttl}
}

func key(sessionID string) string {
	return "profile:" + sessionID
}

func (c *ProfileCache) Set(ctx context.Context, profile signals.OptimizationProfile) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(profile.SessionID), data, c.ttl).Err()
}

// Get returns (nil, nil) on a cache miss.
func (c *ProfileCache) Get(ctx context.Context, sessionID string) (*signals.OptimizationProfile, error) {
	if c == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var profile signals.OptimizationProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Package cache keeps the spot listings in Redis between mutations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"parkeasy/internal/entities"

	"github.com/redis/go-redis/v9"
)

const (
	KeyAllSpots       = "parkeasy:spots:all"
	KeyAvailableSpots = "parkeasy:spots:available"
)

// SpotCache is a read-through cache of spot listings backed by Redis.
type SpotCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func NewSpotCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *SpotCache {
	return &SpotCache{rdb: rdb, ttl: ttl, log: log}
}

// Get reports a miss on any Redis failure.
func (c *SpotCache) Get(ctx context.Context, key string) ([]entities.SpotResponse, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("spot cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var spots []entities.SpotResponse
	if err := json.Unmarshal(raw, &spots); err != nil {
		c.log.Warn("spot cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return spots, true
}

func (c *SpotCache) Set(ctx context.Context, key string, spots []entities.SpotResponse) {
	raw, err := json.Marshal(spots)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("spot cache write failed", "key", key, "error", err)
	}
}

func (c *SpotCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, KeyAllSpots, KeyAvailableSpots).Err(); err != nil {
		c.log.Warn("spot cache invalidation failed", "error", err)
	}
}

// Noop is used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]entities.SpotResponse, bool) { return nil, false }
func (Noop) Set(context.Context, string, []entities.SpotResponse)        {}
func (Noop) Invalidate(context.Context)                                  {}

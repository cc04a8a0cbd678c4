// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// stats.go caches the dashboard's per-entity record counts in Valkey so the
// dashboard does not hit the backend twice per entity on every load.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// statsKeyPrefix is the Valkey key prefix for cached counts.
	statsKeyPrefix = "kpi:"

	// DefaultStatsTTL is how long a count stays cached.
	DefaultStatsTTL = time.Minute
)

// Counts is the dashboard tile of one entity type.
type Counts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// Inactive is derived, never stored.
func (c Counts) Inactive() int {
	if c.Active > c.Total {
		return 0
	}
	return c.Total - c.Active
}

// StatsCache stores Counts per entity name.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a stats cache backed by the given Valkey client.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl == 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

// Get returns cached counts for an entity. Errors count as a miss.
func (sc *StatsCache) Get(ctx context.Context, entity string) (Counts, bool) {
	val, err := sc.client.Get(ctx, statsKeyPrefix+entity).Bytes()
	if errors.Is(err, redis.Nil) {
		return Counts{}, false
	}
	if err != nil {
		slog.Warn("stats cache get error", "entity", entity, "error", err)
		return Counts{}, false
	}
	var c Counts
	if err := json.Unmarshal(val, &c); err != nil {
		slog.Warn("stats cache decode error", "entity", entity, "error", err)
		return Counts{}, false
	}
	return c, true
}

// Set stores counts for an entity with the configured TTL.
func (sc *StatsCache) Set(ctx context.Context, entity string, c Counts) {
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := sc.client.Set(ctx, statsKeyPrefix+entity, data, sc.ttl).Err(); err != nil {
		slog.Warn("stats cache set error", "entity", entity, "error", err)
	}
}

// Invalidate drops the counts of one entity after a mutation.
func (sc *StatsCache) Invalidate(ctx context.Context, entity string) {
	if err := sc.client.Del(ctx, statsKeyPrefix+entity).Err(); err != nil {
		slog.Warn("stats cache invalidate error", "entity", entity, "error", err)
		return
	}
	slog.Debug("stats cache invalidated", "entity", entity)
}

// InvalidateAll drops every cached count.
func (sc *StatsCache) InvalidateAll(ctx context.Context) {
	deleted, err := deleteByPrefix(ctx, sc.client, statsKeyPrefix)
	if err != nil {
		slog.Warn("stats cache clear error", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("stats cache cleared", "deleted", deleted)
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hsadmin/internal/listing"
)

const (
	listStateKeyPrefix = "liststate:"

	// DefaultListStateTTL is how long a screen's filters survive without a
	// visit.
	DefaultListStateTTL = 7 * 24 * time.Hour
)

// ListStateStore keeps list screen filters, page and sort per operator
// session and entity, so an evicted screen comes back where it was left.
type ListStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListStateStore creates the store.
func NewListStateStore(client *redis.Client, ttl time.Duration) *ListStateStore {
	if ttl == 0 {
		ttl = DefaultListStateTTL
	}
	return &ListStateStore{client: client, ttl: ttl}
}

func listStateKey(owner, entity string) string {
	return listStateKeyPrefix + owner + ":" + entity
}

// LoadState returns the saved state, or nil when there is none.
func (s *ListStateStore) LoadState(ctx context.Context, owner, entity string) (*listing.State, error) {
	data, err := s.client.Get(ctx, listStateKey(owner, entity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list state: %w", err)
	}
	var st listing.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode list state: %w", err)
	}
	return &st, nil
}

// SaveState stores the state and refreshes its TTL.
func (s *ListStateStore) SaveState(ctx context.Context, owner, entity string, st listing.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode list state: %w", err)
	}
	if err := s.client.Set(ctx, listStateKey(owner, entity), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set list state: %w", err)
	}
	return nil
}

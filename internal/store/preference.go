// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"hsadmin/internal/models"
)

// PreferenceStore persists per-operator list screen preferences.
type PreferenceStore struct {
	db *sql.DB
}

// NewPreferenceStore creates a new PreferenceStore.
func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// Get returns the operator's column preference for an entity, or nil when
// none has been saved.
func (s *PreferenceStore) Get(ctx context.Context, owner, entity string) (*models.ColumnPreference, error) {
	p := models.ColumnPreference{Owner: owner, Entity: entity}
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT hidden_columns, updated_at
		FROM list_preferences
		WHERE owner = $1 AND entity = $2
	`, owner, entity).Scan(&raw, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list preference: %w", err)
	}
	if err := json.Unmarshal(raw, &p.Hidden); err != nil {
		return nil, fmt.Errorf("decode hidden columns: %w", err)
	}
	return &p, nil
}

// HiddenColumns returns the hidden column keys, empty when none are saved.
func (s *PreferenceStore) HiddenColumns(ctx context.Context, owner, entity string) ([]string, error) {
	p, err := s.Get(ctx, owner, entity)
	if err != nil || p == nil {
		return nil, err
	}
	return p.Hidden, nil
}

// SetHiddenColumns replaces the hidden column set.
func (s *PreferenceStore) SetHiddenColumns(ctx context.Context, owner, entity string, hidden []string) error {
	hidden = slices.Clone(hidden)
	if hidden == nil {
		hidden = []string{}
	}
	slices.Sort(hidden)
	raw, err := json.Marshal(hidden)
	if err != nil {
		return fmt.Errorf("encode hidden columns: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO list_preferences (owner, entity, hidden_columns, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (owner, entity)
		DO UPDATE SET hidden_columns = EXCLUDED.hidden_columns, updated_at = EXCLUDED.updated_at
	`, owner, entity, string(raw))
	if err != nil {
		return fmt.Errorf("save list preference: %w", err)
	}
	return nil
}

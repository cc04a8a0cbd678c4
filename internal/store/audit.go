// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// audit.go records every mutation operators send to the marketplace backend,
// successful or not, for the dashboard's activity feed.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hsadmin/internal/models"
)

// maxAuditMessage caps stored backend error messages.
const maxAuditMessage = 1000

// AuditStore handles audit log operations.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore creates a new AuditStore.
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Log inserts an entry, filling ID and CreatedAt when unset.
func (s *AuditStore) Log(ctx context.Context, e *models.AuditEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	msg := e.Message
	if r := []rune(msg); len(r) > maxAuditMessage {
		msg = string(r[:maxAuditMessage])
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, owner, entity, record_id, record_name, action, outcome, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.Owner, e.Entity, e.RecordID, e.RecordName, string(e.Action), string(e.Outcome), msg, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, entity, record_id, record_name, action, outcome, message, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var action, outcome string
		if err := rows.Scan(&e.ID, &e.Owner, &e.Entity, &e.RecordID, &e.RecordName, &action, &outcome, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = models.AuditAction(action)
		e.Outcome = models.AuditOutcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

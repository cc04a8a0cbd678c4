// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction is the kind of mutation an operator attempted.
type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionToggle AuditAction = "toggle"
	ActionDelete AuditAction = "delete"
)

// AuditOutcome records whether the backend accepted the mutation.
type AuditOutcome string

const (
	OutcomeSuccess AuditOutcome = "success"
	OutcomeFailure AuditOutcome = "failure"
)

// AuditEntry is one mutation attempt against the marketplace backend.
type AuditEntry struct {
	ID         uuid.UUID    `json:"id"`
	Owner      string       `json:"owner"`
	Entity     string       `json:"entity"`
	RecordID   string       `json:"record_id"`
	RecordName string       `json:"record_name"`
	Action     AuditAction  `json:"action"`
	Outcome    AuditOutcome `json:"outcome"`
	Message    string       `json:"message"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Failed reports whether the backend rejected the mutation.
func (e AuditEntry) Failed() bool {
	return e.Outcome == OutcomeFailure
}

// Verb returns the past-tense action for display.
func (e AuditEntry) Verb() string {
	switch e.Action {
	case ActionCreate:
		return "created"
	case ActionUpdate:
		return "updated"
	case ActionToggle:
		return "toggled"
	case ActionDelete:
		return "deleted"
	}
	return string(e.Action)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package resource defines the canonical record shape shared by every admin
// screen, the per-entity schemas, and the adapter that translates between
// backend wire payloads and canonical records.
package resource

import (
	"errors"
	"strings"
)

// Status values derived from Entity.IsActive. The backend accepts and returns
// both forms; the canonical record stores only the boolean.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// ErrMissingID is returned by any operation that needs a record identifier
// when none could be resolved from the record.
var ErrMissingID = errors.New("ID is missing")

// ServiceMetrics holds the read-only performance counters the backend reports
// for services. They are displayed and sorted on, never written back.
type ServiceMetrics struct {
	Popularity float64 `json:"popularity"`
	Bookings   int     `json:"bookings"`
	Revenue    float64 `json:"revenue"`
}

// Entity is the canonical form of any managed record (category, service,
// add-on, project, ...). Fields that a given entity type does not use stay
// at their zero value.
type Entity struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"imageUrl"`
	IsActive     bool            `json:"isActive"`
	DisplayOrder int             `json:"displayOrder"`
	ParentID     string          `json:"parentId,omitempty"`
	ParentName   string          `json:"parentName,omitempty"`
	AppliesTo    []string        `json:"appliesTo,omitempty"`
	Price        float64         `json:"price,omitempty"`
	Metrics      *ServiceMetrics `json:"metrics,omitempty"`
}

// Status returns "active" or "inactive". It is always derived from IsActive,
// so the two representations cannot disagree.
func (e Entity) Status() string {
	if e.IsActive {
		return StatusActive
	}
	return StatusInactive
}

// HasID reports whether the record carries a usable identifier.
func (e Entity) HasID() bool {
	return strings.TrimSpace(e.ID) != ""
}

// RequireID validates an identifier before any network call is made.
func RequireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	return nil
}

// ParseStatus maps the loosely typed status values the backend emits
// ("active", "Inactive", "1", "true", ...) onto IsActive. ok is false when
// the value is not recognised.
func ParseStatus(v string) (active bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "active", "enabled", "true", "1", "yes", "on":
		return true, true
	case "inactive", "disabled", "false", "0", "no", "off":
		return false, true
	}
	return false, false
}

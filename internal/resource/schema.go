// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package resource

import (
	"fmt"
	"slices"
)

// ParentRef describes the required many-to-one link some entities carry
// (a service belongs to a category, an item to a project item, ...).
type ParentRef struct {
	Schema   string   // catalog name of the parent schema
	Label    string   // human label, e.g. "Category"
	WireKey  string   // snake_case key sent to and read from the backend
	Aliases  []string // other keys the backend has been seen to use
	Nested   string   // key of an embedded parent object ({"id": .., "name": ..})
	NameKeys []string // flat keys carrying the parent's display name
	Required bool
}

// Keys returns every key the parent id may arrive under, wire key first.
func (p *ParentRef) Keys() []string {
	return append([]string{p.WireKey}, p.Aliases...)
}

// FilterRef describes the optional secondary filter of a list screen.
type FilterRef struct {
	Param  string // query parameter name
	Label  string
	Schema string // schema whose records populate the dropdown
}

// Column is one table column. Hideable columns can be toggled off per screen.
type Column struct {
	Key      string
	Label    string
	Hideable bool
}

// Column keys rendered by the table template.
const (
	ColImage       = "image"
	ColName        = "name"
	ColDescription = "description"
	ColParent      = "parent"
	ColPrice       = "price"
	ColAppliesTo   = "appliesTo"
	ColPopularity  = "popularity"
	ColBookings    = "bookings"
	ColRevenue     = "revenue"
	ColOrder       = "order"
	ColStatus      = "status"
)

// ImageRules constrains the image a form may attach.
type ImageRules struct {
	MaxBytes     int64
	AllowedTypes []string
}

// Allows reports whether mimeType is one of the accepted image types.
func (r ImageRules) Allows(mimeType string) bool {
	return slices.Contains(r.AllowedTypes, mimeType)
}

// MaxLabel renders the size limit for user-facing messages.
func (r ImageRules) MaxLabel() string {
	switch {
	case r.MaxBytes >= 1<<20 && r.MaxBytes%(1<<20) == 0:
		return fmt.Sprintf("%d MB", r.MaxBytes>>20)
	case r.MaxBytes >= 1<<10:
		return fmt.Sprintf("%d KB", r.MaxBytes>>10)
	default:
		return fmt.Sprintf("%d bytes", r.MaxBytes)
	}
}

// Schema describes one managed entity type: where it lives on the backend,
// how its fields are named on the wire, and which optional features its
// screen exposes.
type Schema struct {
	Name          string // URL slug and catalog key, e.g. "sub-services"
	Singular      string // snake_case singular used for id aliases, e.g. "sub_service"
	Label         string // plural display label
	LabelSingular string
	Path          string // backend collection path

	Parent    *ParentRef
	Filter    *FilterRef
	AppliesTo *FilterRef // many-to-many link to services (add-ons only)

	Priced             bool
	RequireDescription bool
	HasMetrics         bool
	Sortable           []SortKey

	Columns []Column
	Image   ImageRules
}

// IDKeys returns the keys an identifier may arrive under.
func (s *Schema) IDKeys() []string {
	return []string{"id", "_id", "uuid", s.Singular + "_id", camel(s.Singular) + "Id"}
}

// CanSort reports whether the screen offers the given client-side sort key.
func (s *Schema) CanSort(k SortKey) bool {
	return slices.Contains(s.Sortable, k)
}

// Column returns the column definition for key.
func (s *Schema) Column(key string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// camel converts snake_case to lowerCamelCase.
func camel(s string) string {
	out := make([]byte, 0, len(s))
	upper := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package resource

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field aliases shared by every schema. The backend has shipped several
// naming conventions over time; the first present key wins.
var (
	nameKeys        = []string{"name", "title"}
	descriptionKeys = []string{"description", "desc"}
	imageKeys       = []string{"image_url", "imageUrl", "image"}
	activeKeys      = []string{"is_active", "isActive", "active", "status"}
	orderKeys       = []string{"sort_order", "displayOrder", "display_order"}
	priceKeys       = []string{"price", "base_price", "basePrice"}
	appliesToKeys   = []string{"applies_to", "appliesTo", "service_ids", "serviceIds"}
	popularityKeys  = []string{"popularity", "popularity_score", "popularityScore"}
	bookingsKeys    = []string{"bookings", "total_bookings", "totalBookings", "bookings_count"}
	revenueKeys     = []string{"revenue", "total_revenue", "totalRevenue"}
)

// ToCanonical translates a raw backend record into an Entity. Unknown keys
// are ignored and missing keys leave zero values; partial records are
// normal. DisplayOrder stays 0 when absent; see ApplyDefaultOrder.
func (s *Schema) ToCanonical(raw map[string]any) Entity {
	var e Entity

	if v, ok := first(raw, s.IDKeys()...); ok {
		e.ID = asString(v)
	}
	if v, ok := first(raw, nameKeys...); ok {
		e.Name = asString(v)
	}
	if v, ok := first(raw, descriptionKeys...); ok {
		e.Description = asString(v)
	}
	if v, ok := first(raw, imageKeys...); ok {
		e.ImageURL = imageString(v)
	}
	if v, ok := first(raw, activeKeys...); ok {
		e.IsActive = asBool(v)
	}
	if v, ok := first(raw, orderKeys...); ok {
		e.DisplayOrder = int(asFloat(v))
	}

	if p := s.Parent; p != nil {
		if v, ok := first(raw, p.Keys()...); ok {
			e.ParentID = asString(v)
		}
		if nested, ok := raw[p.Nested].(map[string]any); ok && p.Nested != "" {
			if e.ParentID == "" {
				if v, ok := first(nested, "id", "_id", "uuid"); ok {
					e.ParentID = asString(v)
				}
			}
			if v, ok := first(nested, nameKeys...); ok {
				e.ParentName = asString(v)
			}
		}
		if e.ParentName == "" {
			if v, ok := first(raw, p.NameKeys...); ok {
				e.ParentName = asString(v)
			}
		}
	}

	if s.Priced {
		if v, ok := first(raw, priceKeys...); ok {
			e.Price = asFloat(v)
		}
	}

	if s.AppliesTo != nil {
		if v, ok := first(raw, appliesToKeys...); ok {
			e.AppliesTo = idList(v)
		}
	}

	if s.HasMetrics {
		var m ServiceMetrics
		var seen bool
		if v, ok := first(raw, popularityKeys...); ok {
			m.Popularity, seen = asFloat(v), true
		}
		if v, ok := first(raw, bookingsKeys...); ok {
			m.Bookings, seen = int(asFloat(v)), true
		}
		if v, ok := first(raw, revenueKeys...); ok {
			m.Revenue, seen = asFloat(v), true
		}
		if seen {
			e.Metrics = &m
		}
	}

	return e
}

// ToWire translates an Entity into the snake_case payload the backend
// accepts on create and update. Every writable field is always present so
// partial-update endpoints never see a half record. Read-only fields
// (id, imageUrl, metrics) are never sent.
func (s *Schema) ToWire(e Entity) map[string]any {
	w := map[string]any{
		"name":        e.Name,
		"description": e.Description,
		"sort_order":  e.DisplayOrder,
		"is_active":   e.IsActive,
	}
	if s.Parent != nil && e.ParentID != "" {
		w[s.Parent.WireKey] = e.ParentID
	}
	if s.Priced {
		w["price"] = e.Price
	}
	if s.AppliesTo != nil {
		ids := e.AppliesTo
		if ids == nil {
			ids = []string{}
		}
		w[s.AppliesTo.Param] = ids
	}
	return w
}

// ApplyDefaultOrder fills DisplayOrder for records that arrived without one,
// using the record's absolute position across pages (1-based).
func ApplyDefaultOrder(records []Entity, page, limit int) {
	if page < 1 {
		page = 1
	}
	for i := range records {
		if records[i].DisplayOrder <= 0 {
			records[i].DisplayOrder = (page-1)*limit + i + 1
		}
	}
}

func first(raw map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case json.Number:
		f, _ := t.Float64()
		return f
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	}
	return 0
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case json.Number:
		f, _ := t.Float64()
		return f != 0
	case int:
		return t != 0
	case string:
		active, _ := ParseStatus(t)
		return active
	}
	return false
}

// imageString accepts either a URL string or an object carrying one.
func imageString(v any) string {
	if m, ok := v.(map[string]any); ok {
		if u, ok := first(m, "url", "src", "href"); ok {
			return asString(u)
		}
		return ""
	}
	return asString(v)
}

// idList accepts an array of ids or of objects with an id, or a
// comma-separated string.
func idList(v any) []string {
	var ids []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			var id string
			if m, ok := item.(map[string]any); ok {
				if v, ok := first(m, "id", "_id", "uuid"); ok {
					id = asString(v)
				}
			} else {
				id = asString(item)
			}
			if id != "" {
				ids = append(ids, id)
			}
		}
	case []string:
		for _, id := range t {
			if id != "" {
				ids = append(ids, id)
			}
		}
	case string:
		for _, id := range strings.Split(t, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

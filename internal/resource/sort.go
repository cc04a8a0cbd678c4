// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package resource

import (
	"cmp"
	"slices"
	"strings"
)

// SortKey names a client-side sort order for the current page.
type SortKey string

const (
	SortNone         SortKey = ""
	SortDisplayOrder SortKey = "displayOrder"
	SortName         SortKey = "name"
	SortPrice        SortKey = "price"
	SortPopularity   SortKey = "popularity"
	SortBookings     SortKey = "bookings"
	SortRevenue      SortKey = "revenue"
)

// Label returns a display label for the sort key.
func (k SortKey) Label() string {
	switch k {
	case SortDisplayOrder:
		return "Display order"
	case SortName:
		return "Name"
	case SortPrice:
		return "Price"
	case SortPopularity:
		return "Popularity"
	case SortBookings:
		return "Bookings"
	case SortRevenue:
		return "Revenue"
	}
	return "Default"
}

// SortEntities returns a sorted copy of records. Sorting only reorders the
// page already fetched; it never changes what the backend returns. An
// unknown or empty key returns the records in their original order.
func SortEntities(records []Entity, key SortKey, desc bool) []Entity {
	out := slices.Clone(records)
	less := comparator(key)
	if less == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b Entity) int {
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
	return out
}

func comparator(key SortKey) func(a, b Entity) int {
	metric := func(f func(*ServiceMetrics) float64) func(a, b Entity) int {
		val := func(e Entity) float64 {
			if e.Metrics == nil {
				return 0
			}
			return f(e.Metrics)
		}
		return func(a, b Entity) int { return cmp.Compare(val(a), val(b)) }
	}

	switch key {
	case SortDisplayOrder:
		return func(a, b Entity) int { return cmp.Compare(a.DisplayOrder, b.DisplayOrder) }
	case SortName:
		return func(a, b Entity) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case SortPrice:
		return func(a, b Entity) int { return cmp.Compare(a.Price, b.Price) }
	case SortPopularity:
		return metric(func(m *ServiceMetrics) float64 { return m.Popularity })
	case SortBookings:
		return metric(func(m *ServiceMetrics) float64 { return float64(m.Bookings) })
	case SortRevenue:
		return metric(func(m *ServiceMetrics) float64 { return m.Revenue })
	}
	return nil
}

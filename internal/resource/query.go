// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package resource

import (
	"math"
	"net/url"
	"strconv"
)

// Query is the effective list query sent to the backend. Empty Status,
// Search and Secondary mean "no filter".
type Query struct {
	Page      int
	Limit     int
	Status    string
	Search    string
	Secondary string
}

// Values encodes the query the way the backend expects it: page, limit,
// status and search are always present, and the secondary filter uses the
// schema's parameter name.
func (q Query) Values(s *Schema) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("status", q.Status)
	v.Set("search", q.Search)
	if s != nil && s.Filter != nil {
		v.Set(s.Filter.Param, q.Secondary)
	}
	return v
}

// Pagination is the backend's paging metadata for one page of results.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// Page is one page of canonical records plus its pagination metadata.
type Page struct {
	Records    []Entity
	Pagination Pagination
}

// ParsePagination reads pagination metadata leniently. Missing values fall
// back to the request and the number of records received; totalPages is
// computed from total and limit when the backend omits it.
func ParsePagination(raw map[string]any, q Query, received int) Pagination {
	p := Pagination{Page: q.Page, Limit: q.Limit, Total: -1, TotalPages: -1}
	if raw != nil {
		if v, ok := first(raw, "page", "current_page", "currentPage"); ok {
			p.Page = int(asFloat(v))
		}
		if v, ok := first(raw, "limit", "per_page", "perPage", "page_size"); ok {
			p.Limit = int(asFloat(v))
		}
		if v, ok := first(raw, "total", "total_count", "totalCount", "count"); ok {
			p.Total = int(asFloat(v))
		}
		if v, ok := first(raw, "totalPages", "total_pages", "pages", "last_page"); ok {
			p.TotalPages = int(asFloat(v))
		}
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = max(received, 1)
	}
	if p.Total < 0 {
		p.Total = (p.Page-1)*p.Limit + received
	}
	if p.TotalPages < 0 {
		p.TotalPages = int(math.Ceil(float64(p.Total) / float64(p.Limit)))
	}
	return p
}

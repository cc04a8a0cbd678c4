// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package listing

import (
	"hsadmin/internal/gateway"
	"hsadmin/internal/resource"
)

// View is an immutable snapshot of a list screen, ready for rendering.
type View struct {
	Schema     *resource.Schema
	Records    []resource.Entity
	Pagination resource.Pagination

	Page            int
	PageSize        int
	SearchTerm      string
	DebouncedSearch string
	Status          StatusFilter
	Secondary       string
	SortKey         resource.SortKey
	SortDesc        bool

	// IsLoading is true only while the very first fetch is in flight.
	IsLoading bool
	// IsFetching is true while any fetch is in flight.
	IsFetching bool
	IsError    bool
	// Error is the operator-facing text of the last failed fetch.
	Error string

	CanPrev bool
	CanNext bool
	Empty   bool
}

// TotalPages never reports fewer than one page, for display.
func (v View) TotalPages() int {
	return max(v.Pagination.TotalPages, 1)
}

func (c *Controller) viewLocked() View {
	fetching := c.fetchingLocked()
	v := View{
		Schema:          c.schema,
		Records:         resource.SortEntities(c.records, c.sortKey, c.sortDesc),
		Pagination:      c.paging,
		Page:            c.page,
		PageSize:        c.opts.PageSize,
		SearchTerm:      c.searchTerm,
		DebouncedSearch: c.debouncedSearch,
		Status:          c.status,
		Secondary:       c.secondary,
		SortKey:         c.sortKey,
		SortDesc:        c.sortDesc,
		IsLoading:       fetching && !c.loaded,
		IsFetching:      fetching,
		IsError:         c.err != nil,
		CanPrev:         !fetching && c.page > 1,
		CanNext:         !fetching && c.page < c.paging.TotalPages,
	}
	if c.err != nil {
		v.Error = gateway.Message(c.err)
	}
	v.Empty = c.loaded && !fetching && c.err == nil && len(c.records) == 0
	return v
}

// State is the persisted part of a screen: its filters, page and sort.
// Records are never persisted; they are refetched.
type State struct {
	Search    string           `json:"search,omitempty"`
	Status    StatusFilter     `json:"status,omitempty"`
	Secondary string           `json:"secondary,omitempty"`
	Page      int              `json:"page,omitempty"`
	SortKey   resource.SortKey `json:"sort,omitempty"`
	SortDesc  bool             `json:"sortDesc,omitempty"`
}

// Snapshot captures the committed filters, page and sort. A search still
// inside its debounce window is not included.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Search:    c.debouncedSearch,
		Status:    c.status,
		Secondary: c.secondary,
		Page:      c.page,
		SortKey:   c.sortKey,
		SortDesc:  c.sortDesc,
	}
}

// Restore applies a persisted state. It only takes effect before the
// first fetch; invalid values fall back to the defaults.
func (c *Controller) Restore(st State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.issued > 0 {
		return
	}
	c.searchTerm = st.Search
	c.debouncedSearch = st.Search
	if s, err := ParseStatusFilter(string(st.Status)); err == nil {
		c.status = s
	}
	if st.Secondary != "" {
		c.secondary = st.Secondary
	}
	if st.Page > 0 {
		c.page = st.Page
	}
	if st.SortKey == resource.SortNone || c.schema.CanSort(st.SortKey) {
		c.sortKey = st.SortKey
		c.sortDesc = st.SortDesc
	}
}

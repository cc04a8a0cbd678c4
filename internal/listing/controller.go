// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package listing implements the state behind every admin list screen:
// debounced search, status and secondary filters, 1-based pagination, and
// fetch bookkeeping that discards out-of-order responses.
package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"hsadmin/internal/metrics"
	"hsadmin/internal/resource"
)

// Defaults for list screens.
const (
	DefaultPageSize     = 10
	DefaultDebounce     = 500 * time.Millisecond
	DefaultFetchTimeout = 20 * time.Second
)

var (
	// ErrSuperseded is returned to a waiter whose search keystroke was
	// replaced by a newer one before the debounce window closed.
	ErrSuperseded = errors.New("superseded by a newer search")

	// ErrInvalidStatus is returned for a status filter other than
	// all, active or inactive.
	ErrInvalidStatus = errors.New("invalid status filter")

	// ErrInvalidSort is returned for a sort key the screen does not offer.
	ErrInvalidSort = errors.New("invalid sort key")
)

// StatusFilter is the status dropdown value.
type StatusFilter string

const (
	StatusAll      StatusFilter = "all"
	StatusActive   StatusFilter = "active"
	StatusInactive StatusFilter = "inactive"
)

// AllSecondary is the secondary filter value meaning "no filter".
const AllSecondary = "all"

// ParseStatusFilter validates a status dropdown value. Empty means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusActive, StatusInactive:
		return StatusFilter(s), nil
	}
	return "", ErrInvalidStatus
}

// Fetcher loads one page of records. The gateway satisfies it.
type Fetcher interface {
	FetchPage(ctx context.Context, q resource.Query) (*resource.Page, error)
}

// Options tunes a Controller. Zero values fall back to the defaults.
type Options struct {
	PageSize     int
	Debounce     time.Duration
	FetchTimeout time.Duration
	Clock        clock.WithDelayedExecution
	Metrics      *metrics.Collector
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.Clock == nil {
		o.Clock = clock.RealClock{}
	}
	return o
}

// Controller owns the list state of one screen. Every fetch carries a
// sequence number; only the response to the latest issued fetch is
// applied, older ones are dropped when they arrive.
//
// Clock calls are made without holding mu: the fake clock used in tests
// runs timer callbacks synchronously under its own lock.
type Controller struct {
	fetcher Fetcher
	schema  *resource.Schema
	opts    Options

	mu              sync.Mutex
	searchTerm      string
	debouncedSearch string
	status          StatusFilter
	secondary       string
	page            int
	sortKey         resource.SortKey
	sortDesc        bool

	searchGen    uint64 // bumped on every keystroke
	committedGen uint64 // last generation whose debounce fired
	commitSeq    uint64 // fetch the committed generation waits on

	issued  uint64 // latest fetch sequence issued
	settled uint64 // latest fetch sequence whose response was applied
	loaded  bool   // at least one response applied
	records []resource.Entity
	paging  resource.Pagination
	err     error

	changed chan struct{}
	closed  bool

	timerMu  sync.Mutex
	timer    clock.Timer
	timerGen uint64 // generation whose timer is installed
}

// New creates a Controller in its initial state: empty search, all
// statuses, no secondary filter, page 1. No fetch is issued until
// EnsureLoaded or another operation asks for one.
func New(fetcher Fetcher, schema *resource.Schema, opts Options) *Controller {
	return &Controller{
		fetcher:   fetcher,
		schema:    schema,
		opts:      opts.withDefaults(),
		status:    StatusAll,
		secondary: AllSecondary,
		page:      1,
		changed:   make(chan struct{}),
	}
}

// Schema returns the schema the controller lists.
func (c *Controller) Schema() *resource.Schema {
	return c.schema
}

// Query returns the effective backend query for the current state.
func (c *Controller) Query() resource.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryLocked()
}

func (c *Controller) queryLocked() resource.Query {
	q := resource.Query{
		Page:   c.page,
		Limit:  c.opts.PageSize,
		Search: c.debouncedSearch,
	}
	if c.status != StatusAll {
		q.Status = string(c.status)
	}
	if c.secondary != AllSecondary {
		q.Secondary = c.secondary
	}
	return q
}

// EnsureLoaded issues the initial fetch if none has been issued yet and
// returns the sequence to wait on.
func (c *Controller) EnsureLoaded() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.issued == 0 {
		return c.issueLocked()
	}
	return c.issued
}

// Refetch re-issues the current query once (the Retry action, and the
// refresh after a successful mutation).
func (c *Controller) Refetch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issueLocked()
}

// SetSearch records a keystroke and restarts the debounce window. When the
// window closes without another keystroke the term is committed, the page
// resets to 1 and a fetch is issued. The returned generation can be passed
// to AwaitSearch.
func (c *Controller) SetSearch(term string) uint64 {
	c.mu.Lock()
	if c.closed {
		gen := c.searchGen
		c.mu.Unlock()
		return gen
	}
	c.searchTerm = term
	c.searchGen++
	gen := c.searchGen
	c.notifyLocked()
	c.mu.Unlock()

	// A concurrent keystroke may get here first; its newer timer wins.
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if gen < c.timerGen {
		return gen
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timerGen = gen
	c.timer = c.opts.Clock.AfterFunc(c.opts.Debounce, func() { c.commitSearch(gen) })

	return gen
}

// commitSearch runs when the debounce timer of generation gen fires. A
// timer that lost the race with Stop is ignored by the generation check.
func (c *Controller) commitSearch(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.searchGen {
		return
	}
	c.committedGen = gen
	if c.issued > 0 && c.searchTerm == c.debouncedSearch && c.page == 1 {
		c.commitSeq = c.issued
		c.notifyLocked()
		return
	}
	c.debouncedSearch = c.searchTerm
	c.page = 1
	c.opts.Metrics.SearchCommitted(c.schema.Name)
	c.commitSeq = c.issueLocked()
}

// SetStatusFilter changes the status filter. A change resets the page to
// 1 and fetches immediately; an unchanged value does nothing.
func (c *Controller) SetStatusFilter(s StatusFilter) (uint64, error) {
	if _, err := ParseStatusFilter(string(s)); err != nil {
		return 0, err
	}
	if s == "" {
		s = StatusAll
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if s == c.status {
		return c.issued, nil
	}
	c.status = s
	c.page = 1
	return c.issueLocked(), nil
}

// SetSecondaryFilter changes the secondary (parent/service) filter. Empty
// or "all" clears it. A change resets the page to 1 and fetches
// immediately.
func (c *Controller) SetSecondaryFilter(v string) uint64 {
	if v == "" {
		v = AllSecondary
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if v == c.secondary {
		return c.issued
	}
	c.secondary = v
	c.page = 1
	return c.issueLocked()
}

// NextPage advances one page. It is a no-op on the last page and while a
// fetch is in flight; moved reports whether anything happened.
func (c *Controller) NextPage() (seq uint64, moved bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchingLocked() || c.page >= c.paging.TotalPages {
		return c.issued, false
	}
	c.page++
	return c.issueLocked(), true
}

// PrevPage goes back one page. It is a no-op on page 1 and while a fetch is
// in flight.
func (c *Controller) PrevPage() (seq uint64, moved bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchingLocked() || c.page <= 1 {
		return c.issued, false
	}
	c.page--
	return c.issueLocked(), true
}

// SetSort reorders the current page client-side. It never fetches.
func (c *Controller) SetSort(key resource.SortKey, desc bool) error {
	if key != resource.SortNone && !c.schema.CanSort(key) {
		return ErrInvalidSort
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortKey = key
	c.sortDesc = desc
	c.notifyLocked()
	return nil
}

// Record returns a record from the current page by id.
func (c *Controller) Record(id string) (resource.Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.records {
		if e.ID == id && e.HasID() {
			return e, true
		}
	}
	return resource.Entity{}, false
}

// Await blocks until the fetch with the given sequence (or a newer one)
// has been applied, then returns the view. Sequence 0 returns at once.
func (c *Controller) Await(ctx context.Context, seq uint64) (View, error) {
	for {
		c.mu.Lock()
		if c.closed || c.settled >= seq {
			v := c.viewLocked()
			c.mu.Unlock()
			return v, nil
		}
		ch := c.changed
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return View{}, ctx.Err()
		case <-ch:
		}
	}
}

// AwaitSearch blocks until the search generation gen has been committed
// and its fetch applied. It returns ErrSuperseded as soon as a newer
// keystroke replaces gen.
func (c *Controller) AwaitSearch(ctx context.Context, gen uint64) (View, error) {
	for {
		c.mu.Lock()
		if c.searchGen != gen {
			c.mu.Unlock()
			return View{}, ErrSuperseded
		}
		if c.closed || (c.committedGen == gen && c.settled >= c.commitSeq) {
			v := c.viewLocked()
			c.mu.Unlock()
			return v, nil
		}
		ch := c.changed
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return View{}, ctx.Err()
		case <-ch:
		}
	}
}

// View returns a snapshot of the current screen state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Close stops the pending debounce timer and releases waiters. A closed
// controller ignores late responses.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.notifyLocked()
	c.mu.Unlock()

	c.timerMu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerMu.Unlock()
}

func (c *Controller) fetchingLocked() bool {
	return c.issued > c.settled
}

// issueLocked starts a fetch for the current query and returns its
// sequence number.
func (c *Controller) issueLocked() uint64 {
	c.issued++
	seq := c.issued
	q := c.queryLocked()
	c.opts.Metrics.ListFetch(c.schema.Name)
	c.notifyLocked()
	go c.run(seq, q)
	return seq
}

func (c *Controller) run(seq uint64, q resource.Query) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.FetchTimeout)
	defer cancel()

	page, err := c.fetcher.FetchPage(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if seq != c.issued {
		c.opts.Metrics.StaleResponse(c.schema.Name)
		slog.Debug("stale list response discarded",
			"entity", c.schema.Name,
			"seq", seq,
			"latest", c.issued,
		)
		return
	}

	c.settled = seq
	c.loaded = true
	if err != nil {
		c.err = err
		slog.Warn("list fetch failed", "entity", c.schema.Name, "page", q.Page, "error", err)
	} else {
		c.err = nil
		c.records = page.Records
		c.paging = page.Pagination
	}
	c.notifyLocked()
}

// notifyLocked wakes every waiter blocked in Await or AwaitSearch.
func (c *Controller) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package listing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"hsadmin/internal/confirm"
	"hsadmin/internal/form"
	"hsadmin/internal/resource"
)

// DefaultIdleTTL is how long an untouched screen stays in memory.
const DefaultIdleTTL = 30 * time.Minute

// persistTimeout bounds state writes made while evicting a screen.
const persistTimeout = 3 * time.Second

// Screen bundles everything one operator has open for one entity type:
// the list controller, the create/edit modal, the delete confirmation and
// column visibility.
type Screen struct {
	Owner   string
	Schema  *resource.Schema
	List    *Controller
	Form    *form.Form
	Delete  *confirm.Dialog
	Columns *Columns
}

// StateStore persists screen filters between evictions.
type StateStore interface {
	LoadState(ctx context.Context, owner, entity string) (*State, error)
	SaveState(ctx context.Context, owner, entity string, st State) error
}

// ColumnStore provides the operator's saved column preferences.
type ColumnStore interface {
	HiddenColumns(ctx context.Context, owner, entity string) ([]string, error)
}

// RegistryConfig wires a Registry. States and Columns are optional.
type RegistryConfig struct {
	Fetchers func(*resource.Schema) Fetcher
	States   StateStore
	Columns  ColumnStore
	IdleTTL  time.Duration
	List     Options
}

// Registry keeps one Screen per (owner, entity) in memory and expires
// screens that have been idle for IdleTTL. Expired screens are closed and
// their state saved, so the next visit restores filters and page.
type Registry struct {
	cfg     RegistryConfig
	mu      sync.Mutex
	screens *gocache.Cache
}

// NewRegistry creates a Registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	cfg.List = cfg.List.withDefaults()

	r := &Registry{
		cfg:     cfg,
		screens: gocache.New(cfg.IdleTTL, cfg.IdleTTL/2),
	}
	r.screens.OnEvicted(r.evicted)
	return r
}

func screenKey(owner, entity string) string {
	return owner + "|" + entity
}

// Screen returns the owner's screen for the schema, creating and restoring
// it on first use. Every access extends the idle deadline. Store reads run
// without the registry lock; when two first visits race, the first screen
// inserted wins and the other is discarded.
func (r *Registry) Screen(ctx context.Context, owner string, schema *resource.Schema) *Screen {
	key := screenKey(owner, schema.Name)
	if scr, ok := r.lookup(key); ok {
		return scr
	}

	// An expired screen may still sit in the cache; evict it first so it
	// is closed and its state saved before the replacement restores it.
	r.screens.DeleteExpired()

	scr := r.build(ctx, owner, schema)

	r.mu.Lock()
	if v, ok := r.screens.Get(key); ok {
		existing := v.(*Screen)
		r.screens.SetDefault(key, existing)
		r.mu.Unlock()
		scr.List.Close()
		return existing
	}
	r.screens.SetDefault(key, scr)
	r.mu.Unlock()

	r.cfg.List.Metrics.ScreensChanged(1)
	return scr
}

func (r *Registry) lookup(key string) (*Screen, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.screens.Get(key)
	if !ok {
		return nil, false
	}
	scr := v.(*Screen)
	r.screens.SetDefault(key, scr)
	return scr, true
}

// build creates a screen and restores its saved filters and columns.
func (r *Registry) build(ctx context.Context, owner string, schema *resource.Schema) *Screen {
	ctrl := New(r.cfg.Fetchers(schema), schema, r.cfg.List)
	if r.cfg.States != nil {
		st, err := r.cfg.States.LoadState(ctx, owner, schema.Name)
		if err != nil {
			slog.Warn("load list state failed", "entity", schema.Name, "error", err)
		} else if st != nil {
			ctrl.Restore(*st)
		}
	}

	var hidden []string
	if r.cfg.Columns != nil {
		cols, err := r.cfg.Columns.HiddenColumns(ctx, owner, schema.Name)
		if err != nil {
			slog.Warn("load column preferences failed", "entity", schema.Name, "error", err)
		}
		hidden = cols
	}

	return &Screen{
		Owner:   owner,
		Schema:  schema,
		List:    ctrl,
		Form:    form.New(schema),
		Delete:  confirm.New(),
		Columns: NewColumns(schema, hidden),
	}
}

// Save persists the screen's current filters, page and sort.
func (r *Registry) Save(ctx context.Context, scr *Screen) {
	if r.cfg.States == nil {
		return
	}
	if err := r.cfg.States.SaveState(ctx, scr.Owner, scr.Schema.Name, scr.List.Snapshot()); err != nil {
		slog.Warn("save list state failed", "entity", scr.Schema.Name, "error", err)
	}
}

// Len returns the number of screens held, expired ones included until the
// janitor removes them.
func (r *Registry) Len() int {
	return r.screens.ItemCount()
}

// Close evicts every screen, saving its state.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screens.DeleteExpired()
	for key := range r.screens.Items() {
		r.screens.Delete(key)
	}
}

func (r *Registry) evicted(_ string, v any) {
	scr, ok := v.(*Screen)
	if !ok {
		return
	}
	scr.List.Close()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	r.Save(ctx, scr)
	r.cfg.List.Metrics.ScreensChanged(-1)

	slog.Debug("list screen evicted", "entity", scr.Schema.Name)
}

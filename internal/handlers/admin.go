// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the admin dashboard.
// Every list screen is served by the same generic handlers, parameterized
// by the entity schema named in the URL; the handlers only translate HTTP
// into screen operations and render the result.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hsadmin/internal/cache"
	"hsadmin/internal/gateway"
	"hsadmin/internal/listing"
	"hsadmin/internal/metrics"
	"hsadmin/internal/middleware"
	"hsadmin/internal/models"
	"hsadmin/internal/render"
	"hsadmin/internal/resource"
)

const (
	// listPage is the template that holds every list screen block.
	listPage = "resource_list"

	// defaultRenderWait bounds how long a request waits for a fetch before
	// rendering the loading state instead.
	defaultRenderWait = 3 * time.Second

	// auditRecent is the number of audit entries shown on the dashboard.
	auditRecent = 10
)

// AuditLog records mutation attempts.
type AuditLog interface {
	Log(ctx context.Context, e *models.AuditEntry) error
	Recent(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// ColumnPreferences persists hidden table columns per operator.
type ColumnPreferences interface {
	SetHiddenColumns(ctx context.Context, owner, entity string, hidden []string) error
}

// Config wires an Admin. Stats, Audit, Prefs and Metrics are optional.
type Config struct {
	Renderer *render.Renderer
	Catalog  *resource.Catalog
	Client   *gateway.Client
	Screens  *listing.Registry
	Stats    *cache.StatsCache
	Audit    AuditLog
	Prefs    ColumnPreferences
	Metrics  *metrics.Collector

	// RenderWait bounds how long a request waits for a list fetch.
	RenderWait time.Duration
	// Debounce must match the list screens' debounce window.
	Debounce time.Duration
}

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer   *render.Renderer
	catalog    *resource.Catalog
	client     *gateway.Client
	screens    *listing.Registry
	stats      *cache.StatsCache
	audit      AuditLog
	prefs      ColumnPreferences
	metrics    *metrics.Collector
	renderWait time.Duration
	debounce   time.Duration
}

// NewAdmin creates a new Admin handler group with the given dependencies.
func NewAdmin(cfg Config) *Admin {
	if cfg.RenderWait <= 0 {
		cfg.RenderWait = defaultRenderWait
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = listing.DefaultDebounce
	}
	return &Admin{
		renderer:   cfg.Renderer,
		catalog:    cfg.Catalog,
		client:     cfg.Client,
		screens:    cfg.Screens,
		stats:      cfg.Stats,
		audit:      cfg.Audit,
		prefs:      cfg.Prefs,
		metrics:    cfg.Metrics,
		renderWait: cfg.RenderWait,
		debounce:   cfg.Debounce,
	}
}

// screen resolves the {entity} URL parameter and returns the operator's
// screen for it. It writes the error response itself when it returns false.
func (a *Admin) screen(w http.ResponseWriter, r *http.Request) (*listing.Screen, bool) {
	schema, ok := a.catalog.Lookup(chi.URLParam(r, "entity"))
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return a.screens.Screen(r.Context(), sess.Owner(), schema), true
}

// await waits for the fetch seq, falling back to the current (loading)
// view when it takes longer than renderWait. ok is false when the client
// went away.
func (a *Admin) await(r *http.Request, scr *listing.Screen, seq uint64) (listing.View, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), a.renderWait)
	defer cancel()
	view, err := scr.List.Await(ctx, seq)
	if err == nil {
		return view, true
	}
	if r.Context().Err() != nil {
		return listing.View{}, false
	}
	return scr.List.View(), true
}

// screenData is the data every list screen block expects.
func (a *Admin) screenData(scr *listing.Screen, view listing.View) map[string]any {
	return map[string]any{
		"Schema":  scr.Schema,
		"View":    view,
		"Columns": scr.Columns.States(),
		"Modal":   "",
		"OOB":     false,
	}
}

// renderTable answers with the table region of the screen.
func (a *Admin) renderTable(w http.ResponseWriter, r *http.Request, scr *listing.Screen, view listing.View) {
	a.renderer.Fragment(w, r, listPage, &render.PageData{Data: a.screenData(scr, view)}, "table")
}

// renderTableAndCloseModal answers with the table and an out-of-band
// update that empties the modal.
func (a *Admin) renderTableAndCloseModal(w http.ResponseWriter, r *http.Request, scr *listing.Screen, view listing.View) {
	data := a.screenData(scr, view)
	data["OOB"] = true
	a.renderer.Fragment(w, r, listPage, &render.PageData{Data: data}, "table", "modal")
}

// options loads id/name pairs of another entity for a dropdown. Failures
// leave the dropdown empty.
func (a *Admin) options(ctx context.Context, entity string) []gateway.Option {
	schema, ok := a.catalog.Lookup(entity)
	if !ok {
		return nil
	}
	opts, err := a.client.For(schema).Options(ctx)
	if err != nil {
		slog.Warn("load dropdown options failed", "entity", entity, "error", err)
	}
	return opts
}

// abort shows an error toast and leaves the page as it is.
func abort(w http.ResponseWriter, status int, message string) {
	render.Toast(w, render.ToastError, message)
	w.Header().Set("HX-Reswap", "none")
	http.Error(w, message, status)
}

// mutate runs one backend mutation through gateway hooks: the toast, the
// audit entry, metrics, KPI invalidation and the refetch of the current
// page all hang off the outcome. It returns the refetch sequence to wait
// on (0 on failure) and the error, if any.
func (a *Admin) mutate(ctx context.Context, w http.ResponseWriter, scr *listing.Screen, action models.AuditAction, rec resource.Entity, fn gateway.MutationFunc) (resource.Entity, uint64, error) {
	var (
		saved   resource.Entity
		seq     uint64
		failure error
	)
	entry := &models.AuditEntry{
		Owner:      scr.Owner,
		Entity:     scr.Schema.Name,
		RecordID:   rec.ID,
		RecordName: rec.Name,
		Action:     action,
	}

	gateway.Mutate(ctx, fn, gateway.Hooks{
		OnSuccess: func(e resource.Entity) {
			saved = e
			if entry.RecordID == "" {
				entry.RecordID = e.ID
			}
			entry.Outcome = models.OutcomeSuccess
			render.Toast(w, render.ToastSuccess, successMessage(scr.Schema, action, rec, e))
			if a.stats != nil {
				a.stats.Invalidate(ctx, scr.Schema.Name)
			}
			seq = scr.List.Refetch()
		},
		OnError: func(err error) {
			failure = err
			entry.Outcome = models.OutcomeFailure
			entry.Message = gateway.Message(err)
			render.Toast(w, render.ToastError, entry.Message)
		},
	})

	a.metrics.Mutation(scr.Schema.Name, string(action), string(entry.Outcome))
	if a.audit != nil {
		if err := a.audit.Log(ctx, entry); err != nil {
			slog.Error("audit log failed", "entity", entry.Entity, "action", entry.Action, "error", err)
		}
	}
	if failure != nil {
		slog.Warn("mutation failed",
			"entity", scr.Schema.Name,
			"action", action,
			"id", rec.ID,
			"error", failure,
		)
	} else {
		slog.Info("mutation succeeded", "entity", scr.Schema.Name, "action", action, "id", entry.RecordID)
	}
	return saved, seq, failure
}

func successMessage(s *resource.Schema, action models.AuditAction, before, after resource.Entity) string {
	switch action {
	case models.ActionCreate:
		return s.LabelSingular + " created."
	case models.ActionUpdate:
		return s.LabelSingular + " updated."
	case models.ActionDelete:
		return s.LabelSingular + " deleted."
	case models.ActionToggle:
		active := !before.IsActive
		if after.HasID() {
			active = after.IsActive
		}
		if active {
			return s.LabelSingular + " activated."
		}
		return s.LabelSingular + " deactivated."
	}
	return "Saved."
}

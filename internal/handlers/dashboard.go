// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"hsadmin/internal/cache"
	"hsadmin/internal/listing"
	"hsadmin/internal/models"
	"hsadmin/internal/render"
	"hsadmin/internal/resource"
)

// dashboardConcurrency caps parallel count requests to the backend.
const dashboardConcurrency = 4

// Tile is one entity's KPI block on the dashboard.
type Tile struct {
	Schema *resource.Schema
	Counts cache.Counts
	Err    error
}

// Dashboard renders record counts per entity and the latest changes.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	tiles := a.loadTiles(r.Context())

	var recent []models.AuditEntry
	if a.audit != nil {
		var err error
		if recent, err = a.audit.Recent(r.Context(), auditRecent); err != nil {
			slog.Error("load audit log failed", "error", err)
		}
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"Tiles": tiles,
			"Audit": recent,
		},
	})
}

// Refresh drops every cached count and renders the dashboard again.
func (a *Admin) Refresh(w http.ResponseWriter, r *http.Request) {
	if a.stats != nil {
		a.stats.InvalidateAll(r.Context())
	}
	render.Toast(w, render.ToastInfo, "Dashboard refreshed.")
	a.Dashboard(w, r)
}

// loadTiles fetches counts for every entity in parallel. A failing entity
// only marks its own tile.
func (a *Admin) loadTiles(ctx context.Context) []Tile {
	schemas := a.catalog.All()
	tiles := make([]Tile, len(schemas))

	var g errgroup.Group
	g.SetLimit(dashboardConcurrency)
	for i, s := range schemas {
		tiles[i].Schema = s
		g.Go(func() error {
			tiles[i].Counts, tiles[i].Err = a.counts(ctx, s)
			return nil
		})
	}
	_ = g.Wait()
	return tiles
}

// counts returns cached counts or asks the backend for the total and the
// active count.
func (a *Admin) counts(ctx context.Context, s *resource.Schema) (cache.Counts, error) {
	if a.stats != nil {
		if c, ok := a.stats.Get(ctx, s.Name); ok {
			return c, nil
		}
	}

	gw := a.client.For(s)
	total, err := gw.Count(ctx, "")
	if err != nil {
		slog.Warn("count failed", "entity", s.Name, "error", err)
		return cache.Counts{}, err
	}
	active, err := gw.Count(ctx, string(listing.StatusActive))
	if err != nil {
		slog.Warn("count failed", "entity", s.Name, "status", listing.StatusActive, "error", err)
		return cache.Counts{}, err
	}

	c := cache.Counts{Total: total, Active: active}
	if a.stats != nil {
		a.stats.Set(ctx, s.Name, c)
	}
	return c, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hsadmin/internal/listing"
	"hsadmin/internal/render"
	"hsadmin/internal/resource"
)

// List renders a full list screen. The first visit starts the initial
// fetch; a slow backend renders the loading state, which then polls the
// table endpoint.
func (a *Admin) List(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	view, ok := a.await(r, scr, scr.List.EnsureLoaded())
	if !ok {
		return
	}

	data := a.screenData(scr, view)
	if f := scr.Schema.Filter; f != nil {
		data["FilterOptions"] = a.options(r.Context(), f.Schema)
	} else {
		data["FilterOptions"] = nil
	}

	a.renderer.Page(w, r, listPage, &render.PageData{
		Title:   scr.Schema.Label,
		Section: scr.Schema.Name,
		Data:    data,
	})
}

// Table re-renders the table region. The loading state polls it until the
// in-flight fetch settles.
func (a *Admin) Table(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	view, ok := a.await(r, scr, scr.List.EnsureLoaded())
	if !ok {
		return
	}
	a.renderTable(w, r, scr, view)
}

// Search records a keystroke. Only the request carrying the last keystroke
// of a burst gets the table back; superseded requests answer 204 so HTMX
// leaves the page alone.
func (a *Admin) Search(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	gen := scr.List.SetSearch(r.PostFormValue("q"))

	ctx, cancel := context.WithTimeout(r.Context(), a.renderWait+a.debounce)
	defer cancel()
	view, err := scr.List.AwaitSearch(ctx, gen)
	switch {
	case errors.Is(err, listing.ErrSuperseded):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		if r.Context().Err() != nil {
			return
		}
		view = scr.List.View()
	}

	a.screens.Save(r.Context(), scr)
	a.renderTable(w, r, scr, view)
}

// Filter applies the status and secondary filters posted by the filter
// form. Only values that changed trigger a fetch.
func (a *Admin) Filter(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		abort(w, http.StatusBadRequest, "Invalid filter request.")
		return
	}
	var seq uint64
	if v, posted := r.PostForm["status"]; posted && len(v) > 0 {
		status, err := listing.ParseStatusFilter(v[0])
		if err != nil {
			abort(w, http.StatusBadRequest, "Unknown status filter.")
			return
		}
		if seq, err = scr.List.SetStatusFilter(status); err != nil {
			abort(w, http.StatusBadRequest, "Unknown status filter.")
			return
		}
	}
	if scr.Schema.Filter != nil {
		if v, posted := r.PostForm["secondary"]; posted && len(v) > 0 {
			seq = scr.List.SetSecondaryFilter(v[0])
		}
	}

	view, ok := a.await(r, scr, seq)
	if !ok {
		return
	}
	a.screens.Save(r.Context(), scr)
	a.renderTable(w, r, scr, view)
}

// Page moves one page back or forward. Moving is refused on the first and
// last page and while a fetch is in flight; the table is re-rendered
// unchanged in that case.
func (a *Admin) Page(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}

	var seq uint64
	switch chi.URLParam(r, "dir") {
	case "next":
		seq, _ = scr.List.NextPage()
	case "prev":
		seq, _ = scr.List.PrevPage()
	default:
		http.NotFound(w, r)
		return
	}

	view, ok := a.await(r, scr, seq)
	if !ok {
		return
	}
	a.screens.Save(r.Context(), scr)
	a.renderTable(w, r, scr, view)
}

// Retry refetches the current query after a failed load.
func (a *Admin) Retry(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	view, ok := a.await(r, scr, scr.List.Refetch())
	if !ok {
		return
	}
	a.renderTable(w, r, scr, view)
}

// Sort reorders the rows of the current page without a fetch.
func (a *Admin) Sort(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	key := resource.SortKey(r.PostFormValue("by"))
	if err := scr.List.SetSort(key, r.PostFormValue("desc") == "1"); err != nil {
		abort(w, http.StatusBadRequest, "This list cannot be sorted that way.")
		return
	}
	a.screens.Save(r.Context(), scr)
	a.renderTable(w, r, scr, scr.List.View())
}

// Columns shows or hides one optional column and remembers the choice.
func (a *Admin) Columns(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	key := r.PostFormValue("column")
	if _, err := scr.Columns.Toggle(key); err != nil {
		abort(w, http.StatusBadRequest, "This column cannot be hidden.")
		return
	}
	if a.prefs != nil {
		if err := a.prefs.SetHiddenColumns(r.Context(), scr.Owner, scr.Schema.Name, scr.Columns.Hidden()); err != nil {
			slog.Warn("save column preferences failed", "entity", scr.Schema.Name, "error", err)
		}
	}
	a.renderTable(w, r, scr, scr.List.View())
}

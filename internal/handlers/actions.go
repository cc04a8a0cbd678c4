// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"net/http"

	"hsadmin/internal/confirm"
	"hsadmin/internal/gateway"
	"hsadmin/internal/listing"
	"hsadmin/internal/models"
	"hsadmin/internal/render"
	"hsadmin/internal/resource"
)

// Toggle flips a record between active and inactive. The full record is
// sent back so the backend does not clear fields it did not receive.
func (a *Admin) Toggle(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	rec, ok := a.record(w, r, scr)
	if !ok {
		return
	}

	gw := a.client.For(scr.Schema)
	_, seq, err := a.mutate(r.Context(), w, scr, models.ActionToggle, rec, func(ctx context.Context) (resource.Entity, error) {
		return gw.ToggleStatus(ctx, rec)
	})
	if err != nil {
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(http.StatusOK)
		return
	}

	view, ok := a.await(r, scr, seq)
	if !ok {
		return
	}
	a.renderTable(w, r, scr, view)
}

// Delete asks for confirmation. Nothing is deleted until DeleteConfirm.
func (a *Admin) Delete(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	id := r.PostFormValue("id")
	if err := resource.RequireID(id); err != nil {
		abort(w, http.StatusBadRequest, "ID is missing.")
		return
	}
	var name string
	if rec, found := scr.List.Record(id); found {
		name = rec.Name
	}
	if err := scr.Delete.Request(id, name); err != nil {
		abort(w, http.StatusConflict, "A delete is already in progress.")
		return
	}
	a.renderDeleteModal(w, r, scr, "")
}

// DeleteConfirm deletes the pending record. A failed delete keeps the
// dialog open on the same record so the operator can retry or cancel.
func (a *Admin) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	gw := a.client.For(scr.Schema)

	var seq uint64
	_, err := scr.Delete.Confirm(r.Context(), func(ctx context.Context, id string) error {
		rec := resource.Entity{ID: id}
		if t, ok := scr.Delete.Pending(); ok {
			rec.Name = t.Name
		}
		var err error
		_, seq, err = a.mutate(ctx, w, scr, models.ActionDelete, rec, gw.DeleteFunc(id))
		return err
	})

	switch {
	case errors.Is(err, confirm.ErrNoTarget):
		abort(w, http.StatusConflict, "Nothing to delete.")
		return
	case errors.Is(err, confirm.ErrBusy):
		abort(w, http.StatusConflict, "A delete is already in progress.")
		return
	case err != nil:
		a.retargetModal(w)
		a.renderDeleteModal(w, r, scr, gateway.Message(err))
		return
	}

	view, ok := a.await(r, scr, seq)
	if !ok {
		return
	}
	a.renderTableAndCloseModal(w, r, scr, view)
}

// DeleteCancel closes the confirmation without deleting. A dialog with a
// delete in flight stays open.
func (a *Admin) DeleteCancel(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	scr.Delete.Cancel()
	if _, pending := scr.Delete.Pending(); pending {
		a.renderDeleteModal(w, r, scr, "")
		return
	}
	a.renderer.Fragment(w, r, listPage, &render.PageData{Data: a.screenData(scr, scr.List.View())}, "modal")
}

// record resolves the posted id to a record, from the current page or
// the backend.
func (a *Admin) record(w http.ResponseWriter, r *http.Request, scr *listing.Screen) (resource.Entity, bool) {
	id := r.PostFormValue("id")
	if err := resource.RequireID(id); err != nil {
		abort(w, http.StatusBadRequest, "ID is missing.")
		return resource.Entity{}, false
	}
	if rec, found := scr.List.Record(id); found {
		return rec, true
	}
	rec, err := a.client.For(scr.Schema).Get(r.Context(), id)
	if err != nil {
		abort(w, http.StatusBadGateway, gateway.Message(err))
		return resource.Entity{}, false
	}
	return rec, true
}

func (a *Admin) renderDeleteModal(w http.ResponseWriter, r *http.Request, scr *listing.Screen, deleteErr string) {
	target, _ := scr.Delete.Pending()
	data := a.screenData(scr, scr.List.View())
	data["Modal"] = "delete"
	data["DeleteTarget"] = target
	data["DeleteError"] = deleteErr
	data["DeleteBusy"] = scr.Delete.Busy()
	a.renderer.Fragment(w, r, listPage, &render.PageData{Data: data}, "modal")
}

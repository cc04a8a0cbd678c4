// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"net/http"

	"hsadmin/internal/form"
	"hsadmin/internal/gateway"
	"hsadmin/internal/listing"
	"hsadmin/internal/models"
	"hsadmin/internal/render"
	"hsadmin/internal/resource"
)

const (
	// uploadOverhead is the allowance for form fields and multipart framing
	// on top of the schema's image limit.
	uploadOverhead = 1 << 20

	// multipartMemory is how much of a multipart body is kept in memory
	// before spilling to temporary files.
	multipartMemory = 4 << 20
)

// New opens an empty create modal.
func (a *Admin) New(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	if err := scr.Form.OpenCreate(); err != nil {
		abort(w, http.StatusConflict, "Please wait for the current save to finish.")
		return
	}
	a.renderFormModal(w, r, scr, "")
}

// Edit opens the modal prefilled with a record. The record is taken from
// the current page, or loaded from the backend when it is not there.
func (a *Admin) Edit(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	id := r.FormValue("id")
	if err := resource.RequireID(id); err != nil {
		abort(w, http.StatusBadRequest, "ID is missing.")
		return
	}

	rec, found := scr.List.Record(id)
	if !found {
		var err error
		rec, err = a.client.For(scr.Schema).Get(r.Context(), id)
		if err != nil {
			abort(w, http.StatusBadGateway, gateway.Message(err))
			return
		}
	}

	switch err := scr.Form.OpenEdit(rec); {
	case errors.Is(err, form.ErrBusy):
		abort(w, http.StatusConflict, "Please wait for the current save to finish.")
		return
	case err != nil:
		abort(w, http.StatusBadRequest, "ID is missing.")
		return
	}
	a.renderFormModal(w, r, scr, "")
}

// Preview checks a picked image and answers with its preview. A rejected
// file clears any previously attached image.
func (a *Admin) Preview(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	limit := scr.Schema.Image.MaxBytes + uploadOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	file, header, err := r.FormFile(form.FieldImage)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			scr.Form.ClearImage()
			abort(w, http.StatusRequestEntityTooLarge, "Image must be at most "+scr.Schema.Image.MaxLabel()+".")
			return
		}
		abort(w, http.StatusBadRequest, "No image was uploaded.")
		return
	}
	defer file.Close()

	if _, err := scr.Form.AttachUpload(header.Filename, header.Size, file); err != nil {
		switch {
		case errors.Is(err, form.ErrClosed):
			abort(w, http.StatusConflict, "The form is no longer open.")
			return
		case errors.Is(err, form.ErrBusy):
			abort(w, http.StatusConflict, "Please wait for the current save to finish.")
			return
		}
		render.Toast(w, render.ToastError, err.Error())
	}

	data := a.screenData(scr, scr.List.View())
	data["Form"] = scr.Form.State()
	a.renderer.Fragment(w, r, listPage, &render.PageData{Data: data}, "image_preview")
}

// Save submits the modal. Invalid input and backend failures keep the
// modal open with the operator's values; success closes it and refreshes
// the table.
func (a *Admin) Save(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, scr.Schema.Image.MaxBytes+uploadOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			abort(w, http.StatusRequestEntityTooLarge, "Image must be at most "+scr.Schema.Image.MaxLabel()+".")
			return
		}
		abort(w, http.StatusBadRequest, "The form could not be read.")
		return
	}

	if err := scr.Form.Bind(r.PostForm); err != nil {
		a.formUnavailable(w, err)
		return
	}

	// A file still in the input is only used when the preview step did
	// not already attach one.
	if file, header, err := r.FormFile(form.FieldImage); err == nil {
		defer file.Close()
		if scr.Form.State().Image == "" {
			if _, err := scr.Form.AttachUpload(header.Filename, header.Size, file); err != nil {
				render.Toast(w, render.ToastError, err.Error())
				a.retargetModal(w)
				a.renderFormModal(w, r, scr, "")
				return
			}
		}
	}

	gw := a.client.For(scr.Schema)
	action := models.ActionCreate
	if scr.Form.State().IsEdit() {
		action = models.ActionUpdate
	}

	var seq uint64
	_, fieldErrs, err := scr.Form.Submit(r.Context(), func(ctx context.Context, e resource.Entity, img *resource.Image) (resource.Entity, error) {
		var (
			saved resource.Entity
			err   error
		)
		saved, seq, err = a.mutate(ctx, w, scr, action, e, func(ctx context.Context) (resource.Entity, error) {
			if action == models.ActionUpdate {
				return gw.Update(ctx, e, img)
			}
			return gw.Create(ctx, e, img)
		})
		return saved, err
	})

	switch {
	case fieldErrs.Any():
		render.Toast(w, render.ToastError, fieldErrs.Summary())
		a.retargetModal(w)
		a.renderFormModal(w, r, scr, "")
		return
	case errors.Is(err, form.ErrClosed), errors.Is(err, form.ErrBusy):
		a.formUnavailable(w, err)
		return
	case err != nil:
		a.retargetModal(w)
		a.renderFormModal(w, r, scr, gateway.Message(err))
		return
	}

	view, ok := a.await(r, scr, seq)
	if !ok {
		return
	}
	a.renderTableAndCloseModal(w, r, scr, view)
}

// Close dismisses the modal and drops anything it held. A modal with a
// submission in flight stays open.
func (a *Admin) Close(w http.ResponseWriter, r *http.Request) {
	scr, ok := a.screen(w, r)
	if !ok {
		return
	}
	scr.Form.Close()
	if scr.Form.State().Submitting() {
		a.renderFormModal(w, r, scr, "")
		return
	}
	a.renderer.Fragment(w, r, listPage, &render.PageData{Data: a.screenData(scr, scr.List.View())}, "modal")
}

// renderFormModal renders the modal with the form's current state and the
// dropdown options its schema needs.
func (a *Admin) renderFormModal(w http.ResponseWriter, r *http.Request, scr *listing.Screen, formErr string) {
	data := a.screenData(scr, scr.List.View())
	data["Modal"] = "form"
	data["Form"] = scr.Form.State()
	data["FormError"] = formErr
	data["ParentOptions"] = []gateway.Option(nil)
	data["ServiceOptions"] = []gateway.Option(nil)
	if p := scr.Schema.Parent; p != nil {
		data["ParentOptions"] = a.options(r.Context(), p.Schema)
	}
	if s := scr.Schema.AppliesTo; s != nil {
		data["ServiceOptions"] = a.options(r.Context(), s.Schema)
	}
	a.renderer.Fragment(w, r, listPage, &render.PageData{Data: data}, "modal")
}

// retargetModal redirects a response aimed at the table to the modal.
func (a *Admin) retargetModal(w http.ResponseWriter) {
	w.Header().Set("HX-Retarget", "#modal")
	w.Header().Set("HX-Reswap", "outerHTML")
}

func (a *Admin) formUnavailable(w http.ResponseWriter, err error) {
	if errors.Is(err, form.ErrBusy) {
		abort(w, http.StatusConflict, "Please wait for the current save to finish.")
		return
	}
	abort(w, http.StatusConflict, "The form is no longer open.")
}

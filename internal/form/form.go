// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package form holds the state of the create/edit modal of a list screen:
// which record is being edited, the values typed so far, the attached image
// and its preview, and the guard against double submission.
package form

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"hsadmin/internal/resource"
)

var (
	// ErrBusy is returned when a submission arrives while another one from
	// the same modal is still in flight.
	ErrBusy = errors.New("the form is already being submitted")

	// ErrClosed is returned when the modal is not open.
	ErrClosed = errors.New("the form is not open")
)

// Phase is the lifecycle position of the modal.
type Phase int

const (
	Closed Phase = iota
	Open
	Submitting
)

func (p Phase) String() string {
	switch p {
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Mode tells whether the open modal creates a record or edits one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Values are the modal's inputs as typed. Price and DisplayOrder stay
// strings so a rejected value is shown back to the operator unchanged.
type Values struct {
	ID           string
	Name         string
	Description  string
	ParentID     string
	Price        string
	DisplayOrder string
	IsActive     bool
	AppliesTo    []string
	ImageURL     string
}

// Form field names posted by the modal.
const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldParent       = "parentId"
	FieldPrice        = "price"
	FieldDisplayOrder = "displayOrder"
	FieldIsActive     = "isActive"
	FieldAppliesTo    = "appliesTo"
	FieldImage        = "image"
)

// SubmitFunc performs the create or update call for the submitted record.
type SubmitFunc func(ctx context.Context, e resource.Entity, img *resource.Image) (resource.Entity, error)

// Form is the modal of one screen. It is safe for concurrent use.
type Form struct {
	mu       sync.Mutex
	schema   *resource.Schema
	phase    Phase
	mode     Mode
	values   Values
	original resource.Entity
	image    *resource.Image
	preview  string
	errors   FieldErrors
}

// New returns a closed modal for the schema.
func New(schema *resource.Schema) *Form {
	return &Form{schema: schema}
}

// State is a copy of the modal for rendering.
type State struct {
	Schema  *resource.Schema
	Phase   Phase
	Mode    Mode
	Values  Values
	Errors  FieldErrors
	Preview string
	Image   string // filename of the attached image, if any
}

// IsOpen reports whether the modal is shown.
func (s State) IsOpen() bool { return s.Phase != Closed }

// IsEdit reports whether the modal edits an existing record.
func (s State) IsEdit() bool { return s.Mode == ModeEdit }

// Submitting reports whether the submit button should be disabled.
func (s State) Submitting() bool { return s.Phase == Submitting }

// Selected reports whether the service id is in AppliesTo.
func (s State) Selected(id string) bool {
	for _, v := range s.Values.AppliesTo {
		if v == id {
			return true
		}
	}
	return false
}

// State returns a snapshot of the modal.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := State{
		Schema:  f.schema,
		Phase:   f.phase,
		Mode:    f.mode,
		Values:  f.values,
		Errors:  f.errors,
		Preview: f.preview,
	}
	st.Values.AppliesTo = append([]string(nil), f.values.AppliesTo...)
	if f.image != nil {
		st.Image = f.image.Filename
	}
	return st
}

// OpenCreate opens an empty modal. New records default to active.
func (f *Form) OpenCreate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == Submitting {
		return ErrBusy
	}
	f.reset()
	f.phase = Open
	f.mode = ModeCreate
	f.values.IsActive = true
	return nil
}

// OpenEdit opens the modal prefilled from a canonical record.
func (f *Form) OpenEdit(e resource.Entity) error {
	if err := resource.RequireID(e.ID); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == Submitting {
		return ErrBusy
	}
	f.reset()
	f.phase = Open
	f.mode = ModeEdit
	f.original = e
	f.values = valuesOf(e)
	return nil
}

// OpenEditRaw prefills from a backend payload in any supported alias set.
func (f *Form) OpenEditRaw(raw map[string]any) error {
	return f.OpenEdit(f.schema.ToCanonical(raw))
}

func valuesOf(e resource.Entity) Values {
	v := Values{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		ParentID:    e.ParentID,
		IsActive:    e.IsActive,
		AppliesTo:   append([]string(nil), e.AppliesTo...),
		ImageURL:    e.ImageURL,
	}
	if e.Price != 0 {
		v.Price = strconv.FormatFloat(e.Price, 'f', -1, 64)
	}
	if e.DisplayOrder > 0 {
		v.DisplayOrder = strconv.Itoa(e.DisplayOrder)
	}
	return v
}

// Bind copies posted inputs into the open modal. The record id is never
// taken from the request.
func (f *Form) Bind(in url.Values) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.phase {
	case Closed:
		return ErrClosed
	case Submitting:
		return ErrBusy
	}
	f.values.Name = in.Get(FieldName)
	f.values.Description = in.Get(FieldDescription)
	f.values.DisplayOrder = strings.TrimSpace(in.Get(FieldDisplayOrder))
	f.values.IsActive = checked(in.Get(FieldIsActive))
	if f.schema.Parent != nil {
		f.values.ParentID = strings.TrimSpace(in.Get(FieldParent))
	}
	if f.schema.Priced {
		f.values.Price = strings.TrimSpace(in.Get(FieldPrice))
	}
	if f.schema.AppliesTo != nil {
		f.values.AppliesTo = f.values.AppliesTo[:0]
		for _, id := range in[FieldAppliesTo] {
			if id = strings.TrimSpace(id); id != "" {
				f.values.AppliesTo = append(f.values.AppliesTo, id)
			}
		}
	}
	return nil
}

func checked(v string) bool {
	active, ok := resource.ParseStatus(v)
	return ok && active
}

// Validate checks the current values and stores the result for rendering.
func (f *Form) Validate() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = Validate(f.schema, f.values)
	return f.errors
}

// Entity converts the current values to a canonical record. Fields the modal
// does not edit (image URL, parent name, metrics) are kept from the record
// being edited.
func (f *Form) Entity() resource.Entity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entityLocked()
}

func (f *Form) entityLocked() resource.Entity {
	e := f.original
	e.ID = f.values.ID
	e.Name = strings.TrimSpace(f.values.Name)
	e.Description = strings.TrimSpace(f.values.Description)
	e.IsActive = f.values.IsActive
	e.DisplayOrder, _ = strconv.Atoi(f.values.DisplayOrder)
	if f.schema.Parent != nil {
		if e.ParentID != f.values.ParentID {
			e.ParentName = ""
		}
		e.ParentID = f.values.ParentID
	}
	if f.schema.Priced {
		e.Price, _ = strconv.ParseFloat(f.values.Price, 64)
	}
	if f.schema.AppliesTo != nil {
		e.AppliesTo = append([]string{}, f.values.AppliesTo...)
	}
	return e
}

// Submit validates the values and, when they pass, calls fn exactly once.
// A non-empty FieldErrors means nothing was sent. On success the modal
// closes and discards its state; on failure it reopens with the values
// intact.
func (f *Form) Submit(ctx context.Context, fn SubmitFunc) (resource.Entity, FieldErrors, error) {
	f.mu.Lock()
	switch f.phase {
	case Closed:
		f.mu.Unlock()
		return resource.Entity{}, nil, ErrClosed
	case Submitting:
		f.mu.Unlock()
		return resource.Entity{}, nil, ErrBusy
	}
	f.errors = Validate(f.schema, f.values)
	if f.errors.Any() {
		errs := f.errors
		f.mu.Unlock()
		return resource.Entity{}, errs, nil
	}
	e := f.entityLocked()
	img := f.image
	f.phase = Submitting
	f.mu.Unlock()

	saved, err := fn(ctx, e, img)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.phase = Open
		return resource.Entity{}, nil, err
	}
	f.reset()
	return saved, nil, nil
}

// Close discards the modal, including any picked file and its preview.
// It has no effect while a submission is in flight.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != Submitting {
		f.reset()
	}
}

func (f *Form) reset() {
	f.phase = Closed
	f.mode = ""
	f.values = Values{}
	f.original = resource.Entity{}
	f.image = nil
	f.preview = ""
	f.errors = nil
}

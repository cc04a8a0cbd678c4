// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package confirm implements the two-step delete confirmation used by
// every list screen: a delete click only records the target, and the
// destructive call happens on explicit confirmation.
package confirm

import (
	"context"
	"errors"
	"sync"

	"hsadmin/internal/resource"
)

var (
	// ErrBusy is returned when a confirmation arrives while a delete is
	// already in flight.
	ErrBusy = errors.New("a delete is already in progress")

	// ErrNoTarget is returned when Confirm is called with nothing pending.
	ErrNoTarget = errors.New("nothing to delete")
)

// Target identifies the record awaiting confirmation.
type Target struct {
	ID   string
	Name string
}

// Dialog holds at most one pending delete target.
type Dialog struct {
	mu      sync.Mutex
	pending *Target
	busy    bool
}

// New returns a closed dialog.
func New() *Dialog {
	return &Dialog{}
}

// Request opens the dialog for the given record. A record without an id
// cannot be deleted and is rejected before anything else happens.
func (d *Dialog) Request(id, name string) error {
	if err := resource.RequireID(id); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy {
		return ErrBusy
	}
	d.pending = &Target{ID: id, Name: name}
	return nil
}

// Pending returns the current target, if any.
func (d *Dialog) Pending() (Target, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return Target{}, false
	}
	return *d.pending, true
}

// Busy reports whether a confirmed delete is in flight.
func (d *Dialog) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// Cancel closes the dialog without deleting anything. It has no effect
// while a delete is in flight.
func (d *Dialog) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.busy {
		d.pending = nil
	}
}

// Confirm calls del for the pending target. It is the only path that
// invokes the destructive operation. On success the dialog closes; on
// failure the target stays pending so the operator can retry or cancel.
func (d *Dialog) Confirm(ctx context.Context, del func(ctx context.Context, id string) error) (Target, error) {
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return Target{}, ErrBusy
	}
	if d.pending == nil {
		d.mu.Unlock()
		return Target{}, ErrNoTarget
	}
	target := *d.pending
	d.busy = true
	d.mu.Unlock()

	err := del(ctx, target.ID)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.busy = false
	if err == nil {
		d.pending = nil
	}
	return target, err
}

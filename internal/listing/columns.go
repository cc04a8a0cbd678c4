// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package listing

import (
	"errors"
	"slices"
	"sync"

	"hsadmin/internal/resource"
)

// ErrUnknownColumn is returned when toggling a column the schema does not
// define or does not allow to be hidden.
var ErrUnknownColumn = errors.New("unknown or fixed column")

// ColumnState is a column together with its current visibility.
type ColumnState struct {
	resource.Column
	Visible bool
}

// Columns tracks which hideable columns of a screen are switched off.
type Columns struct {
	mu     sync.Mutex
	schema *resource.Schema
	hidden map[string]bool
}

// NewColumns creates the visibility set with the given columns hidden.
// Keys that are unknown or not hideable are ignored.
func NewColumns(schema *resource.Schema, hidden []string) *Columns {
	c := &Columns{schema: schema, hidden: make(map[string]bool)}
	for _, key := range hidden {
		if col, ok := schema.Column(key); ok && col.Hideable {
			c.hidden[key] = true
		}
	}
	return c
}

// Toggle flips a column and reports whether it is now visible.
func (c *Columns) Toggle(key string) (bool, error) {
	col, ok := c.schema.Column(key)
	if !ok || !col.Hideable {
		return false, ErrUnknownColumn
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hidden[key] {
		delete(c.hidden, key)
		return true, nil
	}
	c.hidden[key] = true
	return false, nil
}

// Visible reports whether a column is shown.
func (c *Columns) Visible(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.hidden[key]
}

// Hidden returns the hidden column keys in sorted order.
func (c *Columns) Hidden() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.hidden))
	for k := range c.hidden {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// States lists every schema column with its visibility, in table order.
func (c *Columns) States() []ColumnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ColumnState, 0, len(c.schema.Columns))
	for _, col := range c.schema.Columns {
		out = append(out, ColumnState{Column: col, Visible: !c.hidden[col.Key]})
	}
	return out
}

// VisibleSet returns a key -> visible map for templates.
func (c *Columns) VisibleSet() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := make(map[string]bool, len(c.schema.Columns))
	for _, col := range c.schema.Columns {
		set[col.Key] = !c.hidden[col.Key]
	}
	return set
}

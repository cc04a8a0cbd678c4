// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package gateway

import (
	"context"

	"hsadmin/internal/resource"
)

// Hooks are the side effects attached to a mutation: typically a toast and
// a refetch of the current page. Either hook may be nil.
type Hooks struct {
	OnSuccess func(resource.Entity)
	OnError   func(error)
}

// MutationFunc performs one create, update, toggle or delete.
type MutationFunc func(ctx context.Context) (resource.Entity, error)

// Mutate runs fn and dispatches the outcome to hooks. Callers express what
// happens next through the hooks rather than by inspecting the result.
func Mutate(ctx context.Context, fn MutationFunc, hooks Hooks) {
	saved, err := fn(ctx)
	if err != nil {
		if hooks.OnError != nil {
			hooks.OnError(err)
		}
		return
	}
	if hooks.OnSuccess != nil {
		hooks.OnSuccess(saved)
	}
}

// DeleteFunc adapts Delete to a MutationFunc that reports the deleted id.
func (g *Gateway) DeleteFunc(id string) MutationFunc {
	return func(ctx context.Context) (resource.Entity, error) {
		if err := g.Delete(ctx, id); err != nil {
			return resource.Entity{}, err
		}
		return resource.Entity{ID: id}, nil
	}
}

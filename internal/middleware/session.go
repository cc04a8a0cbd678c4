// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"hsadmin/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
)

// SessionStore is the part of session.Store the middleware needs.
type SessionStore interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
	Create(ctx context.Context, w http.ResponseWriter) (*session.Data, error)
}

// EnsureSession loads the operator session, starting a new one when the
// browser has none or it expired, and stores it in the request context.
// Screens are keyed by session, so a request that cannot get one fails.
func EnsureSession(store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				slog.Warn("session load failed, starting a new one", "error", err)
				data = nil
			}
			if data == nil {
				data, err = store.Create(r.Context(), w)
				if err != nil {
					slog.Error("session create failed", "error", err)
					http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
					return
				}
				slog.Debug("operator session started", "owner", data.Owner())
			}

			ctx := context.WithValue(r.Context(), SessionKey, data)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

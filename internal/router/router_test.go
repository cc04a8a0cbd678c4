// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"hsadmin/internal/gateway"
	"hsadmin/internal/handlers"
	"hsadmin/internal/listing"
	"hsadmin/internal/metrics"
	"hsadmin/internal/middleware"
	"hsadmin/internal/render"
	"hsadmin/internal/resource"
	"hsadmin/internal/session"
	"hsadmin/web"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestHealthHandlerMethods(t *testing.T) {
	// Health endpoint only accepts GET.
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health: got %d, want 200", w.Code)
	}
}

// stubSessions always returns the same operator session.
type stubSessions struct {
	data *session.Data
}

func (s *stubSessions) Get(context.Context, *http.Request) (*session.Data, error) {
	return s.data, nil
}

func (s *stubSessions) Create(context.Context, http.ResponseWriter) (*session.Data, error) {
	return s.data, nil
}

// newTestRouter wires the router against an empty marketplace backend.
func newTestRouter(t *testing.T, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[],"pagination":{"page":1,"limit":10,"total":0,"totalPages":0}}`))
	}))
	t.Cleanup(backend.Close)

	catalog := resource.DefaultCatalog()
	client := gateway.NewClient(gateway.Options{BaseURL: backend.URL})
	screens := listing.NewRegistry(listing.RegistryConfig{
		Fetchers: func(s *resource.Schema) listing.Fetcher { return client.For(s) },
	})
	t.Cleanup(screens.Close)

	rn, err := render.New(render.Options{Catalog: catalog})
	if err != nil {
		t.Fatalf("render.New() error: %v", err)
	}
	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		t.Fatalf("fs.Sub() error: %v", err)
	}

	return New(Config{
		Sessions: &stubSessions{data: &session.Data{ID: uuid.New(), CreatedAt: time.Now()}},
		Admin: handlers.NewAdmin(handlers.Config{
			Renderer: rn,
			Catalog:  catalog,
			Client:   client,
			Screens:  screens,
		}),
		Metrics: metrics.New().Handler(),
		Limiter: limiter,
		Static:  static,
	})
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"stylesheet", http.MethodGet, "/static/css/admin.css", http.StatusOK},
		{"script", http.MethodGet, "/static/js/admin.js", http.StatusOK},
		{"root redirects", http.MethodGet, "/", http.StatusFound},
		{"dashboard", http.MethodGet, "/admin/", http.StatusOK},
		{"list screen", http.MethodGet, "/admin/categories", http.StatusOK},
		{"every entity", http.MethodGet, "/admin/project-items", http.StatusOK},
		{"unknown entity", http.MethodGet, "/admin/widgets", http.StatusNotFound},
		{"paging is POST only", http.MethodGet, "/admin/categories/page/next", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("%s %s: got %d, want %d", tt.method, tt.path, w.Code, tt.want)
			}
		})
	}
}

func TestSecurityHeadersOnEveryRoute(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, path := range []string{"/health", "/admin/"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("%s: X-Content-Type-Options = %q", path, got)
		}
		if w.Header().Get("Content-Security-Policy") == "" {
			t.Errorf("%s: missing Content-Security-Policy", path)
		}
	}
}

func TestAdminPostRequiresCSRF(t *testing.T) {
	r := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/categories/delete/confirm", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("POST without token: got %d, want 403", w.Code)
	}

	// With a matching cookie and header the request reaches the handler,
	// which has nothing pending to delete.
	req := httptest.NewRequest(http.MethodPost, "/admin/categories/delete/confirm", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: "tok"})
	req.Header.Set(middleware.CSRFHeaderName, "tok")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("POST with token: got %d, want 409", w.Code)
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	t.Cleanup(limiter.Stop)
	r := newTestRouter(t, limiter)

	post := func(path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: "tok"})
		req.Header.Set(middleware.CSRFHeaderName, "tok")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if got := post("/admin/categories/delete/confirm"); got == http.StatusTooManyRequests {
		t.Fatalf("first mutation was rate limited")
	}
	if got := post("/admin/categories/delete/confirm"); got != http.StatusTooManyRequests {
		t.Errorf("second mutation: got %d, want 429", got)
	}
	// Navigation is never limited.
	if got := post("/admin/categories/delete/cancel"); got == http.StatusTooManyRequests {
		t.Errorf("cancel was rate limited")
	}
}

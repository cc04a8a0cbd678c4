package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"hsadmin/internal/session"
)

type fakeSessions struct {
	existing  *session.Data
	getErr    error
	createErr error
	created   int
}

func (f *fakeSessions) Get(ctx context.Context, r *http.Request) (*session.Data, error) {
	return f.existing, f.getErr
}

func (f *fakeSessions) Create(ctx context.Context, w http.ResponseWriter) (*session.Data, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	return &session.Data{ID: uuid.New()}, nil
}

func serveWithSession(store SessionStore) (*httptest.ResponseRecorder, *session.Data) {
	var seen *session.Data
	handler := EnsureSession(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/", nil))
	return rr, seen
}

func TestEnsureSessionReusesExisting(t *testing.T) {
	existing := &session.Data{ID: uuid.New()}
	store := &fakeSessions{existing: existing}

	rr, seen := serveWithSession(store)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if seen != existing {
		t.Errorf("context session = %v, want the existing one", seen)
	}
	if store.created != 0 {
		t.Errorf("created %d sessions, want 0", store.created)
	}
}

func TestEnsureSessionCreatesWhenMissing(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeSessions
	}{
		{"no session", &fakeSessions{}},
		{"load error", &fakeSessions{getErr: errors.New("valkey down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, seen := serveWithSession(tt.store)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			if seen == nil || seen.ID == uuid.Nil {
				t.Fatal("expected a fresh session in context")
			}
			if tt.store.created != 1 {
				t.Errorf("created %d sessions, want 1", tt.store.created)
			}
		})
	}
}

func TestEnsureSessionCreateFailure(t *testing.T) {
	store := &fakeSessions{createErr: errors.New("valkey down")}
	rr, seen := serveWithSession(store)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
	if seen != nil {
		t.Error("handler must not run without a session")
	}
}

func TestSessionFromCtxEmpty(t *testing.T) {
	if SessionFromCtx(context.Background()) != nil {
		t.Error("expected nil without a session")
	}
}

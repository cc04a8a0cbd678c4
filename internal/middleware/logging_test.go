package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// logCapture swaps the default slog logger for a JSON logger writing to a
// buffer, for the duration of one test.
type logCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func captureLogs(t *testing.T) *logCapture {
	t.Helper()
	c := &logCapture{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return c
}

// requests returns every "http request" record logged so far.
func (c *logCapture) requests(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(c.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if rec["msg"] == "http request" {
			out = append(out, rec)
		}
	}
	return out
}

// only returns the single request record, failing the test otherwise.
func (c *logCapture) only(t *testing.T) map[string]any {
	t.Helper()
	recs := c.requests(t)
	if len(recs) != 1 {
		t.Fatalf("request records: got %d, want 1", len(recs))
	}
	return recs[0]
}

func statusHandler(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	})
}

func TestLogger(t *testing.T) {
	t.Run("passes the response through and logs it", func(t *testing.T) {
		logs := captureLogs(t)
		var called bool
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusCreated)
		})

		rr := httptest.NewRecorder()
		Logger(inner).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/services/save", nil))

		if !called {
			t.Error("next handler should have been called")
		}
		if rr.Code != http.StatusCreated {
			t.Errorf("status: got %d, want 201", rr.Code)
		}
		rec := logs.only(t)
		if rec["method"] != http.MethodPost || rec["path"] != "/admin/services/save" {
			t.Errorf("method/path: got %v %v", rec["method"], rec["path"])
		}
		if rec["status"] != float64(http.StatusCreated) {
			t.Errorf("logged status: got %v, want 201", rec["status"])
		}
	})

	t.Run("implicit 200 on write", func(t *testing.T) {
		logs := captureLogs(t)
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("hello"))
		})

		rr := httptest.NewRecorder()
		Logger(inner).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if rr.Body.String() != "hello" {
			t.Errorf("body: got %q, want %q", rr.Body.String(), "hello")
		}
		if got := logs.only(t)["status"]; got != float64(http.StatusOK) {
			t.Errorf("logged status: got %v, want 200", got)
		}
	})

	levels := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"client error is info", "/admin/widgets", http.StatusNotFound, "INFO"},
		{"server error is error", "/admin/services", http.StatusBadGateway, "ERROR"},
		{"health probe is debug", "/health", http.StatusOK, "DEBUG"},
		{"metrics scrape is debug", "/metrics", http.StatusOK, "DEBUG"},
		{"failing health probe is error", "/health", http.StatusServiceUnavailable, "ERROR"},
	}
	for _, tt := range levels {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			rr := httptest.NewRecorder()
			Logger(statusHandler(tt.status)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rr.Code != tt.status {
				t.Errorf("status: got %d, want %d", rr.Code, tt.status)
			}
			if got := logs.only(t)["level"]; got != tt.want {
				t.Errorf("level: got %v, want %s", got, tt.want)
			}
		})
	}

	t.Run("flags htmx requests", func(t *testing.T) {
		logs := captureLogs(t)
		handler := Logger(statusHandler(http.StatusOK))

		plain := httptest.NewRequest(http.MethodGet, "/admin/services", nil)
		handler.ServeHTTP(httptest.NewRecorder(), plain)

		htmx := httptest.NewRequest(http.MethodPost, "/admin/services/search", nil)
		htmx.Header.Set("HX-Request", "true")
		handler.ServeHTTP(httptest.NewRecorder(), htmx)

		recs := logs.requests(t)
		if len(recs) != 2 {
			t.Fatalf("request records: got %d, want 2", len(recs))
		}
		if recs[0]["htmx"] != false {
			t.Errorf("plain request htmx: got %v, want false", recs[0]["htmx"])
		}
		if recs[1]["htmx"] != true {
			t.Errorf("htmx request htmx: got %v, want true", recs[1]["htmx"])
		}
	})

	t.Run("includes the request id", func(t *testing.T) {
		logs := captureLogs(t)
		handler := chimw.RequestID(Logger(statusHandler(http.StatusOK)))

		req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
		req.Header.Set(chimw.RequestIDHeader, "req-42")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if got := logs.only(t)["request_id"]; got != "req-42" {
			t.Errorf("request_id: got %v, want req-42", got)
		}
	})

	t.Run("request id is empty without the id middleware", func(t *testing.T) {
		logs := captureLogs(t)
		Logger(statusHandler(http.StatusOK)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/", nil))

		if got := logs.only(t)["request_id"]; got != "" {
			t.Errorf("request_id: got %v, want empty", got)
		}
	})
}

// TestResponseWriter tests the responseWriter wrapper used by the Logger
// middleware to verify it correctly captures status codes.
func TestResponseWriter(t *testing.T) {
	t.Run("WriteHeader captures status code", func(t *testing.T) {
		rr := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

		rw.WriteHeader(http.StatusNotFound)

		if rw.statusCode != http.StatusNotFound {
			t.Errorf("statusCode: got %d, want 404", rw.statusCode)
		}
		if !rw.written {
			t.Error("written should be true after WriteHeader")
		}
	})

	t.Run("WriteHeader only captures first call", func(t *testing.T) {
		rr := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

		rw.WriteHeader(http.StatusNotFound)
		rw.WriteHeader(http.StatusInternalServerError) // Should be ignored.

		if rw.statusCode != http.StatusNotFound {
			t.Errorf("statusCode: got %d, want 404 (first call)", rw.statusCode)
		}
	})

	t.Run("Write sets default 200 status", func(t *testing.T) {
		rr := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

		n, err := rw.Write([]byte("test"))
		if err != nil {
			t.Fatalf("Write error: %v", err)
		}
		if n != 4 {
			t.Errorf("bytes written: got %d, want 4", n)
		}
		if rw.statusCode != http.StatusOK {
			t.Errorf("statusCode: got %d, want 200", rw.statusCode)
		}
		if !rw.written {
			t.Error("written should be true after Write")
		}
	})

	t.Run("Write does not override explicit WriteHeader", func(t *testing.T) {
		rr := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

		rw.WriteHeader(http.StatusCreated)
		rw.Write([]byte("created"))

		if rw.statusCode != http.StatusCreated {
			t.Errorf("statusCode: got %d, want 201", rw.statusCode)
		}
	})
}

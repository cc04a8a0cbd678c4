// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the admin interface.
// It supports full-page and HTMX partial rendering, automatically detecting
// the request type via the HX-Request header.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"hsadmin/internal/middleware"
	"hsadmin/internal/resource"
	"hsadmin/internal/session"
)

//go:embed templates/admin/*.html
var adminFS embed.FS

// Shared templates parsed into every page.
const (
	baseTemplate     = "base.html"
	partialsTemplate = "partials.html"
)

// PageData holds all data passed to admin templates.
type PageData struct {
	Title     string             // Page title for <title> tag
	Section   string             // Active sidebar section ("dashboard" or an entity name)
	Session   *session.Data      // Current operator session
	CSRFToken string             // CSRF token for HTMX headers
	Nav       []*resource.Schema // Sidebar entries
	Data      map[string]any     // Page-specific data
}

// Options configures a Renderer.
type Options struct {
	// DevMode loads the unminified HTMX build.
	DevMode bool
	// ImageBaseURL prefixes relative image paths returned by the backend.
	ImageBaseURL string
	// Catalog provides the sidebar entries.
	Catalog *resource.Catalog
}

// Renderer handles template parsing and execution for admin pages.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
	nav       []*resource.Schema
}

// New creates a Renderer by parsing all admin templates from the embedded
// filesystem. Each page template is paired with the base layout and the
// shared partials.
func New(opts Options) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap:   funcMap(opts),
	}
	if opts.Catalog != nil {
		r.nav = opts.Catalog.All()
	}

	entries, err := fs.ReadDir(adminFS, "templates/admin")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == baseTemplate || name == partialsTemplate {
			continue
		}

		tmpl, err := template.New(baseTemplate).Funcs(r.funcMap).ParseFS(adminFS,
			"templates/admin/"+baseTemplate,
			"templates/admin/"+partialsTemplate,
			"templates/admin/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

func funcMap(opts Options) template.FuncMap {
	return template.FuncMap{
		"activeClass": func(current, target string) string {
			if current == target {
				return "active"
			}
			return ""
		},
		"isDev": func() bool {
			return opts.DevMode
		},
		// imageURL resolves a backend image path against the image base URL.
		"imageURL": func(raw string) string {
			return resource.ResolveImageURL(opts.ImageBaseURL, raw)
		},
		// dataURL marks a preview generated by the server as a safe URL.
		"dataURL": func(s string) template.URL {
			if !strings.HasPrefix(s, "data:image/") {
				return ""
			}
			return template.URL(s)
		},
		"money": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"truncate": truncate,
		"join":     strings.Join,
		// vals encodes key/value pairs as JSON for hx-vals attributes.
		"vals": func(kv ...string) (string, error) {
			if len(kv)%2 != 0 {
				return "", fmt.Errorf("vals: odd number of arguments")
			}
			m := make(map[string]string, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				m[kv[i]] = kv[i+1]
			}
			b, err := json.Marshal(m)
			return string(b), err
		},
		// dict builds a map so a sub-template can receive several values.
		"dict": func(kv ...any) (map[string]any, error) {
			if len(kv)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			m := make(map[string]any, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				key, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
				}
				m[key] = kv[i+1]
			}
			return m, nil
		},
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// Page renders a full admin page or an HTMX partial, depending on the
// request headers. For HTMX requests, only the "content" block is sent.
// For full page loads, the entire base layout is rendered.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	block := baseTemplate
	if IsHTMX(r) {
		block = "content"
	}
	rn.Fragment(w, r, name, data, block)
}

// Fragment renders the named blocks of a page template, in order, into a
// single response. Handlers use it to answer HTMX requests with the table
// and an out-of-band modal update together.
func (rn *Renderer) Fragment(w http.ResponseWriter, r *http.Request, page string, data *PageData, blocks ...string) {
	tmpl, ok := rn.templates[page]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", page), http.StatusInternalServerError)
		return
	}
	rn.fill(r, data)

	var buf bytes.Buffer
	for _, block := range blocks {
		if err := tmpl.ExecuteTemplate(&buf, block, data); err != nil {
			slog.Error("template execution failed", "page", page, "block", block, "error", err)
			http.Error(w, "template error", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("write response failed", "page", page, "error", err)
	}
}

// fill injects the request-scoped values every template expects.
func (rn *Renderer) fill(r *http.Request, data *PageData) {
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.Nav == nil {
		data.Nav = rn.nav
	}
	if data.Data == nil {
		data.Data = map[string]any{}
	}
}

// IsHTMX returns true if the request was made by HTMX (has HX-Request header).
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Package web provides embedded static assets (CSS, JS) for the admin interface.
// HTMX itself is loaded from unpkg; everything the dashboard ships on its
// own is embedded here and served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree: the admin stylesheet and
// the small script that renders toasts and handles image drag-and-drop.
//
//go:embed all:static
var StaticFS embed.FS

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package resource

import "strings"

// Image is an image file attached to a create or update request.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ResolveImageURL turns a stored image reference into a URL the browser can
// load. Absolute and data URLs pass through; relative paths are joined onto
// base with exactly one slash. An empty reference resolves to "" and the
// table shows its placeholder glyph instead.
func ResolveImageURL(base, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:") || strings.HasPrefix(raw, "//") {
		return raw
	}
	if base == "" {
		return raw
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(raw, "/")
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Toast levels understood by admin.js.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

type toastEvent struct {
	Toast struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"toast"`
}

// Toast asks the browser to show a dismissible notification by setting the
// HX-Trigger response header. It must be called before the body is written.
func Toast(w http.ResponseWriter, level, message string) {
	var ev toastEvent
	ev.Toast.Level = level
	ev.Toast.Message = message
	b, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("encode toast failed", "error", err)
		return
	}
	w.Header().Set("HX-Trigger", string(b))
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package form

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"hsadmin/internal/resource"
)

// Validation limits for modal fields.
const (
	maxNameLen        = 200
	maxDescriptionLen = 2_000
)

// FieldErrors maps a form field name to the message shown under it.
type FieldErrors map[string]string

// Any reports whether at least one field failed.
func (fe FieldErrors) Any() bool { return len(fe) > 0 }

// Summary returns the first message in field order, for the toast.
func (fe FieldErrors) Summary() string {
	for _, k := range []string{FieldName, FieldDescription, FieldParent, FieldPrice, FieldAppliesTo, FieldDisplayOrder, FieldImage} {
		if msg, ok := fe[k]; ok {
			return msg
		}
	}
	return ""
}

// Validate checks values against the schema's required fields. Parent
// existence is left to the backend; only a selection is required here.
func Validate(schema *resource.Schema, v Values) FieldErrors {
	errs := FieldErrors{}

	name := strings.TrimSpace(v.Name)
	switch {
	case name == "":
		errs[FieldName] = "Name is required."
	case utf8.RuneCountInString(name) > maxNameLen:
		errs[FieldName] = "Name is too long (max 200 characters)."
	}

	desc := strings.TrimSpace(v.Description)
	switch {
	case schema.RequireDescription && desc == "":
		errs[FieldDescription] = "Description is required."
	case utf8.RuneCountInString(desc) > maxDescriptionLen:
		errs[FieldDescription] = "Description is too long (max 2,000 characters)."
	}

	if schema.Parent != nil && schema.Parent.Required && strings.TrimSpace(v.ParentID) == "" {
		errs[FieldParent] = "Select a " + strings.ToLower(schema.Parent.Label) + "."
	}

	if schema.Priced {
		if msg := validatePrice(v.Price); msg != "" {
			errs[FieldPrice] = msg
		}
	}

	if schema.AppliesTo != nil && len(v.AppliesTo) == 0 {
		errs[FieldAppliesTo] = "Select at least one service."
	}

	if v.DisplayOrder != "" {
		if n, err := strconv.Atoi(v.DisplayOrder); err != nil || n < 1 {
			errs[FieldDisplayOrder] = "Display order must be a positive whole number."
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validatePrice(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Price is required."
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return "Price must be a number."
	}
	if p <= 0 {
		return "Price must be greater than zero."
	}
	return ""
}

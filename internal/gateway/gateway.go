// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"hsadmin/internal/resource"
)

// Operation names used for metrics and logs.
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpToggle = "toggle"
)

// optionsLimit is the page size used to populate parent dropdowns.
const optionsLimit = 100

// Gateway performs list and CRUD calls for one entity type.
type Gateway struct {
	client *Client
	schema *resource.Schema
}

// Schema returns the schema this gateway is bound to.
func (g *Gateway) Schema() *resource.Schema {
	return g.schema
}

// Option is an id/name pair used to fill parent and filter dropdowns.
type Option struct {
	ID   string
	Name string
}

// FetchPage lists one page of records matching q. Records are normalized
// to the canonical shape and get a positional display order when the
// backend omits one.
func (g *Gateway) FetchPage(ctx context.Context, q resource.Query) (*resource.Page, error) {
	var raw json.RawMessage
	if _, err := g.client.do(ctx, request{
		entity: g.schema.Name,
		op:     OpList,
		method: http.MethodGet,
		path:   g.schema.Path,
		query:  q.Values(g.schema),
	}, &raw); err != nil {
		return nil, err
	}

	rows, meta, err := decodeList(raw)
	if err != nil {
		return nil, fmt.Errorf("%s list: %w", g.schema.Name, err)
	}

	records := make([]resource.Entity, 0, len(rows))
	for _, row := range rows {
		records = append(records, g.schema.ToCanonical(row))
	}
	pagination := resource.ParsePagination(meta, q, len(records))
	resource.ApplyDefaultOrder(records, pagination.Page, pagination.Limit)

	return &resource.Page{Records: records, Pagination: pagination}, nil
}

// Count returns the total number of records with the given status filter
// ("" for all) by asking for a single-record page.
func (g *Gateway) Count(ctx context.Context, status string) (int, error) {
	page, err := g.FetchPage(ctx, resource.Query{Page: 1, Limit: 1, Status: status})
	if err != nil {
		return 0, err
	}
	return page.Pagination.Total, nil
}

// Options lists id/name pairs for dropdowns, active and inactive alike.
func (g *Gateway) Options(ctx context.Context) ([]Option, error) {
	page, err := g.FetchPage(ctx, resource.Query{Page: 1, Limit: optionsLimit})
	if err != nil {
		return nil, err
	}
	opts := make([]Option, 0, len(page.Records))
	for _, e := range page.Records {
		if e.HasID() {
			opts = append(opts, Option{ID: e.ID, Name: e.Name})
		}
	}
	return opts, nil
}

// Get reads a single record.
func (g *Gateway) Get(ctx context.Context, id string) (resource.Entity, error) {
	if err := resource.RequireID(id); err != nil {
		g.client.metrics.ObserveGateway(g.schema.Name, OpGet, "invalid", 0)
		return resource.Entity{}, err
	}
	var raw json.RawMessage
	if _, err := g.client.do(ctx, request{
		entity: g.schema.Name,
		op:     OpGet,
		method: http.MethodGet,
		path:   g.itemPath(id),
	}, &raw); err != nil {
		return resource.Entity{}, err
	}
	row, err := decodeRecord(raw)
	if err != nil {
		return resource.Entity{}, fmt.Errorf("%s get: %w", g.schema.Name, err)
	}
	return g.schema.ToCanonical(row), nil
}

// Create posts a new record. When img is non-nil the request is sent as
// multipart/form-data with the image in the "image" part.
func (g *Gateway) Create(ctx context.Context, e resource.Entity, img *resource.Image) (resource.Entity, error) {
	return g.write(ctx, OpCreate, http.MethodPost, g.schema.Path, e, img)
}

// Update sends the full known record to the backend; fields are never
// omitted, so partial-update endpoints cannot clear them by accident.
func (g *Gateway) Update(ctx context.Context, e resource.Entity, img *resource.Image) (resource.Entity, error) {
	if err := resource.RequireID(e.ID); err != nil {
		g.client.metrics.ObserveGateway(g.schema.Name, OpUpdate, "invalid", 0)
		return resource.Entity{}, err
	}
	return g.write(ctx, OpUpdate, http.MethodPatch, g.itemPath(e.ID), e, img)
}

// ToggleStatus flips the record's active flag and resends the whole record.
func (g *Gateway) ToggleStatus(ctx context.Context, e resource.Entity) (resource.Entity, error) {
	if err := resource.RequireID(e.ID); err != nil {
		g.client.metrics.ObserveGateway(g.schema.Name, OpToggle, "invalid", 0)
		return resource.Entity{}, err
	}
	e.IsActive = !e.IsActive
	return g.write(ctx, OpToggle, http.MethodPatch, g.itemPath(e.ID), e, nil)
}

// Delete removes a record.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	if err := resource.RequireID(id); err != nil {
		g.client.metrics.ObserveGateway(g.schema.Name, OpDelete, "invalid", 0)
		return err
	}
	_, err := g.client.do(ctx, request{
		entity: g.schema.Name,
		op:     OpDelete,
		method: http.MethodDelete,
		path:   g.itemPath(id),
	}, nil)
	return err
}

func (g *Gateway) write(ctx context.Context, op, method, path string, e resource.Entity, img *resource.Image) (resource.Entity, error) {
	wire := g.schema.ToWire(e)

	var body any = wire
	if img != nil {
		mp, err := encodeMultipart(wire, img)
		if err != nil {
			return resource.Entity{}, fmt.Errorf("%s %s: %w", g.schema.Name, op, err)
		}
		body = mp
	}

	var raw json.RawMessage
	empty, err := g.client.do(ctx, request{
		entity: g.schema.Name,
		op:     op,
		method: method,
		path:   path,
		body:   body,
	}, &raw)
	if err != nil {
		return resource.Entity{}, err
	}
	if empty {
		return e, nil
	}

	row, err := decodeRecord(raw)
	if err != nil || len(row) == 0 {
		return e, nil
	}
	saved := g.schema.ToCanonical(row)
	if !saved.HasID() {
		if saved.Name == "" {
			// Acknowledgement body such as {"message": "updated"}.
			return e, nil
		}
		saved.ID = e.ID
	}
	return saved, nil
}

func (g *Gateway) itemPath(id string) string {
	return g.schema.Path + "/" + url.PathEscape(id)
}

// decodeList accepts the documented {data, pagination} envelope as well as
// a bare array and a few envelope spellings seen in older backend builds.
// meta is the pagination object, or the envelope itself when the paging
// fields sit at the top level.
func decodeList(raw json.RawMessage) (rows []map[string]any, meta map[string]any, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil, nil
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, nil, fmt.Errorf("decode records: %w", err)
		}
		return rows, nil, nil
	}

	var env map[string]any
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, nil, fmt.Errorf("decode envelope: %w", err)
	}

	var list []any
	for _, key := range []string{"data", "items", "results", "records"} {
		switch v := env[key].(type) {
		case []any:
			list = v
		case map[string]any:
			// {data: {items: [...], pagination: {...}}}
			if inner, ok := v["items"].([]any); ok {
				list = inner
				if p, ok := v["pagination"].(map[string]any); ok {
					meta = p
				}
			}
		}
		if list != nil {
			break
		}
	}

	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			rows = append(rows, m)
		}
	}

	if meta == nil {
		for _, key := range []string{"pagination", "meta"} {
			if p, ok := env[key].(map[string]any); ok {
				meta = p
				break
			}
		}
	}
	if meta == nil {
		meta = env
	}
	return rows, meta, nil
}

// decodeRecord unwraps a single record, with or without a {data: ...}
// envelope.
func decodeRecord(raw json.RawMessage) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		return inner, nil
	}
	return obj, nil
}

// multipartBody is a fully encoded multipart/form-data request body.
type multipartBody struct {
	data        []byte
	contentType string
}

func encodeMultipart(fields map[string]any, img *resource.Image) (*multipartBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		for _, s := range formValues(value) {
			if err := w.WriteField(key, s); err != nil {
				return nil, fmt.Errorf("write field %s: %w", key, err)
			}
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, img.Filename))
	h.Set("Content-Type", img.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, fmt.Errorf("write image part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return &multipartBody{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

// formValues renders a wire value as multipart field values. Slices become
// repeated fields.
func formValues(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case bool:
		return []string{strconv.FormatBool(t)}
	case int:
		return []string{strconv.Itoa(t)}
	case float64:
		return []string{strconv.FormatFloat(t, 'f', -1, 64)}
	case []string:
		return t
	}
	return []string{fmt.Sprint(v)}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package gateway talks to the marketplace REST backend. One Client holds
// the connection settings; Client.For returns a Gateway bound to a single
// entity schema that lists, reads and mutates records of that type.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"hsadmin/internal/metrics"
	"hsadmin/internal/resource"
)

const (
	// DefaultTimeout bounds every backend request.
	DefaultTimeout = 15 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 10 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string // optional bearer token for the backend
	Timeout   time.Duration
	Metrics   *metrics.Collector
	Transport http.RoundTripper // defaults to http.DefaultTransport
}

// Client is a configured HTTP client for the marketplace API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	metrics *metrics.Collector
}

// NewClient creates a Client. Outgoing requests are traced with otelhttp so
// backend calls appear as child spans of the admin request.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		http: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(transport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "marketplace " + r.Method + " " + r.URL.Path
				}),
			),
		},
		metrics: opts.Metrics,
	}
}

// For returns a Gateway bound to the given schema.
func (c *Client) For(s *resource.Schema) *Gateway {
	return &Gateway{client: c, schema: s}
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Message turns a gateway error into text safe to show an operator. Only
// the backend's own message is passed through; transport errors carry the
// backend address and are replaced with a generic text.
func Message(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond. Please try again."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	default:
		return "Could not reach the server. Please try again."
	}
}

// request is one backend call. body is either nil, a JSON-encodable value,
// or a prepared *multipartBody.
type request struct {
	entity string
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

// do executes the request and decodes a JSON response into out (which may
// be nil). An empty 2xx body leaves out untouched and reports empty=true.
func (c *Client) do(ctx context.Context, req request, out any) (empty bool, err error) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		if err != nil {
			outcome = "error"
		}
		c.metrics.ObserveGateway(req.entity, req.op, outcome, time.Since(start))
	}()

	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch b := req.body.(type) {
	case nil:
	case *multipartBody:
		body = bytes.NewReader(b.data)
		contentType = b.contentType
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return false, fmt.Errorf("marshal %s request: %w", req.op, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return false, fmt.Errorf("create %s request: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", req.entity, req.op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, fmt.Errorf("read %s response: %w", req.op, err)
	}

	slog.Debug("marketplace request",
		"entity", req.entity,
		"op", req.op,
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, respBody)}
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return true, nil
	}
	if out == nil {
		return false, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return false, fmt.Errorf("decode %s response: %w", req.op, err)
	}
	return false, nil
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(status int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "error", "detail", "msg"} {
			switch v := payload[key].(type) {
			case string:
				if v != "" {
					return v
				}
			case map[string]any:
				if m, ok := v["message"].(string); ok && m != "" {
					return m
				}
			case []any:
				if len(v) > 0 {
					if m, ok := v[0].(string); ok && m != "" {
						return m
					}
				}
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 300 && !strings.HasPrefix(text, "<") {
		return text
	}
	return fmt.Sprintf("request failed: %d %s", status, http.StatusText(status))
}

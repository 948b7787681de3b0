// Package n8n triggers n8n workflows through their webhook URLs.
package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/gmailmcp/internal/instrumentation"
)

// DefaultTimeout bounds a single webhook call.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is kept in StatusError.
const maxErrorBody = 1024

// ErrNotConfigured is returned when no webhook base URL is set.
var ErrNotConfigured = errors.New("n8n webhook base URL is not configured")

// StatusError is returned for non-2xx webhook responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("n8n webhook returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("n8n webhook returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Client posts JSON payloads to webhooks below a base URL.
type Client struct {
	baseURL string
	hc      *http.Client
	metrics *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the traced default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// WithMetrics records every call as an api_calls_total sample.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a Client for baseURL, e.g. "https://n8n.example.com/webhook".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the webhook URL for path.
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Trigger posts payload as JSON to the webhook at path and returns the HTTP
// status code. A nil payload is sent as {}.
func (c *Client) Trigger(ctx context.Context, path string, payload map[string]any) (int, error) {
	if c.baseURL == "" {
		return 0, ErrNotConfigured
	}
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding payload: %w", err)
	}

	start := time.Now()
	status, err := c.post(ctx, c.URL(path), body)

	if c.metrics != nil {
		result := instrumentation.StatusSuccess
		if err != nil {
			result = instrumentation.StatusError
		}
		c.metrics.RecordAPICall(ctx, instrumentation.ServiceN8N, instrumentation.OperationPost, result, time.Since(start))
	}
	return status, err
}

func (c *Client) post(ctx context.Context, url string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calling n8n webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

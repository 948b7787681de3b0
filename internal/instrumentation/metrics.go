package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrCode      = "code"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrAccount   = "account"
)

var durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// Metrics records the server's metrics. A zero Metrics is a valid no-op
// recorder.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	apiCallsTotal   metric.Int64Counter
	apiCallDuration metric.Float64Histogram

	oauthAuthTotal         metric.Int64Counter
	oauthTokenRefreshTotal metric.Int64Counter

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	detailedLabels bool
}

// NewMetrics creates all instruments on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}
	var err error

	if m.httpRequestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}")); err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}
	if m.httpRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0)); err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	if m.apiCallsTotal, err = meter.Int64Counter("api_calls_total",
		metric.WithDescription("Total number of outbound API calls by service and operation"),
		metric.WithUnit("{call}")); err != nil {
		return nil, fmt.Errorf("failed to create api_calls_total counter: %w", err)
	}
	if m.apiCallDuration, err = meter.Float64Histogram("api_call_duration_seconds",
		metric.WithDescription("Outbound API call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, fmt.Errorf("failed to create api_call_duration_seconds histogram: %w", err)
	}

	if m.oauthAuthTotal, err = meter.Int64Counter("oauth_auth_total",
		metric.WithDescription("Total number of OAuth code exchanges"),
		metric.WithUnit("{attempt}")); err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_total counter: %w", err)
	}
	if m.oauthTokenRefreshTotal, err = meter.Int64Counter("oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{attempt}")); err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	if m.toolInvocationsTotal, err = meter.Int64Counter("mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}")); err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}
	if m.toolDuration, err = meter.Float64Histogram("mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records one request served by the HTTP transport.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordAPICall records one outbound call, for example service "gmail" and
// operation "send".
func (m *Metrics) RecordAPICall(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.apiCallsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.apiCallsTotal.Add(ctx, 1, attrs)
	m.apiCallDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordOAuthAuth records an authorization code exchange.
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m.oauthAuthTotal == nil {
		return
	}
	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordOAuthTokenRefresh records a token refresh.
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m.oauthTokenRefreshTotal == nil {
		return
	}
	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// ToolCall describes one finished tool invocation for metrics.
type ToolCall struct {
	Tool     string
	Status   string
	Code     string // envelope error code, empty on success
	Account  string // only recorded with detailed labels
	Duration time.Duration
}

// RecordToolInvocation records a tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, call ToolCall) {
	if m.toolInvocationsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, call.Tool),
		attribute.String(attrStatus, call.Status),
	}
	if call.Code != "" {
		attrs = append(attrs, attribute.String(attrCode, call.Code))
	}
	if m.detailedLabels && call.Account != "" {
		attrs = append(attrs, attribute.String(attrAccount, call.Account))
	}

	opt := metric.WithAttributes(attrs...)
	m.toolInvocationsTotal.Add(ctx, 1, opt)
	m.toolDuration.Record(ctx, call.Duration.Seconds(), opt)
}

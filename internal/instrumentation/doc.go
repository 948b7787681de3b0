// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the gmailmcp server.
//
// # Metrics
//
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: by tool, status
//     and envelope error code
//   - api_calls_total, api_call_duration_seconds: outbound Gmail and n8n calls
//     by service, operation and status
//   - oauth_auth_total, oauth_token_refresh_total: by result
//   - http_requests_total, http_request_duration_seconds: streamable HTTP
//     transport
//
// # Tracing
//
// Tool calls produce a server span "tool.<name>" and Gmail API calls a
// client span "google.gmail.<operation>".
//
// # Configuration
//
// DefaultConfig reads INSTRUMENTATION_ENABLED, METRICS_EXPORTER
// (prometheus, otlp, stdout), TRACING_EXPORTER (otlp, stdout, none),
// OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_TRACES_SAMPLER_ARG, OTEL_SERVICE_NAME,
// METRICS_DETAILED_LABELS, AUDIT_LOGGING_ENABLED and
// AUDIT_LOGGING_INCLUDE_PII. Exporters never write to stdout because it
// carries the MCP stdio transport.
package instrumentation

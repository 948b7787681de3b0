// Package server provides the MCP server context and the HTTP side of the
// gmailmcp server.
//
// # Key Components
//
// ServerContext owns one gmail.Service per account, created lazily on first
// use, plus the optional n8n client, metrics recorder and audit logger that
// tool handlers share.
//
// HTTPServer serves the MCP streamable HTTP transport at /mcp together with
// the /healthz, /readyz and /healthz/detailed endpoints. Every request is traced
// with otelhttp and counted in http_requests_total.
//
// MetricsServer exposes Prometheus metrics on a dedicated port so operational
// data stays off the MCP listener.
package server

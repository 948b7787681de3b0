// Package common connects the operation dispatcher to the MCP server.
//
// DispatchHandler turns a dispatcher and an operation name into an mcp-go
// tool handler: it assigns the invocation ID, opens the tool span, records
// tool metrics and the audit record, and returns the result envelope as JSON
// text. The account helpers are shared by every operation catalog.
package common

// Package cmd implements the command-line interface for gmailmcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - auth: Authorize, inspect and forget Google accounts (url, login, status, logout)
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - config: Print the effective configuration as YAML
//   - version: Display version information
package cmd

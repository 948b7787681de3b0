// Package resources provides MCP resources exposing account data.
// Resources are read-only documents MCP clients can fetch alongside the
// tool catalog:
//
//   - gmail://accounts lists the accounts this server has seen and whether
//     each one is authorized.
//   - gmail://profile is the Gmail profile of the default account.
package resources

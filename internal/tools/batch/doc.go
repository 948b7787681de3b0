// Package batch provides sequential, best-effort processing for operations
// that act on several message IDs at once.
//
// This package includes helpers for:
//   - Processing items in input order with one outcome record per item
//   - Summarizing partial failures in a consistent structure
//   - Rendering the summary as result envelope payload fields
package batch

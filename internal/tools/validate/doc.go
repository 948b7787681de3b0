// Package validate checks MCP argument bags against registry descriptors and
// coerces them into typed Arguments.
package validate

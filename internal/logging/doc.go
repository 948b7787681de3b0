// Package logging provides structured logging utilities for the gmailmcp server.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Logger construction for text or JSON output on stderr
//   - Email anonymization for Gmail profile addresses
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Tag every line of one tool call:
//
//	logger := logging.WithInvocation(slog.Default(), "gmail_send_email", id)
//	logger.Info("tool completed", logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("fetched gmail profile", logging.Account(account), logging.UserHash(email))
//
// # Security Considerations
//
//   - User emails are hashed to prevent PII leakage while allowing correlation
//   - Tokens are never logged directly
package logging

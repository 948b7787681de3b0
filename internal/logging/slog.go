package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation    = "operation"
	KeyAccount      = "account"
	KeyUserHash     = "user_hash"
	KeyStatus       = "status"
	KeyError        = "error"
	KeyErrorCode    = "error_code"
	KeyTool         = "tool"
	KeyInvocationID = "invocation_id"
)

// Status values for consistent logging.
// Duplicated from the instrumentation package, which imports logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithInvocation returns a logger tagged with the tool name and invocation ID.
func WithInvocation(logger *slog.Logger, tool, invocationID string) *slog.Logger {
	return logger.With(Tool(tool), InvocationID(invocationID))
}

// Tool returns a slog attribute for the MCP tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// InvocationID returns a slog attribute correlating all log lines of one call.
func InvocationID(id string) slog.Attr {
	return slog.String(KeyInvocationID, id)
}

// Operation returns a slog attribute for a Gmail API operation.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

func Account(account string) slog.Attr {
	return slog.String(KeyAccount, account)
}

func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// ErrorCode returns a slog attribute for a result envelope error code.
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

// Err returns a slog attribute for an error.
// A nil err yields an empty group, which slog omits from output.
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail returns a stable hash of an email address so log lines can
// be correlated without exposing the address.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns a slog attribute with the anonymized user email.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}

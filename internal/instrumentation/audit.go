package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation is the audit record of one tool call.
type ToolInvocation struct {
	Tool         string
	InvocationID string
	Account      string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Code      string // envelope error code when Success is false
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts timing a tool call.
func NewToolInvocation(tool, invocationID string) *ToolInvocation {
	return &ToolInvocation{
		Tool:         tool,
		InvocationID: invocationID,
		StartTime:    time.Now(),
	}
}

// WithAccount sets the account the call ran as.
func (ti *ToolInvocation) WithAccount(account string) *ToolInvocation {
	ti.Account = account
	return ti
}

// WithSpanContext copies the trace and span IDs from the span in ctx.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Complete stops the timer. code and message are ignored on success.
func (ti *ToolInvocation) Complete(success bool, code, message string) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if !success {
		ti.Code = code
		ti.Error = message
	}
	return ti
}

// Status returns StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// attrs returns the log attributes. Without PII the account is reduced to
// its domain.
func (ti *ToolInvocation) attrs(includePII bool) []any {
	account := ExtractUserDomain(ti.Account)
	if includePII && ti.Account != "" {
		account = ti.Account
	}

	attrs := []any{
		slog.String("tool", ti.Tool),
		slog.String("account", account),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.InvocationID != "" {
		attrs = append(attrs, slog.String("invocation_id", ti.InvocationID))
	}
	if ti.Code != "" {
		attrs = append(attrs, slog.String("error_code", ti.Code))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if includePII && ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	return attrs
}

// AuditLogger writes one log line per tool call.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an enabled AuditLogger that does not log PII.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates an AuditLogger from config.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("component", "audit")),
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogToolInvocation logs ti at info level on success and warn on failure.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}
	if ti.Success {
		al.logger.Info("tool_executed", ti.attrs(al.includePII)...)
	} else {
		al.logger.Warn("tool_failed", ti.attrs(al.includePII)...)
	}
}

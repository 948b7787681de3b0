package common

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/server"
	"github.com/teemow/gmailmcp/internal/tools/dispatch"
	"github.com/teemow/gmailmcp/internal/tools/envelope"
	"github.com/teemow/gmailmcp/internal/tools/registry"
)

// ToolHandlerFunc is the mcp-go tool handler signature.
type ToolHandlerFunc = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// DispatchHandler returns the MCP handler for operation name. It runs the
// call through d inside a tool span, records metrics and writes the audit
// record. The envelope is returned as JSON text; failed envelopes set IsError.
//
// Usage:
//
//	s.AddTool(registry.MCPTool(desc), common.DispatchHandler(desc.Name, d, sc))
func DispatchHandler(name string, d *dispatch.Dispatcher, sc *server.ServerContext) ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := dispatch.NewInvocationID()
		ctx = dispatch.ContextWithInvocationID(ctx, id)

		args := request.GetArguments()
		account := GetAccountFromArgs(args)

		ctx, span := instrumentation.StartToolSpan(ctx, name,
			attribute.String(instrumentation.SpanAttrInvocationID, id),
			attribute.String(instrumentation.SpanAttrAccount, account))
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(name, id).
			WithAccount(account).
			WithSpanContext(ctx)

		env := d.Dispatch(ctx, name, args)

		invocation.Complete(env.Success, env.Code, env.Error)
		if env.Success {
			instrumentation.SetSpanSuccess(span)
		} else {
			span.SetAttributes(attribute.String(instrumentation.SpanAttrCode, env.Code))
			instrumentation.SetSpanError(span, errors.New(env.Error))
		}

		if metrics := sc.Metrics(); metrics != nil {
			metrics.RecordToolInvocation(ctx, instrumentation.ToolCall{
				Tool:     name,
				Status:   invocation.Status(),
				Code:     env.Code,
				Account:  account,
				Duration: time.Since(start),
			})
		}
		sc.AuditLogger().LogToolInvocation(invocation)

		return EnvelopeResult(env), nil
	}
}

// EnvelopeResult renders env as a text tool result.
func EnvelopeResult(env envelope.Envelope) *mcp.CallToolResult {
	data, err := json.Marshal(env)
	if err != nil {
		return mcp.NewToolResultError("failed to encode result: " + err.Error())
	}
	result := mcp.NewToolResultText(string(data))
	result.IsError = !env.Success
	return result
}

// RegisterTools advertises every operation in d's registry on s.
func RegisterTools(s *mcpserver.MCPServer, d *dispatch.Dispatcher, sc *server.ServerContext) {
	for _, desc := range d.Registry().List() {
		s.AddTool(registry.MCPTool(desc), DispatchHandler(desc.Name, d, sc))
	}
}

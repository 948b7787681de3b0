package registry

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// MCPTool projects a descriptor into the tool definition advertised to MCP hosts.
func MCPTool(d OperationDescriptor) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(d.Summary),
	}

	if d.ReadOnly {
		opts = append(opts, mcp.WithReadOnlyHintAnnotation(true))
	}
	if d.Destructive {
		opts = append(opts, mcp.WithDestructiveHintAnnotation(true))
	}

	for _, p := range d.Parameters {
		opts = append(opts, propertyOption(p))
	}

	return mcp.NewTool(d.Name, opts...)
}

func propertyOption(p Parameter) mcp.ToolOption {
	t := p.Type
	var props []mcp.PropertyOption

	if t.Required {
		props = append(props, mcp.Required())
	}

	desc := t.Description
	if t.Kind == KindStringOrList {
		desc = strings.TrimSpace(desc + " (string or array of strings)")
	}
	if desc != "" {
		props = append(props, mcp.Description(desc))
	}

	switch t.Kind {
	case KindNumber:
		if t.Min != nil {
			props = append(props, mcp.Min(*t.Min))
		}
		if t.Max != nil {
			props = append(props, mcp.Max(*t.Max))
		}
		if n, ok := t.Default.(float64); ok {
			props = append(props, mcp.DefaultNumber(n))
		}
		return mcp.WithNumber(p.Name, props...)

	case KindBoolean:
		if b, ok := t.Default.(bool); ok {
			props = append(props, mcp.DefaultBool(b))
		}
		return mcp.WithBoolean(p.Name, props...)

	case KindEnum:
		props = append(props, mcp.Enum(t.Values...))
		if s, ok := t.Default.(string); ok {
			props = append(props, mcp.DefaultString(s))
		}
		return mcp.WithString(p.Name, props...)

	case KindStringList:
		props = append(props, mcp.Items(map[string]any{"type": "string"}))
		return mcp.WithArray(p.Name, props...)

	case KindStringOrList:
		return withStringOrList(p.Name, props...)

	default:
		if s, ok := t.Default.(string); ok {
			props = append(props, mcp.DefaultString(s))
		}
		return mcp.WithString(p.Name, props...)
	}
}

// withStringOrList declares a property accepting a single string or an array
// of strings. mcp-go has no helper for union types, so the schema is built
// the same way mcp.WithString builds its own.
func withStringOrList(name string, opts ...mcp.PropertyOption) mcp.ToolOption {
	return func(t *mcp.Tool) {
		schema := map[string]any{
			"anyOf": []any{
				map[string]any{"type": "string"},
				map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
		}
		for _, opt := range opts {
			opt(schema)
		}
		if required, ok := schema["required"].(bool); ok && required {
			delete(schema, "required")
			t.InputSchema.Required = append(t.InputSchema.Required, name)
		}
		if t.InputSchema.Properties == nil {
			t.InputSchema.Properties = map[string]any{}
		}
		t.InputSchema.Properties[name] = schema
	}
}

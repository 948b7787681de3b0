// Package registry declares the operations the server exposes and the
// argument shape each one accepts.
//
// A Registry is the single source of truth for three consumers: the validator,
// which checks incoming argument bags against a descriptor; the MCP server,
// which advertises MCPTool(desc) to hosts; and the documentation generator.
//
// Descriptors are built with small constructors:
//
//	registry.OperationDescriptor{
//	    Name:    "gmail_search_emails",
//	    Summary: "Search emails with a Gmail query",
//	    Parameters: []registry.Parameter{
//	        registry.String("query", registry.Required()),
//	        registry.Number("maxResults", registry.Between(1, 500), registry.Default(10.0)),
//	    },
//	}
package registry

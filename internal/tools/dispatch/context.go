package dispatch

import (
	"context"

	"github.com/google/uuid"
)

type invocationKey struct{}

// ContextWithInvocationID returns a context carrying id. Dispatch uses it to
// tag log lines instead of generating a fresh one.
func ContextWithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationKey{}, id)
}

// InvocationIDFromContext returns the invocation ID stored in ctx, if any.
func InvocationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(invocationKey{}).(string)
	return id, ok && id != ""
}

// NewInvocationID returns a random invocation identifier.
func NewInvocationID() string {
	return uuid.NewString()
}

func invocationID(ctx context.Context) string {
	if id, ok := InvocationIDFromContext(ctx); ok {
		return id
	}
	return NewInvocationID()
}

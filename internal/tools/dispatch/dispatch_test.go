package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gmailmcp/internal/tools/registry"
	"github.com/teemow/gmailmcp/internal/tools/validate"
)

func testRegistry() *registry.Registry {
	return registry.MustNew(
		registry.OperationDescriptor{
			Name: "echo",
			Parameters: []registry.Parameter{
				registry.String("text", registry.Required()),
			},
		},
		registry.OperationDescriptor{Name: "fail"},
		registry.OperationDescriptor{Name: "panic"},
		registry.OperationDescriptor{Name: "unbound"},
	)
}

func newTestDispatcher(t *testing.T, calls *int32, opts ...Option) *Dispatcher {
	t.Helper()
	d := New(testRegistry(), opts...)
	d.Handle("echo", func(ctx context.Context, args validate.Arguments) (map[string]any, error) {
		atomic.AddInt32(calls, 1)
		return map[string]any{"text": args.String("text")}, nil
	})
	d.Handle("fail", func(ctx context.Context, args validate.Arguments) (map[string]any, error) {
		atomic.AddInt32(calls, 1)
		return nil, errors.New("remote said no")
	})
	d.Handle("panic", func(ctx context.Context, args validate.Arguments) (map[string]any, error) {
		atomic.AddInt32(calls, 1)
		panic("boom")
	})
	return d
}

func TestDispatch_UnknownOperationInvokesNothing(t *testing.T) {
	var calls int32
	d := newTestDispatcher(t, &calls)

	for _, name := range []string{"foo", "", "ECHO", "echo "} {
		env := d.Dispatch(context.Background(), name, map[string]any{"text": "x"})
		assert.False(t, env.Success)
		assert.Equal(t, CodeUnknownOperation, env.Code)
		assert.Equal(t, "unknown operation: "+name, env.Error)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestDispatch_RegisteredButUnbound(t *testing.T) {
	var calls int32
	d := newTestDispatcher(t, &calls)

	env := d.Dispatch(context.Background(), "unbound", nil)
	assert.False(t, env.Success)
	assert.Equal(t, CodeUnknownOperation, env.Code)
	assert.Equal(t, []string{"unbound"}, d.Unbound())
}

func TestDispatch_Success(t *testing.T) {
	var calls int32
	d := newTestDispatcher(t, &calls)

	env := d.Dispatch(context.Background(), "echo", map[string]any{"text": "hello"})
	require.True(t, env.Success)
	assert.Equal(t, "hello", env.Payload["text"])
	assert.Empty(t, env.Error)
	assert.Empty(t, env.Code)
}

func TestDispatch_ValidationFailureSkipsHandler(t *testing.T) {
	var calls int32
	d := newTestDispatcher(t, &calls)

	tests := []map[string]any{
		{},
		{"text": 1.0},
		{"text": "x", "extra": true},
	}
	for _, bag := range tests {
		env := d.Dispatch(context.Background(), "echo", bag)
		assert.False(t, env.Success)
		assert.Equal(t, CodeValidation, env.Code)
		assert.NotEmpty(t, env.Error)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestDispatch_PermissiveValidation(t *testing.T) {
	var calls int32
	d := newTestDispatcher(t, &calls, WithValidateOptions(validate.AllowUnknown()))

	env := d.Dispatch(context.Background(), "echo", map[string]any{"text": "x", "extra": true})
	assert.True(t, env.Success)
}

func TestDispatch_HandlerError(t *testing.T) {
	var calls int32
	d := newTestDispatcher(t, &calls)

	env := d.Dispatch(context.Background(), "fail", nil)
	assert.False(t, env.Success)
	assert.Equal(t, CodeOperationFailed, env.Code)
	assert.Equal(t, "remote said no", env.Error)
}

func TestDispatch_PanicIsContained(t *testing.T) {
	var calls int32
	d := newTestDispatcher(t, &calls)

	env := d.Dispatch(context.Background(), "panic", nil)
	assert.False(t, env.Success)
	assert.Equal(t, CodeOperationFailed, env.Code)
	assert.Contains(t, env.Error, "boom")
}

func TestDispatch_Classification(t *testing.T) {
	sentinel := errors.New("sentinel")
	reg := registry.MustNew(registry.OperationDescriptor{Name: "op"})

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "coded error wins",
			err:  fmt.Errorf("wrapped: %w", NewError(CodeNotAuthenticated, sentinel)),
			want: CodeNotAuthenticated,
		},
		{
			name: "classifier",
			err:  fmt.Errorf("call: %w", sentinel),
			want: CodeNotFound,
		},
		{
			name: "validation error from handler",
			err:  &validate.ValidationError{Field: "x", Reason: validate.ReasonInvalidType},
			want: CodeValidation,
		},
		{
			name: "fallback",
			err:  errors.New("other"),
			want: CodeOperationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(reg, WithClassifier(func(err error) string {
				if errors.Is(err, sentinel) {
					return CodeNotFound
				}
				return ""
			}))
			d.Handle("op", func(ctx context.Context, args validate.Arguments) (map[string]any, error) {
				return nil, tt.err
			})

			env := d.Dispatch(context.Background(), "op", nil)
			assert.False(t, env.Success)
			assert.Equal(t, tt.want, env.Code)
		})
	}
}

func TestHandle_Panics(t *testing.T) {
	d := New(testRegistry())
	noop := func(ctx context.Context, args validate.Arguments) (map[string]any, error) { return nil, nil }

	assert.Panics(t, func() { d.Handle("missing", noop) })

	d.Handle("echo", noop)
	assert.Panics(t, func() { d.Handle("echo", noop) })
	assert.Panics(t, func() { d.Handle("fail", nil) })
}

func TestInvocationIDFromContext(t *testing.T) {
	_, ok := InvocationIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithInvocationID(context.Background(), "abc")
	id, ok := InvocationIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	assert.NotEqual(t, NewInvocationID(), NewInvocationID())
}

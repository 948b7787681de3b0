package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"

	"github.com/teemow/gmailmcp/internal/logging"
	"github.com/teemow/gmailmcp/internal/tools/envelope"
	"github.com/teemow/gmailmcp/internal/tools/registry"
	"github.com/teemow/gmailmcp/internal/tools/validate"
)

// Handler executes one operation with validated arguments and returns the
// payload of a successful envelope.
type Handler func(ctx context.Context, args validate.Arguments) (map[string]any, error)

// Dispatcher routes calls by operation name. Bindings are made during startup;
// after that Dispatch is safe for concurrent use.
type Dispatcher struct {
	registry    *registry.Registry
	handlers    map[string]Handler
	classifiers []Classifier
	validateOpt []validate.Option
	logger      *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClassifier adds an error classifier consulted for handler errors that
// do not carry their own code.
func WithClassifier(c Classifier) Option {
	return func(d *Dispatcher) {
		d.classifiers = append(d.classifiers, c)
	}
}

// WithValidateOptions passes options through to validate.Validate.
func WithValidateOptions(opts ...validate.Option) Option {
	return func(d *Dispatcher) {
		d.validateOpt = append(d.validateOpt, opts...)
	}
}

// New creates a dispatcher over reg.
func New(reg *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		handlers: make(map[string]Handler, reg.Len()),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher validates against.
func (d *Dispatcher) Registry() *registry.Registry {
	return d.registry
}

// Handle binds h to name. It panics if name is not registered or is already
// bound; both are programming errors caught at startup.
func (d *Dispatcher) Handle(name string, h Handler) {
	if !d.registry.Has(name) {
		panic(fmt.Sprintf("dispatch: no descriptor for operation %q", name))
	}
	if _, bound := d.handlers[name]; bound {
		panic(fmt.Sprintf("dispatch: operation %q already bound", name))
	}
	if h == nil {
		panic(fmt.Sprintf("dispatch: nil handler for operation %q", name))
	}
	d.handlers[name] = h
}

// Unbound lists registered operations without a handler, sorted by name.
func (d *Dispatcher) Unbound() []string {
	var out []string
	for _, desc := range d.registry.List() {
		if _, ok := d.handlers[desc.Name]; !ok {
			out = append(out, desc.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Dispatch validates bag, runs the handler bound to name and wraps the outcome
// in an envelope. It never panics and never returns an error: every failure is
// reported inside the envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, bag map[string]any) envelope.Envelope {
	logger := logging.WithInvocation(d.logger, name, invocationID(ctx))

	desc, err := d.registry.Describe(name)
	if err != nil {
		logger.Debug("unknown operation")
		return envelope.Failure("unknown operation: "+name, CodeUnknownOperation)
	}
	h, ok := d.handlers[name]
	if !ok {
		logger.Warn("operation has no handler")
		return envelope.Failure("unknown operation: "+name, CodeUnknownOperation)
	}

	args, err := validate.Validate(desc, bag, d.validateOpt...)
	if err != nil {
		logger.Debug("argument validation failed", logging.Err(err))
		return envelope.Failure(err.Error(), CodeValidation)
	}

	payload, err := d.invoke(ctx, logger, h, args)
	if err != nil {
		code := d.classify(err)
		logger.Debug("operation failed",
			logging.Status(logging.StatusError), logging.ErrorCode(code), logging.Err(err))
		return envelope.Failure(err.Error(), code)
	}

	logger.Debug("operation completed", logging.Status(logging.StatusSuccess))
	return envelope.Success(payload)
}

func (d *Dispatcher) invoke(ctx context.Context, logger *slog.Logger, h Handler, args validate.Arguments) (payload map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			payload = nil
			err = NewError(CodeOperationFailed, fmt.Errorf("internal error: %v", r))
		}
	}()
	return h(ctx, args)
}

func (d *Dispatcher) classify(err error) string {
	if code, ok := CodeOf(err); ok {
		return code
	}
	for _, c := range d.classifiers {
		if code := c(err); code != "" {
			return code
		}
	}
	var ve *validate.ValidationError
	if errors.As(err, &ve) {
		return CodeValidation
	}
	return CodeOperationFailed
}

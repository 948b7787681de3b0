package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/teemow/gmailmcp/internal/tools/registry"
)

// Reason classifies why an argument was rejected.
type Reason string

const (
	ReasonMissing     Reason = "missing"
	ReasonUnknown     Reason = "unknown"
	ReasonOutOfRange  Reason = "out_of_range"
	ReasonInvalidType Reason = "invalid_type"
	ReasonInvalidEnum Reason = "invalid_enum"
)

// ValidationError reports the first argument that failed validation.
type ValidationError struct {
	Field  string
	Reason Reason
	Detail string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonMissing:
		return fmt.Sprintf("missing required parameter %q", e.Field)
	case ReasonUnknown:
		return fmt.Sprintf("unknown parameter %q", e.Field)
	}
	if e.Detail != "" {
		return fmt.Sprintf("invalid parameter %q: %s", e.Field, e.Detail)
	}
	return fmt.Sprintf("invalid parameter %q: %s", e.Field, e.Reason)
}

// Option configures Validate.
type Option func(*options)

type options struct {
	allowUnknown bool
}

// AllowUnknown drops undeclared keys instead of rejecting them.
func AllowUnknown() Option {
	return func(o *options) {
		o.allowUnknown = true
	}
}

// Validate checks bag against desc and returns the coerced arguments.
// Declared parameters are checked in declaration order; undeclared keys are
// reported afterwards in sorted order.
func Validate(desc registry.OperationDescriptor, bag map[string]any, opts ...Option) (Arguments, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	out := Arguments{values: make(map[string]any, len(desc.Parameters))}

	for _, p := range desc.Parameters {
		raw, present := bag[p.Name]
		if raw == nil {
			present = false
		}

		if !present {
			switch {
			case p.Type.HasDefault():
				out.values[p.Name] = copyDefault(p.Type.Default)
			case p.Type.Required:
				return Arguments{}, &ValidationError{Field: p.Name, Reason: ReasonMissing}
			}
			continue
		}

		v, err := coerce(p.Name, p.Type, raw)
		if err != nil {
			return Arguments{}, err
		}
		out.values[p.Name] = v
	}

	if !o.allowUnknown {
		var unknown []string
		for k := range bag {
			if _, ok := desc.Parameter(k); !ok {
				unknown = append(unknown, k)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return Arguments{}, &ValidationError{Field: unknown[0], Reason: ReasonUnknown}
		}
	}

	return out, nil
}

func coerce(name string, t registry.ParameterType, raw any) (any, error) {
	switch t.Kind {
	case registry.KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, typeError(name, "string", raw)
		}
		return s, nil

	case registry.KindEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, typeError(name, "string", raw)
		}
		if !t.Allows(s) {
			return nil, &ValidationError{
				Field:  name,
				Reason: ReasonInvalidEnum,
				Detail: fmt.Sprintf("%q is not one of %v", s, t.Values),
			}
		}
		return s, nil

	case registry.KindNumber:
		n, ok := toFloat(raw)
		if !ok {
			return nil, typeError(name, "number", raw)
		}
		if (t.Min != nil && n < *t.Min) || (t.Max != nil && n > *t.Max) {
			return nil, &ValidationError{
				Field:  name,
				Reason: ReasonOutOfRange,
				Detail: fmt.Sprintf("%v is outside %s", n, boundsString(t)),
			}
		}
		return n, nil

	case registry.KindBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, typeError(name, "boolean", raw)
		}
		return b, nil

	case registry.KindStringOrList:
		if s, ok := raw.(string); ok {
			return []string{s}, nil
		}
		list, ok := toStrings(raw)
		if !ok {
			return nil, typeError(name, "string or array of strings", raw)
		}
		return list, nil

	case registry.KindStringList:
		list, ok := toStrings(raw)
		if !ok {
			return nil, typeError(name, "array of strings", raw)
		}
		return list, nil
	}

	return nil, typeError(name, t.Kind.String(), raw)
}

func toFloat(raw any) (float64, bool) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int8:
		n = float64(v)
	case int16:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint8:
		n = float64(v)
	case uint16:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func toStrings(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return append([]string{}, v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func copyDefault(v any) any {
	if list, ok := v.([]string); ok {
		return append([]string{}, list...)
	}
	return v
}

func typeError(name, want string, got any) *ValidationError {
	return &ValidationError{
		Field:  name,
		Reason: ReasonInvalidType,
		Detail: fmt.Sprintf("expected %s, got %s", want, describeType(got)),
	}
}

func describeType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32, json.Number:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	}
	return reflect.TypeOf(v).String()
}

func boundsString(t registry.ParameterType) string {
	switch {
	case t.Min != nil && t.Max != nil:
		return fmt.Sprintf("[%v, %v]", *t.Min, *t.Max)
	case t.Min != nil:
		return fmt.Sprintf("[%v, inf)", *t.Min)
	default:
		return fmt.Sprintf("(-inf, %v]", *t.Max)
	}
}

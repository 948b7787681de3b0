package registry

import (
	"fmt"
)

// Kind identifies the shape a parameter value must have.
type Kind int

const (
	// KindString accepts a single string.
	KindString Kind = iota + 1
	// KindStringOrList accepts a string or a list of strings and is always
	// normalized to a list.
	KindStringOrList
	// KindStringList accepts a list of strings.
	KindStringList
	// KindNumber accepts any numeric value, optionally bounded.
	KindNumber
	// KindBoolean accepts true or false.
	KindBoolean
	// KindEnum accepts one string out of a closed set.
	KindEnum
)

// String returns the schema name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindStringOrList:
		return "string or string[]"
	case KindStringList:
		return "string[]"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParameterType describes the accepted value of a single parameter.
type ParameterType struct {
	Kind        Kind
	Description string
	Required    bool

	// Default is used when the parameter is absent. Nil means no default.
	Default any

	// Min and Max bound KindNumber values (inclusive). Nil means unbounded.
	Min *float64
	Max *float64

	// Values is the closed set accepted by KindEnum.
	Values []string
}

// HasDefault reports whether a default value is declared.
func (p ParameterType) HasDefault() bool {
	return p.Default != nil
}

// Allows reports whether v is part of the enum's value set.
func (p ParameterType) Allows(v string) bool {
	for _, allowed := range p.Values {
		if allowed == v {
			return true
		}
	}
	return false
}

// Parameter is a named ParameterType. Parameters keep their declaration order.
type Parameter struct {
	Name string
	Type ParameterType
}

// OperationDescriptor identifies one callable operation and its accepted arguments.
type OperationDescriptor struct {
	Name       string
	Summary    string
	Parameters []Parameter

	// ReadOnly marks operations that never modify the mailbox.
	ReadOnly bool

	// Destructive marks operations that remove data permanently.
	Destructive bool
}

// Parameter returns the declared parameter with the given name.
func (d OperationDescriptor) Parameter(name string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// clone returns a deep copy so callers cannot mutate registry state.
func (d OperationDescriptor) clone() OperationDescriptor {
	out := d
	out.Parameters = make([]Parameter, len(d.Parameters))
	for i, p := range d.Parameters {
		cp := p
		if p.Type.Values != nil {
			cp.Type.Values = append([]string(nil), p.Type.Values...)
		}
		if def, ok := p.Type.Default.([]string); ok {
			cp.Type.Default = append([]string(nil), def...)
		}
		out.Parameters[i] = cp
	}
	return out
}

// Option configures a ParameterType.
type Option func(*ParameterType)

// Required marks the parameter as mandatory.
func Required() Option {
	return func(p *ParameterType) {
		p.Required = true
	}
}

// Default sets the value used when the parameter is absent.
func Default(v any) Option {
	return func(p *ParameterType) {
		p.Default = v
	}
}

// Between bounds a number parameter to [min, max].
func Between(min, max float64) Option {
	return func(p *ParameterType) {
		p.Min = &min
		p.Max = &max
	}
}

// AtLeast sets only the lower bound of a number parameter.
func AtLeast(min float64) Option {
	return func(p *ParameterType) {
		p.Min = &min
	}
}

// Describe sets the human-readable description.
func Describe(text string) Option {
	return func(p *ParameterType) {
		p.Description = text
	}
}

func newType(kind Kind, opts []Option) ParameterType {
	p := ParameterType{Kind: kind}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// String declares a string parameter.
func String(name string, opts ...Option) Parameter {
	return Parameter{Name: name, Type: newType(KindString, opts)}
}

// StringOrList declares a parameter accepting one string or a list of strings.
func StringOrList(name string, opts ...Option) Parameter {
	return Parameter{Name: name, Type: newType(KindStringOrList, opts)}
}

// StringList declares a list-of-strings parameter.
func StringList(name string, opts ...Option) Parameter {
	return Parameter{Name: name, Type: newType(KindStringList, opts)}
}

// Number declares a numeric parameter.
func Number(name string, opts ...Option) Parameter {
	return Parameter{Name: name, Type: newType(KindNumber, opts)}
}

// Boolean declares a boolean parameter.
func Boolean(name string, opts ...Option) Parameter {
	return Parameter{Name: name, Type: newType(KindBoolean, opts)}
}

// Enum declares a parameter restricted to values.
func Enum(name string, values []string, opts ...Option) Parameter {
	p := newType(KindEnum, opts)
	p.Values = append([]string(nil), values...)
	return Parameter{Name: name, Type: p}
}

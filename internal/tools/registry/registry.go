package registry

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Describe for names that were never registered.
var ErrNotFound = errors.New("operation not found")

// Registry holds the descriptors of every callable operation.
// It is immutable once constructed and safe for concurrent use.
type Registry struct {
	order []string
	byKey map[string]OperationDescriptor
}

// New builds a registry from descs. It fails on duplicate or empty names and on
// parameter declarations that can never validate.
func New(descs ...OperationDescriptor) (*Registry, error) {
	r := &Registry{
		order: make([]string, 0, len(descs)),
		byKey: make(map[string]OperationDescriptor, len(descs)),
	}

	for _, d := range descs {
		if d.Name == "" {
			return nil, errors.New("operation name must not be empty")
		}
		if _, exists := r.byKey[d.Name]; exists {
			return nil, fmt.Errorf("duplicate operation %q", d.Name)
		}
		if err := checkDescriptor(d); err != nil {
			return nil, fmt.Errorf("operation %q: %w", d.Name, err)
		}
		r.order = append(r.order, d.Name)
		r.byKey[d.Name] = d.clone()
	}

	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(descs ...OperationDescriptor) *Registry {
	r, err := New(descs...)
	if err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
	return r
}

// List returns all descriptors in registration order.
func (r *Registry) List() []OperationDescriptor {
	out := make([]OperationDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byKey[name].clone())
	}
	return out
}

// Describe returns the descriptor registered under name.
func (r *Registry) Describe(name string) (OperationDescriptor, error) {
	d, ok := r.byKey[name]
	if !ok {
		return OperationDescriptor{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return d.clone(), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byKey[name]
	return ok
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.order)
}

// Filter returns a new registry containing only the descriptors keep accepts,
// in their original order.
func (r *Registry) Filter(keep func(OperationDescriptor) bool) *Registry {
	out := &Registry{byKey: make(map[string]OperationDescriptor)}
	for _, name := range r.order {
		d := r.byKey[name]
		if keep(d) {
			out.order = append(out.order, name)
			out.byKey[name] = d
		}
	}
	return out
}

func checkDescriptor(d OperationDescriptor) error {
	seen := make(map[string]bool, len(d.Parameters))
	for _, p := range d.Parameters {
		if p.Name == "" {
			return errors.New("parameter name must not be empty")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true

		if err := checkParameter(p.Type); err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
	}
	return nil
}

func checkParameter(t ParameterType) error {
	if (t.Min != nil || t.Max != nil) && t.Kind != KindNumber {
		return fmt.Errorf("bounds declared on %s parameter", t.Kind)
	}
	if t.Min != nil && t.Max != nil && *t.Min > *t.Max {
		return fmt.Errorf("min %v greater than max %v", *t.Min, *t.Max)
	}

	switch t.Kind {
	case KindEnum:
		if len(t.Values) == 0 {
			return errors.New("enum declares no values")
		}
	case KindString, KindStringOrList, KindStringList, KindNumber, KindBoolean:
	default:
		return fmt.Errorf("unsupported kind %s", t.Kind)
	}

	if !t.HasDefault() {
		return nil
	}

	switch t.Kind {
	case KindString:
		if _, ok := t.Default.(string); !ok {
			return fmt.Errorf("default %v is not a string", t.Default)
		}
	case KindEnum:
		s, ok := t.Default.(string)
		if !ok || !t.Allows(s) {
			return fmt.Errorf("default %v is not one of %v", t.Default, t.Values)
		}
	case KindNumber:
		n, ok := t.Default.(float64)
		if !ok {
			return fmt.Errorf("default %v is not a float64", t.Default)
		}
		if (t.Min != nil && n < *t.Min) || (t.Max != nil && n > *t.Max) {
			return fmt.Errorf("default %v outside bounds", n)
		}
	case KindBoolean:
		if _, ok := t.Default.(bool); !ok {
			return fmt.Errorf("default %v is not a bool", t.Default)
		}
	case KindStringOrList, KindStringList:
		if _, ok := t.Default.([]string); !ok {
			return fmt.Errorf("default %v is not a []string", t.Default)
		}
	}
	return nil
}

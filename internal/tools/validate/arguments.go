package validate

// Arguments is the validated, coerced form of an argument bag.
// Accessors return the zero value for absent parameters.
type Arguments struct {
	values map[string]any
}

// NewArguments wraps an already-coerced map. Intended for tests and callers
// that build arguments without a descriptor.
func NewArguments(values map[string]any) Arguments {
	return Arguments{values: values}
}

// Has reports whether name holds a value, either supplied or defaulted.
func (a Arguments) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

func (a Arguments) String(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// Strings returns a copy of a list-valued argument.
func (a Arguments) Strings(name string) []string {
	list, _ := a.values[name].([]string)
	if list == nil {
		return nil
	}
	return append([]string{}, list...)
}

func (a Arguments) Number(name string) float64 {
	n, _ := a.values[name].(float64)
	return n
}

// Int truncates a number argument toward zero.
func (a Arguments) Int(name string) int {
	return int(a.Number(name))
}

func (a Arguments) Bool(name string) bool {
	b, _ := a.values[name].(bool)
	return b
}

// Map returns a shallow copy of all values.
func (a Arguments) Map() map[string]any {
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// Len returns the number of populated arguments.
func (a Arguments) Len() int {
	return len(a.values)
}

// Package envelope builds the uniform result object returned for every
// operation call.
package envelope

import (
	"encoding/json"
	"sort"
)

// Reserved keys cannot be used as payload fields.
const (
	KeySuccess = "success"
	KeyError   = "error"
	KeyCode    = "code"
)

// Envelope is the outcome of one operation call. It marshals to a flat
// JSON object: {"success": ..., <payload fields>..., "error"?, "code"?}.
type Envelope struct {
	Success bool
	Payload map[string]any
	Error   string
	Code    string
}

// Success builds a successful envelope. Reserved keys in payload are dropped.
func Success(payload map[string]any) Envelope {
	clean := make(map[string]any, len(payload))
	for k, v := range payload {
		if isReserved(k) {
			continue
		}
		clean[k] = v
	}
	return Envelope{Success: true, Payload: clean}
}

// Failure builds a failed envelope. An empty message is replaced so the
// error field is never blank.
func Failure(message, code string) Envelope {
	if message == "" {
		message = "operation failed"
	}
	return Envelope{Success: false, Error: message, Code: code}
}

// Fields returns the flat key/value view of the envelope.
func (e Envelope) Fields() map[string]any {
	out := make(map[string]any, len(e.Payload)+3)
	out[KeySuccess] = e.Success
	if e.Success {
		for k, v := range e.Payload {
			if !isReserved(k) {
				out[k] = v
			}
		}
		return out
	}
	out[KeyError] = e.Error
	if e.Code != "" {
		out[KeyCode] = e.Code
	}
	return out
}

// MarshalJSON writes "success" first followed by the remaining keys in
// sorted order.
func (e Envelope) MarshalJSON() ([]byte, error) {
	fields := e.Fields()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != KeySuccess {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	keys = append([]string{KeySuccess}, keys...)

	buf := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(fields[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Envelope{}
	e.Success, _ = raw[KeySuccess].(bool)
	e.Error, _ = raw[KeyError].(string)
	e.Code, _ = raw[KeyCode].(string)

	if e.Success {
		e.Payload = make(map[string]any, len(raw))
		for k, v := range raw {
			if !isReserved(k) {
				e.Payload[k] = v
			}
		}
	}
	return nil
}

func isReserved(k string) bool {
	return k == KeySuccess || k == KeyError || k == KeyCode
}

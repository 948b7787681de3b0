package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess_DropsReservedKeys(t *testing.T) {
	env := Success(map[string]any{
		"messageId": "m1",
		"success":   false,
		"error":     "x",
		"code":      "y",
	})

	assert.True(t, env.Success)
	assert.Equal(t, map[string]any{"messageId": "m1"}, env.Payload)

	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"messageId":"m1"}`, string(data))
}

func TestFailure(t *testing.T) {
	tests := []struct {
		name    string
		message string
		code    string
		want    string
	}{
		{
			name:    "message and code",
			message: "unknown operation: foo",
			code:    "UNKNOWN_OPERATION",
			want:    `{"success":false,"error":"unknown operation: foo","code":"UNKNOWN_OPERATION"}`,
		},
		{
			name: "empty message is replaced",
			code: "OPERATION_FAILED",
			want: `{"success":false,"error":"operation failed","code":"OPERATION_FAILED"}`,
		},
		{
			name:    "no code",
			message: "boom",
			want:    `{"success":false,"error":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(Failure(tt.message, tt.code))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestFailure_NeverCarriesPayload(t *testing.T) {
	env := Failure("bad", "VALIDATION_ERROR")
	env.Payload = map[string]any{"leak": true}

	fields := env.Fields()
	_, leaked := fields["leak"]
	assert.False(t, leaked)
}

func TestMarshalJSON_SuccessFirst(t *testing.T) {
	data, err := json.Marshal(Success(map[string]any{"b": 1, "a": 2}))
	require.NoError(t, err)
	assert.Equal(t, `{"success":true,"a":2,"b":1}`, string(data))
}

func TestUnmarshalJSON(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"count":2}`), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 2.0, env.Payload["count"])

	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"error":"e","code":"NOT_FOUND"}`), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "e", env.Error)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Nil(t, env.Payload)
}

package n8n

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_URL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://n8n.example/webhook", "new-mail", "https://n8n.example/webhook/new-mail"},
		{"https://n8n.example/webhook/", "/new-mail", "https://n8n.example/webhook/new-mail"},
		{"https://n8n.example/webhook//", "a/b", "https://n8n.example/webhook/a/b"},
	}
	for _, tt := range tests {
		if got := NewClient(tt.base).URL(tt.path); got != tt.want {
			t.Errorf("URL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestClient_Trigger(t *testing.T) {
	var gotPath, gotType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/webhook/", WithHTTPClient(srv.Client()))
	status, err := c.Trigger(context.Background(), "/triage", map[string]any{"messageId": "m1"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "/webhook/triage", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, map[string]any{"messageId": "m1"}, gotBody)
}

func TestClient_TriggerNilPayload(t *testing.T) {
	var raw []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = make([]byte, r.ContentLength)
		_, _ = r.Body.Read(raw)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Trigger(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestClient_TriggerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow not active", http.StatusNotFound)
	}))
	defer srv.Close()

	status, err := NewClient(srv.URL).Trigger(context.Background(), "missing", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "workflow not active", se.Body)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestClient_NotConfigured(t *testing.T) {
	_, err := NewClient("").Trigger(context.Background(), "x", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

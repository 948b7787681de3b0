package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/gmailmcp/internal/instrumentation"
)

func newTestHTTPServer(t *testing.T) (*HTTPServer, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	require.NoError(t, err)

	mcpSrv := mcpserver.NewMCPServer("gmailmcp", "test", mcpserver.WithToolCapabilities(true))
	sc := NewServerContext(context.Background())
	t.Cleanup(func() { _ = sc.Shutdown() })

	return NewHTTPServer(mcpSrv, HTTPServerConfig{
		DisableStreaming: true,
		Health:           NewHealthChecker(sc, "test"),
		Metrics:          m,
	}), reader
}

func TestHTTPServer_HealthEndpoints(t *testing.T) {
	srv, _ := newTestHTTPServer(t)
	h := srv.Handler()

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestHTTPServer_Initialize(t *testing.T) {
	srv, _ := newTestHTTPServer(t)

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`
	req := httptest.NewRequest(http.MethodPost, MCPEndpoint, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gmailmcp")
}

func TestHTTPServer_RecordsRequests(t *testing.T) {
	srv, reader := newTestHTTPServer(t)
	h := srv.Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	statuses := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_requests_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				v, _ := dp.Attributes.Value("status")
				statuses[v.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"200": 1, "404": 1}, statuses)
}

func TestHTTPServer_ShutdownMarksNotReady(t *testing.T) {
	srv, _ := newTestHTTPServer(t)
	require.NoError(t, srv.Shutdown(context.Background()))
	assert.False(t, srv.config.Health.IsReady())
}

package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailed)
	require.NoError(t, err)
	return m, reader
}

// counterPoints returns the data points of an int64 counter by name.
func counterPoints(t *testing.T, reader *sdkmetric.ManualReader, name string) []metricdata.DataPoint[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			return sum.DataPoints
		}
	}
	return nil
}

func attrValue(set attribute.Set, key string) (string, bool) {
	v, ok := set.Value(attribute.Key(key))
	return v.AsString(), ok
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordToolInvocation(ctx, ToolCall{Tool: "gmail_send_email", Status: StatusSuccess, Account: "work", Duration: time.Millisecond})
	m.RecordToolInvocation(ctx, ToolCall{Tool: "gmail_send_email", Status: StatusError, Code: "VALIDATION_ERROR", Account: "work"})
	m.RecordToolInvocation(ctx, ToolCall{Tool: "gmail_send_email", Status: StatusError, Code: "VALIDATION_ERROR"})

	points := counterPoints(t, reader, "mcp_tool_invocations_total")
	require.Len(t, points, 2)

	byCode := map[string]int64{}
	for _, p := range points {
		code, _ := attrValue(p.Attributes, attrCode)
		byCode[code] = p.Value
		_, hasAccount := attrValue(p.Attributes, attrAccount)
		assert.False(t, hasAccount, "account must not be recorded without detailed labels")
	}
	assert.Equal(t, int64(1), byCode[""])
	assert.Equal(t, int64(2), byCode["VALIDATION_ERROR"])
}

func TestMetrics_DetailedLabels(t *testing.T) {
	m, reader := newTestMetrics(t, true)
	m.RecordToolInvocation(context.Background(), ToolCall{Tool: "gmail_get_profile", Status: StatusSuccess, Account: "work"})

	points := counterPoints(t, reader, "mcp_tool_invocations_total")
	require.Len(t, points, 1)
	account, ok := attrValue(points[0].Attributes, attrAccount)
	assert.True(t, ok)
	assert.Equal(t, "work", account)
}

func TestMetrics_RecordAPICall(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordAPICall(ctx, ServiceGmail, OperationSend, StatusSuccess, 200*time.Millisecond)
	m.RecordAPICall(ctx, ServiceGmail, OperationSend, StatusSuccess, 100*time.Millisecond)
	m.RecordAPICall(ctx, ServiceN8N, OperationPost, StatusError, time.Second)

	points := counterPoints(t, reader, "api_calls_total")
	require.Len(t, points, 2)
	for _, p := range points {
		svc, _ := attrValue(p.Attributes, attrService)
		switch svc {
		case ServiceGmail:
			assert.Equal(t, int64(2), p.Value)
		case ServiceN8N:
			assert.Equal(t, int64(1), p.Value)
			status, _ := attrValue(p.Attributes, attrStatus)
			assert.Equal(t, StatusError, status)
		default:
			t.Errorf("unexpected service %q", svc)
		}
	}
}

func TestMetrics_OAuthAndHTTP(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordOAuthAuth(ctx, OAuthResultSuccess)
	m.RecordOAuthTokenRefresh(ctx, OAuthResultFailure)
	m.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 10*time.Millisecond)

	assert.Len(t, counterPoints(t, reader, "oauth_auth_total"), 1)
	assert.Len(t, counterPoints(t, reader, "oauth_token_refresh_total"), 1)

	points := counterPoints(t, reader, "http_requests_total")
	require.Len(t, points, 1)
	status, _ := attrValue(points[0].Attributes, attrStatus)
	assert.Equal(t, "200", status)
}

func TestMetrics_ZeroValueIsNoop(t *testing.T) {
	var m Metrics
	ctx := context.Background()

	m.RecordHTTPRequest(ctx, "GET", "/", 200, time.Second)
	m.RecordAPICall(ctx, ServiceGmail, OperationGet, StatusSuccess, time.Second)
	m.RecordOAuthAuth(ctx, OAuthResultSuccess)
	m.RecordOAuthTokenRefresh(ctx, OAuthResultSuccess)
	m.RecordToolInvocation(ctx, ToolCall{Tool: "x", Status: StatusSuccess})
}

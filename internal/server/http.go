package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/gmailmcp/internal/instrumentation"
)

// MCPEndpoint is the path the streamable HTTP transport is served on.
const MCPEndpoint = "/mcp"

// HTTPServerConfig configures an HTTPServer.
type HTTPServerConfig struct {
	Addr string

	// DisableStreaming answers every request with a single JSON response
	// instead of an SSE stream.
	DisableStreaming bool

	Health  *HealthChecker
	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// HTTPServer serves an MCP server over streamable HTTP.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	config     HTTPServerConfig
	httpServer *http.Server
}

// NewHTTPServer creates an HTTPServer for mcpSrv.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, config HTTPServerConfig) *HTTPServer {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &HTTPServer{mcpServer: mcpSrv, config: config}
}

// Handler builds the request router. Exposed for tests.
func (s *HTTPServer) Handler() http.Handler {
	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(MCPEndpoint),
	}
	if s.config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)

	mux := http.NewServeMux()
	mux.Handle(MCPEndpoint, streamable)
	if s.config.Health != nil {
		s.config.Health.RegisterHealthEndpoints(mux)
	}

	return otelhttp.NewHandler(metricsMiddleware(s.config.Metrics, mux), "mcp.http")
}

// Start listens on the configured address and blocks until the server stops.
func (s *HTTPServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.config.Logger.Info("starting streamable HTTP server",
		"addr", s.config.Addr, "endpoint", MCPEndpoint)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.config.Health != nil {
		s.config.Health.SetReady(false)
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func metricsMiddleware(m *instrumentation.Metrics, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

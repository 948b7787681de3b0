package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"

	oauthConfigured = "configured"
	oauthMissing    = "missing credentials"
)

// HealthChecker serves the liveness and readiness checks of the HTTP
// transport.
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext // may be nil in tests
	startTime time.Time
	version   string
}

// NewHealthChecker returns a checker that reports ready until SetReady(false).
func NewHealthChecker(sc *ServerContext, version string) *HealthChecker {
	h := &HealthChecker{
		sc:        sc,
		startTime: time.Now(),
		version:   version,
	}
	h.ready.Store(true)
	return h
}

// SetReady flips readiness; the HTTP server clears it before draining.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status   string   `json:"status"`
	Version  string   `json:"version,omitempty"`
	Uptime   string   `json:"uptime"`
	Accounts []string `json:"accounts"`
	N8N      bool     `json:"n8n"`
	OAuth    string   `json:"oauth,omitempty"`
}

// evaluate computes readiness. The oauth check is informational: a server
// without credentials still answers gmail_auth_status and reports
// NOT_AUTHENTICATED, so it stays ready.
func (h *HealthChecker) evaluate() (status string, checks map[string]string) {
	checks = map[string]string{
		"ready":    healthStatusOK,
		"shutdown": healthStatusOK,
	}
	status = healthStatusOK

	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		status = healthStatusNotReady
	}
	if h.sc != nil {
		if h.sc.IsShutdown() {
			checks["shutdown"] = healthStatusShuttingDown
			status = healthStatusNotReady
		}
		checks["oauth"] = h.oauthState()
	}
	return status, checks
}

func (h *HealthChecker) oauthState() string {
	if h.sc == nil {
		return ""
	}
	if h.sc.HasAuthenticator() {
		return oauthConfigured
	}
	return oauthMissing
}

func writeHealth(w http.ResponseWriter, healthy bool, body any) {
	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(body)
}

// LivenessHandler serves /healthz. It only proves the process is serving
// requests.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, true, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, checks := h.evaluate()
		writeHealth(w, status == healthStatusOK, HealthResponse{Status: status, Checks: checks})
	})
}

// DetailedHealthHandler serves /healthz/detailed: uptime, the accounts with
// a cached Gmail service and the optional integrations.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, _ := h.evaluate()
		if h.sc != nil && h.sc.IsShutdown() {
			status = healthStatusShuttingDown
		}

		resp := DetailedHealthResponse{
			Status:   status,
			Version:  h.version,
			Uptime:   time.Since(h.startTime).Truncate(time.Second).String(),
			Accounts: []string{},
			OAuth:    h.oauthState(),
		}
		if h.sc != nil {
			resp.Accounts = h.sc.Accounts()
			resp.N8N = h.sc.N8N() != nil
		}
		writeHealth(w, status == healthStatusOK, resp)
	})
}

// RegisterHealthEndpoints mounts the health endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

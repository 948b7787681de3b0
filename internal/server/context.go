package server

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/n8n"
)

// DefaultAccount is used when a call names no account.
const DefaultAccount = "default"

// ServerContext holds the shared state of a running MCP server
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	auth       gmail.Authenticator
	clientOpts []gmail.ClientOption
	services   map[string]*gmail.Service // Maps account name to Gmail service

	n8n         *n8n.Client
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger

	mu       sync.RWMutex
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithAuthenticator sets the authenticator Gmail services obtain clients from.
func WithAuthenticator(auth gmail.Authenticator) Option {
	return func(sc *ServerContext) {
		sc.auth = auth
	}
}

// WithClientOptions passes options to every Gmail client the context creates.
func WithClientOptions(opts ...gmail.ClientOption) Option {
	return func(sc *ServerContext) {
		sc.clientOpts = append(sc.clientOpts, opts...)
	}
}

// WithN8N enables the workflow trigger.
func WithN8N(c *n8n.Client) Option {
	return func(sc *ServerContext) {
		sc.n8n = c
	}
}

// WithMetrics sets the tool metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) {
		sc.metrics = m
	}
}

// WithAuditLogger sets the audit logger.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) {
		sc.auditLogger = al
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// NewServerContext creates a new server context. Gmail services are created
// lazily, one per account, on first use.
func NewServerContext(ctx context.Context, opts ...Option) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		services: make(map[string]*gmail.Service),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// GmailService returns the Gmail service for account, creating and caching
// it on first use. The service reports ErrNotAuthenticated from every call
// until a token exists for the account.
func (sc *ServerContext) GmailService(account string) *gmail.Service {
	if account == "" {
		account = DefaultAccount
	}

	sc.mu.RLock()
	svc, ok := sc.services[account]
	sc.mu.RUnlock()
	if ok {
		return svc
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if svc, ok := sc.services[account]; ok {
		return svc
	}

	svc = gmail.NewService(account, sc.auth, sc.clientOpts...)
	sc.services[account] = svc
	sc.logger.Debug("created gmail service", "account", account)
	return svc
}

// SetGmailService replaces the service used for account.
func (sc *ServerContext) SetGmailService(account string, svc *gmail.Service) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.services[account] = svc
}

// Accounts returns the accounts that have a cached service, sorted.
func (sc *ServerContext) Accounts() []string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	out := make([]string, 0, len(sc.services))
	for account := range sc.services {
		out = append(out, account)
	}
	sort.Strings(out)
	return out
}

// HasAuthenticator reports whether OAuth credentials were loaded.
func (sc *ServerContext) HasAuthenticator() bool {
	return sc.auth != nil
}

// N8N returns the workflow client, or nil when no webhook base URL is configured.
func (sc *ServerContext) N8N() *n8n.Client {
	return sc.n8n
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// SetMetrics sets the metrics recorder.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.metrics = m
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.auditLogger = al
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and drops cached services.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.services = make(map[string]*gmail.Service)
	sc.cancel()
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/gmailmcp/internal/config"
	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/logging"
	"github.com/teemow/gmailmcp/internal/n8n"
	"github.com/teemow/gmailmcp/internal/resources"
	"github.com/teemow/gmailmcp/internal/server"
	"github.com/teemow/gmailmcp/internal/tools/common"
	"github.com/teemow/gmailmcp/internal/tools/dispatch"
	"github.com/teemow/gmailmcp/internal/tools/gmail_tools"
	"github.com/teemow/gmailmcp/internal/tools/registry"
	"github.com/teemow/gmailmcp/internal/tools/validate"
	"github.com/teemow/gmailmcp/internal/tools/workflow_tools"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		debugMode        bool
		disableStreaming bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing the Gmail tools.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp

Read-only mode (--read-only) exposes only the tools that never modify the
mailbox and requests the read-only Gmail scope.

Configuration is read from flags, GMAILMCP_* environment variables, the
config file and a .env file, in that order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if debugMode {
				cfg.LogLevel = "debug"
			}
			return runServe(cmd.Context(), cfg, disableStreaming)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().String("transport", config.TransportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().String("http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().Bool("read-only", false, "Expose only read-only tools")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Answer HTTP requests with plain JSON instead of SSE streams")
	cmd.Flags().Bool("metrics-enabled", true, "Enable the metrics server on a dedicated port")
	cmd.Flags().String("metrics-addr", server.DefaultMetricsAddr, "Metrics server address")
	cmd.Flags().String("credentials", "", "OAuth client secret file (GMAIL_CREDENTIALS_PATH)")
	cmd.Flags().String("token-dir", "", "Directory for stored OAuth tokens (GMAIL_TOKEN_PATH)")
	cmd.Flags().String("token-store", config.TokenStoreFile, "Token store: file or keyring")
	cmd.Flags().String("log-format", logging.FormatText, "Log format: text or json")

	return cmd
}

func runServe(parent context.Context, cfg *config.Config, disableStreaming bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout belongs to the stdio transport.
	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	serverContext := newServerContext(ctx, cfg, logger, provider, instrConfig.AuditLogging)
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	d := buildDispatcher(cfg, serverContext, logger)
	mcpSrv := mcpserver.NewMCPServer("gmailmcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	common.RegisterTools(mcpSrv, d, serverContext)
	resources.Register(mcpSrv, resources.ServerSource(serverContext))

	logger.Info("registered tools",
		"count", d.Registry().Len(),
		"read_only", cfg.ReadOnly,
		"transport", cfg.Transport)

	var metricsServer *server.MetricsServer
	if cfg.Transport != config.TransportStdio && cfg.Metrics.Enabled && provider.Enabled() &&
		instrConfig.MetricsExporter == instrumentation.ExporterPrometheus {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Metrics.Addr,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", logging.Err(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}()
	}

	switch cfg.Transport {
	case config.TransportStdio:
		return runStdioServer(mcpSrv)
	case config.TransportStreamableHTTP:
		httpServer := server.NewHTTPServer(mcpSrv, server.HTTPServerConfig{
			Addr:             cfg.HTTPAddr,
			DisableStreaming: disableStreaming,
			Health:           server.NewHealthChecker(serverContext, version),
			Metrics:          serverContext.Metrics(),
			Logger:           logger,
		})
		return runStreamableHTTPServer(ctx, httpServer, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
}

// newServerContext wires the per-account Gmail services, the optional n8n
// client and instrumentation. A missing OAuth client secret is not fatal:
// the server starts and the auth tools report it.
func newServerContext(ctx context.Context, cfg *config.Config, logger *slog.Logger, provider *instrumentation.Provider, audit instrumentation.AuditLoggingConfig) *server.ServerContext {
	opts := []server.Option{
		server.WithLogger(logger),
		server.WithClientOptions(
			gmail.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
			gmail.WithLogger(logger),
		),
	}

	var metrics *instrumentation.Metrics
	if provider.Enabled() {
		metrics = provider.Metrics()
		opts = append(opts,
			server.WithMetrics(metrics),
			server.WithAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, audit)),
			server.WithClientOptions(gmail.WithMetrics(metrics)),
		)
	}

	auth, err := newAuthenticator(cfg, logger, metrics)
	if err != nil {
		logger.Warn("Gmail OAuth is not configured; tools will report missing credentials", logging.Err(err))
	} else {
		opts = append(opts, server.WithAuthenticator(auth))
	}

	if cfg.N8NBaseURL != "" {
		opts = append(opts, server.WithN8N(n8n.NewClient(cfg.N8NBaseURL, n8n.WithMetrics(metrics))))
	}

	return server.NewServerContext(ctx, opts...)
}

// buildDispatcher assembles the operation catalog for cfg and binds every
// handler. In read-only mode only read-only operations are registered.
func buildDispatcher(cfg *config.Config, sc *server.ServerContext, logger *slog.Logger) *dispatch.Dispatcher {
	descs := gmail_tools.Descriptors()
	if sc.N8N() != nil {
		descs = append(descs, workflow_tools.Descriptors()...)
	}
	reg := registry.MustNew(descs...)
	if cfg.ReadOnly {
		reg = reg.Filter(func(d registry.OperationDescriptor) bool { return d.ReadOnly })
	}

	opts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithClassifier(gmail_tools.Classify),
	}
	if !cfg.StrictArguments {
		opts = append(opts, dispatch.WithValidateOptions(validate.AllowUnknown()))
	}
	d := dispatch.New(reg, opts...)

	gmail_tools.Register(d, func(account string) gmail_tools.MailService {
		return sc.GmailService(account)
	})
	if client := sc.N8N(); client != nil {
		workflow_tools.Register(d, client)
	}

	if unbound := d.Unbound(); len(unbound) > 0 {
		logger.Warn("operations without handler", "operations", unbound)
	}
	return d
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, httpServer *server.HTTPServer, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during server shutdown: %w", err)
		}
		return nil
	}
}

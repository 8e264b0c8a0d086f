package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teemow/ticktick-mcp/internal/auth"
	"github.com/teemow/ticktick-mcp/internal/config"
	"github.com/teemow/ticktick-mcp/internal/instrumentation"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

// ServerContext holds the shared dependencies for the MCP server.
// Tool handlers receive it explicitly; nothing here is a global.
type ServerContext struct {
	ctx        context.Context
	cancel     context.CancelFunc
	cfg        config.OAuth
	auth       *auth.Manager
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	clientOpts []ticktick.ClientOption
	mu         sync.RWMutex
	shutdown   bool
}

// ContextOption configures a ServerContext.
type ContextOption func(*ServerContext)

// WithMetrics sets the metrics recorder used by tool handlers.
func WithMetrics(metrics *instrumentation.Metrics) ContextOption {
	return func(sc *ServerContext) {
		sc.metrics = metrics
	}
}

// WithContextLogger sets the logger for the server context.
func WithContextLogger(logger *slog.Logger) ContextOption {
	return func(sc *ServerContext) {
		sc.logger = logger
	}
}

// WithAuthManager replaces the OAuth session manager. Used by tests to
// point the manager at a fake token endpoint.
func WithAuthManager(manager *auth.Manager) ContextOption {
	return func(sc *ServerContext) {
		sc.auth = manager
	}
}

// WithClientOptions sets extra options applied to every API client the
// context creates. Used by tests to redirect clients to a fake API.
func WithClientOptions(opts ...ticktick.ClientOption) ContextOption {
	return func(sc *ServerContext) {
		sc.clientOpts = opts
	}
}

// NewServerContext creates a new server context for the given OAuth
// configuration. A missing token on disk is not an error; tools that
// need an API client fail with a not-authenticated error on first use.
func NewServerContext(ctx context.Context, cfg config.OAuth, opts ...ContextOption) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		cfg:     cfg,
		metrics: &instrumentation.Metrics{},
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(sc)
	}

	if sc.auth == nil {
		sc.auth = auth.NewManager(cfg,
			auth.WithLogger(sc.logger),
			auth.WithRefreshHook(func(ctx context.Context, err error) {
				result := instrumentation.RefreshResultSuccess
				if err != nil {
					result = instrumentation.RefreshResultFailure
				}
				sc.metrics.RecordOAuthTokenRefresh(ctx, result)
			}))
	}

	return sc, nil
}

// Context returns the server's shutdown context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the OAuth configuration.
func (sc *ServerContext) Config() config.OAuth {
	return sc.cfg
}

// AuthManager returns the OAuth session manager.
func (sc *ServerContext) AuthManager() *auth.Manager {
	return sc.auth
}

// Metrics returns the metrics recorder. Never nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Logger returns the context logger. Never nil.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// APIClient returns a TickTick API client carrying a valid access token.
// The token is validated (and refreshed if needed) on every call, so a
// client must not be cached across tool invocations.
func (sc *ServerContext) APIClient(ctx context.Context) (*ticktick.Client, error) {
	token, err := sc.auth.ValidAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	return ticktick.NewClient(token, sc.cfg.Region, sc.clientOpts...), nil
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}

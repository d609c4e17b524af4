// ABOUTME: Gateway orchestrator wiring the registry, store, recorder, and HTTP server
// ABOUTME: Manages route registration, optional auth, and graceful lifecycle

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/finrobot/script-gateway/internal/auth"
	"github.com/finrobot/script-gateway/internal/config"
	"github.com/finrobot/script-gateway/internal/history"
	"github.com/finrobot/script-gateway/internal/metrics"
	"github.com/finrobot/script-gateway/internal/script"
	"github.com/finrobot/script-gateway/internal/store"
)

// Gateway orchestrates the script-gateway server components: the script
// registry, the history store, the execution recorder, and the HTTP server.
type Gateway struct {
	config     *config.Config
	registry   *script.Registry
	store      store.Store
	recorder   *history.Recorder
	httpServer *http.Server
	logger     *slog.Logger

	// execCtx is the parent context for script workers. It derives from the
	// server lifetime so a disconnecting HTTP client never cancels a running
	// script; shutdown does.
	execCtx    context.Context
	execCancel context.CancelFunc
}

// New creates a Gateway with the given configuration and script registry.
func New(cfg *config.Config, registry *script.Registry, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	execCtx, execCancel := context.WithCancel(context.Background())

	g := &Gateway{
		config:     cfg,
		registry:   registry,
		store:      s,
		recorder:   history.NewRecorder(s, logger),
		logger:     logger.With("component", "gateway"),
		execCtx:    execCtx,
		execCancel: execCancel,
	}

	mux := http.NewServeMux()
	if err := g.registerRoutes(mux); err != nil {
		s.Close()
		execCancel()
		return nil, err
	}

	g.httpServer = &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: mux,
	}

	return g, nil
}

// registerRoutes wires API routes on the mux, wrapping them with auth
// middleware when a JWT secret is configured.
func (g *Gateway) registerRoutes(mux *http.ServeMux) error {
	api := map[string]http.HandlerFunc{
		"/api/run-script/stream": g.handleRunScriptStream,
		"/api/run-script":        g.handleRunScript,
		"/api/scripts":           g.handleListScripts,
		"/api/history":           g.handleHistoryOverview,
		"/api/history/":          g.handleScriptHistory,
	}

	if g.config.Auth.JWTSecret != "" {
		verifier, err := auth.NewJWTVerifier([]byte(g.config.Auth.JWTSecret))
		if err != nil {
			return fmt.Errorf("creating JWT verifier: %w", err)
		}
		middleware := auth.HTTPMiddleware(verifier)
		for path, handler := range api {
			mux.Handle(path, middleware(handler))
		}
		g.logger.Info("HTTP auth middleware enabled")
	} else {
		for path, handler := range api {
			mux.HandleFunc(path, handler)
		}
		g.logger.Warn("HTTP auth disabled - no jwt_secret configured")
	}

	// Health and static files stay unauthenticated.
	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/health/ready", g.handleReady)
	if g.config.Scripts.OutputDir != "" {
		mux.Handle("/static/", http.StripPrefix("/static/",
			http.FileServer(http.Dir(g.config.Scripts.OutputDir))))
	}
	if g.config.Metrics.Enabled {
		mux.Handle(g.config.Metrics.Path, metrics.Handler())
	}
	return nil
}

// Handler returns the gateway's HTTP handler, used by tests.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails. On cancellation the server drains in-flight requests for up
// to the configured shutdown timeout, then running script workers are
// cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", g.config.Server.HTTPAddr)
		if err := g.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	g.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), g.config.Server.ShutdownTimeout)
	defer cancel()

	err := g.httpServer.Shutdown(shutdownCtx)
	g.execCancel()
	if cerr := g.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Close releases the gateway's resources without serving. Used by tests and
// error paths; Run performs the same teardown itself.
func (g *Gateway) Close() error {
	g.execCancel()
	return g.store.Close()
}

// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/vaultmcp/internal/api"
	"github.com/starford/vaultmcp/internal/auth"
	"github.com/starford/vaultmcp/internal/index"
	"github.com/starford/vaultmcp/internal/mcpserver"
	"github.com/starford/vaultmcp/internal/noteservice"
	"github.com/starford/vaultmcp/internal/search"
	"github.com/starford/vaultmcp/internal/storage"
)

// Version is reported to MCP clients.
var Version = "dev"

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts...)

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	stdio := cfg.MCP.Transport == TransportStdio

	// Initialize structured JSON logger. Stdout belongs to the protocol in stdio mode.
	var logOut io.Writer = os.Stdout
	if stdio {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("transport", cfg.MCP.Transport),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Vault.Path,
		storage.WithExtension(cfg.Vault.Extension),
		storage.WithIgnore(cfg.Vault.Ignore...),
	)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	searchOpts := []search.Option{search.WithLimit(cfg.Search.Limit)}
	if cfg.Search.MinScore != nil {
		searchOpts = append(searchOpts, search.WithMinScore(*cfg.Search.MinScore))
	}
	svc := noteservice.NewService(store, db,
		noteservice.WithSearchEngine(search.New(searchOpts...)),
		noteservice.WithLogger(logger),
	)
	mcpSrv := mcpserver.New(svc, cfg.MCP.Name, Version, logger)

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the index in step with edits made outside the server.
	g.Go(func() error {
		if err := index.Watch(gCtx, db, store, logger); err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	if stdio {
		g.Go(func() error {
			logger.Info("Serving MCP over stdio")
			err := mcpSrv.ServeStdio(gCtx, app.stdin, app.stdout)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("stdio server error: %w", err)
			}
			// Closed stdin ends the session and the process with it.
			return errStdioClosed
		})
		return wait(g, logger)
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHandler(cfg, svc, mcpSrv),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server",
			slog.String("address", cfg.App.HTTP.Address()),
			slog.String("mcp_endpoint", cfg.MCP.Endpoint))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Stop the watcher.
		return errShutdown
	})

	return wait(g, logger)
}

var (
	errShutdown    = errors.New("shutdown")
	errStdioClosed = errors.New("stdio closed")
)

func wait(g *errgroup.Group, logger *slog.Logger) error {
	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) && !errors.Is(err, errStdioClosed) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Server stopped successfully")
	return nil
}

// newHandler builds the HTTP surface: unauthenticated health checks, the
// REST API under /api and the MCP endpoint, both behind bearer auth.
func newHandler(cfg *Config, svc *noteservice.Service, mcpSrv *mcpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth.AuthEnabled(), cfg.Auth.Token, cfg.Auth.User))

		// Mount API routes under /api.
		r.Mount("/api", api.NewRouter(svc))

		// MCP streamable HTTP endpoint.
		r.Handle(cfg.MCP.Endpoint, mcpSrv.HTTPHandler(cfg.MCP.Endpoint))
	})

	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

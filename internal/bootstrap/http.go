package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/userdesk/config"
	"github.com/target/userdesk/internal/adapters/devusers"
	httpx "github.com/target/userdesk/internal/http"
)

// HTTPServerConfig contains configuration for the console HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// ErrCh receives ListenAndServe failures; optional.
	ErrCh chan<- error
}

// StartHTTPServer builds the console handler and starts serving it.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	if cfg == nil {
		return nil, errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Services.UserList == nil {
		return nil, errors.New("http server requires the user list service")
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler, err := buildHTTPHandler(httpHandlerConfig{
		Logger: logger,
		Services: httpx.RouterServices{
			Users:        cfg.Services.UserList,
			HealthChecks: cfg.Services.HealthChecks,
			CookieDomain: appCfg.HTTP.CookieDomain,
			SessionTTL:   appCfg.Console.SessionTTL,
			IsDev:        appCfg.IsDev,
			Logger:       logger,
		},
		HTTP: appCfg.HTTP,
	})
	if err != nil {
		return nil, err
	}

	return startServer(serverParams{
		Name:    "console",
		Addr:    appCfg.HTTP.Addr,
		Handler: handler,
		Logger:  logger,
		ErrCh:   cfg.ErrCh,
	}), nil
}

// DevUsersServerConfig configures the in-memory users API stub server.
type DevUsersServerConfig struct {
	Config config.DevUsersConfig
	Logger *slog.Logger
	ErrCh  chan<- error
}

// StartDevUsersServer serves the devusers stub for local development.
func StartDevUsersServer(cfg DevUsersServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stub := devusers.New(devusers.Options{
		Path:   cfg.Config.Path,
		Seed:   cfg.Config.Seed,
		Logger: logger,
	})
	h := httpx.Logging(logger)(stub)
	h = httpx.Recover(logger)(h)

	return startServer(serverParams{
		Name:    "dev-users",
		Addr:    cfg.Config.Addr,
		Handler: h,
		Logger:  logger,
		ErrCh:   cfg.ErrCh,
	})
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services httpx.RouterServices
	HTTP     config.HTTPConfig
}

func buildHTTPHandler(cfg httpHandlerConfig) (http.Handler, error) {
	router, err := httpx.NewRouter(cfg.Services)
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	// Apply compression middleware first (innermost) so logging captures compressed sizes
	// Order: Recover -> Logging -> Compression -> Router
	h := router
	if cfg.HTTP.CompressionEnabled {
		cfg.Logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		h = httpx.Compression(httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel, Logger: cfg.Logger})(h)
	}

	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.Recover(cfg.Logger)(h)

	return h, nil
}

type serverParams struct {
	Name    string
	Addr    string
	Handler http.Handler
	Logger  *slog.Logger
	ErrCh   chan<- error
}

func startServer(p serverParams) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	addr := p.Addr
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           p.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		p.Logger.Info("starting HTTP server", "server", p.Name, "addr", server.Addr)
		err := server.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		p.Logger.Error("HTTP server failed", "server", p.Name, "error", err)
		if p.ErrCh != nil {
			select {
			case p.ErrCh <- fmt.Errorf("%s server: %w", p.Name, err):
			default:
			}
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down an HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server", "addr", cfg.Server.Addr)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped", "addr", cfg.Server.Addr)
	}

	return nil
}

package bootstrap

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

	"github.com/redis/go-redis/v9"
	"github.com/target/userdesk/config"
	"github.com/target/userdesk/internal/adapters/memory"
	redisstore "github.com/target/userdesk/internal/adapters/redis"
	"github.com/target/userdesk/internal/adapters/usersapi"
	"github.com/target/userdesk/internal/core"
	httpx "github.com/target/userdesk/internal/http"
	"github.com/target/userdesk/internal/observability/statsd"
	"github.com/target/userdesk/internal/service"
)

const shutdownWaitTimeout = 15 * time.Second

// ServiceContainer holds the console's wired dependencies.
type ServiceContainer struct {
	UsersAPI     *usersapi.Client
	Store        core.StateStore
	UserList     *service.UserListService
	HealthChecks []httpx.HealthCheck
	Metrics      *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	// RedisClient is required when the console keeps state in Redis.
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewMetricsClient dials StatsD when metrics are enabled. Failure is logged
// and metrics are disabled; it never blocks startup.
func NewMetricsClient(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// sinkOf avoids handing a typed nil to code that checks Sink != nil.
//
//nolint:ireturn // callers want the interface.
func sinkOf(c *statsd.Client) statsd.Sink {
	if c == nil {
		return nil
	}
	return c
}

// NewUsersAPIClient builds the REST client from configuration.
func NewUsersAPIClient(cfg config.UsersAPIConfig, metrics *statsd.Client, logger *slog.Logger) (*usersapi.Client, error) {
	client, err := usersapi.NewClient(usersapi.Config{
		BaseURL:   cfg.BaseURL,
		Path:      cfg.Path,
		Timeout:   cfg.Timeout,
		ListExpr:  cfg.ListExpr,
		CookieJar: cfg.CookieJar,
		UserAgent: cfg.UserAgent,
		Metrics:   sinkOf(metrics),
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create users api client: %w", err)
	}
	return client, nil
}

// NewStateStore picks the console state store named by cfg.
//
//nolint:ireturn // the store kind is a runtime choice.
func NewStateStore(cfg config.ConsoleConfig, client redis.UniversalClient) (core.StateStore, error) {
	if !cfg.UsesRedis() {
		return memory.NewStateStore(cfg.SessionTTL), nil
	}
	if client == nil {
		return nil, errors.New("redis session store selected but no redis client is configured")
	}
	return redisstore.NewStateStore(redisstore.StateStoreOptions{
		Client: client,
		Prefix: cfg.RedisPrefix,
		TTL:    cfg.SessionTTL,
	}), nil
}

// NewServices wires the console: users API client, state store and controller.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	metrics := NewMetricsClient(logger, cfg.Observability.Metrics)

	api, err := NewUsersAPIClient(cfg.UsersAPI, metrics, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	store, err := NewStateStore(cfg.Console, deps.RedisClient)
	if err != nil {
		return ServiceContainer{}, err
	}

	var checks []httpx.HealthCheck
	if cfg.Console.UsesRedis() {
		checks = append(checks, RedisHealthCheck(deps.RedisClient))
	}

	userList := service.NewUserListService(service.UserListServiceOptions{
		API:   api,
		Store: store,
		Config: service.UserListConfig{
			ToastDuration: cfg.Console.ToastDuration,
			Logger:        logger,
			Metrics:       sinkOf(metrics),
		},
	})

	logger.Info("console services ready",
		"users_api", api.CollectionURL(),
		"session_store", string(cfg.Console.SessionStore),
		"metrics", metrics.Enabled(),
	)

	return ServiceContainer{
		UsersAPI:     api,
		Store:        store,
		UserList:     userList,
		HealthChecks: checks,
		Metrics:      metrics,
	}, nil
}

// ServiceOrchestrationConfig contains the dependencies for running services.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// Signals overrides the OS signal channel; for tests.
	Signals <-chan os.Signal
}

type runningServers struct {
	console  *http.Server
	devUsers *http.Server
}

// RunServicesWithShutdown starts every enabled service and waits for either a
// shutdown signal or a server failure, then stops them gracefully.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	servers, err := startServers(cfg, logger, enabledServices, errCh)
	if err != nil {
		return err
	}

	return waitForShutdown(shutdownConfig{
		signals: cfg.Signals,
		errCh:   errCh,
		servers: servers,
		timeout: cfg.Config.HTTP.ShutdownTimeout,
		logger:  logger,
	})
}

func startServers(
	cfg *ServiceOrchestrationConfig,
	logger *slog.Logger,
	enabled map[config.ServiceMode]bool,
	errCh chan<- error,
) (runningServers, error) {
	var servers runningServers

	// The stub starts first so the console's first load can reach it.
	if enabled[config.ServiceModeDevUsers] {
		servers.devUsers = StartDevUsersServer(DevUsersServerConfig{
			Config: cfg.Config.DevUsers,
			Logger: logger,
			ErrCh:  errCh,
		})
	}

	if enabled[config.ServiceModeHTTP] {
		srv, err := StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
			ErrCh:    errCh,
		})
		if err != nil {
			if stopErr := ShutdownHTTPServer(ShutdownConfig{Server: servers.devUsers, Logger: logger}); stopErr != nil {
				err = errors.Join(err, stopErr)
			}
			return runningServers{}, err
		}
		servers.console = srv
	}

	return servers, nil
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	size := errorChannelCapacity(enabled) + 1
	if size < 1 {
		return 1
	}
	return size
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	signals <-chan os.Signal
	errCh   <-chan error
	servers runningServers
	timeout time.Duration
	logger  *slog.Logger
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := cfg.signals
	if quit == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(ch)
		quit = ch
	}

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop stops the console before the stub it may be calling.
func gracefulStop(cfg shutdownConfig) error {
	timeout := cfg.timeout
	if timeout <= 0 || timeout > shutdownWaitTimeout {
		timeout = shutdownWaitTimeout
	}
	ctx := context.Background()

	var errs []error
	for _, srv := range []*http.Server{cfg.servers.console, cfg.servers.devUsers} {
		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: ctx,
			Server:  srv,
			Timeout: timeout,
			Logger:  cfg.logger,
		}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package main

import (
	"errors"
	"fmt"

	"github.com/target/userdesk/config"
	"github.com/target/userdesk/internal/bootstrap"
	"github.com/target/userdesk/internal/core"
)

var errSessionsNotShared = errors.New(
	"sessions are only inspectable with CONSOLE_SESSION_STORE=redis; the memory store lives inside the console process",
)

//nolint:ireturn // commands depend on the port, not the adapter.
func connectUsersAPI(cc *commandContext) (core.UsersAPI, error) {
	return bootstrap.NewUsersAPIClient(cc.Config.UsersAPI, nil, cc.Logger)
}

// connectStateStore opens the shared Redis state store. The returned closer
// releases the Redis client.
//
//nolint:ireturn // commands depend on the port, not the adapter.
func connectStateStore(cc *commandContext) (core.StateStore, func() error, error) {
	if !cc.Config.Console.UsesRedis() {
		return nil, nil, errSessionsNotShared
	}
	if !hasRedisConfig(&cc.Config.Redis) {
		return nil, nil, errors.New("redis session store selected but redis is not configured")
	}
	client, err := bootstrap.ConnectRedis(cc.Ctx, bootstrap.RedisConnConfig{Redis: cc.Config.Redis, Logger: cc.Logger})
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	store, err := bootstrap.NewStateStore(cc.Config.Console, client)
	if err != nil {
		return nil, nil, errors.Join(err, client.Close())
	}
	return store, client.Close, nil
}

func hasRedisConfig(cfg *config.RedisConfig) bool {
	if cfg == nil {
		return false
	}
	if cfg.UseCluster {
		return len(cfg.ClusterNodes) > 0 || cfg.URI != ""
	}
	if cfg.UseSentinel {
		return len(cfg.SentinelNodes) > 0
	}
	return cfg.URI != ""
}

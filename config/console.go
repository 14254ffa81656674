package config

import (
	"strings"
	"time"
)

// SessionStoreKind selects where console state is kept.
type SessionStoreKind string

const (
	// SessionStoreMemory keeps state in process; it is lost on restart.
	SessionStoreMemory SessionStoreKind = "memory"
	// SessionStoreRedis shares state between console replicas.
	SessionStoreRedis SessionStoreKind = "redis"
)

// ConsoleConfig controls per-session console behaviour.
type ConsoleConfig struct {
	ToastDuration time.Duration    `env:"TOAST_DURATION" envDefault:"3s"`
	SessionTTL    time.Duration    `env:"SESSION_TTL"    envDefault:"12h"`
	SessionStore  SessionStoreKind `env:"SESSION_STORE"  envDefault:"memory"`
	// RedisPrefix namespaces state keys when SessionStore is redis.
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"userdesk:state:"`
}

// Sanitize clamps durations and normalises the store kind.
func (c *ConsoleConfig) Sanitize() {
	if c.ToastDuration <= 0 {
		c.ToastDuration = 3 * time.Second
	}
	if c.ToastDuration > time.Minute {
		c.ToastDuration = time.Minute
	}
	if c.SessionTTL < time.Minute {
		c.SessionTTL = 12 * time.Hour
	}
	c.SessionStore = SessionStoreKind(strings.ToLower(strings.TrimSpace(string(c.SessionStore))))
	if c.SessionStore != SessionStoreRedis {
		c.SessionStore = SessionStoreMemory
	}
	if strings.TrimSpace(c.RedisPrefix) == "" {
		c.RedisPrefix = "userdesk:state:"
	}
}

// UsesRedis reports whether console state lives in Redis.
func (c *ConsoleConfig) UsesRedis() bool { return c.SessionStore == SessionStoreRedis }

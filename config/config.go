// Package config defines userdesk's environment-driven configuration.
package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - http.go: HTTP server configuration
//   - users_api.go: remote users API client
//   - console.go: console session state
//   - redis.go: Redis connection used by the redis state store
//   - services.go: service modes and the dev users stub
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, disk-served assets).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Services is a comma-separated list of service modes to run.
	Services string `env:"SERVICES" envDefault:"http"`

	HTTP     HTTPConfig
	UsersAPI UsersAPIConfig `envPrefix:"USERS_API_"`
	Console  ConsoleConfig  `envPrefix:"CONSOLE_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	DevUsers DevUsersConfig `envPrefix:"DEV_USERS_"`

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.UsersAPI.Sanitize()
	c.Console.Sanitize()
	c.DevUsers.Sanitize()
	c.Observability.Sanitize()
	c.detectDevMode()
}

// detectDevMode falls back to NODE_ENV, which frontend tooling commonly sets.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the console HTTP server is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsDevUsersEnabled returns true if the in-memory users API stub is enabled.
func (c *AppConfig) IsDevUsersEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeDevUsers]
}

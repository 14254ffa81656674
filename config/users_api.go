package config

import (
	"strings"
	"time"
)

// UsersAPIConfig configures the client for the remote /users resource.
type UsersAPIConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:8081"`
	Path    string        `env:"PATH"     envDefault:"/users"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"10s"`
	// ListExpr is an optional JMESPath expression selecting the user array
	// from the list response, for backends that wrap it (e.g. "data.users").
	ListExpr string `env:"LIST_EXPR" envDefault:""`
	// CookieJar keeps cookies set by the backend across requests.
	CookieJar bool   `env:"COOKIE_JAR" envDefault:"false"`
	UserAgent string `env:"USER_AGENT" envDefault:"userdesk/1.0"`
}

// Sanitize trims values and restores defaults for unusable settings.
func (c *UsersAPIConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.Path = strings.TrimSpace(c.Path)
	if c.Path == "" {
		c.Path = "/users"
	}
	if !strings.HasPrefix(c.Path, "/") {
		c.Path = "/" + c.Path
	}
	c.Path = strings.TrimRight(c.Path, "/")
	if c.Path == "" {
		c.Path = "/users"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	c.ListExpr = strings.TrimSpace(c.ListExpr)
	c.UserAgent = strings.TrimSpace(c.UserAgent)
}

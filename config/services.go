package config

import (
	"errors"
	"fmt"
	"strings"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the console HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeDevUsers runs the in-memory /users stub for local development.
	ServiceModeDevUsers ServiceMode = "dev-users"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeDevUsers}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if strings.TrimSpace(servicesStr) == "" {
		return services, errors.New("at least one service must be specified")
	}

	for part := range strings.SplitSeq(servicesStr, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		mode := ServiceMode(name)
		switch mode {
		case ServiceModeHTTP, ServiceModeDevUsers:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, dev-users)", name)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}
	return services, nil
}

// DevUsersConfig configures the in-memory users API stub.
type DevUsersConfig struct {
	Addr string `env:"ADDR" envDefault:":8081"`
	Path string `env:"PATH" envDefault:"/users"`
	Seed bool   `env:"SEED" envDefault:"true"`
}

// Sanitize restores defaults for empty values.
func (c *DevUsersConfig) Sanitize() {
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = ":8081"
	}
	c.Path = strings.TrimSpace(c.Path)
	if c.Path == "" || c.Path == "/" {
		c.Path = "/users"
	}
	if !strings.HasPrefix(c.Path, "/") {
		c.Path = "/" + c.Path
	}
}

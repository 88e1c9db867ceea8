package polar

import (
	"errors"
	"strings"
	"time"
)

const (
	productionBaseURL = "https://api.polar.sh"
	sandboxBaseURL    = "https://sandbox-api.polar.sh"
	defaultTimeout    = 15 * time.Second
)

// Errors for configuration validation
var (
	ErrMissingAccessToken = errors.New("polar: missing access token")
	ErrInvalidBaseURL     = errors.New("polar: base URL must start with http:// or https://")
)

// Config contains the settings of the polar API client
type Config struct {
	// AccessToken is an organization access token sent as a bearer token
	AccessToken string
	// Sandbox selects the sandbox API when BaseURL is empty
	Sandbox bool
	// BaseURL overrides the production/sandbox endpoint
	BaseURL string
	// Timeout bounds each API call
	Timeout time.Duration
}

// Validate validates the configuration and fills defaults
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AccessToken) == "" {
		return ErrMissingAccessToken
	}
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return ErrInvalidBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return nil
}

// Endpoint returns the API root the client talks to
func (c *Config) Endpoint() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Sandbox {
		return sandboxBaseURL
	}
	return productionBaseURL
}

package service

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultEndpoint is the address of a locally running analysis service
const DefaultEndpoint = "http://localhost:8080/analyze"

// Config holds analysis service client configuration
type Config struct {
	// Endpoint is the full URL requests are posted to
	Endpoint string `json:"endpoint"`

	// Timeout for a single request, zero disables it
	Timeout time.Duration `json:"timeout"`

	// MaxResponseBytes caps how much of a response body is read
	MaxResponseBytes int64 `json:"max_response_bytes"`

	// UserAgent sent with each request
	UserAgent string `json:"user_agent"`
}

// DefaultConfig returns a default client configuration
func DefaultConfig() *Config {
	return &Config{
		Endpoint:         DefaultEndpoint,
		Timeout:          30 * time.Second,
		MaxResponseBytes: 16 << 20,
		UserAgent:        "codelens",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint scheme: %s (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint: missing host")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	if c.MaxResponseBytes <= 0 {
		return fmt.Errorf("max response bytes must be positive")
	}

	return nil
}

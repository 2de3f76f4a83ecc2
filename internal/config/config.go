package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version" toml:"version"`
	Service ServiceConfig `yaml:"service" json:"service" toml:"service"`
	Output  OutputConfig  `yaml:"output" json:"output" toml:"output"`
	UI      UIConfig      `yaml:"ui" json:"ui" toml:"ui"`
	Server  ServerConfig  `yaml:"server" json:"server" toml:"server"`
	Watch   WatchConfig   `yaml:"watch" json:"watch" toml:"watch"`
}

// ServiceConfig configures the remote analysis service
type ServiceConfig struct {
	Endpoint         string        `yaml:"endpoint" json:"endpoint" toml:"endpoint"`                               // analysis endpoint URL
	Timeout          time.Duration `yaml:"timeout" json:"timeout" toml:"timeout"`                                  // request timeout, 0 disables
	MaxResponseBytes int64         `yaml:"max_response_bytes" json:"max_response_bytes" toml:"max_response_bytes"` // response body cap
	UserAgent        string        `yaml:"user_agent" json:"user_agent" toml:"user_agent"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format" toml:"default_format"` // json|text|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode" toml:"color_mode"`             // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose" toml:"verbose"`                      // default verbosity
	ShowTokens    bool   `yaml:"show_tokens" json:"show_tokens" toml:"show_tokens"`          // include the token table
	CompactMode   bool   `yaml:"compact_mode" json:"compact_mode" toml:"compact_mode"`       // compact output mode
}

// UIConfig configures the interactive terminal interface
type UIConfig struct {
	Mode          string `yaml:"mode" json:"mode" toml:"mode"`                               // auto|tui|plain
	Theme         string `yaml:"theme" json:"theme" toml:"theme"`                            // default|high-contrast|minimal
	PreloadSample bool   `yaml:"preload_sample" json:"preload_sample" toml:"preload_sample"` // start with the sample program
	TableHeight   int    `yaml:"table_height" json:"table_height" toml:"table_height"`       // visible table rows
}

// ServerConfig configures the browser surface served by "codelens serve"
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr" toml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" toml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" toml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" toml:"shutdown_timeout"`
}

// WatchConfig configures "codelens watch"
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce" toml:"debounce"` // quiet period before re-analysis
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Service: ServiceConfig{
			Endpoint:         "http://localhost:8080/analyze",
			Timeout:          30 * time.Second,
			MaxResponseBytes: 16 << 20, // 16MB
			UserAgent:        "codelens",
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
			ShowTokens:    true,
			CompactMode:   false,
		},
		UI: UIConfig{
			Mode:          "auto",
			Theme:         "default",
			PreloadSample: true,
			TableHeight:   12,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServiceConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateUIConfig(); err != nil {
		return err
	}
	if err := c.validateTimeoutConfig(); err != nil {
		return err
	}
	return nil
}

// validateServiceConfig validates analysis service configuration
func (c *Config) validateServiceConfig() error {
	if c.Service.Endpoint == "" {
		return fmt.Errorf("service endpoint is required")
	}
	u, err := url.Parse(c.Service.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid service endpoint: %s (must be an http or https URL)", c.Service.Endpoint)
	}
	if c.Service.MaxResponseBytes < 0 {
		return fmt.Errorf("max_response_bytes must be non-negative")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

// validateUIConfig validates terminal interface configuration
func (c *Config) validateUIConfig() error {
	if c.UI.Mode != "" {
		validModes := map[string]bool{
			"auto":  true,
			"tui":   true,
			"plain": true,
		}
		if !validModes[c.UI.Mode] {
			return fmt.Errorf("invalid ui mode: %s (must be one of: auto, tui, plain)", c.UI.Mode)
		}
	}
	if c.UI.TableHeight < 0 {
		return fmt.Errorf("table_height must be non-negative")
	}
	return nil
}

// validateTimeoutConfig validates timeout-related configuration
func (c *Config) validateTimeoutConfig() error {
	if c.Service.Timeout < 0 {
		return fmt.Errorf("service timeout must be non-negative")
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout must be non-negative")
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("write_timeout must be non-negative")
	}
	if c.Server.IdleTimeout < 0 {
		return fmt.Errorf("idle_timeout must be non-negative")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must be non-negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("debounce must be non-negative")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.codelens.yaml",               // Project-specific config (highest priority)
	"~/.config/codelens/config.yaml", // User config
	"/etc/codelens/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.codelens.yaml
// 4. ~/.config/codelens/config.yaml
// 5. /etc/codelens/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If custom path is provided, use only that path
	if customPath != "" {
		// Validate the custom path for security
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Load from standard paths in reverse priority order (lowest to highest)
		paths := make([]string, len(l.configPaths))
		copy(paths, l.configPaths)
		slices.Reverse(paths)

		for _, path := range paths {
			expandedPath := expandPath(path)
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					// Log warning but continue with other config files
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	// Apply environment variable overrides
	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Validate the final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML or TOML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() before reaching here
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Create a temporary config to unmarshal into
	var fileConfig Config
	if err := decodeConfig(path, data, &fileConfig); err != nil {
		return err
	}

	// Booleans are decoded again as pointers so an explicit false is kept
	var flags explicitFlags
	if err := decodeConfig(path, data, &flags); err != nil {
		return err
	}

	// Merge the file config into the existing config
	mergeConfigs(config, &fileConfig)
	flags.apply(config)

	return nil
}

// explicitFlags holds the boolean settings a config file actually names
type explicitFlags struct {
	Output struct {
		Verbose     *bool `yaml:"verbose" toml:"verbose"`
		ShowTokens  *bool `yaml:"show_tokens" toml:"show_tokens"`
		CompactMode *bool `yaml:"compact_mode" toml:"compact_mode"`
	} `yaml:"output" toml:"output"`
	UI struct {
		PreloadSample *bool `yaml:"preload_sample" toml:"preload_sample"`
	} `yaml:"ui" toml:"ui"`
}

func (f *explicitFlags) apply(config *Config) {
	mergeIfSet(&config.Output.Verbose, f.Output.Verbose)
	mergeIfSet(&config.Output.ShowTokens, f.Output.ShowTokens)
	mergeIfSet(&config.Output.CompactMode, f.Output.CompactMode)
	mergeIfSet(&config.UI.PreloadSample, f.UI.PreloadSample)
}

// decodeConfig parses YAML or TOML by file extension
func decodeConfig(path string, data []byte, v any) error {
	if isTOML(path) {
		if err := toml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse TOML: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Service Config
		"CODELENS_SERVICE_ENDPOINT":           func(v string) error { config.Service.Endpoint = v; return nil },
		"CODELENS_SERVICE_TIMEOUT":            func(v string) error { return parseDuration(v, &config.Service.Timeout) },
		"CODELENS_SERVICE_MAX_RESPONSE_BYTES": func(v string) error { return parseInt64(v, &config.Service.MaxResponseBytes) },
		"CODELENS_SERVICE_USER_AGENT":         func(v string) error { config.Service.UserAgent = v; return nil },

		// Output Config
		"CODELENS_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"CODELENS_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"CODELENS_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"CODELENS_OUTPUT_SHOW_TOKENS":    func(v string) error { return parseBool(v, &config.Output.ShowTokens) },
		"CODELENS_OUTPUT_COMPACT_MODE":   func(v string) error { return parseBool(v, &config.Output.CompactMode) },

		// UI Config
		"CODELENS_UI_MODE":           func(v string) error { config.UI.Mode = v; return nil },
		"CODELENS_UI_THEME":          func(v string) error { config.UI.Theme = v; return nil },
		"CODELENS_UI_PRELOAD_SAMPLE": func(v string) error { return parseBool(v, &config.UI.PreloadSample) },
		"CODELENS_UI_TABLE_HEIGHT":   func(v string) error { return parseInt(v, &config.UI.TableHeight) },

		// Server Config
		"CODELENS_SERVER_ADDR":             func(v string) error { config.Server.Addr = v; return nil },
		"CODELENS_SERVER_READ_TIMEOUT":     func(v string) error { return parseDuration(v, &config.Server.ReadTimeout) },
		"CODELENS_SERVER_WRITE_TIMEOUT":    func(v string) error { return parseDuration(v, &config.Server.WriteTimeout) },
		"CODELENS_SERVER_IDLE_TIMEOUT":     func(v string) error { return parseDuration(v, &config.Server.IdleTimeout) },
		"CODELENS_SERVER_SHUTDOWN_TIMEOUT": func(v string) error { return parseDuration(v, &config.Server.ShutdownTimeout) },

		// Watch Config
		"CODELENS_WATCH_DEBOUNCE": func(v string) error { return parseDuration(v, &config.Watch.Debounce) },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	// Clean the path to resolve any ".." components
	cleanPath := filepath.Clean(path)

	// Check for path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Ensure it's a YAML or TOML file
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" && ext != ".toml" {
		return fmt.Errorf("config file must have .yaml, .yml or .toml extension")
	}

	// Convert to absolute path for additional validation
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// Basic sanity check - ensure it's not in sensitive system directories
	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// isTOML reports whether a config path should be parsed as TOML
func isTOML(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".toml"
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges source config into destination config
// Only non-zero values from source overwrite destination
func mergeConfigs(dst, src *Config) {
	// Version
	if src.Version != "" {
		dst.Version = src.Version
	}

	mergeServiceConfig(&dst.Service, &src.Service)
	mergeOutputConfig(&dst.Output, &src.Output)
	mergeUIConfig(&dst.UI, &src.UI)
	mergeServerConfig(&dst.Server, &src.Server)
	mergeWatchConfig(&dst.Watch, &src.Watch)
}

// mergeServiceConfig merges analysis service configuration
func mergeServiceConfig(dst, src *ServiceConfig) {
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	if src.MaxResponseBytes != 0 {
		dst.MaxResponseBytes = src.MaxResponseBytes
	}
	if src.UserAgent != "" {
		dst.UserAgent = src.UserAgent
	}
}

// mergeOutputConfig merges output configuration
func mergeOutputConfig(dst, src *OutputConfig) {
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.ColorMode != "" {
		dst.ColorMode = src.ColorMode
	}
	// Booleans only merge when true here; explicitFlags restores an explicit false
	if src.Verbose {
		dst.Verbose = true
	}
	if src.ShowTokens {
		dst.ShowTokens = true
	}
	if src.CompactMode {
		dst.CompactMode = true
	}
}

// mergeUIConfig merges terminal interface configuration
func mergeUIConfig(dst, src *UIConfig) {
	if src.Mode != "" {
		dst.Mode = src.Mode
	}
	if src.Theme != "" {
		dst.Theme = src.Theme
	}
	if src.TableHeight != 0 {
		dst.TableHeight = src.TableHeight
	}
	if src.PreloadSample {
		dst.PreloadSample = true
	}
}

// mergeServerConfig merges browser surface configuration
func mergeServerConfig(dst, src *ServerConfig) {
	if src.Addr != "" {
		dst.Addr = src.Addr
	}
	if src.ReadTimeout != 0 {
		dst.ReadTimeout = src.ReadTimeout
	}
	if src.WriteTimeout != 0 {
		dst.WriteTimeout = src.WriteTimeout
	}
	if src.IdleTimeout != 0 {
		dst.IdleTimeout = src.IdleTimeout
	}
	if src.ShutdownTimeout != 0 {
		dst.ShutdownTimeout = src.ShutdownTimeout
	}
}

// mergeWatchConfig merges watch configuration
func mergeWatchConfig(dst, src *WatchConfig) {
	if src.Debounce != 0 {
		dst.Debounce = src.Debounce
	}
}

// mergeIfSet merges a boolean only when the file set it
func mergeIfSet(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseInt64(s string, dst *int64) error {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

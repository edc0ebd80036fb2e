// Package config provides client configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (CLARIFY_* runtime override)
//  2. Config file (~/.clarify/config.yaml)
//  3. Default values
//
// Timeouts are deliberately tiered: the connectivity probe uses a
// short bound so the UI discovers an unreachable backend quickly,
// ordinary data operations use a longer default, and summarization
// uses the longest bound because it depends on generative latency.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidBackendURL indicates the backend URL is missing or malformed.
	ErrInvalidBackendURL = errors.New("invalid backend URL")

	// ErrInvalidTimeout indicates a timeout value is out of range.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// Default timeout values in milliseconds.
const (
	DefaultProbeTimeoutMs     = 3000
	DefaultRequestTimeoutMs   = 10000
	DefaultSummarizeTimeoutMs = 60000

	// MaxTimeoutMs bounds any configured timeout to 10 minutes.
	MaxTimeoutMs = 600000
)

// configDirName is the per-user state directory under $HOME.
const configDirName = ".clarify"

// Config stores client configuration.
type Config struct {
	// BackendURL is the base URL of the ClarifyAI backend.
	BackendURL string `mapstructure:"backend_url"`

	// Timeouts in milliseconds. See package doc for the tiering.
	ProbeTimeoutMs     int `mapstructure:"probe_timeout_ms"`
	RequestTimeoutMs   int `mapstructure:"request_timeout_ms"`
	SummarizeTimeoutMs int `mapstructure:"summarize_timeout_ms"`

	// Logging
	LogLevel string `mapstructure:"log_level"` // debug|info|warn|error
	LogJSON  bool   `mapstructure:"log_json"`
}

// Dir returns the per-user configuration directory (~/.clarify),
// creating it if necessary.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}

	dir := filepath.Join(home, configDirName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// Load loads configuration.
// Priority: environment variables > configuration file > defaults.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".") // also support current directory

	setDefaults(v)

	v.SetEnvPrefix("CLARIFY")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend_url", "http://localhost:8000")
	v.SetDefault("probe_timeout_ms", DefaultProbeTimeoutMs)
	v.SetDefault("request_timeout_ms", DefaultRequestTimeoutMs)
	v.SetDefault("summarize_timeout_ms", DefaultSummarizeTimeoutMs)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// Validate performs fail-fast validation with sentinel errors.
func (c *Config) Validate() error {
	if err := ValidateBackendURL(c.BackendURL); err != nil {
		return err
	}

	for _, t := range []struct {
		name string
		ms   int
	}{
		{"probe_timeout_ms", c.ProbeTimeoutMs},
		{"request_timeout_ms", c.RequestTimeoutMs},
		{"summarize_timeout_ms", c.SummarizeTimeoutMs},
	} {
		if t.ms <= 0 || t.ms > MaxTimeoutMs {
			return fmt.Errorf("%w: %s must be in (0, %d], got %d",
				ErrInvalidTimeout, t.name, MaxTimeoutMs, t.ms)
		}
	}

	return nil
}

// ValidateBackendURL checks that the backend URL is an absolute
// http(s) URL with a host.
func ValidateBackendURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: backend_url is required", ErrInvalidBackendURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBackendURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrInvalidBackendURL, raw)
	}
	return nil
}

// ProbeTimeout returns the connectivity probe timeout.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMs) * time.Millisecond
}

// RequestTimeout returns the default data-operation timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// SummarizeTimeout returns the long-running summarize timeout.
func (c *Config) SummarizeTimeout() time.Duration {
	return time.Duration(c.SummarizeTimeoutMs) * time.Millisecond
}

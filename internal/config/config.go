// Package config defines service configuration and its defaults.
package config

import (
	"fmt"
	"slices"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir is the badger directory. Empty keeps ratings and favorites in memory.
	DataDir string `koanf:"data_dir"`

	// ItemsPerPage is the initial page size of every browse session.
	ItemsPerPage int `koanf:"items_per_page"`

	// PageSizes lists the page sizes a client may pick.
	PageSizes []int `koanf:"page_sizes"`

	// LoadDelayMS simulates dataset load latency at startup.
	LoadDelayMS int `koanf:"load_delay_ms"`

	// MaxSessions bounds the sessions kept in memory; the oldest is dropped first.
	MaxSessions int `koanf:"max_sessions"`

	// RateLimitRequests per RateLimitWindowS seconds, per client IP, on write routes.
	RateLimitRequests int `koanf:"rate_limit_requests"`
	RateLimitWindowS  int `koanf:"rate_limit_window_s"`

	// CORSAllowedOrigins is passed to the CORS middleware.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		DataDir:            "",
		ItemsPerPage:       6,
		PageSizes:          []int{6, 9, 18},
		LoadDelayMS:        250,
		MaxSessions:        10_000,
		RateLimitRequests:  60,
		RateLimitWindowS:   60,
		CORSAllowedOrigins: []string{"*"},
	}
}

// LoadDelay returns LoadDelayMS as a duration.
func (c *Config) LoadDelay() time.Duration {
	return time.Duration(c.LoadDelayMS) * time.Millisecond
}

// RateLimitWindow returns RateLimitWindowS as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowS) * time.Second
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ItemsPerPage <= 0:
		return fmt.Errorf("%w: items_per_page must be positive", ErrInvalidConfig)
	case len(c.PageSizes) > 0 && !slices.Contains(c.PageSizes, c.ItemsPerPage):
		return fmt.Errorf("%w: items_per_page %d is not one of page_sizes %v", ErrInvalidConfig, c.ItemsPerPage, c.PageSizes)
	case c.LoadDelayMS < 0:
		return fmt.Errorf("%w: load_delay_ms must not be negative", ErrInvalidConfig)
	case c.RateLimitRequests < 0 || c.RateLimitWindowS < 0:
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	for _, n := range c.PageSizes {
		if n <= 0 {
			return fmt.Errorf("%w: page size %d must be positive", ErrInvalidConfig, n)
		}
	}
	return nil
}

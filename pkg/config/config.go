package config

import (
	"fmt"
	"time"
)

// Config holds all runtime configuration
type Config struct {
	// Redash settings
	URL          string
	APIKey       string
	DataSourceID int

	// HTTP client settings
	RequestTimeout time.Duration
	PageSize       int
	RateLimit      int // requests/sec, 0 disables limiting
	MaxRetries     int

	// Optional ClickHouse schema source
	ClickHouseDSN string

	// Output settings
	Detail bool
	JSON   bool

	// Operational flags
	Verbose bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		RequestTimeout: 30 * time.Second,
		PageSize:       100,
		RateLimit:      10,
		MaxRetries:     3,
		Detail:         false,
		JSON:           false,
		Verbose:        false,
	}
}

// Validate checks values that cannot be checked by flag parsing alone
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("key is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be >= 0, got %d", c.RateLimit)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be >= 1, got %d", c.MaxRetries)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.RequestTimeout)
	}
	if c.Detail && c.JSON {
		return fmt.Errorf("--detail and --json are mutually exclusive")
	}
	return nil
}

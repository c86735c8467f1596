package httpclient

import (
	"fmt"
	"log/slog"
	"time"
)

// Config configures the HTTP client.
type Config struct {
	// Timeout is the total request timeout, including reading the body.
	// Default: 30s. Must be > 0.
	Timeout time.Duration

	// UserAgent is sent when a request carries no User-Agent of its own.
	// Required. Must be non-empty.
	UserAgent string

	// MaxIdleConnsPerHost bounds pooled keep-alive connections per host.
	// Default: 10. Must be >= 0.
	MaxIdleConnsPerHost int

	// Logger receives one entry per exchange. Default: slog.Default().
	Logger *slog.Logger

	// Auth authenticates every request. Default: none.
	Auth AuthConfig
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:             30 * time.Second,
		UserAgent:           "webconn/1.0",
		MaxIdleConnsPerHost: 10,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}

	if c.MaxIdleConnsPerHost < 0 {
		return fmt.Errorf("max_idle_conns_per_host must be >= 0, got %d", c.MaxIdleConnsPerHost)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required and must be non-empty")
	}

	if err := c.Auth.Validate(); err != nil {
		return err
	}

	return nil
}

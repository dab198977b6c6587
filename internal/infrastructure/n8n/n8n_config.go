package n8n

import (
	"errors"
	"time"
)

const (
	// DefaultTimeout bounds every outbound n8n call
	DefaultTimeout = 30 * time.Second
	// DefaultMaxResponseSize bounds the body read from n8n (1MB)
	DefaultMaxResponseSize int64 = 1 << 20
	// APIKeyHeader carries the n8n API key
	APIKeyHeader = "X-N8N-API-KEY"
)

// Config holds configuration for the n8n adapter
type Config struct {
	// Timeout is the HTTP client timeout
	Timeout time.Duration
	// MaxResponseSize caps the bytes read from a response
	MaxResponseSize int64
	// APIBaseURL is used for the executions API when a request gives none
	APIBaseURL string
}

// ErrConfigInvalidTimeout is returned for a negative timeout
var ErrConfigInvalidTimeout = errors.New("n8n: timeout cannot be negative")

// NewConfig creates a configuration with defaults
func NewConfig() *Config {
	return &Config{
		Timeout:         DefaultTimeout,
		MaxResponseSize: DefaultMaxResponseSize,
	}
}

// Validate checks the configuration and fills zero values with defaults
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return ErrConfigInvalidTimeout
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = DefaultMaxResponseSize
	}
	return nil
}

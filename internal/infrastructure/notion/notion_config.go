package notion

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Notion API
	DefaultBaseURL = "https://api.notion.com"
	// DefaultVersion is the Notion-Version header value the payloads are written for
	DefaultVersion = "2022-06-28"
	// DefaultTimeout bounds every outbound Notion call
	DefaultTimeout = 30 * time.Second

	maxResponseSize = 1 << 20
)

// Config holds configuration for the Notion adapter
type Config struct {
	BaseURL string
	Version string
	Timeout time.Duration
}

// Errors for Notion configuration
var (
	ErrConfigInvalidBaseURL = errors.New("notion: base URL must be an absolute http(s) URL")
	ErrConfigInvalidTimeout = errors.New("notion: timeout cannot be negative")
)

// NewConfig creates a configuration with defaults
func NewConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Version: DefaultVersion,
		Timeout: DefaultTimeout,
	}
}

// Validate checks the configuration and fills zero values with defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrConfigInvalidBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Timeout < 0 {
		return ErrConfigInvalidTimeout
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

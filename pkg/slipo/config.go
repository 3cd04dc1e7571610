// Package slipo provides a Go client for the SLIPO POI data-integration
// service REST API: user file-system access, the RDF resource catalog,
// workflow (process) management, and the toolkit operations (transform,
// interlink, fuse, enrich, export).
package slipo

import (
	"fmt"
	"strings"
	"time"
)

// DefaultBaseURL is the default API endpoint.
const DefaultBaseURL = "https://app.dev.slipo.eu/"

// Default client settings.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second
)

// Config holds all configuration for the SLIPO API client.
type Config struct {
	// BaseURL is the root URL of the SLIPO API deployment.
	BaseURL string

	// APIKey is the application key sent with every request.
	APIKey string

	// RequiresSSL rejects plain-HTTP endpoints when true.
	RequiresSSL bool

	// Timeout is the HTTP client timeout for each request.
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts for failed requests.
	MaxRetries int

	// RetryDelay is the initial delay between retries (exponential backoff applied).
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with the default endpoint and settings.
// The API key must still be supplied.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		RequiresSSL: true,
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
		RetryDelay:  DefaultRetryDelay,
	}
}

// WithAPIKey returns a copy of the config with the specified API key.
func (c Config) WithAPIKey(key string) Config {
	c.APIKey = key
	return c
}

// WithBaseURL returns a copy of the config with the specified endpoint.
func (c Config) WithBaseURL(url string) Config {
	c.BaseURL = url
	return c
}

// WithTimeout returns a copy of the config with the specified timeout.
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.Timeout = timeout
	return c
}

// WithRetries returns a copy of the config with the specified retry settings.
func (c Config) WithRetries(maxRetries int, retryDelay time.Duration) Config {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
	return c
}

// WithInsecure returns a copy of the config that allows plain-HTTP endpoints.
func (c Config) WithInsecure() Config {
	c.RequiresSSL = false
	return c
}

// Validate checks that the config can be used to build a client.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		return fmt.Errorf("config: base URL is required")
	}
	if c.RequiresSSL && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("config: endpoint %q is not https and RequiresSSL is set", c.BaseURL)
	}
	return nil
}

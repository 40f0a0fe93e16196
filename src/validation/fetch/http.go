// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/internal/helper/gc"
)

// RequestIDHeader carries a per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// DefaultMaxResponseSize bounds OCSP responses and CRLs.
const DefaultMaxResponseSize = 16 << 20

// ErrUnexpectedStatus is returned for non-200 responses.
var ErrUnexpectedStatus = errors.New("fetch: unexpected HTTP status")

// HTTPConfig holds HTTP client configuration for revocation retrieval.
type HTTPConfig struct {
	Timeout         time.Duration // HTTP request timeout
	Version         string        // Application version for User-Agent
	UserAgent       string        // Custom User-Agent string, if empty will be constructed from Version
	MaxResponseSize int64         // Upper bound on a response body; 0 means DefaultMaxResponseSize
	RateLimit       float64       // Requests per second across clients sharing this config; 0 disables limiting
	Burst           int           // Burst size for RateLimit; values below 1 mean 1

	mu      sync.Mutex
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPConfig creates a new HTTP configuration with default values.
//
// It initializes the configuration with a default timeout of 10 seconds,
// the provided application version and no rate limit.
//
// Parameters:
//   - version: Application version string
//
// Returns:
//   - *HTTPConfig: New HTTP configuration
func NewHTTPConfig(version string) *HTTPConfig {
	return &HTTPConfig{
		Timeout:         10 * time.Second,
		Version:         version,
		MaxResponseSize: DefaultMaxResponseSize,
	}
}

// GetUserAgent returns the User-Agent string, constructing it if not set.
func (c *HTTPConfig) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return fmt.Sprintf("X.509-Trust-Validator/%s (+https://github.com/H0llyW00dzZ/x509-trust-validator)", c.Version)
}

// Client returns an HTTP client configured with the current timeout.
// A client that was handed out is never modified; a changed Timeout
// yields a new client.
//
// Thread Safety: Safe for concurrent use.
func (c *HTTPConfig) Client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil || c.client.Timeout != c.Timeout {
		c.client = &http.Client{Timeout: c.Timeout}
	}

	return c.client
}

// Wait blocks until the rate limiter admits one request or ctx is done.
// It returns immediately when no rate limit is configured.
func (c *HTTPConfig) Wait(ctx context.Context) error {
	c.mu.Lock()
	if c.RateLimit <= 0 {
		c.mu.Unlock()
		return ctx.Err()
	}
	if c.limiter == nil {
		c.limiter = rate.NewLimiter(rate.Limit(c.RateLimit), max(c.Burst, 1))
	}
	limiter := c.limiter
	c.mu.Unlock()

	return limiter.Wait(ctx)
}

func (c *HTTPConfig) maxResponseSize() int64 {
	if c.MaxResponseSize > 0 {
		return c.MaxResponseSize
	}
	return DefaultMaxResponseSize
}

// do sends req after the rate limiter admits it and returns the body of a
// 200 response.
func (c *HTTPConfig) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if err := c.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait for %s: %w", req.URL, err)
	}

	req.Header.Set("User-Agent", c.GetUserAgent())
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, resp.StatusCode, req.URL)
	}

	body, err := gc.ReadAllLimit(resp.Body, c.maxResponseSize())
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", req.URL, err)
	}
	return body, nil
}

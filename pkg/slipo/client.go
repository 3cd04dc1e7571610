package slipo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client provides methods to interact with the SLIPO REST API. It is safe
// to share: all state is set at construction and never mutated.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *slog.Logger
}

// NewClient creates a new SLIPO API client with the given configuration.
// A nil logger discards all output.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
		logger: logger.With("component", "slipo-client"),
	}, nil
}

// BaseURL returns the configured API endpoint.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// call executes one API request with retries and returns the envelope
// result payload.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body any) (json.RawMessage, error) {
	logger := c.logger.With("op", op, "method", method, "path", path)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, WrapError(op, fmt.Errorf("marshaling request: %w", err))
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			logger.Debug("retrying after delay", "attempt", attempt, "delay", delay)

			select {
			case <-ctx.Done():
				return nil, WrapError(op, ctx.Err())
			case <-time.After(delay):
			}
		}

		result, err := c.doRequest(ctx, op, method, path, query, payload)
		if err != nil {
			lastErr = err
			if !IsRetryable(err) {
				// Envelope errors already carry the operation.
				var apiErr *Error
				if errors.As(err, &apiErr) {
					return nil, err
				}
				return nil, WrapError(op, err)
			}
			logger.Debug("request failed, will retry", "error", err, "attempt", attempt)
			continue
		}

		logger.Debug("request successful")
		return result, nil
	}

	return nil, WrapError(op, fmt.Errorf("all retries exhausted: %w", lastErr))
}

// doRequest performs a single HTTP round trip and unwraps the envelope.
func (c *Client) doRequest(ctx context.Context, op, method, path string, query url.Values, payload []byte) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, method, path, query, payload)
	if err != nil {
		return nil, WrapError(op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, WrapError(op, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(op, fmt.Errorf("reading response: %w", err))
	}

	// Error responses usually still carry an envelope with error entries.
	var env envelope
	if jsonErr := json.Unmarshal(respBody, &env); jsonErr == nil {
		if len(env.Errors) > 0 {
			first := env.Errors[0]
			return nil, &Error{Op: op, Code: first.Code, Message: first.Description}
		}
		if resp.StatusCode == http.StatusOK && env.Success {
			return env.Result, nil
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return nil, WrapError(op, fmt.Errorf("unexpected response: %s", respBody))
}

// download performs a streaming GET and writes the raw body to target,
// creating parent directories as needed. Download endpoints return the
// file content directly, not an envelope.
func (c *Client) download(ctx context.Context, op, path string, query url.Values, target string) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return WrapError(op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return WrapError(op, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var env envelope
		if json.Unmarshal(respBody, &env) == nil && len(env.Errors) > 0 {
			first := env.Errors[0]
			return &Error{Op: op, Code: first.Code, Message: first.Description}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return WrapError(op, err)
	}
	out, err := os.Create(target)
	if err != nil {
		return WrapError(op, err)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return WrapError(op, fmt.Errorf("writing %s: %w", target, err))
	}
	c.logger.Debug("download complete", "op", op, "target", target, "bytes", n)
	return nil
}

// upload performs a streaming POST of the reader body.
func (c *Client) upload(ctx context.Context, op, path string, query url.Values, body io.Reader) error {
	u, err := c.requestURL(path, query)
	if err != nil {
		return WrapError(op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return WrapError(op, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return WrapError(op, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return WrapError(op, fmt.Errorf("reading response: %w", err))
	}

	var env envelope
	if json.Unmarshal(respBody, &env) == nil && len(env.Errors) > 0 {
		first := env.Errors[0]
		return &Error{Op: op, Code: first.Code, Message: first.Description}
	}
	if resp.StatusCode != http.StatusOK {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, payload []byte) (*http.Request, error) {
	u, err := c.requestURL(path, query)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setHeaders(req)
	return req, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-API-Key", c.config.APIKey)
	req.Header.Set("X-Request-Id", uuid.NewString())
}

func (c *Client) requestURL(path string, query url.Values) (string, error) {
	base := strings.TrimSuffix(c.config.BaseURL, "/")
	u, err := url.Parse(base + "/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("building request URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

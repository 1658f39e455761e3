package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/api"
)

// TokenSource supplies the bearer credential for each request.
type TokenSource interface {
	Token() (string, error)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets how many times a 429 response is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithLogger attaches a logger for retry and failure diagnostics.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) { c.log = log }
}

// Client is a thin HTTP client for the platform's task collection.
// It handles Bearer token authentication, JSON marshaling, and
// automatic retry with exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	maxRetries int
	log        *logrus.Entry
}

// NewClient creates a new task collection client. The baseURL is the API
// root (e.g., https://lms.example.com/api); tokens is consulted on every
// request so a login or logout takes effect immediately.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
		log:        logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "remote")
	return c
}

// do is the core HTTP method that builds the request, handles auth,
// rate limiting with exponential backoff, and JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	token, err := c.tokens.Token()
	if err != nil {
		return &AuthError{Message: err.Error()}
	}

	url := c.baseURL + path

	var data []byte
	if body != nil {
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if data != nil {
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf("rate limited (429) on %s %s", method, path)
			c.log.WithFields(logrus.Fields{
				"method":  method,
				"path":    path,
				"attempt": attempt + 1,
				"wait":    waitDuration,
			}).Debug("rate limited, backing off")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}

		case resp.StatusCode == http.StatusUnauthorized:
			return &AuthError{
				Message: fmt.Sprintf("session rejected by %s", c.baseURL),
			}

		case resp.StatusCode == http.StatusForbidden:
			return &ForbiddenError{Method: method, Path: path}

		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			statusErr := &StatusError{
				StatusCode: resp.StatusCode,
				Method:     method,
				Path:       path,
			}
			var apiErr api.ErrorResponse
			if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
				statusErr.Message = apiErr.Error
			} else {
				statusErr.Message = strings.TrimSpace(string(respBody))
			}
			return statusErr
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf(
				"unmarshaling response from %s %s: %w",
				method, path, err,
			)
		}

		return nil
	}

	return fmt.Errorf(
		"max retries (%d) exceeded: %w", c.maxRetries, lastErr,
	)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}

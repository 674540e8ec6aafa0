// Package tracker uploads confirmed events to the baby-tracking service.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ccollicutt/babylog/pkg/parser"
)

// Defaults for Client.
const (
	DefaultTimeout    = 15 * time.Second
	DefaultMaxRetries = 3
	DefaultBackoff    = time.Second
)

// ErrUnsupportedEvent is returned for event types the tracker has no endpoint for.
var ErrUnsupportedEvent = errors.New("unsupported event type")

// APIError represents a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
	retryAfter string // Retry-After header value for 429s
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracker returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Response contains the result of one upload.
type Response struct {
	Kind       parser.EventKind
	StatusCode int
	Body       string
	Attempts   int
	Duration   time.Duration
	Error      error
}

// Success returns true if the upload was accepted (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Client posts events for one child.
type Client struct {
	baseURL    string
	childID    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	newKey     func() string
	logger     *zap.Logger
}

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMaxRetries sets how many times a 429 or 5xx response is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBackoff sets the first retry delay. Later retries double it.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.backoff = d
	}
}

// WithLogger sets the logger for retries and failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client authenticating every request through ts.
func New(baseURL, childID string, ts oauth2.TokenSource, opts ...Option) *Client {
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = DefaultTimeout

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		childID:    childID,
		httpClient: httpClient,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff,
		newKey:     uuid.NewString,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload posts one event. Retries on 429 (honoring Retry-After) and 5xx
// (with exponential backoff) reuse the same Idempotency-Key.
func (c *Client) Upload(ctx context.Context, ev parser.Event) *Response {
	start := time.Now()
	resp := &Response{}
	if ev != nil {
		resp.Kind = ev.Kind()
	}

	req, err := buildRequest(ev)
	if err != nil {
		resp.Error = err
		resp.Duration = time.Since(start)
		return resp
	}

	payload, err := json.Marshal(req.body)
	if err != nil {
		resp.Error = fmt.Errorf("failed to marshal %s: %w", resp.Kind, err)
		resp.Duration = time.Since(start)
		return resp
	}

	url := c.baseURL + "/children/" + c.childID + req.path
	key := c.newKey()

	var lastErr *APIError
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoffDelay(c.backoff, attempt, lastErr)
			c.logger.Debug("retrying upload",
				zap.String("kind", string(resp.Kind)),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait))
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				resp.Error = ctx.Err()
				resp.Duration = time.Since(start)
				return resp
			case <-t.C:
			}
		}
		resp.Attempts++

		status, body, err := c.post(ctx, url, key, payload)
		if err != nil {
			resp.Error = fmt.Errorf("request failed: %w", err)
			resp.Duration = time.Since(start)
			return resp
		}
		resp.StatusCode = status
		resp.Body = body.text

		if status >= 200 && status < 300 {
			resp.Error = nil
			resp.Duration = time.Since(start)
			return resp
		}

		apiErr := &APIError{StatusCode: status, Body: truncate(body.text, 512), retryAfter: body.retryAfter}
		resp.Error = apiErr
		if status == http.StatusTooManyRequests || status >= 500 {
			lastErr = apiErr
			continue
		}
		break
	}

	resp.Duration = time.Since(start)
	c.logger.Warn("upload failed",
		zap.String("kind", string(resp.Kind)),
		zap.Int("status", resp.StatusCode),
		zap.Int("attempts", resp.Attempts),
		zap.Error(resp.Error))
	return resp
}

// UploadAll uploads events in order and stops at the first failure. The
// returned error joins the failure with the kinds left unsent.
func (c *Client) UploadAll(ctx context.Context, events []parser.Event) ([]*Response, error) {
	responses := make([]*Response, 0, len(events))
	for i, ev := range events {
		resp := c.Upload(ctx, ev)
		responses = append(responses, resp)
		if !resp.Success() {
			err := fmt.Errorf("uploading %s: %w", resp.Kind, resp.Error)
			if rest := len(events) - i - 1; rest > 0 {
				err = errors.Join(err, fmt.Errorf("%d event(s) not uploaded", rest))
			}
			return responses, err
		}
	}
	return responses, nil
}

// Ping checks that the tracker base URL answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

type responseBody struct {
	text       string
	retryAfter string
}

func (c *Client) post(ctx context.Context, url, key string, payload []byte) (int, responseBody, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, responseBody{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "babylog")
	req.Header.Set("Idempotency-Key", key)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, responseBody{}, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1024*1024)) // Limit to 1MB
	if err != nil {
		return 0, responseBody{}, fmt.Errorf("failed to read response: %w", err)
	}
	return httpResp.StatusCode, responseBody{
		text:       string(body),
		retryAfter: httpResp.Header.Get("Retry-After"),
	}, nil
}

// backoffDelay returns the wait before a retry attempt: Retry-After seconds
// for a 429 when given, else base doubled per attempt.
func backoffDelay(base time.Duration, attempt int, lastErr *APIError) time.Duration {
	if lastErr != nil && lastErr.StatusCode == http.StatusTooManyRequests && lastErr.retryAfter != "" {
		if secs, err := strconv.Atoi(lastErr.retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return base << (attempt - 1)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fleetguard360/busbooking/internal/ratelimit"
	"github.com/fleetguard360/busbooking/internal/session"
)

// QueryError is the terminal failure of an operation after all retry
// attempts are exhausted. Message carries the last observed error, with a
// service-reported message taking precedence over transport-level detail.
type QueryError struct {
	Operation string
	Message   string
	Attempts  int
}

func (e *QueryError) Error() string {
	return e.Operation + ": " + e.Message
}

// RetryPolicy bounds how often an operation is attempted and how long to
// wait between attempts. Sleep is injectable so tests can run without real
// timers.
type RetryPolicy struct {
	MaxAttempts int
	Delay       func(attempt int) time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy retries up to 3 attempts with deterministic
// exponential backoff: 1s after the first failure, 2s after the second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delay: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * time.Second
		},
		Sleep: sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type Config struct {
	Endpoint   string
	HTTPClient *http.Client
	Retry      RetryPolicy
	Limiter    *ratelimit.OperationLimiter
}

// Client executes GraphQL operations against the booking backend as a
// single HTTP POST per attempt. It keeps no local cache; every call is an
// independent request.
type Client struct {
	endpoint   string
	httpClient *http.Client
	retry      RetryPolicy
	limiter    *ratelimit.OperationLimiter
}

func NewClient(cfg Config) *Client {
	c := &Client{
		endpoint:   cfg.Endpoint,
		httpClient: cfg.HTTPClient,
		retry:      cfg.Retry,
		limiter:    cfg.Limiter,
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.retry.MaxAttempts < 1 {
		c.retry = DefaultRetryPolicy()
	}
	if c.retry.Sleep == nil {
		c.retry.Sleep = sleepContext
	}
	return c
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute sends the operation and returns the raw data payload. A transport
// rejection, a non-2xx status and a service-reported error list are all
// retryable; after MaxAttempts failures the last error is surfaced as a
// QueryError.
func (c *Client) Execute(ctx context.Context, op Operation, variables map[string]any, sess *session.Session) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, op.Name); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if attempt > 0 {
			if err := c.retry.Sleep(ctx, c.retry.Delay(attempt-1)); err != nil {
				return nil, err
			}
		}

		data, err := c.post(ctx, op, variables, sess)
		if err == nil {
			return data, nil
		}
		lastErr = err
		log.Printf("graphql: operation %s attempt %d failed: %v", op.Name, attempt+1, err)
	}

	return nil, &QueryError{
		Operation: op.Name,
		Message:   lastErr.Error(),
		Attempts:  c.retry.MaxAttempts,
	}
}

func (c *Client) post(ctx context.Context, op Operation, variables map[string]any, sess *session.Session) (json.RawMessage, error) {
	body, err := json.Marshal(request{Query: op.Document, Variables: variables})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if op.Auth && sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	// A service-reported error wins over the HTTP status so the user sees
	// the backend's own message.
	if decodeErr == nil && len(env.Errors) > 0 {
		return nil, errors.New(env.Errors[0].Message)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected HTTP status %s", resp.Status)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	return env.Data, nil
}

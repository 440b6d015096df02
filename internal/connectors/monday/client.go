package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxAttempts is the number of tries for throttled or failed-server requests.
	MaxAttempts = 5

	// RetryDelay is the initial delay between retries; it doubles per attempt.
	RetryDelay = time.Second

	// MaxRetryDelay caps the exponential backoff.
	MaxRetryDelay = 30 * time.Second
)

// ClientConfig configures the GraphQL client.
type ClientConfig struct {
	URL               string
	Token             string
	APIVersion        string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client executes GraphQL queries against the board API.
type Client struct {
	url         string
	token       string
	apiVersion  string
	http        *http.Client
	rateLimiter *RateLimiter
	retryDelay  time.Duration
}

// NewClient creates a new API client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:         cfg.URL,
		token:       cfg.Token,
		apiVersion:  cfg.APIVersion,
		http:        &http.Client{Timeout: timeout},
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
		retryDelay:  RetryDelay,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLErrorItem struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type graphQLResponse struct {
	Data         json.RawMessage    `json:"data"`
	Errors       []graphQLErrorItem `json:"errors"`
	ErrorCode    string             `json:"error_code"`
	ErrorMessage string             `json:"error_message"`
}

// Query executes a GraphQL query and decodes its data field into out.
// Throttled and 5xx responses are retried with exponential backoff.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	delay := c.retryDelay
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, MaxRetryDelay)
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		lastErr = c.do(ctx, body, out)
		if lastErr == nil || !retryable(lastErr) || ctx.Err() != nil {
			return lastErr
		}
	}
	return fmt.Errorf("after %d attempts: %w", MaxAttempts, lastErr)
}

func (c *Client) do(ctx context.Context, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")
	if c.apiVersion != "" {
		req.Header.Set("API-Version", c.apiVersion)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post query: %w", err)
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckRateLimit(resp); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(truncate(string(raw), 200)),
			URL:        c.url,
		}
	}

	var gr graphQLResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Errors) > 0 || gr.ErrorMessage != "" {
		return toGraphQLError(gr)
	}
	if out == nil || len(gr.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func toGraphQLError(gr graphQLResponse) *GraphQLError {
	e := &GraphQLError{Code: gr.ErrorCode}
	if gr.ErrorMessage != "" {
		e.Messages = append(e.Messages, gr.ErrorMessage)
	}
	for _, item := range gr.Errors {
		e.Messages = append(e.Messages, item.Message)
		if e.Code == "" {
			e.Code = item.Extensions.Code
		}
	}
	return e
}

func retryable(err error) bool {
	if IsRateLimited(err) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

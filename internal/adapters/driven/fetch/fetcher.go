// Package fetch downloads attachment bytes over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

const (
	// MaxAttachmentBytes caps a single download.
	MaxAttachmentBytes = 200 << 20

	// maxAttempts bounds retries on throttling and server errors.
	maxAttempts = 3

	// baseBackoff is the first retry delay; it doubles per attempt.
	baseBackoff = 500 * time.Millisecond
)

// StatusError is a non-2xx download response.
type StatusError struct {
	StatusCode int
	URL        string

	retryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download %s: HTTP %d", e.URL, e.StatusCode)
}

// Temporary reports whether retrying could succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ErrTooLarge is returned when a download exceeds MaxAttachmentBytes.
var ErrTooLarge = errors.New("attachment exceeds size limit")

// Fetcher downloads URLs with throttling and a per-request timeout.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	maxBytes int64
	backoff  time.Duration
}

// New creates a fetcher. requestsPerSecond <= 0 disables throttling.
func New(timeout time.Duration, requestsPerSecond float64) *Fetcher {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 1),
		maxBytes: MaxAttachmentBytes,
		backoff:  baseBackoff,
	}
}

// Fetch downloads url, retrying throttled and failed-server responses.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", domain.ErrInvalidInput)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := f.backoff << (attempt - 1)
			var se *StatusError
			if errors.As(lastErr, &se) {
				if ra := se.retryAfter; ra > 0 {
					delay = ra
				}
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		data, err := f.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		var ue *neturl.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("download %s: %w", redact(url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		se := &StatusError{StatusCode: resp.StatusCode, URL: redact(url)}
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil {
				se.retryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, se
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, domain.ErrInvalidInput) && !errors.Is(err, ErrTooLarge)
}

// redact drops the query string, which carries signatures on pre-signed URLs.
func redact(url string) string {
	base, _, _ := strings.Cut(url, "?")
	return base
}

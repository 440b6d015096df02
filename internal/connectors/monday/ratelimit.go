package monday

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HeaderRetryAfter is the retry-after header (seconds).
const HeaderRetryAfter = "Retry-After"

// RateLimiter combines a proactive token bucket with the server's Retry-After hints.
type RateLimiter struct {
	mu         sync.Mutex
	blockUntil time.Time
	bucket     *rate.Limiter
}

// NewRateLimiter creates a limiter allowing requestsPerSecond.
// A non-positive rate disables proactive throttling.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &RateLimiter{bucket: rate.NewLimiter(limit, 1)}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	until := r.blockUntil
	r.mu.Unlock()

	if d := time.Until(until); d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return nil
}

// CheckRateLimit returns a RateLimitError for a 429 response and blocks
// subsequent requests until the advertised retry time.
func (r *RateLimiter) CheckRateLimit(resp *http.Response) error {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	var retryAt time.Time
	if v := resp.Header.Get(HeaderRetryAfter); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			retryAt = time.Now().Add(time.Duration(seconds) * time.Second)
		}
	}

	r.mu.Lock()
	if retryAt.After(r.blockUntil) {
		r.blockUntil = retryAt
	}
	r.mu.Unlock()

	return &RateLimitError{RetryAt: retryAt}
}

package monday

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Monday-specific errors.
var (
	// ErrStatusColumnNotFound indicates the configured status column is absent from the board.
	ErrStatusColumnNotFound = errors.New("monday: status column not found")

	// ErrStatusLabelNotFound indicates the required label is not defined on the status column.
	ErrStatusLabelNotFound = errors.New("monday: status label not found")

	// ErrBoardNotFound indicates the board does not exist or is not accessible.
	ErrBoardNotFound = errors.New("monday: board not found")
)

// RateLimitError represents a throttled request with the time it may be retried.
type RateLimitError struct {
	RetryAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("monday: rate limit exceeded, retry at %s", e.RetryAt.Format(time.RFC3339))
}

// APIError represents a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("monday: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Temporary reports whether the request may succeed when retried.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500
}

// GraphQLError carries the errors array of a 200 response.
type GraphQLError struct {
	Messages []string
	Code     string
}

func (e *GraphQLError) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if e.Code != "" {
		return fmt.Sprintf("monday: graphql %s: %s", e.Code, msg)
	}
	return "monday: graphql: " + msg
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}
	return false
}

// IsNotFound checks if the error indicates the board or a column was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return errors.Is(err, ErrBoardNotFound) ||
		errors.Is(err, ErrStatusColumnNotFound) ||
		errors.Is(err, ErrStatusLabelNotFound)
}

// IsGraphQL checks if the error came from the GraphQL errors array.
func IsGraphQL(err error) bool {
	var gqlErr *GraphQLError
	return errors.As(err, &gqlErr)
}

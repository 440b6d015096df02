package driven

import "context"

// Fetcher downloads the bytes behind an attachment URL.
// A non-nil error means no usable bytes were obtained.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Pipeline Errors.

	// ErrFetchFailed indicates an attachment could not be downloaded.
	// Recovered per reference with an "unavailable" placeholder.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrConversionFailed indicates a recognised format could not be decoded or rendered.
	// Recovered per fingerprint with a "corrupt" placeholder.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrUnsupportedFormat indicates no conversion strategy exists for the content.
	// This is a designed fallback path, not a failure.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCacheWriteFailed indicates the attachment cache could not be written.
	// The attachment is treated as uncached for the current run.
	ErrCacheWriteFailed = errors.New("cache write failed")

	// ErrFatalConfig indicates required configuration is missing or unusable.
	// The run aborts before any fetch begins.
	ErrFatalConfig = errors.New("fatal configuration error")

	// ErrToolNotFound indicates an external rendering tool is not installed.
	ErrToolNotFound = errors.New("rendering tool not found")
)

// FetchError carries the reference whose download failed.
type FetchError struct {
	Reference AttachmentReference
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.Reference.Filename, e.Reference.Location(), e.Err)
}

// Unwrap returns the underlying transport error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFetchFailed.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// ConversionError carries the fingerprint and kind whose conversion failed.
type ConversionError struct {
	Fingerprint Fingerprint
	Kind        Kind
	Err         error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s %s: %v", e.Kind, e.Fingerprint.Short(), e.Err)
}

// Unwrap returns the underlying decode or render error.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConversionFailed.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversionFailed
}

// ConfigError describes a single invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrFatalConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrFatalConfig
}

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrFetchFailed", ErrFetchFailed},
		{"ErrConversionFailed", ErrConversionFailed},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrCacheWriteFailed", ErrCacheWriteFailed},
		{"ErrFatalConfig", ErrFatalConfig},
		{"ErrToolNotFound", ErrToolNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestFetchError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("resolve: %w", &FetchError{
		Reference: AttachmentReference{AssetID: "42", Filename: "a.png"},
		Err:       cause,
	})

	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrConversionFailed)
	assert.Contains(t, err.Error(), "a.png")
	assert.Contains(t, err.Error(), "monday-asset:42")

	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, "42", fe.Reference.AssetID)
}

func TestConversionError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("bad header")
	err := &ConversionError{Fingerprint: "abcdef0123456789", Kind: KindImage, Err: cause}

	assert.ErrorIs(t, err, ErrConversionFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "abcdef012345")
	assert.NotContains(t, err.Error(), "abcdef0123456789")
}

func TestConfigError_IsFatal(t *testing.T) {
	err := &ConfigError{Field: "board.id", Reason: "required"}
	assert.ErrorIs(t, err, ErrFatalConfig)
	assert.Equal(t, "config board.id: required", err.Error())
}

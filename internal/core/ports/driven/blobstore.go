package driven

import (
	"context"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// BlobStore is a content-addressed store keyed by fingerprint.
// Writes must be atomic and idempotent: a reader never observes a partial
// blob, and rewriting identical bytes under the same key is safe.
type BlobStore interface {
	// Get returns the bytes for a fingerprint or domain.ErrNotFound.
	Get(ctx context.Context, fp domain.Fingerprint) ([]byte, error)

	// Put stores bytes under their fingerprint.
	Put(ctx context.Context, fp domain.Fingerprint, data []byte) error

	// Has reports whether a blob exists.
	Has(ctx context.Context, fp domain.Fingerprint) (bool, error)

	// Delete removes a blob. Missing blobs are not an error.
	Delete(ctx context.Context, fp domain.Fingerprint) error
}

// LocationIndex remembers which fingerprint a remote location resolved to.
// It only avoids downloads; it is never authoritative.
type LocationIndex interface {
	// Lookup returns the fingerprint recorded for a location or domain.ErrNotFound.
	Lookup(ctx context.Context, location string) (domain.Fingerprint, error)

	// Record stores the fingerprint for a location, replacing any previous record.
	Record(ctx context.Context, location string, fp domain.Fingerprint) error

	// Forget removes the record for a location.
	Forget(ctx context.Context, location string) error
}

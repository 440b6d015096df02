package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Ensure LocationIndex implements the interface.
var _ driven.LocationIndex = (*LocationIndex)(nil)

// LocationIndex is an in-memory implementation of driven.LocationIndex.
type LocationIndex struct {
	mu        sync.RWMutex
	locations map[string]domain.Fingerprint
}

// NewLocationIndex creates a new in-memory location index.
func NewLocationIndex() *LocationIndex {
	return &LocationIndex{
		locations: make(map[string]domain.Fingerprint),
	}
}

// Lookup returns the fingerprint recorded for location.
func (i *LocationIndex) Lookup(_ context.Context, location string) (domain.Fingerprint, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	fp, ok := i.locations[location]
	if !ok {
		return "", domain.ErrNotFound
	}
	return fp, nil
}

// Record stores or replaces the fingerprint for location.
func (i *LocationIndex) Record(_ context.Context, location string, fp domain.Fingerprint) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.locations[location] = fp
	return nil
}

// Forget removes location.
func (i *LocationIndex) Forget(_ context.Context, location string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.locations, location)
	return nil
}

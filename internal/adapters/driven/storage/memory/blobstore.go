package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[domain.Fingerprint][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[domain.Fingerprint][]byte),
	}
}

// Get returns a copy of the stored bytes.
func (s *BlobStore) Get(_ context.Context, fp domain.Fingerprint) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[fp]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return bytes.Clone(data), nil
}

// Put stores a copy of data under fp.
func (s *BlobStore) Put(_ context.Context, fp domain.Fingerprint, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[fp] = bytes.Clone(data)
	return nil
}

// Has reports whether fp is stored.
func (s *BlobStore) Has(_ context.Context, fp domain.Fingerprint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[fp]
	return ok, nil
}

// Delete removes fp.
func (s *BlobStore) Delete(_ context.Context, fp domain.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, fp)
	return nil
}

// Len returns the number of stored blobs.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

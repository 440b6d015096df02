// Package blob stores attachment bytes on disk, addressed by fingerprint.
//
// Layout: {dir}/{fp[0:2]}/{fp}. Writes go to a ".tmp-" file in the shard
// directory and are renamed into place, so readers never see partial blobs
// and concurrent writers of the same fingerprint are harmless.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.BlobStore = (*FileStore)(nil)

// TempPrefix marks in-progress writes.
const TempPrefix = ".tmp-"

// FileStore is a sharded content-addressed directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the store directory if needed and checks that it is
// writable.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	probe, err := os.CreateTemp(dir, TempPrefix+"probe-*")
	if err != nil {
		return nil, fmt.Errorf("cache dir not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Get returns the blob for fp.
func (s *FileStore) Get(_ context.Context, fp domain.Fingerprint) ([]byte, error) {
	path, err := s.path(fp)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Put writes data under fp atomically. Existing blobs are left alone.
func (s *FileStore) Put(_ context.Context, fp domain.Fingerprint, data []byte) error {
	path, err := s.path(fp)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create shard: %w", err)
	}
	return writeFileAtomic(path, data, 0o644)
}

// Has reports whether fp is stored.
func (s *FileStore) Has(_ context.Context, fp domain.Fingerprint) (bool, error) {
	path, err := s.path(fp)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Delete removes fp. Missing blobs are not an error.
func (s *FileStore) Delete(_ context.Context, fp domain.Fingerprint) error {
	path, err := s.path(fp)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// path returns the blob path. Only content fingerprints are storable.
func (s *FileStore) path(fp domain.Fingerprint) (string, error) {
	str := string(fp)
	if len(str) < 3 || fp.IsPlaceholder() || !isHex(str) {
		return "", fmt.Errorf("%w: fingerprint %q", domain.ErrInvalidInput, str)
	}
	return filepath.Join(s.dir, str[:2], str), nil
}

func isHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), TempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename blob: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
	"github.com/custodia-labs/snowreport/internal/core/ports/driving"
	"github.com/custodia-labs/snowreport/internal/logger"
)

// Ensure AttachmentCache implements the interface.
var _ driving.AttachmentCache = (*AttachmentCache)(nil)

// AttachmentCache resolves references to bytes through a content-addressed
// store. A location is fetched at most once per cache instance; concurrent
// callers for the same location share one fetch.
type AttachmentCache struct {
	fetcher driven.Fetcher
	blobs   driven.BlobStore
	index   driven.LocationIndex
	logger  *slog.Logger

	flight singleflight.Group

	mu     sync.RWMutex
	seen   map[string]*domain.FetchedAttachment
	failed map[string]error
}

// NewAttachmentCache creates a cache. The index may be nil, in which case
// every location is downloaded once per run and stored by fingerprint.
func NewAttachmentCache(
	fetcher driven.Fetcher,
	blobs driven.BlobStore,
	index driven.LocationIndex,
	log *slog.Logger,
) *AttachmentCache {
	if log == nil {
		log = logger.New()
	}
	return &AttachmentCache{
		fetcher: fetcher,
		blobs:   blobs,
		index:   index,
		logger:  log,
		seen:    make(map[string]*domain.FetchedAttachment),
		failed:  make(map[string]error),
	}
}

// Resolve returns the bytes for ref, from the cache when a valid copy exists.
func (c *AttachmentCache) Resolve(ctx context.Context, ref domain.AttachmentReference) (*domain.FetchedAttachment, error) {
	loc := ref.Location()
	if loc == "" {
		return nil, &domain.FetchError{Reference: ref, Err: fmt.Errorf("%w: reference has no location", domain.ErrInvalidInput)}
	}

	if att, err, ok := c.memo(loc); ok {
		return rebind(att, ref, err)
	}

	v, err, _ := c.flight.Do(loc, func() (any, error) {
		if att, err, ok := c.memo(loc); ok {
			return att, err
		}
		att, err := c.resolveLocation(ctx, ref, loc)

		c.mu.Lock()
		if err != nil {
			c.failed[loc] = err
		} else {
			c.seen[loc] = att
		}
		c.mu.Unlock()
		return att, err
	})
	if err != nil {
		return rebind(nil, ref, err)
	}
	return rebind(v.(*domain.FetchedAttachment), ref, nil)
}

func (c *AttachmentCache) memo(loc string) (*domain.FetchedAttachment, error, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err, ok := c.failed[loc]; ok {
		return nil, err, true
	}
	att, ok := c.seen[loc]
	return att, nil, ok
}

// rebind attaches the caller's reference to a shared result.
func rebind(att *domain.FetchedAttachment, ref domain.AttachmentReference, err error) (*domain.FetchedAttachment, error) {
	if err != nil {
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			return nil, &domain.FetchError{Reference: ref, Err: fe.Err}
		}
		return nil, &domain.FetchError{Reference: ref, Err: err}
	}
	out := *att
	out.Reference = ref
	return &out, nil
}

func (c *AttachmentCache) resolveLocation(ctx context.Context, ref domain.AttachmentReference, loc string) (*domain.FetchedAttachment, error) {
	if att := c.fromStore(ctx, ref, loc); att != nil {
		return att, nil
	}

	data, err := c.fetcher.Fetch(ctx, ref.URL)
	if err != nil {
		c.logger.Warn("attachment fetch failed",
			"ticket_id", ref.TicketID,
			"asset_id", ref.AssetID,
			"filename", ref.DisplayName(),
			"error", err)
		return nil, &domain.FetchError{Reference: ref, Err: err}
	}

	fp := Fingerprint(data)
	if err := c.store(ctx, loc, fp, data); err != nil {
		c.logger.Warn("cache write failed; continuing with in-memory copy",
			"asset_id", ref.AssetID,
			"fingerprint", fp.Short(),
			"error", err)
	}

	c.logger.Debug("attachment downloaded",
		"ticket_id", ref.TicketID,
		"asset_id", ref.AssetID,
		"fingerprint", fp.Short(),
		"bytes", len(data))

	return &domain.FetchedAttachment{Reference: ref, Content: data, Fingerprint: fp}, nil
}

// fromStore returns a verified cached copy or nil. Stale or corrupt entries
// are dropped so the caller downloads again.
func (c *AttachmentCache) fromStore(ctx context.Context, ref domain.AttachmentReference, loc string) *domain.FetchedAttachment {
	if c.index == nil {
		return nil
	}
	fp, err := c.index.Lookup(ctx, loc)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.Debug("location index lookup failed", "location", loc, "error", err)
		}
		return nil
	}

	data, err := c.blobs.Get(ctx, fp)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.logger.Debug("cached blob missing", "location", loc, "fingerprint", fp.Short())
			_ = c.index.Forget(ctx, loc)
		}
		return nil
	}

	if Fingerprint(data) != fp {
		c.logger.Warn("cached blob failed verification; discarding",
			"location", loc,
			"fingerprint", fp.Short())
		_ = c.blobs.Delete(ctx, fp)
		_ = c.index.Forget(ctx, loc)
		return nil
	}

	c.logger.Debug("attachment cache hit",
		"ticket_id", ref.TicketID,
		"asset_id", ref.AssetID,
		"fingerprint", fp.Short())
	return &domain.FetchedAttachment{Reference: ref, Content: data, Fingerprint: fp, FromCache: true}
}

func (c *AttachmentCache) store(ctx context.Context, loc string, fp domain.Fingerprint, data []byte) error {
	if err := c.blobs.Put(ctx, fp, data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheWriteFailed, err)
	}
	if c.index == nil {
		return nil
	}
	if err := c.index.Record(ctx, loc, fp); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheWriteFailed, err)
	}
	return nil
}

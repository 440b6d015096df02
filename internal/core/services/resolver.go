package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driving"
	"github.com/custodia-labs/snowreport/internal/logger"
)

// Ensure DedupResolver implements the interface.
var _ driving.DedupResolver = (*DedupResolver)(nil)

// DedupResolver resolves every attachment slot of a run, groups slots by
// content fingerprint and converts each distinct content exactly once.
//
// Fetches and conversions run on a bounded worker pool. Each distinct
// content is converted from its first slot in board order. Cancelling the
// context stops new work from being issued; conversions already started run
// to completion so their temporary resources are released.
type DedupResolver struct {
	cache       driving.AttachmentCache
	converter   driving.FormatConverter
	concurrency int
	logger      *slog.Logger
}

// NewDedupResolver creates a resolver. Concurrency below one means one.
func NewDedupResolver(
	cache driving.AttachmentCache,
	converter driving.FormatConverter,
	concurrency int,
	log *slog.Logger,
) *DedupResolver {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logger.New()
	}
	return &DedupResolver{
		cache:       cache,
		converter:   converter,
		concurrency: concurrency,
		logger:      log,
	}
}

// slot is one (ticket, attachment) occurrence in board order.
type slot struct {
	ticketID string
	ref      domain.AttachmentReference
}

// Resolve produces the fingerprint for every slot and one representation per
// distinct fingerprint.
func (r *DedupResolver) Resolve(ctx context.Context, tickets []domain.TicketRecord) (*domain.Resolution, error) {
	start := time.Now()
	slots := flatten(tickets)

	// 1. Fetch every slot.
	fetched := make([]*domain.FetchedAttachment, len(slots))
	fetchErrs := make([]error, len(slots))
	if err := r.forEach(ctx, len(slots), func(i int) {
		fetched[i], fetchErrs[i] = r.cache.Resolve(ctx, slots[i].ref)
	}); err != nil {
		return nil, err
	}

	// 2. Convert each distinct fingerprint from its first slot in board
	// order. Conversions are detached from cancellation so a started tool
	// always cleans up after itself.
	var firsts []int
	seen := make(map[domain.Fingerprint]bool)
	for i := range slots {
		if fetchErrs[i] != nil {
			continue
		}
		if fp := fetched[i].Fingerprint; !seen[fp] {
			seen[fp] = true
			firsts = append(firsts, i)
		}
	}
	gate := newConvertGate(r.converter)
	convCtx := context.WithoutCancel(ctx)
	converted := make([]*domain.CanonicalRepresentation, len(firsts))
	if err := r.forEach(ctx, len(firsts), func(j int) {
		converted[j] = gate.Do(convCtx, fetched[firsts[j]])
	}); err != nil {
		return nil, err
	}

	// 3. Assign fingerprints in board order.
	res := &domain.Resolution{
		Representations: make(map[domain.Fingerprint]*domain.CanonicalRepresentation),
		Entries:         make([]domain.ManifestEntry, 0, len(slots)),
	}
	res.Stats.References = len(slots)

	counted := make(map[string]bool)
	next := 0
	for i, s := range slots {
		var fp domain.Fingerprint
		if fetchErrs[i] != nil {
			fp = unavailableFingerprint(s.ref)
			res.Stats.FetchFailures++
			var fe *domain.FetchError
			if !errors.As(fetchErrs[i], &fe) {
				fe = &domain.FetchError{Reference: s.ref, Err: fetchErrs[i]}
			}
			r.logger.Warn("attachment unavailable",
				"ticket_id", s.ticketID,
				"asset_id", s.ref.AssetID,
				"filename", s.ref.DisplayName(),
				"error", fe)
		} else {
			fp = fetched[i].Fingerprint
			if loc := s.ref.Location(); !counted[loc] {
				counted[loc] = true
				if fetched[i].FromCache {
					res.Stats.CacheHits++
				} else {
					res.Stats.Fetched++
				}
			}
		}

		if _, ok := res.Representations[fp]; !ok {
			res.Order = append(res.Order, fp)
			if fetchErrs[i] == nil {
				res.Representations[fp] = converted[next]
				next++
				res.Stats.Conversions++
			} else {
				res.Representations[fp] = r.converter.Placeholder(s.ref, fp, domain.PlaceholderUnavailable)
			}
			if res.Representations[fp].IsPlaceholder() {
				res.Stats.Placeholders++
			}
		}

		res.Entries = append(res.Entries, domain.ManifestEntry{
			TicketID:    s.ticketID,
			Reference:   s.ref,
			Fingerprint: fp,
			Ordinal:     i,
		})
	}

	res.Shared = sharedGroups(res)

	r.logger.Info("attachments resolved",
		"references", res.Stats.References,
		"distinct", len(res.Order),
		"shared", len(res.Shared),
		"fetched", res.Stats.Fetched,
		"cache_hits", res.Stats.CacheHits,
		"fetch_failures", res.Stats.FetchFailures,
		"placeholders", res.Stats.Placeholders,
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

// forEach runs fn for 0..n-1 on the worker pool. Once ctx is cancelled no
// further calls are started; calls in flight are waited for.
func (r *DedupResolver) forEach(ctx context.Context, n int, fn func(i int)) error {
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

func flatten(tickets []domain.TicketRecord) []slot {
	var slots []slot
	for _, t := range tickets {
		for _, ref := range t.Attachments {
			if ref.TicketID == "" {
				ref.TicketID = t.ID
			}
			slots = append(slots, slot{ticketID: t.ID, ref: ref})
		}
	}
	return slots
}

// sharedGroups lists real content referenced by two or more distinct tickets,
// in first-encounter order. Unavailable placeholders are never shared.
func sharedGroups(res *domain.Resolution) []domain.SharedGroup {
	tickets := make(map[domain.Fingerprint][]string)
	seen := make(map[domain.Fingerprint]map[string]bool)
	filenames := make(map[domain.Fingerprint]string)
	for _, e := range res.Entries {
		if e.Fingerprint.IsPlaceholder() {
			continue
		}
		if seen[e.Fingerprint] == nil {
			seen[e.Fingerprint] = make(map[string]bool)
			filenames[e.Fingerprint] = e.Reference.DisplayName()
		}
		if !seen[e.Fingerprint][e.TicketID] {
			seen[e.Fingerprint][e.TicketID] = true
			tickets[e.Fingerprint] = append(tickets[e.Fingerprint], e.TicketID)
		}
	}

	var groups []domain.SharedGroup
	for _, fp := range res.Order {
		if ids := tickets[fp]; len(ids) > 1 {
			groups = append(groups, domain.SharedGroup{
				Fingerprint: fp,
				Filename:    filenames[fp],
				TicketIDs:   ids,
			})
		}
	}
	return groups
}

package services

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driving"
)

// convertGate runs at most one conversion per fingerprint. Concurrent
// callers for the same fingerprint wait for the in-flight conversion and
// share its result.
type convertGate struct {
	converter driving.FormatConverter
	flight    singleflight.Group

	mu   sync.Mutex
	done map[domain.Fingerprint]*domain.CanonicalRepresentation
}

func newConvertGate(converter driving.FormatConverter) *convertGate {
	return &convertGate{
		converter: converter,
		done:      make(map[domain.Fingerprint]*domain.CanonicalRepresentation),
	}
}

func (g *convertGate) lookup(fp domain.Fingerprint) (*domain.CanonicalRepresentation, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rep, ok := g.done[fp]
	return rep, ok
}

// Do returns the representation for att, converting only on first use.
func (g *convertGate) Do(ctx context.Context, att *domain.FetchedAttachment) *domain.CanonicalRepresentation {
	if rep, ok := g.lookup(att.Fingerprint); ok {
		return rep
	}
	v, _, _ := g.flight.Do(string(att.Fingerprint), func() (any, error) {
		if rep, ok := g.lookup(att.Fingerprint); ok {
			return rep, nil
		}
		rep := g.converter.Convert(ctx, att)
		g.mu.Lock()
		g.done[att.Fingerprint] = rep
		g.mu.Unlock()
		return rep, nil
	})
	return v.(*domain.CanonicalRepresentation)
}

package services

import (
	"slices"
	"sort"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driving"
)

// Ensure ManifestBuilder implements the interface.
var _ driving.ManifestBuilder = (*ManifestBuilder)(nil)

// ManifestBuilder orders a resolution for the report writers.
type ManifestBuilder struct{}

// NewManifestBuilder creates a manifest builder.
func NewManifestBuilder() *ManifestBuilder {
	return &ManifestBuilder{}
}

// Build returns entries in ticket-then-attachment order, shared groups by
// descending ticket count, and one summary row per ticket.
func (b *ManifestBuilder) Build(res *domain.Resolution, tickets []domain.TicketRecord) *domain.FinalManifest {
	entries := slices.Clone(res.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Ordinal < entries[j].Ordinal
	})

	shared := slices.Clone(res.Shared)
	sort.SliceStable(shared, func(i, j int) bool {
		return shared[i].Count() > shared[j].Count()
	})

	sharedTickets := make(map[string]bool)
	for _, g := range shared {
		for _, id := range g.TicketIDs {
			sharedTickets[id] = true
		}
	}

	byTicket := make(map[string][]domain.ManifestEntry)
	for _, e := range entries {
		byTicket[e.TicketID] = append(byTicket[e.TicketID], e)
	}

	summaries := make([]domain.TicketSummary, 0, len(tickets))
	for _, t := range tickets {
		s := domain.TicketSummary{
			TicketID:  t.ID,
			Name:      t.Name,
			Status:    t.Status,
			OpenDate:  t.OpenDate,
			CloseDate: t.CloseDate,
			HasShared: sharedTickets[t.ID],
		}
		for _, e := range byTicket[t.ID] {
			s.AttachmentCount++
			s.Filenames = append(s.Filenames, e.Reference.DisplayName())
			if rep := res.Representations[e.Fingerprint]; rep != nil && rep.IsPlaceholder() {
				s.Placeholders++
			}
		}
		summaries = append(summaries, s)
	}

	return &domain.FinalManifest{
		Entries:         entries,
		Representations: res.Representations,
		Shared:          shared,
		Tickets:         summaries,
		Distinct:        slices.Clone(res.Order),
	}
}

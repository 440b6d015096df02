package domain

// ManifestEntry is one (ticket, attachment) slot of the report, in output order.
type ManifestEntry struct {
	TicketID    string
	Reference   AttachmentReference
	Fingerprint Fingerprint

	// Ordinal is the 0-based position in ticket-then-attachment encounter order.
	Ordinal int
}

// SharedGroup lists the tickets that reference the same content.
type SharedGroup struct {
	Fingerprint Fingerprint

	// Filename is the first declared name seen for the content.
	Filename string

	// TicketIDs are distinct, in encounter order.
	TicketIDs []string
}

// Count returns the number of tickets sharing the content.
func (g SharedGroup) Count() int {
	return len(g.TicketIDs)
}

// ResolutionStats counts what happened during a resolution pass.
type ResolutionStats struct {
	References int

	// Fetched and CacheHits count distinct locations, not slots.
	Fetched   int
	CacheHits int

	FetchFailures int
	Conversions   int
	Placeholders  int
}

// Resolution is the output of the dedup resolver.
type Resolution struct {
	// Representations maps every fingerprint in Entries to its representation.
	Representations map[Fingerprint]*CanonicalRepresentation

	// Entries are in ticket-then-attachment encounter order.
	Entries []ManifestEntry

	// Shared lists real-content fingerprints referenced by more than one ticket.
	Shared []SharedGroup

	// Order lists distinct fingerprints in first-encounter order.
	Order []Fingerprint

	Stats ResolutionStats
}

// TicketSummary is the per-ticket view consumed by the spreadsheet writer.
type TicketSummary struct {
	TicketID        string
	Name            string
	Status          string
	OpenDate        string
	CloseDate       string
	AttachmentCount int
	Placeholders    int
	Filenames       []string
	HasShared       bool
}

// FinalManifest is the assembled output handed to the report writers.
type FinalManifest struct {
	// Entries is the PDF view: ticket-then-attachment order.
	Entries []ManifestEntry

	// Representations resolves entry fingerprints.
	Representations map[Fingerprint]*CanonicalRepresentation

	// Shared is the cross-reference view: descending shared count.
	Shared []SharedGroup

	// Tickets summarises each ticket in received order.
	Tickets []TicketSummary

	// Distinct lists distinct fingerprints in first-encounter order.
	Distinct []Fingerprint
}

// Representation returns the representation for an entry.
func (m *FinalManifest) Representation(e ManifestEntry) *CanonicalRepresentation {
	return m.Representations[e.Fingerprint]
}

// UniqueAttachments returns the number of distinct contents, placeholders for
// unavailable attachments included.
func (m *FinalManifest) UniqueAttachments() int {
	return len(m.Distinct)
}

// DuplicatesRemoved returns how many entries reuse an earlier representation.
func (m *FinalManifest) DuplicatesRemoved() int {
	return len(m.Entries) - len(m.Distinct)
}

package driving

import (
	"context"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// AttachmentCache resolves attachment references to bytes, downloading only
// when no valid cached copy exists.
type AttachmentCache interface {
	// Resolve returns the attachment bytes and fingerprint.
	// Download failures are returned as *domain.FetchError.
	Resolve(ctx context.Context, ref domain.AttachmentReference) (*domain.FetchedAttachment, error)
}

// FormatConverter turns fetched attachments into canonical representations.
type FormatConverter interface {
	// Convert never fails: unrecognised or broken content becomes a placeholder.
	Convert(ctx context.Context, att *domain.FetchedAttachment) *domain.CanonicalRepresentation

	// Placeholder builds a placeholder without converting anything.
	Placeholder(ref domain.AttachmentReference, fp domain.Fingerprint, reason domain.PlaceholderReason) *domain.CanonicalRepresentation
}

// DedupResolver groups every ticket's attachments by content and converts
// each distinct content once.
type DedupResolver interface {
	Resolve(ctx context.Context, tickets []domain.TicketRecord) (*domain.Resolution, error)
}

// ManifestBuilder restructures a resolution for the report writers.
type ManifestBuilder interface {
	Build(res *domain.Resolution, tickets []domain.TicketRecord) *domain.FinalManifest
}

package driven

import (
	"context"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// Converter renders one content kind into a canonical representation.
// Each converter owns its temporary resources and releases them on every exit path.
type Converter interface {
	// Name identifies the converter in logs.
	Name() string

	// SupportedKinds returns the content kinds this converter handles.
	SupportedKinds() []domain.Kind

	// Priority returns the selection priority (higher = preferred).
	// Format-specific converters should return 50-89.
	// Fallback converters should return 1-9.
	Priority() int

	// Convert renders the attachment. The returned representation's Fingerprint,
	// Kind and Filename are filled in by the caller.
	Convert(ctx context.Context, att *domain.FetchedAttachment, mimeType string) (*domain.CanonicalRepresentation, error)
}

// PlaceholderRenderer synthesizes a single page when content cannot be rendered.
type PlaceholderRenderer interface {
	Render(filename string, reason domain.PlaceholderReason) (domain.PageImage, error)
}

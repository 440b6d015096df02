package domain

// Kind is the detected content family of an attachment.
// Conversion dispatches on Kind, never on the file extension.
type Kind string

// Content kinds.
const (
	KindImage   Kind = "image"
	KindPDF     Kind = "pdf"
	KindOffice  Kind = "office"
	KindHTML    Kind = "html"
	KindUnknown Kind = "unknown"
)

// IsValid returns true if the kind is recognised.
func (k Kind) IsValid() bool {
	switch k {
	case KindImage, KindPDF, KindOffice, KindHTML, KindUnknown:
		return true
	default:
		return false
	}
}

// Form describes how a representation is embedded in the report.
type Form string

const (
	// FormPages is an ordered sequence of page images.
	FormPages Form = "pages"

	// FormPDF is a pass-through embeddable PDF.
	FormPDF Form = "pdf"
)

// PlaceholderReason explains why a synthesized page replaces real content.
type PlaceholderReason string

// Placeholder reasons. The empty reason means real content.
const (
	PlaceholderNone        PlaceholderReason = ""
	PlaceholderUnsupported PlaceholderReason = "unsupported"
	PlaceholderCorrupt     PlaceholderReason = "corrupt"
	PlaceholderUnavailable PlaceholderReason = "unavailable"
)

// PageImage is one rendered page, PNG encoded at the target page size.
type PageImage struct {
	PNG    []byte
	Width  int
	Height int
}

// CanonicalRepresentation is the single converted form of one fingerprint.
// It is shared read-only by every manifest entry with that fingerprint.
type CanonicalRepresentation struct {
	// Fingerprint is the content identity this representation belongs to.
	Fingerprint Fingerprint

	// Kind is the detected content kind.
	Kind Kind

	// MIMEType is the detected content type.
	MIMEType string

	// Form selects between Pages and PDF.
	Form Form

	// Pages holds page images when Form is FormPages.
	Pages []PageImage

	// PDF holds the document when Form is FormPDF.
	PDF []byte

	// PageCount is the number of pages in either form.
	PageCount int

	// Placeholder is set when the pages are synthesized.
	Placeholder PlaceholderReason

	// Filename is the first declared file name seen for this content.
	Filename string
}

// IsPlaceholder reports whether the representation is synthesized.
func (r *CanonicalRepresentation) IsPlaceholder() bool {
	return r.Placeholder != PlaceholderNone
}

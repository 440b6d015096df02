package domain

import "strings"

// Fingerprint is the content identity of an attachment: the lowercase hex
// SHA-256 digest of its bytes. Equal fingerprints mean identical content
// regardless of file name or originating ticket.
type Fingerprint string

// unavailablePrefix marks synthetic fingerprints of attachments that could not be fetched.
const unavailablePrefix = "unavailable:"

// UnavailableFingerprint builds the synthetic fingerprint for a reference whose
// bytes were never obtained. digest must identify the reference, not its content.
func UnavailableFingerprint(digest string) Fingerprint {
	return Fingerprint(unavailablePrefix + digest)
}

// IsPlaceholder reports whether the fingerprint is synthetic rather than content derived.
func (f Fingerprint) IsPlaceholder() bool {
	return strings.HasPrefix(string(f), unavailablePrefix)
}

// Short returns an abbreviated form for logs.
func (f Fingerprint) Short() string {
	s := strings.TrimPrefix(string(f), unavailablePrefix)
	if len(s) > 12 {
		s = s[:12]
	}
	if f.IsPlaceholder() {
		return unavailablePrefix + s
	}
	return s
}

// String returns the full fingerprint.
func (f Fingerprint) String() string {
	return string(f)
}

// FetchedAttachment is an attachment reference resolved to bytes.
type FetchedAttachment struct {
	// Reference is the reference that produced this attachment.
	Reference AttachmentReference

	// Content is the raw payload.
	Content []byte

	// Fingerprint is the content identity of Content.
	Fingerprint Fingerprint

	// FromCache is true when the bytes came from the local cache.
	FromCache bool
}

// Size returns the payload length in bytes.
func (a *FetchedAttachment) Size() int {
	return len(a.Content)
}

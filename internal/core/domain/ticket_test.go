package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentReference_Location(t *testing.T) {
	tests := []struct {
		name     string
		ref      AttachmentReference
		expected string
	}{
		{
			name:     "asset id wins over url",
			ref:      AttachmentReference{AssetID: "9", URL: "https://files/x?sig=1"},
			expected: "monday-asset:9",
		},
		{
			name:     "url when no asset id",
			ref:      AttachmentReference{URL: "https://files/x"},
			expected: "https://files/x",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.ref.Location())
		})
	}
}

func TestAttachmentReference_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		ref      AttachmentReference
		expected string
	}{
		{"filename with extension", AttachmentReference{Filename: "report.pdf", Extension: "pdf"}, "report.pdf"},
		{"extension appended", AttachmentReference{Filename: "report", Extension: "pdf"}, "report.pdf"},
		{"case insensitive suffix", AttachmentReference{Filename: "IMG.PNG", Extension: "png"}, "IMG.PNG"},
		{"url basename fallback", AttachmentReference{URL: "https://h/files/scan.jpg"}, "scan.jpg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.ref.DisplayName())
		})
	}
}

func TestFingerprint_Placeholder(t *testing.T) {
	real := Fingerprint("0123456789abcdef0123")
	synthetic := UnavailableFingerprint("feedfacecafebeef00")

	assert.False(t, real.IsPlaceholder())
	assert.True(t, synthetic.IsPlaceholder())
	assert.Equal(t, "0123456789ab", real.Short())
	assert.Equal(t, "unavailable:feedfacecafe", synthetic.Short())
	assert.Equal(t, "0123456789abcdef0123", real.String())
}

func TestKind_IsValid(t *testing.T) {
	for _, k := range []Kind{KindImage, KindPDF, KindOffice, KindHTML, KindUnknown} {
		assert.True(t, k.IsValid(), k)
	}
	assert.False(t, Kind("video").IsValid())
}

func TestFinalManifest_Counts(t *testing.T) {
	m := &FinalManifest{
		Entries:  make([]ManifestEntry, 5),
		Distinct: []Fingerprint{"a", "b", "c"},
	}
	assert.Equal(t, 3, m.UniqueAttachments())
	assert.Equal(t, 2, m.DuplicatesRemoved())
}

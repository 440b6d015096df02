package services

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// Fingerprint returns the content identity of data: the lowercase hex
// SHA-256 of the raw bytes. Names, URLs and declared types play no part.
func Fingerprint(data []byte) domain.Fingerprint {
	sum := sha256.Sum256(data)
	return domain.Fingerprint(hex.EncodeToString(sum[:]))
}

// unavailableFingerprint keys the placeholder for a reference whose bytes
// could not be fetched. It never collides with a content fingerprint.
func unavailableFingerprint(ref domain.AttachmentReference) domain.Fingerprint {
	h := sha256.New()
	h.Write([]byte(ref.Location()))
	h.Write([]byte{0})
	h.Write([]byte(ref.DisplayName()))
	return domain.UnavailableFingerprint(hex.EncodeToString(h.Sum(nil)))
}

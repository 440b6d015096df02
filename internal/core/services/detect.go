package services

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// kindsByMIME maps detected content types to conversion kinds.
var kindsByMIME = map[string]domain.Kind{
	"image/png":  domain.KindImage,
	"image/jpeg": domain.KindImage,
	"image/gif":  domain.KindImage,
	"image/webp": domain.KindImage,
	"image/bmp":  domain.KindImage,
	"image/tiff": domain.KindImage,

	"application/pdf": domain.KindPDF,

	"application/msword":            domain.KindOffice,
	"application/vnd.ms-excel":      domain.KindOffice,
	"application/vnd.ms-powerpoint": domain.KindOffice,
	"application/rtf":               domain.KindOffice,
	"text/rtf":                      domain.KindOffice,
	"text/csv":                      domain.KindOffice,
	"text/plain":                    domain.KindOffice,

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   domain.KindOffice,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         domain.KindOffice,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": domain.KindOffice,
	"application/vnd.oasis.opendocument.text":                                   domain.KindOffice,
	"application/vnd.oasis.opendocument.spreadsheet":                            domain.KindOffice,
	"application/vnd.oasis.opendocument.presentation":                           domain.KindOffice,

	"text/html": domain.KindHTML,
}

// inconclusive lists sniffed types that say too little on their own.
// Container formats (zip, OLE) and plain text defer to the declared type.
var inconclusive = map[string]bool{
	"application/octet-stream":  true,
	"application/zip":           true,
	"application/x-ole-storage": true,
	"text/plain":                true,
}

// DetectKind classifies content by its bytes. The declared MIME hint is only
// consulted when sniffing is inconclusive.
func DetectKind(content []byte, hint string) (string, domain.Kind) {
	detected := baseMIME(mimetype.Detect(content).String())
	if inconclusive[detected] {
		if h := baseMIME(hint); h != "" {
			if kind, ok := kindsByMIME[h]; ok {
				return h, kind
			}
		}
	}
	if kind, ok := kindsByMIME[detected]; ok {
		return detected, kind
	}
	return detected, domain.KindUnknown
}

func baseMIME(s string) string {
	base, _, _ := strings.Cut(s, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

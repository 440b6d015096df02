package domain

import (
	"path/filepath"
	"strings"
)

// TicketRecord is a qualifying ticket for the report month.
// Records are produced by the ticket source and never mutated during a run.
type TicketRecord struct {
	// ID is the board item identifier.
	ID string

	// Name is the ticket title (the ServiceNow ticket number).
	Name string

	// Status is the board status label, e.g. "Resolved".
	Status string

	// OpenDate is the date the ticket was opened (YYYY-MM-DD).
	OpenDate string

	// CloseDate is the resolution date, empty when unknown.
	CloseDate string

	// Attachments are the ticket's attachment references in board order.
	Attachments []AttachmentReference
}

// AttachmentReference points at one remote attachment of a ticket.
type AttachmentReference struct {
	// TicketID links back to the owning ticket.
	TicketID string

	// AssetID is the board asset identifier, stable across queries.
	AssetID string

	// URL is the download location.
	URL string

	// Filename is the declared file name.
	Filename string

	// Extension is the declared file extension without the leading dot.
	Extension string

	// MIMEHint is the declared content type. Only used when sniffing is inconclusive.
	MIMEHint string
}

// Location returns the stable remote identity of the attachment.
// Board asset IDs survive URL rotation of pre-signed links, so they win over the URL.
func (r AttachmentReference) Location() string {
	if r.AssetID != "" {
		return "monday-asset:" + r.AssetID
	}
	return r.URL
}

// DisplayName returns the file name shown on report pages.
func (r AttachmentReference) DisplayName() string {
	name := r.Filename
	if name == "" {
		name = filepath.Base(r.URL)
	}
	if r.Extension != "" && !strings.HasSuffix(strings.ToLower(name), "."+strings.ToLower(r.Extension)) {
		name += "." + r.Extension
	}
	return name
}

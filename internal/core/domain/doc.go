// Package domain defines the core business entities for snowreport.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TicketRecord: A qualifying ticket and its attachment references
//   - FetchedAttachment: Attachment bytes plus their content fingerprint
//   - CanonicalRepresentation: The single converted form of one fingerprint
//   - ManifestEntry: One (ticket, attachment) slot in the final report
//   - Settings: Run configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

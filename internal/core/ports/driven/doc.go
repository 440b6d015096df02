// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TicketSource: Lists qualifying tickets for a month
//   - Fetcher: Downloads attachment bytes
//   - BlobStore: Content-addressed attachment bytes
//   - LocationIndex: Remote location to fingerprint records
//   - Converter: Converts one content kind into a representation
//   - ConverterRegistry: Selects the converter for a kind
//   - PDFAssembler: Writes the merged report PDF
//   - SpreadsheetWriter: Writes the summary workbook
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CommandRunner: External rendering tools. Without it, office and HTML
//     attachments become placeholders and PDFs are passed through.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or converter package
package driven

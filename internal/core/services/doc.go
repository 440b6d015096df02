// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The attachment pipeline runs in four stages:
//
//   - AttachmentCache resolves references to bytes and fingerprints
//   - FormatConverter turns bytes into canonical representations
//   - DedupResolver groups references by fingerprint and converts once per group
//   - ManifestBuilder orders the result for the report writers
//
// ReportService wires the stages to the ticket source and the writers.
package services

// Package converters provides the per-kind strategies that turn attachment
// bytes into report pages, and the registry that selects between them.
//
// Each strategy lives in its own sub-package and owns its temporary files.
// Strategies that shell out (pdftoppm, soffice, wkhtmltopdf) do so through
// an injected driven.CommandRunner.
//
// Converters are registered with the Registry at startup.
package converters

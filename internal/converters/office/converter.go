// Package office converts word processing, spreadsheet, presentation and
// plain text attachments to PDF with LibreOffice, then into page images.
package office

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/snowreport/internal/converters/pdf"
	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// binaries are the LibreOffice entry points tried in order.
var binaries = []string{"soffice", "libreoffice"}

// extensions maps detected types to the file extension LibreOffice needs
// to pick an import filter.
var extensions = map[string]string{
	"application/msword":            ".doc",
	"application/vnd.ms-excel":      ".xls",
	"application/vnd.ms-powerpoint": ".ppt",
	"application/rtf":               ".rtf",
	"text/rtf":                      ".rtf",
	"text/csv":                      ".csv",
	"text/plain":                    ".txt",

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
	"application/vnd.oasis.opendocument.text":                                   ".odt",
	"application/vnd.oasis.opendocument.spreadsheet":                            ".ods",
	"application/vnd.oasis.opendocument.presentation":                           ".odp",
}

// Converter runs soffice in headless mode.
type Converter struct {
	runner driven.CommandRunner
	pdf    *pdf.Converter
}

// New creates an office converter. Output PDFs are rendered through pdfConv.
func New(runner driven.CommandRunner, pdfConv *pdf.Converter) *Converter {
	return &Converter{runner: runner, pdf: pdfConv}
}

// Name identifies the converter.
func (c *Converter) Name() string {
	return "office"
}

// SupportedKinds returns the kinds this converter handles.
func (c *Converter) SupportedKinds() []domain.Kind {
	return []domain.Kind{domain.KindOffice}
}

// Priority returns the selection priority.
func (c *Converter) Priority() int {
	return 50
}

// Convert renders the document to PDF and then to pages.
func (c *Converter) Convert(ctx context.Context, att *domain.FetchedAttachment, mimeType string) (*domain.CanonicalRepresentation, error) {
	if att == nil {
		return nil, domain.ErrInvalidInput
	}
	bin, err := c.binary()
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "snowreport-office-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input"+extensionFor(att.Reference, mimeType))
	if err := os.WriteFile(in, att.Content, 0o600); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	out, err := c.runner.Run(ctx, bin, "--headless", "--convert-to", "pdf", "--outdir", dir, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", bin, err, bytes.TrimSpace(out))
	}

	converted := strings.TrimSuffix(in, filepath.Ext(in)) + ".pdf"
	data, err := os.ReadFile(converted)
	if err != nil {
		return nil, fmt.Errorf("%s produced no pdf: %w", bin, err)
	}
	return c.pdf.Render(ctx, data, true)
}

func (c *Converter) binary() (string, error) {
	if c.runner == nil {
		return "", fmt.Errorf("soffice: %w", domain.ErrToolNotFound)
	}
	for _, b := range binaries {
		if c.runner.LookPath(b) == nil {
			return b, nil
		}
	}
	return "", fmt.Errorf("soffice: %w", domain.ErrToolNotFound)
}

// extensionFor prefers the detected type, then the declared file name.
func extensionFor(ref domain.AttachmentReference, mimeType string) string {
	if ext, ok := extensions[mimeType]; ok {
		return ext
	}
	if ext := filepath.Ext(ref.DisplayName()); ext != "" {
		return strings.ToLower(ext)
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

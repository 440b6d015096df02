// Package html renders HTML attachments with wkhtmltopdf.
//
// Rendering is off unless render.html_enabled is set; disabled HTML
// attachments become unsupported placeholders.
package html

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/snowreport/internal/converters/pdf"
	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

const binary = "wkhtmltopdf"

// Converter runs wkhtmltopdf on a local copy of the page.
type Converter struct {
	runner  driven.CommandRunner
	pdf     *pdf.Converter
	enabled bool
}

// New creates an HTML converter.
func New(runner driven.CommandRunner, pdfConv *pdf.Converter, enabled bool) *Converter {
	return &Converter{runner: runner, pdf: pdfConv, enabled: enabled}
}

// Name identifies the converter.
func (c *Converter) Name() string {
	return "html"
}

// SupportedKinds returns the kinds this converter handles.
func (c *Converter) SupportedKinds() []domain.Kind {
	return []domain.Kind{domain.KindHTML}
}

// Priority returns the selection priority.
func (c *Converter) Priority() int {
	return 50
}

// Convert renders the page to PDF and then to page images.
func (c *Converter) Convert(ctx context.Context, att *domain.FetchedAttachment, _ string) (*domain.CanonicalRepresentation, error) {
	if att == nil {
		return nil, domain.ErrInvalidInput
	}
	if !c.enabled {
		return nil, fmt.Errorf("html rendering disabled: %w", domain.ErrUnsupportedFormat)
	}
	if c.runner == nil || c.runner.LookPath(binary) != nil {
		return nil, fmt.Errorf("%s: %w", binary, domain.ErrToolNotFound)
	}

	dir, err := os.MkdirTemp("", "snowreport-html-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.html")
	out := filepath.Join(dir, "output.pdf")
	if err := os.WriteFile(in, att.Content, 0o600); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	// Remote resources are never loaded; the page renders from its own bytes.
	msg, err := c.runner.Run(ctx, binary, "--quiet", "--disable-local-file-access", "--disable-javascript", in, out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", binary, err, bytes.TrimSpace(msg))
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("%s produced no pdf: %w", binary, err)
	}
	return c.pdf.Render(ctx, data, true)
}

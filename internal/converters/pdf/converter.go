// Package pdf validates PDF attachments and passes them through or
// rasterizes them into page images.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/snowreport/internal/converters/raster"
	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

var disableConfigDir sync.Once

// Converter handles PDF attachments.
type Converter struct {
	rasterizer *raster.Rasterizer
	rasterize  bool
	conf       *model.Configuration
}

// New creates a PDF converter. When rasterize is false, valid PDFs are
// embedded as-is in the report.
func New(rasterizer *raster.Rasterizer, rasterize bool) *Converter {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Converter{
		rasterizer: rasterizer,
		rasterize:  rasterize,
		conf:       conf,
	}
}

// Name identifies the converter.
func (c *Converter) Name() string {
	return "pdf"
}

// SupportedKinds returns the kinds this converter handles.
func (c *Converter) SupportedKinds() []domain.Kind {
	return []domain.Kind{domain.KindPDF}
}

// Priority returns the selection priority.
func (c *Converter) Priority() int {
	return 50
}

// Convert validates the PDF and returns it in the configured form.
func (c *Converter) Convert(ctx context.Context, att *domain.FetchedAttachment, _ string) (*domain.CanonicalRepresentation, error) {
	if att == nil {
		return nil, domain.ErrInvalidInput
	}
	return c.Render(ctx, att.Content, c.rasterize)
}

// Render turns PDF bytes into a representation. When rasterizing is asked
// for but pdftoppm is not installed, the PDF is passed through instead.
func (c *Converter) Render(ctx context.Context, data []byte, rasterize bool) (*domain.CanonicalRepresentation, error) {
	n, err := c.PageCount(data)
	if err != nil {
		return nil, err
	}

	if rasterize && c.rasterizer != nil {
		pages, err := c.rasterizer.Rasterize(ctx, data)
		switch {
		case err == nil:
			return &domain.CanonicalRepresentation{
				Form:      domain.FormPages,
				Pages:     pages,
				PageCount: len(pages),
			}, nil
		case !errors.Is(err, domain.ErrToolNotFound):
			return nil, err
		}
	}

	return &domain.CanonicalRepresentation{
		Form:      domain.FormPDF,
		PDF:       data,
		PageCount: n,
	}, nil
}

// PageCount opens the PDF and returns its page count. Unreadable documents
// and documents without pages are errors.
func (c *Converter) PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), c.conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	if n < 1 {
		return 0, errors.New("read pdf: no pages")
	}
	return n, nil
}

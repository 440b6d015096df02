// Package image converts raster image attachments into a single report page.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/custodia-labs/snowreport/internal/converters/raster"
	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// Converter decodes an image and fits it onto one portrait page.
type Converter struct {
	page raster.Page
}

// New creates an image converter for the given page geometry.
func New(page raster.Page) *Converter {
	return &Converter{page: page}
}

// Name identifies the converter.
func (c *Converter) Name() string {
	return "image"
}

// SupportedKinds returns the kinds this converter handles.
func (c *Converter) SupportedKinds() []domain.Kind {
	return []domain.Kind{domain.KindImage}
}

// Priority returns the selection priority.
func (c *Converter) Priority() int {
	return 50
}

// Convert decodes the image and renders it as a single page.
func (c *Converter) Convert(_ context.Context, att *domain.FetchedAttachment, _ string) (*domain.CanonicalRepresentation, error) {
	if att == nil {
		return nil, domain.ErrInvalidInput
	}

	img, format, err := image.Decode(bytes.NewReader(att.Content))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("decode %s: empty image", format)
	}

	page, err := raster.FitAndEncode(img, c.page)
	if err != nil {
		return nil, err
	}
	return &domain.CanonicalRepresentation{
		Form:      domain.FormPages,
		Pages:     []domain.PageImage{page},
		PageCount: 1,
	}, nil
}

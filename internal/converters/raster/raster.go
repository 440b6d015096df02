// Package raster holds the page-image helpers shared by the converters and
// the report assembler: fitting images onto a fixed page, rasterizing PDFs
// with pdftoppm, and drawing simple text pages.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"golang.org/x/image/draw"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Page is the target page geometry in pixels.
type Page struct {
	Width  int
	Height int
}

// PageFromSettings returns the configured page geometry.
func PageFromSettings(r domain.RenderSettings) Page {
	return Page{Width: r.PageWidth, Height: r.PageHeight}
}

// Fit draws src centred on a white page, shrinking it to fit while keeping
// its aspect ratio. Images smaller than the page are not enlarged.
func Fit(src image.Image, page Page) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, page.Width, page.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return dst
	}
	if w > page.Width || h > page.Height {
		scale := min(float64(page.Width)/float64(w), float64(page.Height)/float64(h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
	}

	x := (page.Width - w) / 2
	y := (page.Height - h) / 2
	draw.CatmullRom.Scale(dst, image.Rect(x, y, x+w, y+h), src, b, draw.Over, nil)
	return dst
}

// Encode PNG-encodes a page image.
func Encode(img image.Image) (domain.PageImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return domain.PageImage{}, fmt.Errorf("encode page: %w", err)
	}
	b := img.Bounds()
	return domain.PageImage{PNG: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// FitAndEncode fits src onto the page and encodes it.
func FitAndEncode(src image.Image, page Page) (domain.PageImage, error) {
	return Encode(Fit(src, page))
}

// Rasterizer renders PDF bytes into page images with pdftoppm.
type Rasterizer struct {
	runner driven.CommandRunner
	dpi    int
	page   Page
}

// NewRasterizer creates a rasterizer.
func NewRasterizer(runner driven.CommandRunner, dpi int, page Page) *Rasterizer {
	return &Rasterizer{runner: runner, dpi: dpi, page: page}
}

// Rasterize renders every page of pdf in order.
func (r *Rasterizer) Rasterize(ctx context.Context, pdf []byte) ([]domain.PageImage, error) {
	if r.runner == nil {
		return nil, fmt.Errorf("pdftoppm: %w", domain.ErrToolNotFound)
	}
	if err := r.runner.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w", err)
	}

	dir, err := os.MkdirTemp("", "snowreport-raster-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}
	prefix := filepath.Join(dir, "page")
	if out, err := r.runner.Run(ctx, "pdftoppm", "-r", strconv.Itoa(r.dpi), "-png", in, prefix); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, bytes.TrimSpace(out))
	}

	return r.collect(dir)
}

// RasterizeFile renders a PDF that already exists on disk.
func (r *Rasterizer) RasterizeFile(ctx context.Context, path string) ([]domain.PageImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return r.Rasterize(ctx, data)
}

// collect loads page-N.png files in page order.
func (r *Rasterizer) collect(dir string) ([]domain.PageImage, error) {
	files, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return pageNumber(files[i]) < pageNumber(files[j])
	})

	pages := make([]domain.PageImage, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read page: %w", err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode page %s: %w", filepath.Base(f), err)
		}
		page, err := FitAndEncode(img, r.page)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// pageNumber extracts N from ".../page-N.png". pdftoppm zero-pads N.
func pageNumber(path string) int {
	base := filepath.Base(path)
	n, err := strconv.Atoi(base[len("page-") : len(base)-len(".png")])
	if err != nil {
		return 0
	}
	return n
}

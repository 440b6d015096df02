// Package pdf writes the merged monthly report PDF.
//
// The report starts with summary pages, followed by every manifest entry's
// representation in manifest order. Runs of page images are imported into
// image-only PDF segments; pass-through PDFs are kept as their own segments;
// all segments are then merged into the final document.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/snowreport/internal/converters/raster"
	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
	"github.com/custodia-labs/snowreport/internal/logger"
)

// Ensure Assembler implements the interface.
var _ driven.PDFAssembler = (*Assembler)(nil)

var disableConfigDir sync.Once

// Assembler merges summary pages and representations into one PDF.
type Assembler struct {
	page raster.Page
	conf *model.Configuration
	log  *slog.Logger
}

// New creates an assembler that renders summary pages at page size.
func New(page raster.Page, log *slog.Logger) *Assembler {
	disableConfigDir.Do(api.DisableConfigDir)
	if log == nil {
		log = logger.New()
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Assembler{page: page, conf: conf, log: log}
}

// segment is either a run of PNG pages or a complete PDF.
type segment struct {
	images [][]byte
	pdf    []byte
}

// Assemble writes the report to path atomically.
func (a *Assembler) Assemble(ctx context.Context, info domain.ReportInfo, m *domain.FinalManifest, path string) error {
	if m == nil {
		return fmt.Errorf("%w: nil manifest", domain.ErrInvalidInput)
	}

	segs, err := a.segments(ctx, info, m)
	if err != nil {
		return err
	}

	parts := make([][]byte, 0, len(segs))
	for _, s := range segs {
		if s.pdf != nil {
			parts = append(parts, s.pdf)
			continue
		}
		b, err := a.importImages(s.images)
		if err != nil {
			return err
		}
		parts = append(parts, b)
	}

	var out bytes.Buffer
	if len(parts) == 1 {
		out.Write(parts[0])
	} else {
		readers := make([]io.ReadSeeker, len(parts))
		for i, p := range parts {
			readers[i] = bytes.NewReader(p)
		}
		if err := api.MergeRaw(readers, &out, false, a.conf); err != nil {
			return fmt.Errorf("merge pdf: %w", err)
		}
	}

	if err := writeAtomic(path, out.Bytes()); err != nil {
		return err
	}
	a.log.Info("pdf written", "path", path, "segments", len(parts), "entries", len(m.Entries), "bytes", out.Len())
	return nil
}

// segments lays out the report, coalescing consecutive image pages.
func (a *Assembler) segments(ctx context.Context, info domain.ReportInfo, m *domain.FinalManifest) ([]segment, error) {
	var segs []segment
	addImages := func(pngs ...[]byte) {
		if n := len(segs); n > 0 && segs[n-1].pdf == nil {
			segs[n-1].images = append(segs[n-1].images, pngs...)
			return
		}
		segs = append(segs, segment{images: pngs})
	}

	front, err := a.textPages(summaryLines(info, m))
	if err != nil {
		return nil, err
	}
	addImages(front...)

	if lines := sharedLines(m); lines != nil {
		shared, err := a.textPages(lines)
		if err != nil {
			return nil, err
		}
		addImages(shared...)
	}

	for _, e := range m.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rep := m.Representation(e)
		switch {
		case rep == nil:
			return nil, fmt.Errorf("%w: no representation for %s", domain.ErrNotFound, e.Fingerprint.Short())
		case rep.Form == domain.FormPDF && len(rep.PDF) > 0:
			segs = append(segs, segment{pdf: rep.PDF})
		case len(rep.Pages) > 0:
			for _, p := range rep.Pages {
				addImages(p.PNG)
			}
		default:
			a.log.Warn("representation has no pages, drawing fallback page",
				"ticket_id", e.TicketID, "fingerprint", e.Fingerprint.Short(), "placeholder", string(rep.Placeholder))
			fallback, err := a.textPages([]string{fallbackText(e, rep)})
			if err != nil {
				return nil, err
			}
			addImages(fallback...)
		}
	}
	return segs, nil
}

func (a *Assembler) textPages(lines []string) ([][]byte, error) {
	imgs := raster.TextPages(lines, a.page)
	out := make([][]byte, 0, len(imgs))
	for _, img := range imgs {
		p, err := raster.Encode(img)
		if err != nil {
			return nil, fmt.Errorf("encode text page: %w", err)
		}
		out = append(out, p.PNG)
	}
	return out, nil
}

// importImages turns PNG pages into a PDF with one page per image.
func (a *Assembler) importImages(pngs [][]byte) ([]byte, error) {
	readers := make([]io.Reader, len(pngs))
	for i, p := range pngs {
		readers[i] = bytes.NewReader(p)
	}
	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, readers, pdfcpu.DefaultImportConfig(), a.conf); err != nil {
		return nil, fmt.Errorf("import images: %w", err)
	}
	return buf.Bytes(), nil
}

func fallbackText(e domain.ManifestEntry, rep *domain.CanonicalRepresentation) string {
	reason := string(rep.Placeholder)
	if reason == "" {
		reason = "not rendered"
	}
	return fmt.Sprintf("%s: %s", e.Reference.DisplayName(), reason)
}

// writeAtomic writes data to a temp file next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-report-*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

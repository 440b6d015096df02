package pdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/snowreport/internal/converters/raster"
	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/logger"
)

var testPage = raster.Page{Width: 240, Height: 340}

func pngPage(t *testing.T) domain.PageImage {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, testPage.Width, testPage.Height))
	img.Set(3, 3, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return domain.PageImage{PNG: buf.Bytes(), Width: testPage.Width, Height: testPage.Height}
}

func pdfDoc(t *testing.T, pages int) []byte {
	t.Helper()
	readers := make([]io.Reader, pages)
	for i := range readers {
		readers[i] = bytes.NewReader(pngPage(t).PNG)
	}
	var out bytes.Buffer
	require.NoError(t, api.ImportImages(nil, &out, readers, pdfcpu.DefaultImportConfig(), nil))
	return out.Bytes()
}

func pageCount(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	n, err := api.PageCount(f, nil)
	require.NoError(t, err)
	return n
}

func testManifest(t *testing.T) *domain.FinalManifest {
	img := &domain.CanonicalRepresentation{Fingerprint: "aaa", Kind: domain.KindImage, Form: domain.FormPages, Pages: []domain.PageImage{pngPage(t)}, PageCount: 1, Filename: "screen.png"}
	doc := &domain.CanonicalRepresentation{Fingerprint: "bbb", Kind: domain.KindPDF, Form: domain.FormPDF, PDF: pdfDoc(t, 2), PageCount: 2, Filename: "log.pdf"}
	broken := &domain.CanonicalRepresentation{Fingerprint: "ccc", Kind: domain.KindOffice, Form: domain.FormPages, PageCount: 1, Placeholder: domain.PlaceholderCorrupt, Filename: "notes.docx"}

	return &domain.FinalManifest{
		Entries: []domain.ManifestEntry{
			{TicketID: "1", Fingerprint: "aaa", Ordinal: 0, Reference: domain.AttachmentReference{Filename: "screen.png"}},
			{TicketID: "1", Fingerprint: "bbb", Ordinal: 1, Reference: domain.AttachmentReference{Filename: "log.pdf"}},
			{TicketID: "2", Fingerprint: "aaa", Ordinal: 2, Reference: domain.AttachmentReference{Filename: "copy.png"}},
			{TicketID: "2", Fingerprint: "ccc", Ordinal: 3, Reference: domain.AttachmentReference{Filename: "notes.docx"}},
		},
		Representations: map[domain.Fingerprint]*domain.CanonicalRepresentation{"aaa": img, "bbb": doc, "ccc": broken},
		Shared:          []domain.SharedGroup{{Fingerprint: "aaa", Filename: "screen.png", TicketIDs: []string{"1", "2"}}},
		Tickets: []domain.TicketSummary{
			{TicketID: "1", Name: "INC001", OpenDate: "2025-07-01", AttachmentCount: 2, HasShared: true},
			{TicketID: "2", Name: "INC002", OpenDate: "2025-07-02", AttachmentCount: 2, Placeholders: 1, HasShared: true},
		},
		Distinct: []domain.Fingerprint{"aaa", "bbb", "ccc"},
	}
}

var testInfo = domain.ReportInfo{Month: "2025-07", BoardID: "b1", RunID: "run-1", GeneratedAt: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)}

func TestAssembler_Assemble(t *testing.T) {
	m := testManifest(t)
	path := filepath.Join(t.TempDir(), "2025-07-Resolved-Tickets.pdf")
	a := New(testPage, logger.Discard())

	require.NoError(t, a.Assemble(context.Background(), testInfo, m, path))

	front := len(raster.TextPages(summaryLines(testInfo, m), testPage))
	shared := len(raster.TextPages(sharedLines(m), testPage))
	// screen.png + log.pdf (2) + screen.png again + fallback for notes.docx
	assert.Equal(t, front+shared+1+2+1+1, pageCount(t, path))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestAssembler_Assemble_ImagesOnly(t *testing.T) {
	m := testManifest(t)
	m.Entries = m.Entries[:1]
	m.Shared = nil
	path := filepath.Join(t.TempDir(), "report.pdf")

	require.NoError(t, New(testPage, logger.Discard()).Assemble(context.Background(), testInfo, m, path))

	front := len(raster.TextPages(summaryLines(testInfo, m), testPage))
	assert.Equal(t, front+1, pageCount(t, path))
}

func TestAssembler_Assemble_MissingRepresentation(t *testing.T) {
	m := testManifest(t)
	delete(m.Representations, "bbb")

	err := New(testPage, logger.Discard()).Assemble(context.Background(), testInfo, m, filepath.Join(t.TempDir(), "r.pdf"))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssembler_Assemble_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(testPage, logger.Discard()).Assemble(ctx, testInfo, testManifest(t), filepath.Join(t.TempDir(), "r.pdf"))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssembler_Assemble_NilManifest(t *testing.T) {
	err := New(testPage, logger.Discard()).Assemble(context.Background(), testInfo, nil, filepath.Join(t.TempDir(), "r.pdf"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummaryLines(t *testing.T) {
	lines := strings.Join(summaryLines(testInfo, testManifest(t)), "\n")

	assert.Contains(t, lines, "Resolved Tickets Report: 2025-07")
	assert.Contains(t, lines, "Unique attachments:    3")
	assert.Contains(t, lines, "Duplicates removed:    1")
	assert.Contains(t, lines, "Placeholder pages:     1")
	assert.Contains(t, lines, "INC002")
}

func TestSharedLines(t *testing.T) {
	m := testManifest(t)
	lines := sharedLines(m)

	require.NotEmpty(t, lines)
	assert.Contains(t, strings.Join(lines, "\n"), "screen.png (2 tickets)")
	assert.Contains(t, strings.Join(lines, "\n"), "INC001, INC002")

	m.Shared = nil
	assert.Nil(t, sharedLines(m))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcd~", clip("abcdefgh", 5))
}

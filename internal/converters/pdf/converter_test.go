package pdf

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/snowreport/internal/converters/raster"
	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output  []byte
	err     error
	missing bool
	calls   int
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	m.calls++
	return m.output, m.err
}

func (m *mockRunner) LookPath(string) error {
	if m.missing {
		return domain.ErrToolNotFound
	}
	return nil
}

// makePDF builds a PDF with one page per image.
func makePDF(t *testing.T, pages int) []byte {
	t.Helper()
	readers := make([]io.Reader, 0, pages)
	for i := 0; i < pages; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 40, 60))
		img.Set(1, 1, color.Black)
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		readers = append(readers, &buf)
	}
	var out bytes.Buffer
	require.NoError(t, api.ImportImages(nil, &out, readers, pdfcpu.DefaultImportConfig(), nil))
	return out.Bytes()
}

var page = raster.Page{Width: 124, Height: 175}

func TestConverter_Metadata(t *testing.T) {
	c := New(nil, false)
	assert.Equal(t, "pdf", c.Name())
	assert.Equal(t, []domain.Kind{domain.KindPDF}, c.SupportedKinds())
	assert.Equal(t, 50, c.Priority())
}

func TestConverter_PassThrough(t *testing.T) {
	data := makePDF(t, 2)
	runner := &mockRunner{}
	c := New(raster.NewRasterizer(runner, 150, page), false)

	rep, err := c.Convert(context.Background(), &domain.FetchedAttachment{Content: data}, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, domain.FormPDF, rep.Form)
	assert.Equal(t, 2, rep.PageCount)
	assert.Equal(t, data, rep.PDF)
	assert.Zero(t, runner.calls)
}

func TestConverter_RasterizeFallsBackWhenToolMissing(t *testing.T) {
	data := makePDF(t, 1)
	c := New(raster.NewRasterizer(&mockRunner{missing: true}, 150, page), true)

	rep, err := c.Convert(context.Background(), &domain.FetchedAttachment{Content: data}, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, domain.FormPDF, rep.Form)
	assert.Equal(t, 1, rep.PageCount)
}

func TestConverter_RasterizeFailure(t *testing.T) {
	data := makePDF(t, 1)
	c := New(raster.NewRasterizer(&mockRunner{err: errors.New("exit status 99")}, 150, page), true)

	_, err := c.Convert(context.Background(), &domain.FetchedAttachment{Content: data}, "application/pdf")
	assert.Error(t, err)
}

func TestConverter_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"header only", []byte("%PDF-1.4\n")},
		{"truncated", makePDF(t, 1)[:64]},
		{"not a pdf", []byte("hello")},
	}

	c := New(nil, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := c.Convert(context.Background(), &domain.FetchedAttachment{Content: tt.data}, "application/pdf")
			assert.Error(t, err)
			assert.Nil(t, rep)
		})
	}
}

func TestConverter_NilAttachment(t *testing.T) {
	_, err := New(nil, false).Convert(context.Background(), nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

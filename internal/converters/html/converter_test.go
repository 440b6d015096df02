package html

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/snowreport/internal/converters/pdf"
	"github.com/custodia-labs/snowreport/internal/converters/raster"
	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// mockRunner writes a fixed PDF where wkhtmltopdf would.
type mockRunner struct {
	pdf     []byte
	err     error
	missing bool
	args    []string
}

func (m *mockRunner) LookPath(string) error {
	if m.missing {
		return domain.ErrToolNotFound
	}
	return nil
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	if name != binary {
		return nil, domain.ErrToolNotFound
	}
	m.args = args
	if m.err != nil {
		return nil, m.err
	}
	return nil, os.WriteFile(args[len(args)-1], m.pdf, 0o600)
}

func onePagePDF(t *testing.T) []byte {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 10, 10))))
	var out bytes.Buffer
	require.NoError(t, api.ImportImages(nil, &out, []io.Reader{&img}, pdfcpu.DefaultImportConfig(), nil))
	return out.Bytes()
}

func page() *domain.FetchedAttachment {
	return &domain.FetchedAttachment{Content: []byte("<html><body><h1>Incident</h1></body></html>")}
}

func newConverter(runner *mockRunner, enabled bool) *Converter {
	return New(runner, pdf.New(raster.NewRasterizer(runner, 72, raster.Page{Width: 62, Height: 88}), false), enabled)
}

func TestConverter_Metadata(t *testing.T) {
	c := newConverter(&mockRunner{}, true)
	assert.Equal(t, "html", c.Name())
	assert.Equal(t, []domain.Kind{domain.KindHTML}, c.SupportedKinds())
	assert.Equal(t, 50, c.Priority())
}

func TestConverter_Disabled(t *testing.T) {
	runner := &mockRunner{}
	_, err := newConverter(runner, false).Convert(context.Background(), page(), "text/html")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Nil(t, runner.args)
}

func TestConverter_Convert(t *testing.T) {
	// pdftoppm is faked as missing inside Run, so the PDF passes through.
	runner := &mockRunner{pdf: onePagePDF(t)}

	rep, err := newConverter(runner, true).Convert(context.Background(), page(), "text/html")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.PageCount)
	assert.Contains(t, runner.args, "--disable-javascript")
}

func TestConverter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		runner  *mockRunner
		wantErr error
	}{
		{"not installed", &mockRunner{missing: true}, domain.ErrToolNotFound},
		{"tool fails", &mockRunner{err: errors.New("exit status 1")}, nil},
		{"bad output", &mockRunner{pdf: []byte("not a pdf")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newConverter(tt.runner, true).Convert(context.Background(), page(), "text/html")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

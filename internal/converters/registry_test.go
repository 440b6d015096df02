package converters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// mockConverter is a named converter with a fixed priority.
type mockConverter struct {
	name     string
	kinds    []domain.Kind
	priority int
}

func (m *mockConverter) Name() string                  { return m.name }
func (m *mockConverter) SupportedKinds() []domain.Kind { return m.kinds }
func (m *mockConverter) Priority() int                 { return m.priority }
func (m *mockConverter) Convert(context.Context, *domain.FetchedAttachment, string) (*domain.CanonicalRepresentation, error) {
	return &domain.CanonicalRepresentation{}, nil
}

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get(domain.KindImage))
	assert.Empty(t, r.SupportedKinds())
}

func TestRegistry_PriorityWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockConverter{name: "fallback", kinds: []domain.Kind{domain.KindImage, domain.KindPDF}, priority: 5})
	r.Register(&mockConverter{name: "image", kinds: []domain.Kind{domain.KindImage}, priority: 50})
	r.Register(&mockConverter{name: "image-low", kinds: []domain.Kind{domain.KindImage}, priority: 10})

	require.NotNil(t, r.Get(domain.KindImage))
	assert.Equal(t, "image", r.Get(domain.KindImage).Name())
	assert.Equal(t, "fallback", r.Get(domain.KindPDF).Name())
	assert.Nil(t, r.Get(domain.KindHTML))
}

func TestRegistry_SupportedKinds(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockConverter{name: "a", kinds: []domain.Kind{domain.KindPDF, domain.KindImage}, priority: 50})
	r.Register(&mockConverter{name: "b", kinds: []domain.Kind{domain.KindImage}, priority: 50})

	assert.Equal(t, []domain.Kind{domain.KindImage, domain.KindPDF}, r.SupportedKinds())
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(domain.DefaultSettings().Render, nil)

	assert.Equal(t, []domain.Kind{domain.KindHTML, domain.KindImage, domain.KindOffice, domain.KindPDF}, r.SupportedKinds())
	for kind, name := range map[domain.Kind]string{
		domain.KindImage:  "image",
		domain.KindPDF:    "pdf",
		domain.KindOffice: "office",
		domain.KindHTML:   "html",
	} {
		require.NotNil(t, r.Get(kind), kind)
		assert.Equal(t, name, r.Get(kind).Name())
	}
	assert.Nil(t, r.Get(domain.KindUnknown))
}

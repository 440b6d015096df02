package converters

import (
	"sort"
	"sync"

	"github.com/custodia-labs/snowreport/internal/converters/html"
	"github.com/custodia-labs/snowreport/internal/converters/image"
	"github.com/custodia-labs/snowreport/internal/converters/office"
	"github.com/custodia-labs/snowreport/internal/converters/pdf"
	"github.com/custodia-labs/snowreport/internal/converters/raster"
	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConverterRegistry = (*Registry)(nil)

// Registry implements ConverterRegistry with priority-based selection.
// When multiple converters handle a kind, the highest priority one is used.
type Registry struct {
	mu         sync.RWMutex
	converters []driven.Converter
}

// NewRegistry creates an empty converter registry.
func NewRegistry() *Registry {
	return &Registry{
		converters: make([]driven.Converter, 0),
	}
}

// Register adds a converter.
func (r *Registry) Register(converter driven.Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.converters = append(r.converters, converter)
}

// Get returns the highest priority converter for kind, or nil.
func (r *Registry) Get(kind domain.Kind) driven.Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best driven.Converter
	for _, c := range r.converters {
		if !handles(c, kind) {
			continue
		}
		if best == nil || c.Priority() > best.Priority() {
			best = c
		}
	}
	return best
}

// SupportedKinds returns every kind with at least one converter, sorted.
func (r *Registry) SupportedKinds() []domain.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[domain.Kind]struct{})
	for _, c := range r.converters {
		for _, k := range c.SupportedKinds() {
			set[k] = struct{}{}
		}
	}
	kinds := make([]domain.Kind, 0, len(set))
	for k := range set {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func handles(c driven.Converter, kind domain.Kind) bool {
	for _, k := range c.SupportedKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// DefaultRegistry creates a registry with the built-in converters for the
// given render settings. runner may be nil, in which case office and HTML
// attachments become placeholders and PDFs are passed through.
func DefaultRegistry(settings domain.RenderSettings, runner driven.CommandRunner) *Registry {
	page := raster.PageFromSettings(settings)
	rasterizer := raster.NewRasterizer(runner, settings.DPI, page)
	pdfConv := pdf.New(rasterizer, settings.RasterizePDF)

	r := NewRegistry()
	r.Register(image.New(page))
	r.Register(pdfConv)
	r.Register(office.New(runner, pdfConv))
	r.Register(html.New(runner, pdfConv, settings.HTMLEnabled))
	return r
}

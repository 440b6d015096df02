// Package placeholder synthesizes the single page shown in place of an
// attachment that could not be fetched or rendered.
package placeholder

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/custodia-labs/snowreport/internal/converters/raster"
	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.PlaceholderRenderer = (*Renderer)(nil)

// Renderer draws placeholder pages from per-reason text templates.
type Renderer struct {
	page      raster.Page
	templates map[domain.PlaceholderReason]*template.Template

	mu    sync.Mutex
	cache map[string]domain.PageImage
}

// data is what a placeholder template can reference.
type data struct {
	Filename string
	Reason   string
}

// New parses the configured templates. A template that fails to parse is a
// configuration error.
func New(settings domain.PlaceholderSettings, page raster.Page) (*Renderer, error) {
	r := &Renderer{
		page:      page,
		templates: make(map[domain.PlaceholderReason]*template.Template),
		cache:     make(map[string]domain.PageImage),
	}
	for _, reason := range []domain.PlaceholderReason{
		domain.PlaceholderUnsupported,
		domain.PlaceholderCorrupt,
		domain.PlaceholderUnavailable,
	} {
		tmpl, err := template.New(string(reason)).Option("missingkey=error").Parse(settings.Template(reason))
		if err != nil {
			return nil, &domain.ConfigError{Field: "placeholders." + string(reason), Reason: err.Error()}
		}
		r.templates[reason] = tmpl
	}
	return r, nil
}

// Text returns the message for a placeholder.
func (r *Renderer) Text(filename string, reason domain.PlaceholderReason) (string, error) {
	tmpl, ok := r.templates[reason]
	if !ok {
		return "", fmt.Errorf("%w: placeholder reason %q", domain.ErrInvalidInput, reason)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data{Filename: filename, Reason: string(reason)}); err != nil {
		return "", fmt.Errorf("execute placeholder template: %w", err)
	}
	return b.String(), nil
}

// Render draws the placeholder page. Identical pages are rendered once.
func (r *Renderer) Render(filename string, reason domain.PlaceholderReason) (domain.PageImage, error) {
	text, err := r.Text(filename, reason)
	if err != nil {
		return domain.PageImage{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if page, ok := r.cache[text]; ok {
		return page, nil
	}

	lines := append([]string{"[" + strings.ToUpper(string(reason)) + "]", ""}, strings.Split(text, "\n")...)
	page, err := raster.Encode(raster.TextPage(lines, r.page))
	if err != nil {
		return domain.PageImage{}, err
	}
	r.cache[text] = page
	return page, nil
}

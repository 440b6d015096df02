package driven

import "github.com/custodia-labs/snowreport/internal/core/domain"

// ConverterRegistry selects the appropriate converter for a content kind.
// It maintains a priority-ordered list of converters.
type ConverterRegistry interface {
	// Get returns the highest priority converter for a kind, or nil.
	Get(kind domain.Kind) Converter

	// Register adds a converter to the registry.
	Register(converter Converter)

	// SupportedKinds returns all kinds that have a converter.
	SupportedKinds() []domain.Kind
}

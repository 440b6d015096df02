package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
	"github.com/custodia-labs/snowreport/internal/core/ports/driving"
	"github.com/custodia-labs/snowreport/internal/logger"
)

// Ensure FormatConverter implements the interface.
var _ driving.FormatConverter = (*FormatConverter)(nil)

// FormatConverter detects the kind of fetched content and dispatches it to
// the registered converter. Failures never escape: they become placeholders.
type FormatConverter struct {
	registry     driven.ConverterRegistry
	placeholders driven.PlaceholderRenderer
	logger       *slog.Logger
}

// NewFormatConverter creates a format converter.
func NewFormatConverter(
	registry driven.ConverterRegistry,
	placeholders driven.PlaceholderRenderer,
	log *slog.Logger,
) *FormatConverter {
	if log == nil {
		log = logger.New()
	}
	return &FormatConverter{
		registry:     registry,
		placeholders: placeholders,
		logger:       log,
	}
}

// Convert renders att into a canonical representation.
func (f *FormatConverter) Convert(ctx context.Context, att *domain.FetchedAttachment) *domain.CanonicalRepresentation {
	mimeType, kind := DetectKind(att.Content, att.Reference.MIMEHint)

	var conv driven.Converter
	if kind != domain.KindUnknown && f.registry != nil {
		conv = f.registry.Get(kind)
	}
	if conv == nil {
		f.logger.Info("unsupported attachment type",
			"filename", att.Reference.DisplayName(),
			"mime_type", mimeType,
			"fingerprint", att.Fingerprint.Short())
		return f.placeholder(att.Reference, att.Fingerprint, kind, mimeType, domain.PlaceholderUnsupported)
	}

	start := time.Now()
	rep, err := conv.Convert(ctx, att, mimeType)
	if err == nil && (rep == nil || pageCount(rep) == 0) {
		err = errors.New("converter produced no pages")
	}
	if err != nil {
		reason := domain.PlaceholderCorrupt
		if errors.Is(err, domain.ErrUnsupportedFormat) || errors.Is(err, domain.ErrToolNotFound) {
			reason = domain.PlaceholderUnsupported
		}
		cerr := &domain.ConversionError{Fingerprint: att.Fingerprint, Kind: kind, Err: err}
		f.logger.Warn("conversion failed; using placeholder",
			"converter", conv.Name(),
			"filename", att.Reference.DisplayName(),
			"fingerprint", att.Fingerprint.Short(),
			"reason", string(reason),
			"error", cerr)
		return f.placeholder(att.Reference, att.Fingerprint, kind, mimeType, reason)
	}

	rep.Fingerprint = att.Fingerprint
	rep.Kind = kind
	rep.MIMEType = mimeType
	rep.Filename = att.Reference.DisplayName()
	rep.Placeholder = domain.PlaceholderNone
	if rep.Form == "" {
		rep.Form = domain.FormPages
	}
	rep.PageCount = pageCount(rep)

	f.logger.Debug("attachment converted",
		"converter", conv.Name(),
		"fingerprint", att.Fingerprint.Short(),
		"pages", rep.PageCount,
		"duration_ms", time.Since(start).Milliseconds())
	return rep
}

// Placeholder builds a one-page placeholder for ref.
func (f *FormatConverter) Placeholder(
	ref domain.AttachmentReference,
	fp domain.Fingerprint,
	reason domain.PlaceholderReason,
) *domain.CanonicalRepresentation {
	return f.placeholder(ref, fp, domain.KindUnknown, "", reason)
}

func (f *FormatConverter) placeholder(
	ref domain.AttachmentReference,
	fp domain.Fingerprint,
	kind domain.Kind,
	mimeType string,
	reason domain.PlaceholderReason,
) *domain.CanonicalRepresentation {
	rep := &domain.CanonicalRepresentation{
		Fingerprint: fp,
		Kind:        kind,
		MIMEType:    mimeType,
		Form:        domain.FormPages,
		Placeholder: reason,
		Filename:    ref.DisplayName(),
		PageCount:   1,
	}
	if f.placeholders == nil {
		return rep
	}
	page, err := f.placeholders.Render(rep.Filename, reason)
	if err != nil {
		f.logger.Error("placeholder render failed", "filename", rep.Filename, "error", fmt.Errorf("render placeholder: %w", err))
		return rep
	}
	rep.Pages = []domain.PageImage{page}
	return rep
}

func pageCount(rep *domain.CanonicalRepresentation) int {
	if rep.Form == domain.FormPDF {
		return rep.PageCount
	}
	return len(rep.Pages)
}

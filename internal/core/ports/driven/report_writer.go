package driven

import (
	"context"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// PDFAssembler writes the merged report: summary pages followed by every
// manifest entry's representation in manifest order.
type PDFAssembler interface {
	Assemble(ctx context.Context, info domain.ReportInfo, manifest *domain.FinalManifest, path string) error
}

// SpreadsheetWriter writes the multi-sheet monthly summary workbook.
type SpreadsheetWriter interface {
	Write(ctx context.Context, info domain.ReportInfo, manifest *domain.FinalManifest, path string) error
}

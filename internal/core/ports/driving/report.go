package driving

import (
	"context"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// ReportService generates the monthly attachment report.
type ReportService interface {
	// Generate runs the full pipeline, or only plans it when req.DryRun is set.
	Generate(ctx context.Context, req domain.ReportRequest) (*domain.ReportResult, error)
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
	"github.com/custodia-labs/snowreport/internal/core/ports/driving"
	"github.com/custodia-labs/snowreport/internal/logger"
)

// Ensure ReportService implements the interface.
var _ driving.ReportService = (*ReportService)(nil)

// ReportService runs one monthly report: list tickets, resolve attachments,
// write the PDF and the workbook, then verify the board listing.
type ReportService struct {
	source   driven.TicketSource
	resolver driving.DedupResolver
	builder  driving.ManifestBuilder
	pdf      driven.PDFAssembler
	sheet    driven.SpreadsheetWriter
	boardID  string
	output   string
	logger   *slog.Logger

	now   func() time.Time
	runID func() string
}

// ReportServiceConfig holds the dependencies of a ReportService.
type ReportServiceConfig struct {
	Source    driven.TicketSource
	Resolver  driving.DedupResolver
	Builder   driving.ManifestBuilder
	PDF       driven.PDFAssembler
	Sheet     driven.SpreadsheetWriter
	BoardID   string
	OutputDir string
	Logger    *slog.Logger
}

// NewReportService creates a report service. Sheet may be nil to skip the workbook.
func NewReportService(cfg ReportServiceConfig) *ReportService {
	log := cfg.Logger
	if log == nil {
		log = logger.New()
	}
	builder := cfg.Builder
	if builder == nil {
		builder = NewManifestBuilder()
	}
	output := cfg.OutputDir
	if output == "" {
		output = domain.DefaultOutputDir
	}
	return &ReportService{
		source:   cfg.Source,
		resolver: cfg.Resolver,
		builder:  builder,
		pdf:      cfg.PDF,
		sheet:    cfg.Sheet,
		boardID:  cfg.BoardID,
		output:   output,
		logger:   log,
		now:      time.Now,
		runID:    uuid.NewString,
	}
}

// PDFName returns the report PDF file name for a month.
func PDFName(month string) string {
	return month + "-Resolved-Tickets.pdf"
}

// SheetName returns the summary workbook file name for a month.
func SheetName(month string) string {
	return month + "-Resolved-Tickets-Summary.xlsx"
}

// Generate runs the report for req.Month.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *ReportService) Generate(ctx context.Context, req domain.ReportRequest) (*domain.ReportResult, error) {
	if _, err := time.Parse("2006-01", req.Month); err != nil {
		return nil, fmt.Errorf("%w: month %q must be YYYY-MM", domain.ErrInvalidInput, req.Month)
	}

	info := domain.ReportInfo{
		Month:       req.Month,
		BoardID:     s.boardID,
		RunID:       s.runID(),
		GeneratedAt: s.now(),
	}
	log := s.logger.With("run_id", info.RunID, "month", info.Month)
	start := time.Now()

	// 1. List qualifying tickets
	log.Info("listing tickets", "action", "list", "board_id", s.boardID)
	tickets, err := s.source.ListTickets(ctx, req.Month)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	result := &domain.ReportResult{
		RunID:       info.RunID,
		Month:       info.Month,
		Tickets:     len(tickets),
		GeneratedAt: info.GeneratedAt,
	}
	if len(tickets) == 0 {
		log.Warn("no qualifying tickets found", "action", "list", "status", "empty")
		return result, nil
	}

	if req.DryRun {
		result.DryRunPlan = PlanDryRun(tickets)
		for _, t := range tickets {
			result.Entries += len(t.Attachments)
		}
		result.Unique = result.DryRunPlan.UniqueLocations
		result.Shared = len(result.DryRunPlan.SharedReferences)
		log.Info("dry run planned", "action", "plan", "tickets", len(tickets), "references", result.Entries)
		return result, nil
	}

	// 2. Resolve attachments
	res, err := s.resolver.Resolve(ctx, tickets)
	if err != nil {
		return nil, fmt.Errorf("resolve attachments: %w", err)
	}
	manifest := s.builder.Build(res, tickets)
	result.Entries = len(manifest.Entries)
	result.Unique = manifest.UniqueAttachments()
	result.Shared = len(manifest.Shared)
	result.Stats = res.Stats

	// 3. Write outputs
	dir := req.OutputDir
	if dir == "" {
		dir = filepath.Join(s.output, req.Month)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	result.PDFPath = filepath.Join(dir, PDFName(req.Month))
	if err := s.pdf.Assemble(ctx, info, manifest, result.PDFPath); err != nil {
		return nil, fmt.Errorf("assemble pdf: %w", err)
	}
	log.Info("report pdf written", "action", "write", "path", result.PDFPath, "entries", result.Entries)

	if s.sheet != nil {
		path := filepath.Join(dir, SheetName(req.Month))
		if err := s.sheet.Write(ctx, info, manifest, path); err != nil {
			log.Warn("summary workbook not written", "action", "write", "status", "failed", "error", err)
		} else {
			result.SheetPath = path
			log.Info("summary workbook written", "action", "write", "path", path)
		}
	}

	// 4. Verify the filtered listing against the whole board
	missing, err := s.source.VerifyTickets(ctx, req.Month, tickets)
	if err != nil {
		log.Warn("verification skipped", "action", "verify", "status", "failed", "error", err)
	} else if len(missing) > 0 {
		result.Missing = missing
		for _, t := range missing {
			log.Warn("qualifying ticket missing from report", "action", "verify", "ticket_id", t.ID, "name", t.Name)
		}
	}

	log.Info("report complete",
		"tickets", result.Tickets,
		"entries", result.Entries,
		"unique", result.Unique,
		"shared", result.Shared,
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// PlanDryRun groups references by location without fetching anything.
// Shared references are locations used by more than one ticket.
func PlanDryRun(tickets []domain.TicketRecord) *domain.DryRunPlan {
	plan := &domain.DryRunPlan{Tickets: tickets}

	var order []string
	byLocation := make(map[string]*domain.SharedGroup)
	for _, t := range tickets {
		for _, ref := range t.Attachments {
			loc := ref.Location()
			g, ok := byLocation[loc]
			if !ok {
				g = &domain.SharedGroup{Filename: ref.DisplayName()}
				byLocation[loc] = g
				order = append(order, loc)
			}
			if len(g.TicketIDs) == 0 || g.TicketIDs[len(g.TicketIDs)-1] != t.ID {
				g.TicketIDs = append(g.TicketIDs, t.ID)
			}
		}
	}

	plan.UniqueLocations = len(order)
	for _, loc := range order {
		if g := byLocation[loc]; g.Count() > 1 {
			plan.SharedReferences = append(plan.SharedReferences, *g)
		}
	}
	return plan
}

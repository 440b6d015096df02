package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

func TestReportCmd_RequiresMonth(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "report")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "month")
}

func TestReportCmd_NotConfigured(t *testing.T) {
	setupTestServices(t)
	SetFactory(Factory{})

	_, err := execute(t, "report", "--month", "2025-07")

	assert.EqualError(t, err, "report service not configured")
}

func TestReportCmd_Generates(t *testing.T) {
	ts := setupTestServices(t)
	ts.report.res = &domain.ReportResult{
		RunID:     "run-1",
		Month:     "2025-07",
		Tickets:   3,
		Entries:   5,
		Unique:    4,
		Shared:    1,
		PDFPath:   "output/2025-07/2025-07-Resolved-Tickets.pdf",
		SheetPath: "output/2025-07/2025-07-Resolved-Tickets-Summary.xlsx",
		Stats:     domain.ResolutionStats{References: 5, Fetched: 4, FetchFailures: 1, Conversions: 3, Placeholders: 2},
	}

	out, err := execute(t, "report", "--month", "2025-07", "--out", "/tmp/r")

	require.NoError(t, err)
	assert.Equal(t, domain.ReportRequest{Month: "2025-07", OutputDir: "/tmp/r"}, ts.report.req)
	assert.Equal(t, []bool{true}, ts.validate)
	assert.Zero(t, ts.built.Run.MaxItems, "max_items only applies to dry runs")
	assert.True(t, ts.released)

	assert.Contains(t, out, "Report 2025-07")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "2025-07-Resolved-Tickets.pdf")
	assert.Contains(t, out, "All resolved tickets found.")
}

func TestReportCmd_WarnsAboutMissingTickets(t *testing.T) {
	ts := setupTestServices(t)
	ts.report.res = &domain.ReportResult{
		Month:   "2025-07",
		Tickets: 1,
		Missing: []domain.TicketRecord{{ID: "9", Name: "INC009", OpenDate: "2025-07-30"}},
	}

	out, err := execute(t, "report", "-m", "2025-07")

	require.NoError(t, err)
	assert.Contains(t, out, "1 qualifying tickets were not returned")
	assert.Contains(t, out, "INC009 (2025-07-30)")
}

func TestReportCmd_NoTickets(t *testing.T) {
	ts := setupTestServices(t)
	ts.report.res = &domain.ReportResult{Month: "2025-07"}

	out, err := execute(t, "report", "-m", "2025-07")

	require.NoError(t, err)
	assert.Contains(t, out, "No resolved tickets with attachments for 2025-07.")
}

func TestReportCmd_DryRun(t *testing.T) {
	ts := setupTestServices(t)
	refs := []domain.AttachmentReference{{AssetID: "a1", Filename: "screen.png"}, {AssetID: "a2", Filename: "log.pdf"}}
	ts.report.res = &domain.ReportResult{
		Month:   "2025-07",
		Tickets: 2,
		DryRunPlan: &domain.DryRunPlan{
			Tickets: []domain.TicketRecord{
				{ID: "1", Name: "INC001", OpenDate: "2025-07-01", Attachments: refs},
				{ID: "2", Name: "INC002", OpenDate: "2025-07-02", Attachments: refs[:1]},
			},
			SharedReferences: []domain.SharedGroup{{Filename: "screen.png", TicketIDs: []string{"1", "2"}}},
			UniqueLocations:  2,
		},
	}

	out, err := execute(t, "report", "-m", "2025-07", "--dry-run")

	require.NoError(t, err)
	assert.True(t, ts.report.req.DryRun)
	assert.Equal(t, 5, ts.built.Run.MaxItems)
	assert.Contains(t, out, "Found 2 tickets.")
	assert.Contains(t, out, "Found 2 unique attachment locations.")
	assert.Contains(t, out, "screen.png, log.pdf")
	assert.Contains(t, out, "screen.png: 2 tickets")
}

func TestReportCmd_PropagatesErrors(t *testing.T) {
	ts := setupTestServices(t)
	ts.report.err = errors.New("board unreachable")

	_, err := execute(t, "report", "-m", "2025-07")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "board unreachable")
	assert.True(t, ts.released)
}

func TestReportCmd_ConfigError(t *testing.T) {
	setupTestServices(t)
	loadSettings = func(string, bool) (domain.Settings, error) {
		return domain.Settings{}, &domain.ConfigError{Field: "board.id", Reason: "required"}
	}

	_, err := execute(t, "report", "-m", "2025-07")

	assert.ErrorIs(t, err, domain.ErrFatalConfig)
}

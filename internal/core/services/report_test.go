package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// mockTicketSource serves fixed tickets.
type mockTicketSource struct {
	tickets   []domain.TicketRecord
	listErr   error
	missing   []domain.TicketRecord
	verifyErr error
	verified  bool
}

func (m *mockTicketSource) ListTickets(_ context.Context, _ string) ([]domain.TicketRecord, error) {
	return m.tickets, m.listErr
}

func (m *mockTicketSource) VerifyTickets(_ context.Context, _ string, _ []domain.TicketRecord) ([]domain.TicketRecord, error) {
	m.verified = true
	return m.missing, m.verifyErr
}

// mockWriter records the manifest it was given and writes a marker file.
type mockWriter struct {
	mu       sync.Mutex
	err      error
	manifest *domain.FinalManifest
	info     domain.ReportInfo
	path     string
}

func (w *mockWriter) write(info domain.ReportInfo, m *domain.FinalManifest, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.info, w.manifest, w.path = info, m, path
	return os.WriteFile(path, []byte("ok"), 0o600)
}

type mockPDF struct{ mockWriter }

func (p *mockPDF) Assemble(_ context.Context, info domain.ReportInfo, m *domain.FinalManifest, path string) error {
	return p.write(info, m, path)
}

type mockSheet struct{ mockWriter }

func (s *mockSheet) Write(_ context.Context, info domain.ReportInfo, m *domain.FinalManifest, path string) error {
	return s.write(info, m, path)
}

func newTestReportService(t *testing.T, source *mockTicketSource, fetcher *fakeFetcher, conv *countingConverter) (*ReportService, *mockPDF, *mockSheet) {
	t.Helper()
	pdf, sheet := &mockPDF{}, &mockSheet{}
	svc := NewReportService(ReportServiceConfig{
		Source:    source,
		Resolver:  newTestResolver(fetcher, conv, 4),
		PDF:       pdf,
		Sheet:     sheet,
		BoardID:   "123",
		OutputDir: t.TempDir(),
		Logger:    quiet,
	})
	svc.runID = func() string { return "run-1" }
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) }
	return svc, pdf, sheet
}

func TestReportService_Generate(t *testing.T) {
	tickets, fetcher := scenario()
	source := &mockTicketSource{tickets: tickets, missing: []domain.TicketRecord{{ID: "T9", Name: "INC0009"}}}
	conv := newCountingConverter()
	svc, pdf, sheet := newTestReportService(t, source, fetcher, conv)

	result, err := svc.Generate(context.Background(), domain.ReportRequest{Month: "2025-05"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, 3, result.Tickets)
	assert.Equal(t, 5, result.Entries)
	assert.Equal(t, 4, result.Unique)
	assert.Equal(t, 1, result.Shared)
	assert.Equal(t, 3, conv.total())

	assert.Equal(t, "2025-05-Resolved-Tickets.pdf", filepath.Base(result.PDFPath))
	assert.Equal(t, "2025-05", filepath.Base(filepath.Dir(result.PDFPath)))
	assert.FileExists(t, result.PDFPath)
	assert.Equal(t, "2025-05-Resolved-Tickets-Summary.xlsx", filepath.Base(result.SheetPath))
	assert.FileExists(t, result.SheetPath)

	require.NotNil(t, pdf.manifest)
	assert.Same(t, pdf.manifest, sheet.manifest)
	assert.Equal(t, domain.ReportInfo{
		Month:       "2025-05",
		BoardID:     "123",
		RunID:       "run-1",
		GeneratedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}, pdf.info)

	assert.True(t, source.verified)
	require.Len(t, result.Missing, 1)
	assert.Equal(t, "T9", result.Missing[0].ID)
}

func TestReportService_ExplicitOutputDir(t *testing.T) {
	tickets, fetcher := scenario()
	svc, _, _ := newTestReportService(t, &mockTicketSource{tickets: tickets}, fetcher, newCountingConverter())

	dir := filepath.Join(t.TempDir(), "custom")
	result, err := svc.Generate(context.Background(), domain.ReportRequest{Month: "2025-05", OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2025-05-Resolved-Tickets.pdf"), result.PDFPath)
}

func TestReportService_DryRun(t *testing.T) {
	tickets, fetcher := scenario()
	// Same asset referenced from two tickets.
	tickets[1].Attachments[0] = tickets[0].Attachments[1]
	tickets[1].Attachments[0].TicketID = "T2"
	conv := newCountingConverter()
	svc, pdf, _ := newTestReportService(t, &mockTicketSource{tickets: tickets}, fetcher, conv)

	result, err := svc.Generate(context.Background(), domain.ReportRequest{Month: "2025-05", DryRun: true})
	require.NoError(t, err)

	assert.Zero(t, fetcher.total())
	assert.Zero(t, conv.total())
	assert.Nil(t, pdf.manifest)
	assert.Empty(t, result.PDFPath)

	require.NotNil(t, result.DryRunPlan)
	assert.Equal(t, 4, result.DryRunPlan.UniqueLocations)
	require.Len(t, result.DryRunPlan.SharedReferences, 1)
	assert.Equal(t, []string{"T1", "T2"}, result.DryRunPlan.SharedReferences[0].TicketIDs)
	assert.Equal(t, 5, result.Entries)
}

func TestReportService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		month   string
		source  *mockTicketSource
		pdfErr  error
		wantErr error
	}{
		{"bad month", "May 2025", &mockTicketSource{}, nil, domain.ErrInvalidInput},
		{"list fails", "2025-05", &mockTicketSource{listErr: errors.New("boom")}, nil, nil},
		{"pdf fails", "2025-05", nil, errors.New("disk full"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tickets, fetcher := scenario()
			source := tt.source
			if source == nil {
				source = &mockTicketSource{tickets: tickets}
			}
			svc, pdf, _ := newTestReportService(t, source, fetcher, newCountingConverter())
			pdf.err = tt.pdfErr

			_, err := svc.Generate(context.Background(), domain.ReportRequest{Month: tt.month})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestReportService_SheetFailureIsWarning(t *testing.T) {
	tickets, fetcher := scenario()
	svc, _, sheet := newTestReportService(t, &mockTicketSource{tickets: tickets}, fetcher, newCountingConverter())
	sheet.err = errors.New("locked")

	result, err := svc.Generate(context.Background(), domain.ReportRequest{Month: "2025-05"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.PDFPath)
	assert.Empty(t, result.SheetPath)
}

func TestReportService_NoTickets(t *testing.T) {
	svc, pdf, _ := newTestReportService(t, &mockTicketSource{}, newFakeFetcher(), newCountingConverter())

	result, err := svc.Generate(context.Background(), domain.ReportRequest{Month: "2025-05"})
	require.NoError(t, err)
	assert.Zero(t, result.Tickets)
	assert.Nil(t, pdf.manifest)
}

func TestReportService_Cancelled(t *testing.T) {
	tickets, fetcher := scenario()
	svc, pdf, _ := newTestReportService(t, &mockTicketSource{tickets: tickets}, fetcher, newCountingConverter())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Generate(ctx, domain.ReportRequest{Month: "2025-05"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, pdf.manifest)
}

// Package xlsx writes the monthly summary workbook.
//
// Sheets:
//   - Summary: totals, deduplication counts, status breakdown, date range
//   - Tickets Detail: one row per ticket
//   - Shared Attachments: content referenced by several tickets
//   - Attachment Analysis: every distinct content with its usage
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
	"github.com/custodia-labs/snowreport/internal/logger"
)

// Ensure Writer implements the interface.
var _ driven.SpreadsheetWriter = (*Writer)(nil)

// Sheet names.
const (
	SheetSummary  = "Summary"
	SheetTickets  = "Tickets Detail"
	SheetShared   = "Shared Attachments"
	SheetAnalysis = "Attachment Analysis"
)

const (
	headerColor = "366092"
	sectionFill = "D9D9D9"
	sharedFill  = "FFEEEE"

	// shownFiles is how many file names the detail sheet lists per ticket.
	shownFiles = 3
)

// Writer renders a FinalManifest as an xlsx workbook.
type Writer struct {
	log *slog.Logger
}

// New creates a workbook writer.
func New(log *slog.Logger) *Writer {
	if log == nil {
		log = logger.New()
	}
	return &Writer{log: log}
}

// Write builds the workbook and saves it to path atomically.
func (w *Writer) Write(ctx context.Context, info domain.ReportInfo, m *domain.FinalManifest, path string) error {
	if m == nil {
		return fmt.Errorf("%w: nil manifest", domain.ErrInvalidInput)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	b := &book{f: f}
	if err := b.styles(); err != nil {
		return err
	}

	steps := []func() error{
		func() error { return b.summary(info, m) },
		func() error { return b.tickets(m) },
		func() error { return b.shared(m) },
		func() error { return b.analysis(info, m) },
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := save(f, path); err != nil {
		return err
	}
	w.log.Info("workbook written", "path", path, "tickets", len(m.Tickets), "distinct", len(m.Distinct))
	return nil
}

// book carries the workbook and its registered styles.
type book struct {
	f         *excelize.File
	title     int
	bold      int
	italic    int
	header    int
	section   int
	sharedRow int
}

func (b *book) styles() error {
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&b.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}},
		{&b.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&b.italic, &excelize.Style{Font: &excelize.Font{Italic: true}}},
		{&b.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&b.section, &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 12},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{sectionFill}},
		}},
		{&b.sharedRow, &excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{sharedFill}}}},
	}
	for _, d := range defs {
		id, err := b.f.NewStyle(d.style)
		if err != nil {
			return fmt.Errorf("new style: %w", err)
		}
		*d.dst = id
	}
	return nil
}

func (b *book) summary(info domain.ReportInfo, m *domain.FinalManifest) error {
	const sheet = SheetSummary
	if err := b.f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	withFiles := 0
	status := map[string]int{}
	var statuses []string
	var dates []time.Time
	for _, t := range m.Tickets {
		if t.AttachmentCount > 0 {
			withFiles++
		}
		s := t.Status
		if s == "" {
			s = "Unknown"
		}
		if _, ok := status[s]; !ok {
			statuses = append(statuses, s)
		}
		status[s]++
		if d, err := time.Parse(time.DateOnly, t.OpenDate); err == nil {
			dates = append(dates, d)
		}
	}

	c := &cursor{b: b, sheet: sheet, row: 1}
	c.set("A", fmt.Sprintf("ServiceNow Resolved Tickets Summary - %s", info.Month), b.title)
	if err := b.f.MergeCell(sheet, "A1", "C1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	c.row = 3
	c.set("A", "Generated: "+info.GeneratedAt.Format(time.DateTime), b.italic)
	c.row = 4
	c.set("A", "Board: "+info.BoardID, b.italic)

	c.row = 6
	stats := []struct {
		name  string
		value int
	}{
		{"Total Resolved Tickets", len(m.Tickets)},
		{"Total Attachments", len(m.Entries)},
		{"Unique Attachments (After Deduplication)", m.UniqueAttachments()},
		{"Duplicate Attachments Removed", m.DuplicatesRemoved()},
		{"Shared Attachment Files", len(m.Shared)},
		{"Tickets with Attachments", withFiles},
		{"Tickets without Attachments", len(m.Tickets) - withFiles},
	}
	for _, s := range stats {
		c.set("A", s.name, b.bold)
		c.set("B", s.value, 0)
		c.row++
	}

	c.row += 2
	c.set("A", "Ticket Status Breakdown", b.section)
	c.row++
	for _, s := range statuses {
		c.set("A", s, 0)
		c.set("B", status[s], 0)
		c.row++
	}

	if len(dates) > 0 {
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		c.row += 2
		c.set("A", "Date Analysis", b.section)
		c.row++
		c.set("A", "Earliest Ticket Date", 0)
		c.set("B", dates[0].Format(time.DateOnly), 0)
		c.row++
		c.set("A", "Latest Ticket Date", 0)
		c.set("B", dates[len(dates)-1].Format(time.DateOnly), 0)
	}

	if c.err != nil {
		return c.err
	}
	return b.f.SetColWidth(sheet, "A", "A", 44)
}

func (b *book) tickets(m *domain.FinalManifest) error {
	const sheet = SheetTickets
	headers := []any{
		"Ticket #", "Item ID", "Date Opened", "Date Closed", "Status",
		"Attachments Count", "Attachment Files", "Placeholders", "Has Shared Attachments",
	}
	rows := make([][]any, 0, len(m.Tickets))
	for _, t := range m.Tickets {
		rows = append(rows, []any{
			t.Name, t.TicketID, t.OpenDate, t.CloseDate, t.Status,
			t.AttachmentCount, fileList(t.Filenames), t.Placeholders, yesNo(t.HasShared),
		})
	}
	return b.table(sheet, 1, headers, rows, "TicketsTable", "TableStyleMedium9", 50)
}

func (b *book) shared(m *domain.FinalManifest) error {
	const sheet = SheetShared
	names := ticketNames(m)

	headers := []any{"Attachment Filename", "Usage Count", "Tickets Using This File", "Fingerprint"}
	rows := make([][]any, 0, len(m.Shared))
	for _, g := range m.Shared {
		rows = append(rows, []any{g.Filename, g.Count(), joinNames(g.TicketIDs, names), g.Fingerprint.String()})
	}
	return b.table(sheet, 1, headers, rows, "SharedAttachmentsTable", "TableStyleMedium12", 80)
}

type usage struct {
	fp      domain.Fingerprint
	tickets []string
}

func (b *book) analysis(info domain.ReportInfo, m *domain.FinalManifest) error {
	const sheet = SheetAnalysis
	names := ticketNames(m)

	byFP := make(map[domain.Fingerprint]*usage, len(m.Distinct))
	order := make([]*usage, 0, len(m.Distinct))
	for _, fp := range m.Distinct {
		u := &usage{fp: fp}
		byFP[fp] = u
		order = append(order, u)
	}
	for _, e := range m.Entries {
		u, ok := byFP[e.Fingerprint]
		if !ok {
			continue
		}
		if n := len(u.tickets); n == 0 || u.tickets[n-1] != e.TicketID {
			u.tickets = append(u.tickets, e.TicketID)
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return len(order[i].tickets) > len(order[j].tickets) })

	headers := []any{"Attachment Filename", "Usage Count", "Status", "Tickets", "Kind", "Pages", "Fingerprint"}
	rows := make([][]any, 0, len(order))
	var sharedRows []int
	for i, u := range order {
		rep := m.Representations[u.fp]
		filename, kind, pages := "", "", 0
		if rep != nil {
			filename, kind, pages = rep.Filename, string(rep.Kind), rep.PageCount
			if rep.IsPlaceholder() {
				kind += " (" + string(rep.Placeholder) + ")"
			}
		}
		state := "Unique"
		if len(u.tickets) > 1 {
			state = "Shared"
			sharedRows = append(sharedRows, i)
		}
		rows = append(rows, []any{filename, len(u.tickets), state, joinNames(u.tickets, names), kind, pages, u.fp.String()})
	}

	if err := b.table(sheet, 3, headers, rows, "", "", 100); err != nil {
		return err
	}

	c := &cursor{b: b, sheet: sheet, row: 1}
	c.set("A", fmt.Sprintf("Attachment Analysis - %s", info.Month), b.title)
	if c.err != nil {
		return c.err
	}
	if err := b.f.MergeCell(sheet, "A1", "D1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}

	last, _ := excelize.ColumnNumberToName(len(headers))
	for _, i := range sharedRows {
		row := 4 + i
		if err := b.f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", last, row), b.sharedRow); err != nil {
			return fmt.Errorf("style shared row: %w", err)
		}
	}
	return nil
}

// table writes a header row at headerRow followed by rows, styles the header,
// sizes columns to their content up to maxWidth, and adds an Excel table when
// name is set and rows exist.
func (b *book) table(sheet string, headerRow int, headers []any, rows [][]any, name, style string, maxWidth float64) error {
	idx, err := b.f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("lookup sheet: %w", err)
	}
	if idx < 0 {
		if _, err := b.f.NewSheet(sheet); err != nil {
			return fmt.Errorf("new sheet %s: %w", sheet, err)
		}
	}

	start, _ := excelize.CoordinatesToCellName(1, headerRow)
	if err := b.f.SetSheetRow(sheet, start, &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	end, _ := excelize.CoordinatesToCellName(len(headers), headerRow)
	if err := b.f.SetCellStyle(sheet, start, end, b.header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err := b.f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if name != "" && len(rows) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), headerRow+len(rows))
		stripes := true
		if err := b.f.AddTable(sheet, &excelize.Table{
			Range:          start + ":" + last,
			Name:           name,
			StyleName:      style,
			ShowRowStripes: &stripes,
		}); err != nil {
			return fmt.Errorf("add table: %w", err)
		}
	}

	return b.fitColumns(sheet, headers, rows, maxWidth)
}

func (b *book) fitColumns(sheet string, headers []any, rows [][]any, maxWidth float64) error {
	for col := range headers {
		width := len(fmt.Sprint(headers[col]))
		for _, r := range rows {
			if col < len(r) {
				width = max(width, len(fmt.Sprint(r[col])))
			}
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := b.f.SetColWidth(sheet, name, name, min(float64(width+2), maxWidth)); err != nil {
			return fmt.Errorf("set width: %w", err)
		}
	}
	return nil
}

// cursor writes cells down a sheet and keeps the first error.
type cursor struct {
	b     *book
	sheet string
	row   int
	err   error
}

func (c *cursor) set(col string, value any, style int) {
	if c.err != nil {
		return
	}
	cell := fmt.Sprintf("%s%d", col, c.row)
	if err := c.b.f.SetCellValue(c.sheet, cell, value); err != nil {
		c.err = fmt.Errorf("set %s!%s: %w", c.sheet, cell, err)
		return
	}
	if style != 0 {
		if err := c.b.f.SetCellStyle(c.sheet, cell, cell, style); err != nil {
			c.err = fmt.Errorf("style %s!%s: %w", c.sheet, cell, err)
		}
	}
}

func ticketNames(m *domain.FinalManifest) map[string]string {
	names := make(map[string]string, len(m.Tickets))
	for _, t := range m.Tickets {
		names[t.TicketID] = t.Name
	}
	return names
}

func joinNames(ids []string, names map[string]string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id
		if n := names[id]; n != "" {
			out[i] = n
		}
	}
	return strings.Join(out, ", ")
}

func fileList(files []string) string {
	if len(files) == 0 {
		return "No attachments"
	}
	if len(files) <= shownFiles {
		return strings.Join(files, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(files[:shownFiles], ", "), len(files)-shownFiles)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// save writes the workbook next to path and renames it into place.
func save(f *excelize.File, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-summary-*")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }()

	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close workbook: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("rename workbook: %w", err)
	}
	return nil
}

package pdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// summaryLines renders the report front matter and the ticket table.
func summaryLines(info domain.ReportInfo, m *domain.FinalManifest) []string {
	lines := []string{
		"Resolved Tickets Report: " + info.Month,
		"",
		"Board:     " + info.BoardID,
		"Generated: " + info.GeneratedAt.Format(time.RFC1123),
		"Run:       " + info.RunID,
		"",
		fmt.Sprintf("Tickets:               %d", len(m.Tickets)),
		fmt.Sprintf("Attachments:           %d", len(m.Entries)),
		fmt.Sprintf("Unique attachments:    %d", m.UniqueAttachments()),
		fmt.Sprintf("Duplicates removed:    %d", m.DuplicatesRemoved()),
		fmt.Sprintf("Shared attachments:    %d", len(m.Shared)),
		fmt.Sprintf("Placeholder pages:     %d", placeholderCount(m)),
		"",
		fmt.Sprintf("%-4s %-14s %-10s %-10s %5s", "#", "Ticket", "Opened", "Closed", "Files"),
		strings.Repeat("-", 47),
	}
	for i, t := range m.Tickets {
		lines = append(lines, fmt.Sprintf("%-4d %-14s %-10s %-10s %5d",
			i+1, clip(t.Name, 14), clip(t.OpenDate, 10), clip(t.CloseDate, 10), t.AttachmentCount))
	}
	return lines
}

// sharedLines lists content referenced by more than one ticket.
func sharedLines(m *domain.FinalManifest) []string {
	if len(m.Shared) == 0 {
		return nil
	}

	names := make(map[string]string, len(m.Tickets))
	for _, t := range m.Tickets {
		names[t.TicketID] = t.Name
	}

	lines := []string{
		fmt.Sprintf("Shared Attachments (%d)", len(m.Shared)),
		"",
		"Each file below appears once in this report but belongs to several tickets.",
		"",
	}
	for _, g := range m.Shared {
		tickets := make([]string, 0, len(g.TicketIDs))
		for _, id := range g.TicketIDs {
			if n := names[id]; n != "" {
				tickets = append(tickets, n)
			} else {
				tickets = append(tickets, id)
			}
		}
		lines = append(lines,
			fmt.Sprintf("%s (%d tickets)", g.Filename, g.Count()),
			"  "+strings.Join(tickets, ", "),
			"",
		)
	}
	return lines
}

func placeholderCount(m *domain.FinalManifest) int {
	n := 0
	for _, fp := range m.Distinct {
		if r := m.Representations[fp]; r != nil && r.IsPlaceholder() {
			n++
		}
	}
	return n
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}

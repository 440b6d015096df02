package domain

import "time"

// ReportRequest selects the month and output of a report run.
type ReportRequest struct {
	// Month is the target month in YYYY-MM form.
	Month string

	// OutputDir overrides the configured output directory.
	OutputDir string

	// DryRun lists tickets and references without fetching or converting.
	DryRun bool
}

// ReportInfo is the front-matter of a generated report.
type ReportInfo struct {
	Month       string
	BoardID     string
	RunID       string
	GeneratedAt time.Time
}

// ReportResult describes the outcome of a report run.
type ReportResult struct {
	RunID       string
	Month       string
	Tickets     int
	Entries     int
	Unique      int
	Shared      int
	PDFPath     string
	SheetPath   string
	Stats       ResolutionStats
	Missing     []TicketRecord
	DryRunPlan  *DryRunPlan
	GeneratedAt time.Time
}

// DryRunPlan lists what a report run would process.
type DryRunPlan struct {
	Tickets []TicketRecord

	// SharedReferences maps a display name to tickets referencing the same location.
	SharedReferences []SharedGroup

	// UniqueLocations is the number of distinct remote locations.
	UniqueLocations int
}

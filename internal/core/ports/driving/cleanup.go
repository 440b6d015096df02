package driving

import "context"

// CleanupService maintains the working directories between runs.
type CleanupService interface {
	Run(ctx context.Context, opts CleanupOptions) (*CleanupReport, error)
}

// CleanupOptions selects maintenance actions.
type CleanupOptions struct {
	// DryRun reports sizes and planned actions without modifying anything.
	DryRun bool

	// ArchiveOld moves YYYY-MM output folders older than MonthsToKeep to the archive.
	ArchiveOld bool

	// MonthsToKeep is the number of recent months left in place.
	MonthsToKeep int
}

// FolderSize is the recursive size of one directory.
type FolderSize struct {
	Path  string
	Bytes int64
}

// CleanupReport lists what was measured and changed.
type CleanupReport struct {
	Sizes        []FolderSize
	Archived     []string
	RemovedFiles []string
	Skipped      []string
}

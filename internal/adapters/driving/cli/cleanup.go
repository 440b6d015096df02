package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/snowreport/internal/core/ports/driving"
	"github.com/custodia-labs/snowreport/internal/logger"
)

// DefaultMonthsToKeep is how many recent output months stay in place.
const DefaultMonthsToKeep = 2

var (
	cleanupDryRun       bool
	cleanupArchiveOld   bool
	cleanupMonthsToKeep int
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Report folder sizes and prune old output",
	Long: `Shows the size of the cache and output folders, removes abandoned cache
temp files, and with --archive-old moves YYYY-MM output folders older than
--months-to-keep into the output archive folder.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "show what would be cleaned without doing it")
	cleanupCmd.Flags().BoolVar(&cleanupArchiveOld, "archive-old", false, "archive old month folders")
	cleanupCmd.Flags().IntVar(&cleanupMonthsToKeep, "months-to-keep", DefaultMonthsToKeep, "recent months to keep")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	if factory.Cleanup == nil {
		return errors.New("cleanup service not configured")
	}
	if cleanupMonthsToKeep < 1 {
		return fmt.Errorf("--months-to-keep must be at least 1, got %d", cleanupMonthsToKeep)
	}

	settings, err := loadSettings(configPath, false)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := factory.Cleanup(settings, logger.New())
	if err != nil {
		return err
	}

	report, runErr := svc.Run(cmd.Context(), driving.CleanupOptions{
		DryRun:       cleanupDryRun,
		ArchiveOld:   cleanupArchiveOld,
		MonthsToKeep: cleanupMonthsToKeep,
	})
	if report != nil {
		printCleanup(newPrinter(cmd.OutOrStdout()), report, cleanupDryRun)
	}
	if runErr != nil {
		return fmt.Errorf("cleanup failed: %w", runErr)
	}
	return nil
}

func printCleanup(p *printer, r *driving.CleanupReport, dryRun bool) {
	p.title("Folder sizes")
	for _, s := range r.Sizes {
		p.field(humanize.Bytes(uint64(s.Bytes)), s.Path)
	}

	if dryRun {
		if len(r.Skipped) == 0 {
			p.muted("Nothing to clean.")
			return
		}
		p.line("")
		p.line("Would clean:")
		for _, path := range r.Skipped {
			p.line("  %s", path)
		}
		return
	}

	if len(r.RemovedFiles) > 0 {
		p.line("")
		p.line("Removed %d stale temp files.", len(r.RemovedFiles))
	}
	if len(r.Archived) > 0 {
		p.line("")
		p.line("Archived:")
		for _, name := range r.Archived {
			p.line("  %s", name)
		}
	}
	if len(r.RemovedFiles) == 0 && len(r.Archived) == 0 {
		p.muted("Nothing to clean.")
		return
	}
	p.success("Cleanup complete.")
}

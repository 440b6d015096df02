package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/logger"
)

var (
	reportMonth  string
	reportOut    string
	reportDryRun bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the monthly attachment report",
	Long: `Lists the month's resolved tickets, resolves every attachment to its content,
converts each distinct content once, and writes:

  <month>-Resolved-Tickets.pdf
  <month>-Resolved-Tickets-Summary.xlsx

With --dry-run, only the tickets and attachment names are listed; nothing is
downloaded or converted, and run.max_items caps the ticket count.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportMonth, "month", "m", "", "report month (YYYY-MM)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output directory (default <output.dir>/<month>)")
	reportCmd.Flags().BoolVar(&reportDryRun, "dry-run", false, "list tickets without fetching or converting")
	_ = reportCmd.MarkFlagRequired("month")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	if factory.Report == nil {
		return errors.New("report service not configured")
	}

	settings, err := loadSettings(configPath, true)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !reportDryRun {
		settings.Run.MaxItems = 0
	}

	ctx := cmd.Context()
	svc, release, err := factory.Report(ctx, settings, logger.New())
	if err != nil {
		return err
	}
	defer release()

	res, err := svc.Generate(ctx, domain.ReportRequest{
		Month:     reportMonth,
		OutputDir: reportOut,
		DryRun:    reportDryRun,
	})
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	p := newPrinter(cmd.OutOrStdout())
	if res.DryRunPlan != nil {
		printPlan(p, res)
		return nil
	}
	printResult(p, res)
	return nil
}

func printResult(p *printer, res *domain.ReportResult) {
	if res.Tickets == 0 {
		p.warn("No resolved tickets with attachments for %s.", res.Month)
		return
	}

	p.title("Report %s", res.Month)
	p.muted("  run %s", res.RunID)
	p.field("Tickets", res.Tickets)
	p.field("Attachments", res.Entries)
	p.field("Unique", res.Unique)
	p.field("Shared groups", res.Shared)
	p.field("Downloaded", res.Stats.Fetched)
	p.field("From cache", res.Stats.CacheHits)
	p.field("Fetch failures", res.Stats.FetchFailures)
	p.field("Conversions", res.Stats.Conversions)
	p.field("Placeholders", res.Stats.Placeholders)
	p.field("PDF", res.PDFPath)
	if res.SheetPath != "" {
		p.field("Summary", res.SheetPath)
	}

	if len(res.Missing) > 0 {
		p.line("")
		p.warn("Warning: %d qualifying tickets were not returned by the filtered query:", len(res.Missing))
		for _, t := range res.Missing {
			p.line("  - %s (%s) %d attachments", t.Name, t.OpenDate, len(t.Attachments))
		}
		return
	}
	p.success("All resolved tickets found.")
}

func printPlan(p *printer, res *domain.ReportResult) {
	plan := res.DryRunPlan
	p.title("Dry run %s", res.Month)
	p.line("Found %d tickets.", len(plan.Tickets))
	p.line("Found %d unique attachment locations.", plan.UniqueLocations)
	p.line("")

	for _, t := range plan.Tickets {
		names := make([]string, len(t.Attachments))
		for i, a := range t.Attachments {
			names[i] = a.DisplayName()
		}
		p.line("  %s  %s  %d attachments", t.Name, t.OpenDate, len(t.Attachments))
		if len(names) > 0 {
			p.muted("      %s", strings.Join(names, ", "))
		}
	}

	if len(plan.SharedReferences) == 0 {
		return
	}
	p.line("")
	p.line("Shared attachments:")
	for _, g := range plan.SharedReferences {
		p.line("  %s: %d tickets", g.Filename, g.Count())
	}
}

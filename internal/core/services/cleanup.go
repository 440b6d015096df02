package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/snowreport/internal/core/ports/driving"
	"github.com/custodia-labs/snowreport/internal/logger"
)

// Ensure CleanupService implements the interface.
var _ driving.CleanupService = (*CleanupService)(nil)

// monthDir matches report output folders.
var monthDir = regexp.MustCompile(`^\d{4}-\d{2}$`)

// staleTempAge is how old an abandoned cache temp file must be before removal.
const staleTempAge = time.Hour

// tempPrefix marks in-progress blob writes.
const tempPrefix = ".tmp-"

// CleanupService measures and prunes the cache and output directories.
type CleanupService struct {
	cacheDir   string
	outputDir  string
	archiveDir string
	logger     *slog.Logger
	now        func() time.Time
}

// NewCleanupService creates a cleanup service. Archived month folders are
// moved to outputDir/archive.
func NewCleanupService(cacheDir, outputDir string, log *slog.Logger) *CleanupService {
	if log == nil {
		log = logger.New()
	}
	return &CleanupService{
		cacheDir:   cacheDir,
		outputDir:  outputDir,
		archiveDir: filepath.Join(outputDir, "archive"),
		logger:     log,
		now:        time.Now,
	}
}

// Run measures folder sizes and, unless opts.DryRun, removes stale temp files
// and archives old month folders.
func (s *CleanupService) Run(ctx context.Context, opts driving.CleanupOptions) (*driving.CleanupReport, error) {
	report := &driving.CleanupReport{}

	for _, dir := range []string{s.cacheDir, s.outputDir, s.archiveDir} {
		size, err := dirSize(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("measure %s: %w", dir, err)
		}
		report.Sizes = append(report.Sizes, driving.FolderSize{Path: dir, Bytes: size})
		s.logger.Info("folder size", "path", dir, "size", humanize.Bytes(uint64(size)))
	}

	stale, err := s.staleTempFiles()
	if err != nil {
		return nil, err
	}
	var errs []error
	for _, path := range stale {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if opts.DryRun {
			report.Skipped = append(report.Skipped, path)
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		report.RemovedFiles = append(report.RemovedFiles, path)
	}

	if opts.ArchiveOld {
		old, err := s.oldMonths(opts.MonthsToKeep)
		if err != nil {
			return nil, err
		}
		for _, name := range old {
			src := filepath.Join(s.outputDir, name)
			if opts.DryRun {
				report.Skipped = append(report.Skipped, src)
				continue
			}
			if err := os.MkdirAll(s.archiveDir, 0o755); err != nil {
				return nil, fmt.Errorf("create archive dir: %w", err)
			}
			if err := os.Rename(src, filepath.Join(s.archiveDir, name)); err != nil {
				errs = append(errs, fmt.Errorf("archive %s: %w", name, err))
				continue
			}
			report.Archived = append(report.Archived, name)
			s.logger.Info("archived month", "month", name)
		}
	}

	return report, errors.Join(errs...)
}

// staleTempFiles finds abandoned blob writes older than staleTempAge.
func (s *CleanupService) staleTempFiles() ([]string, error) {
	cutoff := s.now().Add(-staleTempAge)
	var stale []string
	err := filepath.WalkDir(s.cacheDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			stale = append(stale, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan cache: %w", err)
	}
	return stale, nil
}

// oldMonths lists YYYY-MM output folders older than the newest keep months.
func (s *CleanupService) oldMonths(keep int) ([]string, error) {
	if keep < 1 {
		keep = 1
	}
	entries, err := os.ReadDir(s.outputDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}

	now := s.now()
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(keep - 1), 0)

	var old []string
	for _, e := range entries {
		if !e.IsDir() || !monthDir.MatchString(e.Name()) {
			continue
		}
		month, err := time.Parse("2006-01", e.Name())
		if err != nil {
			continue
		}
		if month.Before(cutoff) {
			old = append(old, e.Name())
		}
	}
	sort.Strings(old)
	return old, nil
}

func dirSize(dir string) (int64, error) {
	if _, err := os.Stat(dir); err != nil {
		return 0, err
	}
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/snowreport/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// DBName is the database file name inside the cache directory.
const DBName = "index.db"

// Store is a SQLite database holding the location index.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database in dataDir and applies pending
// migrations.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// LocationIndex returns a LocationIndex backed by this store.
func (s *Store) LocationIndex() driven.LocationIndex {
	return &locationIndex{store: s}
}

// migrate runs all pending migrations, recording each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_attachment_locations.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, stmt string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(stmt); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ==================== Location Index ====================

// locationIndex implements driven.LocationIndex.
type locationIndex struct {
	store *Store
}

var _ driven.LocationIndex = (*locationIndex)(nil)

// Lookup returns the fingerprint recorded for a location.
func (l *locationIndex) Lookup(ctx context.Context, location string) (domain.Fingerprint, error) {
	var fp string
	err := l.store.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM attachment_locations WHERE location = ?`, location).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("looking up location: %w", err)
	}
	return domain.Fingerprint(fp), nil
}

// Record stores or replaces the fingerprint for a location.
func (l *locationIndex) Record(ctx context.Context, location string, fp domain.Fingerprint) error {
	_, err := l.store.db.ExecContext(ctx, `
		INSERT INTO attachment_locations (location, fingerprint, recorded_at)
		VALUES (?, ?, ?)
		ON CONFLICT(location) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			recorded_at = excluded.recorded_at
	`, location, string(fp), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording location: %w", err)
	}
	return nil
}

// Forget removes the record for a location.
func (l *locationIndex) Forget(ctx context.Context, location string) error {
	if _, err := l.store.db.ExecContext(ctx,
		`DELETE FROM attachment_locations WHERE location = ?`, location); err != nil {
		return fmt.Errorf("forgetting location: %w", err)
	}
	return nil
}

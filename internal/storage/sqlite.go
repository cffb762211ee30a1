// Package storage exports finished crawl reports into SQLite.
// Every run is appended. Runs can be read back for display, never to resume a crawl.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/masahif/find404/internal/crawler"
	"github.com/masahif/find404/internal/report"
	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run id does not exist
var ErrRunNotFound = errors.New("run not found")

// SQLiteStorage stores crawl reports in a SQLite database
type SQLiteStorage struct {
	db *sql.DB
}

// Run is one stored crawl
type Run struct {
	ID         int64
	SeedURL    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// BrokenPage is a page that returned an HTTP error status
type BrokenPage struct {
	URL        string
	StatusCode int
	Referrer   string
	AnchorText string
	Depth      int
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool - single connection prevents lock conflicts
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	storage := &SQLiteStorage{db: db}

	if err := storage.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// InitSchema creates the database schema
func (s *SQLiteStorage) InitSchema() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 30000", // 30 second timeout for locks
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveRun stores a finished crawl and all of its results in one transaction
// and returns the new run id.
func (s *SQLiteStorage) SaveRun(seed string, started, finished time.Time, results crawler.Results) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO runs (seed_url, started_at, finished_at)
		VALUES (?, ?, ?)
	`, seed, started.UTC().Format(time.RFC3339Nano), finished.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO pages (
			run_id, url, status, status_code, class, size_bytes,
			referrer, depth, recurse, final_url, anchor_text,
			elapsed_ms, ttfb_ms, dns_ms, connect_ms, tls_ms, detail
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, entry := range report.Entries(results) {
		outcome := entry.Outcome
		_, err := stmt.Exec(
			runID,
			entry.URL,
			outcome.Status(),
			outcome.StatusCode,
			string(outcome.Class),
			outcome.Size,
			nullString(outcome.Referrer),
			outcome.Depth,
			outcome.Recurse,
			nullString(outcome.FinalURL),
			nullString(outcome.AnchorText),
			outcome.Timing.DownloadTime.Milliseconds(),
			outcome.Timing.TTFB.Milliseconds(),
			outcome.Timing.DNSLookup.Milliseconds(),
			outcome.Timing.TCPConnect.Milliseconds(),
			outcome.Timing.TLSHandshake.Milliseconds(),
			nullString(outcome.Detail),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", entry.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// BrokenPages returns the pages of a run that returned an HTTP error status
func (s *SQLiteStorage) BrokenPages(runID int64) ([]BrokenPage, error) {
	rows, err := s.db.Query(`
		SELECT url, status_code, COALESCE(referrer, ''), COALESCE(anchor_text, ''), depth
		FROM broken_pages
		WHERE run_id = ?
		ORDER BY url
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query broken pages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pages []BrokenPage
	for rows.Next() {
		var page BrokenPage
		if err := rows.Scan(&page.URL, &page.StatusCode, &page.Referrer, &page.AnchorText, &page.Depth); err != nil {
			return nil, fmt.Errorf("failed to scan broken page: %w", err)
		}
		pages = append(pages, page)
	}

	return pages, rows.Err()
}

// GetRun returns a stored run
func (s *SQLiteStorage) GetRun(runID int64) (*Run, error) {
	var started, finished string
	run := &Run{ID: runID}
	err := s.db.QueryRow(`
		SELECT seed_url, started_at, finished_at FROM runs WHERE id = ?
	`, runID).Scan(&run.SeedURL, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("invalid start time %q: %w", started, err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, fmt.Errorf("invalid finish time %q: %w", finished, err)
	}
	return run, nil
}

// LatestRunID returns the id of the most recent run
func (s *SQLiteStorage) LatestRunID() (int64, error) {
	var id sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(id) FROM runs").Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to query runs: %w", err)
	}
	if !id.Valid {
		return 0, ErrRunNotFound
	}
	return id.Int64, nil
}

// PageCount returns the number of pages stored for a run
func (s *SQLiteStorage) PageCount(runID int64) (int, error) {
	var exists int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to query run: %w", err)
	}
	if exists == 0 {
		return 0, ErrRunNotFound
	}

	var count int
	err = s.db.QueryRow("SELECT COUNT(*) FROM pages WHERE run_id = ?", runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

// GetMeta retrieves a metadata value by key
func (s *SQLiteStorage) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM crawl_meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta %s: %w", key, err)
	}
	return value, nil
}

// SetMeta sets a metadata value
func (s *SQLiteStorage) SetMeta(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO crawl_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set meta %s: %w", key, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

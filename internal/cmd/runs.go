package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/masahif/find404/internal/storage"
)

// versionMetaKey records which find404 version last wrote a database
const versionMetaKey = "find404_version"

// ErrNoDatabase is returned when a stored run is requested without --database
var ErrNoDatabase = errors.New("no database configured, use --database")

// showRun prints a run stored in the database at dbPath. runID 0 selects the latest run.
func showRun(out io.Writer, dbPath string, runID int64) error {
	if dbPath == "" {
		return ErrNoDatabase
	}
	// NewSQLiteStorage would create a missing file
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if runID == 0 {
		if runID, err = store.LatestRunID(); err != nil {
			return err
		}
	}

	run, err := store.GetRun(runID)
	if err != nil {
		return fmt.Errorf("run %d: %w", runID, err)
	}
	count, err := store.PageCount(runID)
	if err != nil {
		return err
	}
	broken, err := store.BrokenPages(runID)
	if err != nil {
		return err
	}
	writtenBy, err := store.GetMeta(versionMetaKey)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run %d: %s\n", run.ID, run.SeedURL)
	fmt.Fprintf(out, "Started:  %s (%s)\n", run.StartedAt.Local().Format(time.RFC3339), humanize.Time(run.StartedAt))
	fmt.Fprintf(out, "Duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(out, "Pages:    %d\n", count)
	if writtenBy != "" {
		fmt.Fprintf(out, "Database: written by find404 %s\n", writtenBy)
	}
	fmt.Fprintf(out, "Broken:   %d\n", len(broken))

	for _, page := range broken {
		referrer := page.Referrer
		if referrer == "" {
			referrer = "N/A"
		}
		fmt.Fprintf(out, "  %d %s\n", page.StatusCode, page.URL)
		if page.AnchorText != "" {
			fmt.Fprintf(out, "      linked from %s as %q\n", referrer, page.AnchorText)
		} else {
			fmt.Fprintf(out, "      linked from %s\n", referrer)
		}
	}

	return nil
}

package history

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// FirefoxSource reads visit records from a Firefox places.sqlite file.
type FirefoxSource struct {
	// Path to the live places.sqlite file.
	Path string
	// WorkDir receives the snapshot copy read instead of the live file.
	WorkDir string
}

// Browser returns the source label stored on records from this source.
func (s FirefoxSource) Browser() string { return "Firefox" }

// Read snapshots the database and returns one record per moz_places row.
// A missing database file is not an error: that browser simply
// contributes nothing. Rows without a title are dropped, since the title
// is mandatory for the embedded text; the count of dropped rows is
// returned alongside the records.
func (s FirefoxSource) Read() ([]VisitRecord, int, error) {
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		return nil, 0, nil
	}

	snap, err := Snapshot(s.Path, s.WorkDir, "firefox_history.sqlite")
	if err != nil {
		return nil, 0, fmt.Errorf("firefox: %w", err)
	}

	db, err := sql.Open("sqlite3", snap+"?mode=ro")
	if err != nil {
		return nil, 0, fmt.Errorf("firefox: open snapshot: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT url, title, description, last_visit_date, visit_count, preview_image_url
		FROM moz_places
	`)
	if err != nil {
		return nil, 0, fmt.Errorf("firefox: query moz_places: %w", err)
	}
	defer rows.Close()

	var records []VisitRecord
	dropped := 0
	for rows.Next() {
		var (
			url        string
			title      sql.NullString
			desc       sql.NullString
			lastVisit  sql.NullInt64
			visitCount sql.NullInt64
			preview    sql.NullString
		)
		if err := rows.Scan(&url, &title, &desc, &lastVisit, &visitCount, &preview); err != nil {
			return nil, 0, fmt.Errorf("firefox: scan row: %w", err)
		}

		if !title.Valid || title.String == "" {
			dropped++
			continue
		}

		description := DescriptionSentinel
		if desc.Valid && desc.String != "" {
			description = desc.String
		}

		records = append(records, VisitRecord{
			URL:             url,
			Title:           title.String,
			Description:     description,
			Timestamp:       lastVisit.Int64 / 1_000_000, // microseconds since Unix epoch
			VisitCount:      visitCount.Int64,
			PreviewImageURL: preview.String,
			Browser:         s.Browser(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("firefox: iterate rows: %w", err)
	}

	return records, dropped, nil
}

package history

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// windowsEpochOffset is the number of seconds between the Windows epoch
// (1601-01-01) and the Unix epoch (1970-01-01). Chromium visit times are
// microseconds since the Windows epoch.
const windowsEpochOffset = 11644473600

// ChromiumSource reads visit records from a Chromium-family History
// database. Chrome, Brave, and Arc all share the schema; Name labels
// which one the records came from.
type ChromiumSource struct {
	Name    string
	Path    string
	WorkDir string
}

// Browser returns the source label stored on records from this source.
func (s ChromiumSource) Browser() string { return s.Name }

// Read snapshots the database and returns one record per (url, visit)
// pair, converting visit times from the Windows epoch to Unix seconds.
// A missing database file contributes zero records. Rows without a
// title are dropped and counted.
func (s ChromiumSource) Read() ([]VisitRecord, int, error) {
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		return nil, 0, nil
	}

	snapName := strings.ToLower(s.Name) + "_history.sqlite"
	snap, err := Snapshot(s.Path, s.WorkDir, snapName)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", s.Name, err)
	}

	db, err := sql.Open("sqlite3", snap+"?mode=ro")
	if err != nil {
		return nil, 0, fmt.Errorf("%s: open snapshot: %w", s.Name, err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT urls.url, urls.title, visits.visit_time, urls.visit_count
		FROM urls JOIN visits ON urls.id = visits.url
	`)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: query history: %w", s.Name, err)
	}
	defer rows.Close()

	var records []VisitRecord
	dropped := 0
	for rows.Next() {
		var (
			url        string
			title      sql.NullString
			visitTime  sql.NullInt64
			visitCount sql.NullInt64
		)
		if err := rows.Scan(&url, &title, &visitTime, &visitCount); err != nil {
			return nil, 0, fmt.Errorf("%s: scan row: %w", s.Name, err)
		}

		if !title.Valid || title.String == "" {
			dropped++
			continue
		}

		records = append(records, VisitRecord{
			URL:         url,
			Title:       title.String,
			Description: DescriptionSentinel,
			Timestamp:   visitTime.Int64/1_000_000 - windowsEpochOffset,
			VisitCount:  visitCount.Int64,
			Browser:     s.Browser(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: iterate rows: %w", s.Name, err)
	}

	return records, dropped, nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/runnerr0/retrace/internal/history"
)

// Store is the local cache of normalized browsing history. Every ingest
// run replaces its contents wholesale; search and clustering read from
// it instead of re-parsing browser databases on each request.
type Store interface {
	ReplaceAll(ctx context.Context, records []history.VisitRecord) error
	All(ctx context.Context) ([]history.VisitRecord, error)
	InRange(ctx context.Context, since, until int64) ([]history.VisitRecord, error)
	GetStats(ctx context.Context) (*Stats, error)
	PurgeAll(ctx context.Context) error
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	insertRecord *sql.Stmt
}

// NewSQLiteStore creates a SQLiteStore from an already-opened and
// migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	var err error
	s.insertRecord, err = db.Prepare(`
		INSERT INTO history (url, url_hash, title, description, ts, visit_count, preview_image_url, browser)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}

	return s, nil
}

// ReplaceAll swaps the cache contents for records in one transaction.
// The cache mirrors the freshly normalized corpus, so a full rewrite is
// simpler and no slower than diffing at this scale.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, records []history.VisitRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	stmt := tx.StmtContext(ctx, s.insertRecord)
	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.URL, int64(r.URLHash), r.Title, r.Description,
			r.Timestamp, r.VisitCount, r.PreviewImageURL, r.Browser,
		)
		if err != nil {
			return fmt.Errorf("insert record %s: %w", r.URL, err)
		}
	}

	return tx.Commit()
}

// All returns every cached record ordered by visit time ascending.
func (s *SQLiteStore) All(ctx context.Context) ([]history.VisitRecord, error) {
	return s.scanRecords(ctx, `
		SELECT url, url_hash, title, description, ts, visit_count, preview_image_url, browser
		FROM history ORDER BY ts ASC
	`)
}

// InRange returns cached records with ts in [since, until], either bound
// optional when zero, ordered by visit time ascending.
func (s *SQLiteStore) InRange(ctx context.Context, since, until int64) ([]history.VisitRecord, error) {
	query := `
		SELECT url, url_hash, title, description, ts, visit_count, preview_image_url, browser
		FROM history
	`
	var clauses []string
	var args []interface{}
	if since != 0 {
		clauses = append(clauses, "ts >= ?")
		args = append(args, since)
	}
	if until != 0 {
		clauses = append(clauses, "ts <= ?")
		args = append(args, until)
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY ts ASC"

	return s.scanRecords(ctx, query, args...)
}

func (s *SQLiteStore) scanRecords(ctx context.Context, query string, args ...interface{}) ([]history.VisitRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []history.VisitRecord
	for rows.Next() {
		var r history.VisitRecord
		var urlHash int64
		if err := rows.Scan(
			&r.URL, &urlHash, &r.Title, &r.Description,
			&r.Timestamp, &r.VisitCount, &r.PreviewImageURL, &r.Browser,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.URLHash = uint64(urlHash)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if records == nil {
		records = []history.VisitRecord{}
	}
	return records, nil
}

// GetStats returns aggregate statistics about the cache.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history").Scan(&stats.TotalRecords)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}

	if stats.TotalRecords > 0 {
		var oldest, newest int64
		err = s.db.QueryRowContext(ctx, "SELECT MIN(ts), MAX(ts) FROM history").Scan(&oldest, &newest)
		if err != nil {
			return nil, fmt.Errorf("visit time range: %w", err)
		}
		stats.OldestVisit = time.Unix(oldest, 0).UTC()
		stats.NewestVisit = time.Unix(newest, 0).UTC()
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT browser, COUNT(*) as cnt FROM history GROUP BY browser ORDER BY cnt DESC LIMIT 10",
	)
	if err != nil {
		return nil, fmt.Errorf("top browsers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bc BrowserCount
		if err := rows.Scan(&bc.Browser, &bc.Count); err != nil {
			return nil, err
		}
		stats.TopBrowsers = append(stats.TopBrowsers, bc)
	}

	return stats, rows.Err()
}

// PurgeAll deletes all cached records.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return fmt.Errorf("purge history: %w", err)
	}
	return nil
}

// Close releases the prepared statements. The underlying *sql.DB is NOT
// closed — that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	if s.insertRecord != nil {
		s.insertRecord.Close()
	}
	return nil
}

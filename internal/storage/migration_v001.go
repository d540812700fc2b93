package storage

import "database/sql"

// migrateV001 creates the initial cache schema. Every statement uses
// IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history (
			url               TEXT PRIMARY KEY,
			url_hash          INTEGER NOT NULL,
			title             TEXT NOT NULL DEFAULT '',
			description       TEXT NOT NULL DEFAULT '',
			ts                INTEGER NOT NULL DEFAULT 0,
			visit_count       INTEGER NOT NULL DEFAULT 0,
			preview_image_url TEXT NOT NULL DEFAULT '',
			browser           TEXT NOT NULL DEFAULT '',
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_history_ts       ON history(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_history_url_hash ON history(url_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_history_browser  ON history(browser)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

package history

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFirefoxFixture creates a minimal places.sqlite in dir.
func writeFirefoxFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "places.sqlite")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE moz_places (
			url TEXT,
			title TEXT,
			description TEXT,
			last_visit_date INTEGER,
			visit_count INTEGER,
			preview_image_url TEXT
		)
	`)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO moz_places (url, title, description, last_visit_date, visit_count, preview_image_url) VALUES
		('https://go.dev', 'The Go Programming Language', 'Build simple software', 1704067200000000, 12, 'https://go.dev/img.png'),
		('https://no-desc.example.com', 'No Description Here', NULL, 1704067260000000, 1, NULL),
		('https://untitled.example.com', NULL, 'orphan description', 1704067320000000, 3, NULL)
	`)
	require.NoError(t, err)
	return path
}

// writeChromiumFixture creates a minimal Chromium History database in dir.
func writeChromiumFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "History")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE urls (id INTEGER PRIMARY KEY, url TEXT, title TEXT, visit_count INTEGER);
		CREATE TABLE visits (id INTEGER PRIMARY KEY, url INTEGER, visit_time INTEGER);
	`)
	require.NoError(t, err)

	// visit_time is microseconds since the Windows epoch (1601-01-01).
	// 13348540800000000 us = 2024-01-01 00:00:00 UTC.
	_, err = db.Exec(`
		INSERT INTO urls (id, url, title, visit_count) VALUES
			(1, 'https://example.com', 'Example Domain', 7),
			(2, 'https://untitled.example.com', '', 1);
		INSERT INTO visits (id, url, visit_time) VALUES
			(1, 1, 13348540800000000),
			(2, 1, 13348544400000000),
			(3, 2, 13348540800000000);
	`)
	require.NoError(t, err)
	return path
}

func TestFirefoxSource_Read(t *testing.T) {
	dir := t.TempDir()
	src := FirefoxSource{Path: writeFirefoxFixture(t, dir), WorkDir: filepath.Join(dir, "work")}

	records, dropped, err := src.Read()
	require.NoError(t, err)

	assert.Equal(t, 1, dropped, "row without title is dropped")
	require.Len(t, records, 2)

	assert.Equal(t, "https://go.dev", records[0].URL)
	assert.Equal(t, "The Go Programming Language", records[0].Title)
	assert.Equal(t, "Build simple software", records[0].Description)
	assert.Equal(t, int64(1704067200), records[0].Timestamp, "microseconds scaled to seconds")
	assert.Equal(t, int64(12), records[0].VisitCount)
	assert.Equal(t, "https://go.dev/img.png", records[0].PreviewImageURL)
	assert.Equal(t, "Firefox", records[0].Browser)

	assert.Equal(t, DescriptionSentinel, records[1].Description, "NULL description gets the sentinel")
	assert.Equal(t, "", records[1].PreviewImageURL, "NULL preview becomes empty string")
}

func TestFirefoxSource_MissingFile(t *testing.T) {
	src := FirefoxSource{Path: filepath.Join(t.TempDir(), "nope.sqlite"), WorkDir: t.TempDir()}

	records, dropped, err := src.Read()
	require.NoError(t, err, "absent source is not an error")
	assert.Empty(t, records)
	assert.Zero(t, dropped)
}

func TestChromiumSource_Read(t *testing.T) {
	dir := t.TempDir()
	src := ChromiumSource{Name: "Brave", Path: writeChromiumFixture(t, dir), WorkDir: filepath.Join(dir, "work")}

	records, dropped, err := src.Read()
	require.NoError(t, err)

	assert.Equal(t, 1, dropped)
	require.Len(t, records, 2, "one record per visit, not per URL")

	assert.Equal(t, "https://example.com", records[0].URL)
	assert.Equal(t, int64(1704067200), records[0].Timestamp, "Windows epoch offset applied")
	assert.Equal(t, int64(1704070800), records[1].Timestamp)
	assert.Equal(t, DescriptionSentinel, records[0].Description)
	assert.Equal(t, "Brave", records[0].Browser)
	assert.Equal(t, int64(7), records[0].VisitCount)
}

func TestChromiumSource_MissingFile(t *testing.T) {
	src := ChromiumSource{Name: "Chrome", Path: filepath.Join(t.TempDir(), "History"), WorkDir: t.TempDir()}

	records, dropped, err := src.Read()
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, dropped)
}

func TestSnapshot_CopiesContent(t *testing.T) {
	dir := t.TempDir()
	src := writeChromiumFixture(t, dir)

	snap, err := Snapshot(src, filepath.Join(dir, "work"), "copy.sqlite")
	require.NoError(t, err)
	assert.NotEqual(t, src, snap, "snapshot must not be the live file")

	db, err := sql.Open("sqlite3", snap+"?mode=ro")
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM visits").Scan(&n))
	assert.Equal(t, 3, n)
}

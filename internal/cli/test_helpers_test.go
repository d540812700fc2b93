package cli

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/retrace/internal/storage"
	"github.com/runnerr0/retrace/internal/vector"
)

// openTestDB creates a migrated in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner := storage.NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	return db
}

// fakeVectorStore is an in-memory vector.Store for command tests.
type fakeVectorStore struct {
	matches []vector.Match
	entries []vector.Entry

	queried bool
	dropped bool
}

func (f *fakeVectorStore) Add(ctx context.Context, docs []vector.Document) error { return nil }

func (f *fakeVectorStore) IDs(ctx context.Context) (map[uint64]struct{}, error) {
	return map[uint64]struct{}{}, nil
}

func (f *fakeVectorStore) Query(ctx context.Context, text string, k int, filter vector.Filter) ([]vector.Match, error) {
	f.queried = true
	return f.matches, nil
}

func (f *fakeVectorStore) Entries(ctx context.Context, filter vector.Filter) ([]vector.Entry, error) {
	return f.entries, nil
}

func (f *fakeVectorStore) Count(ctx context.Context) (uint64, error) {
	return uint64(len(f.entries)), nil
}

func (f *fakeVectorStore) Drop(ctx context.Context) error {
	f.dropped = true
	return nil
}

package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runnerr0/retrace/internal/history"
	"github.com/runnerr0/retrace/internal/vector"
)

// fakeStore is an in-memory vector.Store that records Add batch sizes
// and can be told to fail on the nth Add call.
type fakeStore struct {
	docs       map[uint64]vector.Document
	batchSizes []int
	failOnAdd  int // 1-based call number to fail on; 0 = never
	addCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[uint64]vector.Document)}
}

func (s *fakeStore) Add(ctx context.Context, docs []vector.Document) error {
	s.addCalls++
	if s.failOnAdd != 0 && s.addCalls == s.failOnAdd {
		return errors.New("store unavailable")
	}
	s.batchSizes = append(s.batchSizes, len(docs))
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return nil
}

func (s *fakeStore) IDs(ctx context.Context) (map[uint64]struct{}, error) {
	ids := make(map[uint64]struct{}, len(s.docs))
	for id := range s.docs {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (s *fakeStore) Query(ctx context.Context, text string, k int, f vector.Filter) ([]vector.Match, error) {
	return nil, nil
}

func (s *fakeStore) Entries(ctx context.Context, f vector.Filter) ([]vector.Entry, error) {
	return nil, nil
}

func (s *fakeStore) Count(ctx context.Context) (uint64, error) {
	return uint64(len(s.docs)), nil
}

func (s *fakeStore) Drop(ctx context.Context) error {
	s.docs = make(map[uint64]vector.Document)
	return nil
}

func testRecords(urls ...string) []history.VisitRecord {
	records := make([]history.VisitRecord, 0, len(urls))
	for i, u := range urls {
		records = append(records, history.VisitRecord{
			URL:         u,
			Title:       "Title",
			Description: "Desc",
			Timestamp:   int64(100 + i),
			URLHash:     history.URLHash(u),
		})
	}
	return records
}

func TestPipeline_BatchSplit(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, 2, zap.NewNop())

	records := testRecords(
		"https://a.com", "https://b.com", "https://c.com",
		"https://d.com", "https://e.com",
	)

	report, err := p.Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Added)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, []int{2, 2, 1}, store.batchSizes)
}

func TestPipeline_Idempotent(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, 2, zap.NewNop())
	records := testRecords("https://a.com", "https://b.com", "https://c.com")

	first, err := p.Run(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Added)

	second, err := p.Run(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added, "second run adds nothing")
	assert.Equal(t, 3, second.Skipped)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n, "store contents unchanged by the rerun")
}

func TestPipeline_SkipsAlreadyIndexed(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, 10, zap.NewNop())

	_, err := p.Run(context.Background(), testRecords("https://a.com"))
	require.NoError(t, err)

	report, err := p.Run(context.Background(), testRecords("https://a.com", "https://b.com"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 1, report.Skipped)
}

func TestPipeline_EmptyInputMakesNoStoreCalls(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, 10, zap.NewNop())

	report, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Added)
	assert.Zero(t, store.addCalls)
}

func TestPipeline_PartialFailureKeepsCommittedBatches(t *testing.T) {
	store := newFakeStore()
	store.failOnAdd = 2
	p := NewPipeline(store, 2, zap.NewNop())

	records := testRecords(
		"https://a.com", "https://b.com", "https://c.com",
		"https://d.com", "https://e.com",
	)

	report, err := p.Run(context.Background(), records)
	require.Error(t, err)
	assert.Equal(t, 2, report.Added, "first batch committed before the failure")
	assert.Equal(t, []int{2}, store.batchSizes)

	// Retrying from scratch picks up only what is missing.
	store.failOnAdd = 0
	retry, err := p.Run(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 3, retry.Added)
	assert.Equal(t, 2, retry.Skipped)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)
}

func TestPipeline_DocumentShape(t *testing.T) {
	store := newFakeStore()
	p := NewPipeline(store, 10, zap.NewNop())

	record := history.VisitRecord{
		URL:         "https://go.dev",
		Title:       "Go",
		Description: "a language",
		Timestamp:   1704067200,
		VisitCount:  4,
		URLHash:     history.URLHash("https://go.dev"),
	}

	_, err := p.Run(context.Background(), []history.VisitRecord{record})
	require.NoError(t, err)

	doc, ok := store.docs[record.URLHash]
	require.True(t, ok)
	assert.Equal(t, "Go:a language", doc.Text)
	assert.Equal(t, "https://go.dev", doc.Meta.URL)
	assert.Equal(t, int64(1704067200), doc.Meta.Timestamp)
	assert.Equal(t, int64(4), doc.Meta.VisitCount)
	assert.Equal(t, "", doc.Meta.PreviewImageURL)
}

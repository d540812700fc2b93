package cluster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runnerr0/retrace/internal/history"
	"github.com/runnerr0/retrace/internal/timeline"
	"github.com/runnerr0/retrace/internal/vector"
)

func TestGroup_EmptyInput(t *testing.T) {
	table := history.NewTable(nil)

	cells, err := Group(table, nil, 4, timeline.Hour, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, cells)
	assert.Empty(t, cells)
}

func TestGroup_SeparableClusters(t *testing.T) {
	// Two well-separated blobs in embedding space; k=2 must put each
	// blob's URLs into one cluster.
	ts := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.Local).Unix()

	urls := []string{"https://a1.com", "https://a2.com", "https://a3.com", "https://b1.com", "https://b2.com", "https://b3.com"}
	embeddings := [][]float32{
		{10, 10, 0}, {10.5, 9.5, 0.1}, {9.5, 10.5, -0.1},
		{-10, -10, 5}, {-9.5, -10.5, 5.1}, {-10.5, -9.5, 4.9},
	}

	var records []history.VisitRecord
	var entries []vector.Entry
	for i, u := range urls {
		records = append(records, history.VisitRecord{
			URL: u, Title: "T", Timestamp: ts, URLHash: history.URLHash(u),
		})
		entries = append(entries, vector.Entry{ID: history.URLHash(u), Embedding: embeddings[i]})
	}
	table := history.NewTable(records)

	cells, err := Group(table, entries, 2, timeline.Day, zap.NewNop())
	require.NoError(t, err)

	// All records share one day, so exactly one cell per cluster.
	require.Len(t, cells, 2)
	assert.NotEqual(t, cells[0].Cluster, cells[1].Cluster)
	assert.Equal(t, 3, cells[0].Bucket.Count)
	assert.Equal(t, 3, cells[1].Bucket.Count)

	inCell := func(c Cell, url string) bool {
		for _, u := range c.Bucket.URLs {
			if u == url {
				return true
			}
		}
		return false
	}
	// Each blob stays together.
	for _, c := range cells {
		if inCell(c, "https://a1.com") {
			assert.True(t, inCell(c, "https://a2.com"))
			assert.True(t, inCell(c, "https://a3.com"))
			assert.False(t, inCell(c, "https://b1.com"))
		}
	}
}

func TestGroup_Deterministic(t *testing.T) {
	ts := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.Local).Unix()
	var records []history.VisitRecord
	var entries []vector.Entry
	for i := 0; i < 12; i++ {
		u := string(rune('a'+i)) + ".example.com"
		records = append(records, history.VisitRecord{
			URL: u, Title: "T", Timestamp: ts + int64(i)*3600, URLHash: history.URLHash(u),
		})
		entries = append(entries, vector.Entry{
			ID:        history.URLHash(u),
			Embedding: []float32{float32(i % 4), float32(i % 3), float32(i)},
		})
	}
	table := history.NewTable(records)

	first, err := Group(table, entries, 4, timeline.Hour, zap.NewNop())
	require.NoError(t, err)
	second, err := Group(table, entries, 4, timeline.Hour, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, first, second, "same input set yields the same partition")
}

func TestGroup_KCappedAtInputSize(t *testing.T) {
	ts := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.Local).Unix()
	records := []history.VisitRecord{
		{URL: "https://only.com", Title: "T", Timestamp: ts, URLHash: history.URLHash("https://only.com")},
	}
	entries := []vector.Entry{
		{ID: history.URLHash("https://only.com"), Embedding: []float32{1, 2, 3}},
	}

	cells, err := Group(history.NewTable(records), entries, 4, timeline.Hour, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 1, cells[0].Bucket.Count)
}

func TestGroup_DimensionMismatch(t *testing.T) {
	entries := []vector.Entry{
		{ID: 1, Embedding: []float32{1, 2, 3}},
		{ID: 2, Embedding: []float32{1, 2}},
	}

	_, err := Group(history.NewTable(nil), entries, 2, timeline.Hour, zap.NewNop())
	require.Error(t, err)
}

func TestStandardize(t *testing.T) {
	out := standardize([][]float32{{0, 5}, {2, 5}, {4, 5}})

	require.Len(t, out, 3)
	// First dimension: mean 2, population stddev sqrt(8/3).
	assert.InDelta(t, -1.2247, out[0][0], 1e-3)
	assert.InDelta(t, 0, out[1][0], 1e-9)
	assert.InDelta(t, 1.2247, out[2][0], 1e-3)
	// Zero-variance dimension stays at zero.
	for _, row := range out {
		assert.Zero(t, row[1])
	}
}

func TestKmeans_LabelsInRange(t *testing.T) {
	points := [][]float64{{0, 0}, {0, 1}, {10, 10}, {10, 11}, {20, 0}}
	labels := kmeans(points, 3)

	require.Len(t, labels, len(points))
	for _, l := range labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 3)
	}
	// Neighbors cluster together.
	assert.Equal(t, labels[0], labels[1])
	assert.Equal(t, labels[2], labels[3])
	assert.NotEqual(t, labels[0], labels[2])
}

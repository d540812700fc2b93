package cluster

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/runnerr0/retrace/internal/history"
	"github.com/runnerr0/retrace/internal/timeline"
	"github.com/runnerr0/retrace/internal/vector"
)

// DefaultK is the default number of semantic clusters.
const DefaultK = 4

// Cell is the cross of a time bucket and a cluster label. Labels are
// small integers valid only within one Group invocation; label 2 today
// bears no relation to label 2 tomorrow.
type Cell struct {
	Bucket  timeline.Bucket
	Cluster int
}

// Group partitions stored entries into k semantic clusters by their
// embeddings, joins the labels back to history rows via the URL hash,
// and buckets each cluster's rows on the timeline. Cells come back
// sorted by (bucket start, cluster label). An empty entry set yields an
// empty slice without touching the clustering algorithm.
func Group(table *history.Table, entries []vector.Entry, k int, g timeline.Granularity, logger *zap.Logger) ([]Cell, error) {
	if len(entries) == 0 {
		return []Cell{}, nil
	}
	if k <= 0 {
		k = DefaultK
	}

	dims := len(entries[0].Embedding)
	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		if len(e.Embedding) != dims {
			return nil, fmt.Errorf("entry %d: embedding has %d dimensions, want %d", e.ID, len(e.Embedding), dims)
		}
		vectors[i] = e.Embedding
	}

	labels := kmeans(standardize(vectors), k)

	labelByHash := make(map[uint64]int, len(entries))
	for i, e := range entries {
		labelByHash[e.ID] = labels[i]
	}

	// Rows grouped per cluster, preserving table order inside each.
	rowsByCluster := make(map[int][]history.VisitRecord)
	matched := 0
	for _, r := range table.Records {
		label, ok := labelByHash[r.URLHash]
		if !ok {
			continue
		}
		rowsByCluster[label] = append(rowsByCluster[label], r)
		matched++
	}
	logger.Debug("clustered entries",
		zap.Int("entries", len(entries)),
		zap.Int("matched_rows", matched),
		zap.Int("k", k))

	var cells []Cell
	for label, rows := range rowsByCluster {
		for _, b := range timeline.Bucketize(rows, g) {
			cells = append(cells, Cell{Bucket: b, Cluster: label})
		}
	}

	sort.Slice(cells, func(i, j int) bool {
		if !cells[i].Bucket.Start.Equal(cells[j].Bucket.Start) {
			return cells[i].Bucket.Start.Before(cells[j].Bucket.Start)
		}
		return cells[i].Cluster < cells[j].Cluster
	})
	if cells == nil {
		cells = []Cell{}
	}
	return cells, nil
}

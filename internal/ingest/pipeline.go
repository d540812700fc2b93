package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/runnerr0/retrace/internal/history"
	"github.com/runnerr0/retrace/internal/vector"
)

// DefaultBatchSize bounds how many documents one store call carries.
const DefaultBatchSize = 1000

// Report summarizes one pipeline run. On a partial failure the counts
// reflect what actually committed before the error.
type Report struct {
	Added   int
	Skipped int
}

// Pipeline ingests normalized history into the vector store. It only
// ever adds documents: records whose URL hash is already stored are
// skipped, never updated. Re-running after any failure is safe because
// the diff against stored IDs naturally excludes committed batches.
type Pipeline struct {
	store     vector.Store
	batchSize int
	logger    *zap.Logger
}

// NewPipeline creates a Pipeline writing to store in batches of
// batchSize (DefaultBatchSize when <= 0).
func NewPipeline(store vector.Store, batchSize int, logger *zap.Logger) *Pipeline {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{store: store, batchSize: batchSize, logger: logger}
}

// Run diffs records against the store's ID set and adds the new ones in
// sequential, independently committed batches. A batch failure aborts
// the remaining batches; the returned Report counts the documents that
// committed before the failure.
func (p *Pipeline) Run(ctx context.Context, records []history.VisitRecord) (Report, error) {
	existing, err := p.store.IDs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("fetch stored ids: %w", err)
	}

	var fresh []history.VisitRecord
	for _, r := range records {
		if _, ok := existing[r.URLHash]; !ok {
			fresh = append(fresh, r)
		}
	}

	report := Report{Skipped: len(records) - len(fresh)}
	p.logger.Info("ingest diff",
		zap.Int("total", len(records)),
		zap.Int("new", len(fresh)),
		zap.Int("already_indexed", report.Skipped))

	for start := 0; start < len(fresh); start += p.batchSize {
		end := start + p.batchSize
		if end > len(fresh) {
			end = len(fresh)
		}

		batch := make([]vector.Document, 0, end-start)
		for _, r := range fresh[start:end] {
			batch = append(batch, vector.Document{
				ID:   r.URLHash,
				Text: r.TitleDescription(),
				Meta: vector.Metadata{
					URL:             r.URL,
					Title:           r.Title,
					Timestamp:       r.Timestamp,
					VisitCount:      r.VisitCount,
					PreviewImageURL: r.PreviewImageURL,
				},
			})
		}

		if err := p.store.Add(ctx, batch); err != nil {
			return report, fmt.Errorf("add batch of %d after %d committed: %w", len(batch), report.Added, err)
		}
		report.Added += len(batch)
		p.logger.Debug("committed batch", zap.Int("size", len(batch)), zap.Int("added_so_far", report.Added))
	}

	return report, nil
}

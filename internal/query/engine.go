package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/runnerr0/retrace/internal/history"
	"github.com/runnerr0/retrace/internal/vector"
)

// DefaultTopK is how many nearest neighbors one search requests before
// the distance threshold is applied.
const DefaultTopK = 2000

// Request describes one retrieval call.
type Request struct {
	// Query is the search text. Empty means "all known history": no
	// similarity call is made and Threshold is ignored.
	Query string
	// Threshold is the inclusive upper bound on match distance.
	Threshold float32
	// TopK caps the neighbors requested from the store (DefaultTopK
	// when <= 0).
	TopK int
	// Since/Until bound the match timestamps; zero means unbounded.
	Since int64
	Until int64
}

// Engine answers similarity searches over the indexed history. Matches
// are joined back against the in-memory table, whose fields are
// authoritative; the store's metadata is only used for ranking and
// filtering.
type Engine struct {
	store  vector.Store
	table  *history.Table
	logger *zap.Logger
}

// NewEngine creates an Engine over store and table.
func NewEngine(store vector.Store, table *history.Table, logger *zap.Logger) *Engine {
	return &Engine{store: store, table: table, logger: logger}
}

// Search returns the history records matching req, in ranked order for a
// text query and table order for the baseline view. Zero matches yields
// an empty slice, never an error.
func (e *Engine) Search(ctx context.Context, req Request) ([]history.VisitRecord, error) {
	if req.Query == "" {
		return e.baseline(req), nil
	}

	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	matches, err := e.store.Query(ctx, req.Query, topK, vector.Filter{Since: req.Since, Until: req.Until})
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}

	results := make([]history.VisitRecord, 0, len(matches))
	for _, m := range matches {
		if m.Distance > req.Threshold {
			continue
		}
		record, ok := e.table.ByHash(m.ID)
		if !ok {
			// Stored point with no table row: the browsers no longer
			// remember this URL. Nothing to display for it.
			continue
		}
		results = append(results, record)
	}

	e.logger.Debug("search",
		zap.String("query", req.Query),
		zap.Int("matches", len(matches)),
		zap.Int("within_threshold", len(results)))
	return results, nil
}

// baseline returns the full table, clipped to the time window when one
// is set.
func (e *Engine) baseline(req Request) []history.VisitRecord {
	results := make([]history.VisitRecord, 0, e.table.Len())
	for _, r := range e.table.Records {
		if req.Since != 0 && r.Timestamp < req.Since {
			continue
		}
		if req.Until != 0 && r.Timestamp > req.Until {
			continue
		}
		results = append(results, r)
	}
	return results
}

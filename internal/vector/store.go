package vector

import "context"

// Metadata is the per-document payload persisted alongside the vector.
// The store's schema forbids null payload values, so every field is a
// concrete value; absent strings are stored as "".
type Metadata struct {
	URL             string
	Title           string
	Timestamp       int64
	VisitCount      int64
	PreviewImageURL string
}

// Document is one record to index: a numeric ID (the URL hash), the text
// to embed, and the payload to persist.
type Document struct {
	ID   uint64
	Text string
	Meta Metadata
}

// Match is one ranked similarity result. Distance is a dissimilarity
// score in the store's metric (cosine distance here): lower is closer.
type Match struct {
	ID       uint64
	Distance float32
	Meta     Metadata
}

// Entry is a stored point exported with its embedding, used by the
// cluster grouper. Embeddings are read back from the store, never
// recomputed.
type Entry struct {
	ID        uint64
	Embedding []float32
	Meta      Metadata
}

// Filter restricts operations to points whose timestamp lies in
// [Since, Until]. A zero bound is unbounded on that side.
type Filter struct {
	Since int64
	Until int64
}

// IsZero reports whether the filter places no constraint at all.
func (f Filter) IsZero() bool {
	return f.Since == 0 && f.Until == 0
}

// Store is the similarity-search gateway the engine is built against.
// Implementations embed document text themselves; callers never handle
// raw vectors except through Entries.
type Store interface {
	// Add embeds and upserts documents. Adding an ID that already
	// exists overwrites that point; the ingestion pipeline avoids this
	// by diffing against IDs first.
	Add(ctx context.Context, docs []Document) error

	// IDs returns the set of every point ID currently stored. This is
	// the source of truth for "already ingested".
	IDs(ctx context.Context) (map[uint64]struct{}, error)

	// Query embeds text and returns up to k nearest points, optionally
	// constrained by the timestamp filter, ordered best first.
	Query(ctx context.Context, text string, k int, f Filter) ([]Match, error)

	// Entries exports stored points with their embeddings, optionally
	// constrained by the timestamp filter.
	Entries(ctx context.Context, f Filter) ([]Entry, error)

	// Count returns the number of stored points.
	Count(ctx context.Context) (uint64, error)

	// Drop removes the whole collection and its points.
	Drop(ctx context.Context) error
}

package vector

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/runnerr0/retrace/internal/embed"
)

// scrollPageSize bounds how many points one scroll request returns.
const scrollPageSize = 4096

// QdrantStore implements Store on a Qdrant collection with cosine
// distance. Point IDs are the 61-bit URL hashes, payloads carry the
// Metadata fields.
type QdrantStore struct {
	client     *qdrant.Client
	embedder   embed.Client
	collection string
	dimensions uint64
	logger     *zap.Logger
}

// NewQdrantStore connects to Qdrant and ensures the collection and its
// timestamp index exist. Any failure here is a configuration error the
// caller should treat as fatal.
func NewQdrantStore(ctx context.Context, host string, port int, collection string, dimensions uint64, embedder embed.Client, logger *zap.Logger) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}

	s := &QdrantStore{
		client:     client,
		embedder:   embedder,
		collection: collection,
		dimensions: dimensions,
		logger:     logger,
	}

	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", s.collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}

	// Time-range filters hit this field on every constrained query.
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collection,
		FieldName:      "timestamp",
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
	})
	if err != nil {
		return fmt.Errorf("create timestamp index: %w", err)
	}

	s.logger.Info("created collection",
		zap.String("collection", s.collection),
		zap.Uint64("dimensions", s.dimensions))
	return nil
}

// Add embeds the documents' texts in one call and upserts the points.
func (s *QdrantStore) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	vectors, err := s.embedder.GetEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, d := range docs {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(d.ID),
			Vectors: qdrant.NewVectorsDense(vectors[i]),
			Payload: qdrant.NewValueMap(payloadMap(d.Meta)),
		}
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

// IDs scrolls the whole collection without payloads or vectors and
// returns the stored ID set.
func (s *QdrantStore) IDs(ctx context.Context) (map[uint64]struct{}, error) {
	ids := make(map[uint64]struct{})
	points := s.client.GetPointsClient()

	var offset *qdrant.PointId
	for {
		resp, err := points.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          qdrant.PtrOf(uint32(scrollPageSize)),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(false),
			WithVectors:    qdrant.NewWithVectors(false),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll ids: %w", err)
		}

		for _, p := range resp.GetResult() {
			ids[p.GetId().GetNum()] = struct{}{}
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			return ids, nil
		}
	}
}

// Query embeds text and runs a similarity search.
func (s *QdrantStore) Query(ctx context.Context, text string, k int, f Filter) ([]Match, error) {
	vectors, err := s.embedder.GetEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQueryDense(vectors[0]),
		Limit:          qdrant.PtrOf(uint64(k)),
		Filter:         timestampFilter(f),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, p := range results {
		matches = append(matches, Match{
			ID: p.GetId().GetNum(),
			// Qdrant reports cosine similarity; convert to distance so
			// lower is always closer on our side of the boundary.
			Distance: 1 - p.GetScore(),
			Meta:     metaFromPayload(p.GetPayload()),
		})
	}
	return matches, nil
}

// Entries scrolls stored points with vectors and payloads.
func (s *QdrantStore) Entries(ctx context.Context, f Filter) ([]Entry, error) {
	var entries []Entry
	points := s.client.GetPointsClient()

	var offset *qdrant.PointId
	for {
		resp, err := points.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          qdrant.PtrOf(uint32(scrollPageSize)),
			Offset:         offset,
			Filter:         timestampFilter(f),
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll entries: %w", err)
		}

		for _, p := range resp.GetResult() {
			entries = append(entries, Entry{
				ID:        p.GetId().GetNum(),
				Embedding: p.GetVectors().GetVector().GetData(),
				Meta:      metaFromPayload(p.GetPayload()),
			})
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			return entries, nil
		}
	}
}

// Count returns the exact number of stored points.
func (s *QdrantStore) Count(ctx context.Context) (uint64, error) {
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return n, nil
}

// Drop deletes the collection.
func (s *QdrantStore) Drop(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("delete collection %s: %w", s.collection, err)
	}
	return nil
}

// Close releases the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// payloadMap flattens Metadata into the stored payload. Values are never
// nil; empty strings stand in for absent fields.
func payloadMap(m Metadata) map[string]any {
	return map[string]any{
		"url":               m.URL,
		"title":             m.Title,
		"timestamp":         m.Timestamp,
		"visit_count":       m.VisitCount,
		"preview_image_url": m.PreviewImageURL,
	}
}

func metaFromPayload(payload map[string]*qdrant.Value) Metadata {
	return Metadata{
		URL:             payload["url"].GetStringValue(),
		Title:           payload["title"].GetStringValue(),
		Timestamp:       payload["timestamp"].GetIntegerValue(),
		VisitCount:      payload["visit_count"].GetIntegerValue(),
		PreviewImageURL: payload["preview_image_url"].GetStringValue(),
	}
}

// timestampFilter builds the range condition for f, or nil when f is
// unbounded. Single-bound filters constrain that side only.
func timestampFilter(f Filter) *qdrant.Filter {
	if f.IsZero() {
		return nil
	}

	r := &qdrant.Range{}
	if f.Since != 0 {
		r.Gte = qdrant.PtrOf(float64(f.Since))
	}
	if f.Until != 0 {
		r.Lte = qdrant.PtrOf(float64(f.Until))
	}

	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewRange("timestamp", r),
		},
	}
}

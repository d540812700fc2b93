package history

import (
	"go.uber.org/zap"
)

// Source yields visit records from one browser. Read returns the
// records, the number of rows dropped for missing titles, and an error
// only when the source exists but cannot be read.
type Source interface {
	Browser() string
	Read() ([]VisitRecord, int, error)
}

// Collect reads every source and returns the normalized, deduplicated
// corpus. A source whose history file is absent contributes nothing; a
// source that exists but fails to read aborts the collection, since a
// partial corpus would silently skew dedup and retrieval.
func Collect(logger *zap.Logger, excludeKeywords []string, sources ...Source) ([]VisitRecord, error) {
	perSource := make([][]VisitRecord, 0, len(sources))
	for _, src := range sources {
		records, dropped, err := src.Read()
		if err != nil {
			return nil, err
		}
		logger.Info("read browser history",
			zap.String("browser", src.Browser()),
			zap.Int("records", len(records)),
			zap.Int("dropped_no_title", dropped))
		perSource = append(perSource, records)
	}

	normalized := Normalize(excludeKeywords, perSource...)
	logger.Info("normalized history",
		zap.Int("records", len(normalized)))
	return normalized, nil
}

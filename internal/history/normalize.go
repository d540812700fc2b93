package history

import (
	"sort"
	"strings"
)

// Normalize merges per-browser record slices into one canonical corpus:
// sorted by timestamp ascending, deduplicated by URL keeping the most
// recent occurrence, then filtered by the keyword exclusion list.
// URLHash is (re)computed for every surviving record.
func Normalize(excludeKeywords []string, sources ...[]VisitRecord) []VisitRecord {
	var merged []VisitRecord
	for _, src := range sources {
		merged = append(merged, src...)
	}

	// Stable sort so equal timestamps keep source order; dedup below
	// then keeps the later source's row, matching last-write-wins.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})

	merged = dedupByURL(merged)
	merged = filterKeywords(merged, excludeKeywords)

	for i := range merged {
		merged[i].URLHash = URLHash(merged[i].URL)
	}
	return merged
}

// dedupByURL keeps the last occurrence of each URL in a timestamp-sorted
// slice, preserving the overall sort order of the survivors.
func dedupByURL(records []VisitRecord) []VisitRecord {
	last := make(map[string]int, len(records))
	for i, r := range records {
		last[r.URL] = i
	}
	out := records[:0]
	for i, r := range records {
		if last[r.URL] == i {
			out = append(out, r)
		}
	}
	return out
}

// filterKeywords drops records whose embedded text contains any of the
// configured keywords, case-insensitively. The filter is pure and
// order-independent; it runs after dedup so a noisy duplicate cannot
// shadow a clean one.
func filterKeywords(records []VisitRecord, keywords []string) []VisitRecord {
	if len(keywords) == 0 {
		return records
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	out := records[:0]
	for _, r := range records {
		text := strings.ToLower(r.TitleDescription())
		keep := true
		for _, kw := range lowered {
			if kw != "" && strings.Contains(text, kw) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

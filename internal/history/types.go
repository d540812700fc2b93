package history

import "time"

// DescriptionSentinel is stored when a source row has no description.
// The embedded text always has the "title:description" shape, so absent
// descriptions get a fixed placeholder instead of an empty right side.
const DescriptionSentinel = "No description"

// VisitRecord is the canonical, browser-independent shape of one
// remembered page visit after normalization.
type VisitRecord struct {
	URL             string
	Title           string
	Description     string
	Timestamp       int64 // Unix seconds, source epoch conversion already applied
	VisitCount      int64
	PreviewImageURL string
	Browser         string
	URLHash         uint64
}

// TitleDescription returns the text that gets embedded for this record.
func (r VisitRecord) TitleDescription() string {
	return r.Title + ":" + r.Description
}

// Time returns the visit time in UTC.
func (r VisitRecord) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// LocalTime returns the visit time in the process-local timezone.
// Temporal bucketing works on local time so buckets line up with the
// user's own days and weeks.
func (r VisitRecord) LocalTime() time.Time {
	return time.Unix(r.Timestamp, 0).Local()
}

// Table is the full in-memory history corpus with lookup indexes.
// Retrieval joins vector-store matches back against it, so its fields
// are authoritative over the store's metadata copies.
type Table struct {
	Records []VisitRecord
	byURL   map[string]int
	byHash  map[uint64]int
}

// NewTable builds a Table over records, indexing them by URL and URLHash.
func NewTable(records []VisitRecord) *Table {
	t := &Table{
		Records: records,
		byURL:   make(map[string]int, len(records)),
		byHash:  make(map[uint64]int, len(records)),
	}
	for i, r := range records {
		t.byURL[r.URL] = i
		t.byHash[r.URLHash] = i
	}
	return t
}

// ByURL returns the record for a URL, if present.
func (t *Table) ByURL(url string) (VisitRecord, bool) {
	i, ok := t.byURL[url]
	if !ok {
		return VisitRecord{}, false
	}
	return t.Records[i], true
}

// ByHash returns the record for a URL hash, if present.
func (t *Table) ByHash(h uint64) (VisitRecord, bool) {
	i, ok := t.byHash[h]
	if !ok {
		return VisitRecord{}, false
	}
	return t.Records[i], true
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	return len(t.Records)
}

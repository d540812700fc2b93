package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/runnerr0/retrace/internal/history"
)

// Granularity selects the calendar width of a time bucket.
type Granularity rune

const (
	Year  Granularity = 'Y'
	Month Granularity = 'M'
	Week  Granularity = 'W'
	Day   Granularity = 'D'
	Hour  Granularity = 'H'
)

// ParseGranularity maps the single-letter config form to a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "Y", "y":
		return Year, nil
	case "M":
		return Month, nil
	case "W", "w":
		return Week, nil
	case "D", "d":
		return Day, nil
	case "H", "h":
		return Hour, nil
	}
	return 0, fmt.Errorf("unknown granularity %q (want one of Y M W D H)", s)
}

// Bucket is one calendar-aligned, half-open time window and the records
// that fall inside it. URLs and Titles are parallel slices in the input
// row order.
type Bucket struct {
	Start       time.Time
	Granularity Granularity
	Count       int
	URLs        []string
	Titles      []string
}

// Label renders the bucket's display form, e.g. "2024-01" for a month
// or "2024-01-15 14:00" for an hour.
func (b Bucket) Label() string {
	switch b.Granularity {
	case Year:
		return b.Start.Format("2006")
	case Month:
		return b.Start.Format("2006-01")
	case Week:
		year, week := b.Start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Day:
		return b.Start.Format("2006-01-02")
	case Hour:
		return b.Start.Format("2006-01-02 15:04")
	}
	return b.Start.Format(time.RFC3339)
}

// Bucketize groups rows into sparse calendar buckets of the given
// granularity, keyed on each row's local visit time. Buckets come back
// ordered by start time ascending; periods with no rows produce no
// bucket. Every input row lands in exactly one bucket.
func Bucketize(rows []history.VisitRecord, g Granularity) []Bucket {
	byStart := make(map[time.Time]*Bucket)
	for _, r := range rows {
		start := Truncate(r.LocalTime(), g)
		b, ok := byStart[start]
		if !ok {
			b = &Bucket{Start: start, Granularity: g}
			byStart[start] = b
		}
		b.Count++
		b.URLs = append(b.URLs, r.URL)
		b.Titles = append(b.Titles, r.Title)
	}

	buckets := make([]Bucket, 0, len(byStart))
	for _, b := range byStart {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
	return buckets
}

// Truncate returns the start of the calendar window of granularity g
// containing t. Weeks start on Monday.
func Truncate(t time.Time, g Granularity) time.Time {
	switch g {
	case Year:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	case Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case Week:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset)
	case Day:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case Hour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	}
	return t
}

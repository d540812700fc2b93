package storage

import "time"

// Stats holds aggregate statistics about the local history cache.
type Stats struct {
	TotalRecords int64
	OldestVisit  time.Time
	NewestVisit  time.Time
	TopBrowsers  []BrowserCount
}

// BrowserCount pairs a source browser with its record count.
type BrowserCount struct {
	Browser string
	Count   int64
}

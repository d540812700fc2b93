package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Golden values pin the hash function across refactors. URLHash is a
// join key between the vector store and the in-memory table, so any
// change to its output silently orphans every already-ingested point.
func TestURLHash_GoldenValues(t *testing.T) {
	tests := []struct {
		url  string
		want uint64
	}{
		{"", 860922984064492331},
		{"https://example.com", 250841859388227767},
		{"https://example.com/", 903888511234722068},
		{"https://go.dev/blog/slices", 1946777349683772221},
		{"https://news.ycombinator.com/item?id=1", 59075758744742282},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, URLHash(tc.url), "hash for %q", tc.url)
	}
}

func TestURLHash_Deterministic(t *testing.T) {
	urls := []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://пример.рф/путь",
	}
	for _, u := range urls {
		first := URLHash(u)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, URLHash(u))
		}
	}
}

func TestURLHash_WithinRange(t *testing.T) {
	urls := []string{
		"", "a", "https://example.com",
		"https://example.com/very/long/path/with/lots/of/segments?and=query&params=too",
	}
	for _, u := range urls {
		assert.Less(t, URLHash(u), uint64(1)<<61, "hash for %q", u)
	}
}

func TestURLHash_TrailingSlashDistinct(t *testing.T) {
	// The hash carries identity only; no URL canonicalization happens here.
	assert.NotEqual(t, URLHash("https://example.com"), URLHash("https://example.com/"))
}

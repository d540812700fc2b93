package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version       string             `json:"version"`
	DatabasePath  string             `json:"database_path"`
	TotalRecords  int64              `json:"total_records"`
	IndexedPoints uint64             `json:"indexed_points"`
	OldestVisit   string             `json:"oldest_visit,omitempty"`
	NewestVisit   string             `json:"newest_visit,omitempty"`
	TopBrowsers   []browserCountJSON `json:"top_browsers"`
}

type browserCountJSON struct {
	Browser string `json:"browser"`
	Count   int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, c.globals)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	cache, db, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer cache.Close()

	ctx := context.Background()
	stats, err := cache.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	store, err := openVector(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	points, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count indexed points: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		out := statusJSON{
			Version:       c.version,
			DatabasePath:  dbPath,
			TotalRecords:  stats.TotalRecords,
			IndexedPoints: points,
		}
		if stats.TotalRecords > 0 {
			out.OldestVisit = stats.OldestVisit.Format("2006-01-02")
			out.NewestVisit = stats.NewestVisit.Format("2006-01-02")
		}
		for _, bc := range stats.TopBrowsers {
			out.TopBrowsers = append(out.TopBrowsers, browserCountJSON{Browser: bc.Browser, Count: bc.Count})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("retrace %s\n\n", c.version)
	fmt.Printf("Cache:          %s\n", dbPath)
	fmt.Printf("Cached records: %d\n", stats.TotalRecords)
	fmt.Printf("Indexed points: %d\n", points)
	if stats.TotalRecords > 0 {
		fmt.Printf("Visit range:    %s – %s\n",
			stats.OldestVisit.Format("2006-01-02"),
			stats.NewestVisit.Format("2006-01-02"))
	}
	if len(stats.TopBrowsers) > 0 {
		fmt.Println("\nBy browser:")
		for _, bc := range stats.TopBrowsers {
			fmt.Printf("  %-10s %d\n", bc.Browser, bc.Count)
		}
	}
	return nil
}

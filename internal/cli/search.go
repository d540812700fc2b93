package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/runnerr0/retrace/internal/config"
	"github.com/runnerr0/retrace/internal/history"
	"github.com/runnerr0/retrace/internal/query"
	"github.com/runnerr0/retrace/internal/timeline"
	"github.com/runnerr0/retrace/internal/vector"
)

// dataPoint is the JSON form of one time bucket.
type dataPoint struct {
	Bucket  string   `json:"bucket"`
	Count   int      `json:"count"`
	URLs    []string `json:"urls"`
	Titles  []string `json:"titles"`
	Cluster *int     `json:"cluster,omitempty"`
}

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
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
	records, err := cache.All(ctx)
	if err != nil {
		return fmt.Errorf("load history cache: %w", err)
	}
	table := history.NewTable(records)

	store, err := openVector(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	return c.executeWith(ctx, cfg, table, store, logger, args)
}

// executeWith runs the search against provided dependencies (for testing).
func (c *SearchCommand) executeWith(ctx context.Context, cfg *config.Config, table *history.Table, store vector.Store, logger *zap.Logger, args []string) error {
	text := c.Query
	if text == "" && len(args) > 0 {
		text = strings.Join(args, " ")
	}

	threshold := c.Threshold
	if threshold < 0 {
		threshold = cfg.Search.DistanceThreshold
	}
	topK := c.TopK
	if topK <= 0 {
		topK = cfg.Search.TopK
	}
	binLetter := c.Bin
	if binLetter == "" {
		binLetter = cfg.Search.Granularity
	}
	bin, err := timeline.ParseGranularity(binLetter)
	if err != nil {
		return err
	}

	now := time.Now()
	var since, until int64
	if c.Since != "" {
		dur, err := parseDuration(c.Since)
		if err != nil {
			return fmt.Errorf("invalid --since value %q: %w", c.Since, err)
		}
		since = now.Add(-dur).Unix()
	}
	if c.Until != "" {
		dur, err := parseDuration(c.Until)
		if err != nil {
			return fmt.Errorf("invalid --until value %q: %w", c.Until, err)
		}
		until = now.Add(-dur).Unix()
	}

	engine := query.NewEngine(store, table, logger)
	results, err := engine.Search(ctx, query.Request{
		Query:     text,
		Threshold: threshold,
		TopK:      topK,
		Since:     since,
		Until:     until,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	buckets := timeline.Bucketize(results, bin)

	if c.globals != nil && c.globals.JSON {
		if err := printBucketsJSON(buckets); err != nil {
			return err
		}
	} else {
		printBucketsHuman(text, results, buckets)
	}

	if c.Open {
		urls := make([]string, 0, len(results))
		for _, r := range results {
			urls = append(urls, r.URL)
		}
		return openURLs(urls)
	}
	return nil
}

func printBucketsJSON(buckets []timeline.Bucket) error {
	points := make([]dataPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, dataPoint{
			Bucket: b.Label(),
			Count:  b.Count,
			URLs:   b.URLs,
			Titles: b.Titles,
		})
	}
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(points)
}

func printBucketsHuman(text string, results []history.VisitRecord, buckets []timeline.Bucket) {
	if len(results) == 0 {
		if text != "" {
			fmt.Printf("No matches for %q\n", text)
		} else {
			fmt.Println("No history indexed yet.")
		}
		return
	}

	matchWord := "matches"
	if len(results) == 1 {
		matchWord = "match"
	}
	if text != "" {
		fmt.Printf("%d %s for %q across %d buckets\n\n", len(results), matchWord, text, len(buckets))
	} else {
		fmt.Printf("%d records across %d buckets\n\n", len(results), len(buckets))
	}

	for _, b := range buckets {
		fmt.Printf("%s  (%d)\n", b.Label(), b.Count)
		for i, title := range b.Titles {
			if i == 5 {
				fmt.Printf("   … %d more\n", b.Count-i)
				break
			}
			fmt.Printf("   %s\n", title)
			fmt.Printf("   %s\n", b.URLs[i])
		}
		fmt.Println()
	}
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/runnerr0/retrace/internal/cluster"
	"github.com/runnerr0/retrace/internal/config"
	"github.com/runnerr0/retrace/internal/history"
	"github.com/runnerr0/retrace/internal/query"
	"github.com/runnerr0/retrace/internal/timeline"
	"github.com/runnerr0/retrace/internal/vector"
)

// Execute implements the go-flags Commander interface for ClustersCommand.
func (c *ClustersCommand) Execute(args []string) error {
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

// executeWith runs clustering against provided dependencies (for testing).
func (c *ClustersCommand) executeWith(ctx context.Context, cfg *config.Config, table *history.Table, store vector.Store, logger *zap.Logger, args []string) error {
	text := c.Query
	if text == "" && len(args) > 0 {
		text = strings.Join(args, " ")
	}

	k := c.K
	if k <= 0 {
		k = cfg.Cluster.K
	}
	binLetter := c.Bin
	if binLetter == "" {
		binLetter = cfg.Cluster.Granularity
	}
	bin, err := timeline.ParseGranularity(binLetter)
	if err != nil {
		return err
	}

	lookback := time.Duration(cfg.Cluster.LookbackHours) * time.Hour
	if c.Lookback != "" {
		lookback, err = parseDuration(c.Lookback)
		if err != nil {
			return fmt.Errorf("invalid --lookback value %q: %w", c.Lookback, err)
		}
	}
	since := time.Now().Add(-lookback).Unix()

	entries, err := store.Entries(ctx, vector.Filter{Since: since})
	if err != nil {
		return fmt.Errorf("load stored embeddings: %w", err)
	}

	// With a query, only matching documents get clustered.
	if text != "" {
		threshold := c.Threshold
		if threshold < 0 {
			threshold = cfg.Cluster.DistanceThreshold
		}
		engine := query.NewEngine(store, table, logger)
		matches, err := engine.Search(ctx, query.Request{
			Query:     text,
			Threshold: threshold,
			TopK:      cfg.Search.TopK,
			Since:     since,
		})
		if err != nil {
			return fmt.Errorf("search for cluster candidates: %w", err)
		}
		keep := make(map[uint64]struct{}, len(matches))
		for _, m := range matches {
			keep[m.URLHash] = struct{}{}
		}
		kept := entries[:0]
		for _, e := range entries {
			if _, ok := keep[e.ID]; ok {
				kept = append(kept, e)
			}
		}
		entries = kept
	}

	cells, err := cluster.Group(table, entries, k, bin, logger)
	if err != nil {
		return fmt.Errorf("cluster failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printCellsJSON(cells)
	}
	printCellsHuman(cells, lookback)
	return nil
}

func printCellsJSON(cells []cluster.Cell) error {
	points := make([]dataPoint, 0, len(cells))
	for _, cell := range cells {
		label := cell.Cluster
		points = append(points, dataPoint{
			Bucket:  cell.Bucket.Label(),
			Count:   cell.Bucket.Count,
			URLs:    cell.Bucket.URLs,
			Titles:  cell.Bucket.Titles,
			Cluster: &label,
		})
	}
	return json.NewEncoder(os.Stdout).Encode(points)
}

func printCellsHuman(cells []cluster.Cell, lookback time.Duration) {
	if len(cells) == 0 {
		fmt.Printf("Nothing indexed in the last %s.\n", lookback)
		return
	}

	for _, cell := range cells {
		fmt.Printf("%s  cluster %d  (%d)\n", cell.Bucket.Label(), cell.Cluster, cell.Bucket.Count)
		for i, title := range cell.Bucket.Titles {
			if i == 3 {
				fmt.Printf("   … %d more\n", cell.Bucket.Count-i)
				break
			}
			fmt.Printf("   %s\n", title)
		}
	}
}

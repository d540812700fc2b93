package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/runnerr0/retrace/internal/config"
	"github.com/runnerr0/retrace/internal/history"
	"github.com/runnerr0/retrace/internal/ingest"
)

// Execute implements the go-flags Commander interface for IngestCommand.
func (c *IngestCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, c.globals)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	records, err := collectHistory(cfg, logger)
	if err != nil {
		return err
	}

	if c.DryRun {
		fmt.Printf("Would consider %d normalized records for indexing (dry run).\n", len(records))
		return nil
	}

	cache, db, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer cache.Close()

	ctx := context.Background()
	if err := cache.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("refresh cache: %w", err)
	}

	store, err := openVector(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline := ingest.NewPipeline(store, cfg.Ingest.BatchSize, logger)
	report, err := pipeline.Run(ctx, records)
	if err != nil {
		// Committed batches stay committed; the next run picks up the rest.
		return fmt.Errorf("ingest stopped after %d added: %w", report.Added, err)
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]interface{}{
			"records": len(records),
			"added":   report.Added,
			"skipped": report.Skipped,
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	fmt.Printf("Indexed %d new documents (%d already indexed, %d records total).\n",
		report.Added, report.Skipped, len(records))
	return nil
}

// collectHistory reads every configured browser source and returns the
// normalized corpus.
func collectHistory(cfg *config.Config, logger *zap.Logger) ([]history.VisitRecord, error) {
	snapDir, err := config.ExpandPath(cfg.Sources.SnapshotDir)
	if err != nil {
		return nil, err
	}
	ffPath, err := config.ExpandPath(cfg.Sources.FirefoxPath)
	if err != nil {
		return nil, err
	}

	sources := []history.Source{
		history.FirefoxSource{Path: ffPath, WorkDir: snapDir},
	}
	for _, p := range cfg.Sources.Chromium {
		path, perr := config.ExpandPath(p.Path)
		if perr != nil {
			return nil, perr
		}
		sources = append(sources, history.ChromiumSource{
			Name:    p.Name,
			Path:    path,
			WorkDir: snapDir,
		})
	}

	return history.Collect(logger, cfg.Filter.ExcludeKeywords, sources...)
}

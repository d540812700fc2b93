package cli

import (
	"database/sql"

	"github.com/runnerr0/retrace/internal/vector"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// IngestCommand — read browser histories, normalize, index new records.
type IngestCommand struct {
	DryRun bool `long:"dry-run" description:"Report what would be indexed without writing"`

	globals *GlobalFlags
	version string
}

// SearchCommand — semantic search over indexed history, bucketed on the
// timeline.
type SearchCommand struct {
	Query     string  `long:"query" short:"q" description:"Search text (also accepted as positional args; empty shows all history)"`
	Threshold float32 `long:"threshold" description:"Maximum embedding distance for a match (inclusive)" default:"-1"`
	TopK      int     `long:"top" description:"Neighbors to request before threshold filtering" default:"0"`
	Since     string  `long:"since" description:"Only visits newer than duration (e.g., 7d, 24h, 2w)"`
	Until     string  `long:"until" description:"Only visits older than duration"`
	Bin       string  `long:"bin" description:"Time bucket granularity: Y M W D H" default:""`
	Open      bool    `long:"open" description:"Open every matched URL in the default browser"`

	globals *GlobalFlags
	version string
}

// ClustersCommand — partition recent history into semantic clusters on
// the timeline.
type ClustersCommand struct {
	Query     string  `long:"query" short:"q" description:"Restrict clustering to matches for this text (empty clusters everything in the lookback)"`
	Threshold float32 `long:"threshold" description:"Maximum embedding distance for a query match (inclusive)" default:"-1"`
	K         int     `long:"k" short:"k" description:"Number of clusters" default:"0"`
	Lookback  string  `long:"lookback" description:"How far back to cluster (e.g., 24h, 7d)"`
	Bin       string  `long:"bin" description:"Time bucket granularity: Y M W D H" default:""`

	globals *GlobalFlags
	version string
}

// StatusCommand — show cache statistics and index health.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// OpenCommand — open the given URLs in the default browser.
type OpenCommand struct {
	URLs []string `long:"url" description:"URL to open (repeatable)"`

	globals *GlobalFlags
	version string
}

// PurgeCommand — delete the vector collection and the local cache.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip the confirmation prompt"`

	globals *GlobalFlags
	version string
	db      *sql.DB      // injectable for testing; nil means open default DB
	vec     vector.Store // injectable for testing; nil means connect per config
}

package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Ingest   *IngestCommand
	Search   *SearchCommand
	Clusters *ClustersCommand
	Status   *StatusCommand
	Open     *OpenCommand
	Purge    *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "retrace"
	parser.LongDescription = "Semantic, time-aware search and clustering over your own browsing history."

	cmds := &commands{
		Ingest:   &IngestCommand{globals: &globals, version: version},
		Search:   &SearchCommand{globals: &globals, version: version},
		Clusters: &ClustersCommand{globals: &globals, version: version},
		Status:   &StatusCommand{globals: &globals, version: version},
		Open:     &OpenCommand{globals: &globals, version: version},
		Purge:    &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("ingest", "Index new browser history", "Read browser histories, normalize them, and index records not seen before.", cmds.Ingest)
	parser.AddCommand("search", "Search indexed history", "Semantic search over indexed history, bucketed on the timeline.", cmds.Search)
	parser.AddCommand("clusters", "Cluster recent history", "Partition recent history into semantic clusters on the timeline.", cmds.Clusters)
	parser.AddCommand("status", "Show cache and index statistics", "Show local cache statistics and vector index point count.", cmds.Status)
	parser.AddCommand("open", "Open URLs in the browser", "Open the given URLs in the default browser.", cmds.Open)
	parser.AddCommand("purge", "Delete ALL Retrace data", "Delete the vector collection and the local cache. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the Retrace CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the
// matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand,
	// but --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("retrace %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}

package cli

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/retrace/internal/storage"
	"github.com/runnerr0/retrace/internal/vector"
)

// setDB allows tests to inject a database connection.
func (c *PurgeCommand) setDB(db *sql.DB) {
	c.db = db
}

// setVector allows tests to inject a vector store.
func (c *PurgeCommand) setVector(v vector.Store) {
	c.vec = v
}

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	// Confirmation prompt unless --force
	if !c.Force {
		fmt.Println("⚠ WARNING: This will permanently delete ALL Retrace data.")
		fmt.Println("  - The vector collection and every embedding in it")
		fmt.Println("  - The local history cache")
		fmt.Println()
		fmt.Println("This action cannot be undone.")
		fmt.Println()
		fmt.Print(`Type "PURGE" to confirm: `)

		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		input := strings.TrimSpace(scanner.Text())
		if input != "PURGE" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	ctx := context.Background()

	// Drop the vector collection first; the cache can rebuild it, not
	// the other way around.
	vec := c.vec
	if vec == nil {
		cfg, cerr := loadConfig(c.globals)
		if cerr != nil {
			return cerr
		}
		logger, lerr := newLogger(cfg, c.globals)
		if lerr != nil {
			return lerr
		}
		defer logger.Sync() //nolint:errcheck
		qs, verr := openVector(ctx, cfg, logger)
		if verr != nil {
			return verr
		}
		defer qs.Close()
		vec = qs
	}
	if err := vec.Drop(ctx); err != nil {
		return fmt.Errorf("drop vector collection: %w", err)
	}

	// Open or use injected DB
	db := c.db
	if db == nil {
		cfg, cerr := loadConfig(c.globals)
		if cerr != nil {
			return cerr
		}
		dbPath, pathErr := cfg.DatabasePath()
		if pathErr != nil {
			return fmt.Errorf("resolve db path: %w", pathErr)
		}
		var err error
		db, err = sql.Open("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		runner := storage.NewMigrationRunner(db)
		if err := runner.Run(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	if err := store.PurgeAll(ctx); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	// Output
	if c.globals.JSON {
		out := map[string]interface{}{
			"purged":  true,
			"message": "all data deleted",
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	fmt.Println("Purged all data. Retrace is empty.")
	return nil
}

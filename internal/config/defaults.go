package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultConfig returns a Config populated with all default values.
// Browser history paths default to the standard locations for the
// current platform.
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			FirefoxPath: defaultFirefoxPath(),
			Chromium:    defaultChromiumProfiles(),
			SnapshotDir: "~/.config/retrace/snapshots",
		},
		Vector: VectorConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "browser_history",
			Dimensions: 384,
		},
		Embedding: EmbeddingConfig{
			URL:   "http://localhost:8080",
			Model: "all-MiniLM-L6-v2",
		},
		Storage: StorageConfig{
			Path:       "~/.config/retrace",
			SQLiteFile: "retrace.db",
		},
		Ingest: IngestConfig{
			BatchSize: 1000,
			Policy:    "skip",
		},
		Search: SearchConfig{
			TopK:              2000,
			DistanceThreshold: 0.5,
			Granularity:       "M",
		},
		Cluster: ClusterConfig{
			K:                 4,
			LookbackHours:     24,
			Granularity:       "H",
			DistanceThreshold: 1.2,
		},
		Filter: FilterConfig{
			ExcludeKeywords: DefaultExcludeKeywords(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DatabasePath returns the expanded path of the local history cache.
func (c *Config) DatabasePath() (string, error) {
	dir, err := ExpandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

func home() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return h
}

func defaultFirefoxPath() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home(), "Library", "Application Support", "Firefox", "Profiles", "default-release", "places.sqlite")
	default:
		return filepath.Join(home(), ".mozilla", "firefox", "default-release", "places.sqlite")
	}
}

func defaultChromiumProfiles() []ChromiumProfile {
	switch runtime.GOOS {
	case "darwin":
		base := filepath.Join(home(), "Library", "Application Support")
		return []ChromiumProfile{
			{Name: "Chrome", Path: filepath.Join(base, "Google", "Chrome", "Default", "History")},
			{Name: "Brave", Path: filepath.Join(base, "BraveSoftware", "Brave-Browser", "Default", "History")},
			{Name: "Arc", Path: filepath.Join(base, "Arc", "User Data", "Default", "History")},
		}
	default:
		base := filepath.Join(home(), ".config")
		return []ChromiumProfile{
			{Name: "Chrome", Path: filepath.Join(base, "google-chrome", "Default", "History")},
			{Name: "Brave", Path: filepath.Join(base, "BraveSoftware", "Brave-Browser", "Default", "History")},
		}
	}
}

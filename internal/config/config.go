package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/retrace/config.yaml"

// Config holds all Retrace configuration.
type Config struct {
	Sources   SourcesConfig   `yaml:"sources"`
	Vector    VectorConfig    `yaml:"vector"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Storage   StorageConfig   `yaml:"storage"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Search    SearchConfig    `yaml:"search"`
	Cluster   ClusterConfig   `yaml:"cluster"`
	Filter    FilterConfig    `yaml:"filter"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ChromiumProfile names one Chromium-family history database.
type ChromiumProfile struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type SourcesConfig struct {
	FirefoxPath string            `yaml:"firefox_path"`
	Chromium    []ChromiumProfile `yaml:"chromium"`
	SnapshotDir string            `yaml:"snapshot_dir"`
}

type VectorConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
	Dimensions uint64 `yaml:"dimensions"`
}

type EmbeddingConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	SQLiteFile string `yaml:"sqlite_file"`
}

type IngestConfig struct {
	BatchSize int `yaml:"batch_size"`
	// Policy is how re-encountered URLs are treated. Only "skip" is
	// implemented: an already-stored document is never re-embedded or
	// updated, even if its title changed upstream.
	Policy string `yaml:"policy"`
}

type SearchConfig struct {
	TopK              int     `yaml:"top_k"`
	DistanceThreshold float32 `yaml:"distance_threshold"`
	Granularity       string  `yaml:"granularity"`
}

type ClusterConfig struct {
	K             int    `yaml:"k"`
	LookbackHours int    `yaml:"lookback_hours"`
	Granularity   string `yaml:"granularity"`
	// DistanceThreshold bounds query matches when clusters are computed
	// over a search instead of the whole lookback window. Looser than
	// the search default: a cluster view wants recall.
	DistanceThreshold float32 `yaml:"distance_threshold"`
}

type FilterConfig struct {
	ExcludeKeywords []string `yaml:"exclude_keywords"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := ExpandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}

// Package config handles global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/paperbase/config.yml.
type GlobalConfig struct {
	DataDir             string  `yaml:"data_dir,omitempty"`
	S2APIKey            string  `yaml:"s2_api_key,omitempty"`
	CrossrefMailto      string  `yaml:"crossref_mailto,omitempty"`
	SimilarityThreshold float64 `yaml:"similarity_threshold,omitempty"`
	MaxResults          int     `yaml:"max_results,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "paperbase"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// PapersFile is the JSONL library file under the data directory.
	PapersFile = "papers.jsonl"
	// DBFile is the SQLite search index under the data directory.
	DBFile = "papers.db"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/paperbase/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.DataDir != "" {
		cfg.DataDir = ExpandTilde(cfg.DataDir)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// Save writes the config file, creating its directory if needed, and
// refreshes the cache.
func (c *GlobalConfig) Save() error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}

	globalConfigCache = c
	return nil
}

// GetS2APIKey returns the Semantic Scholar API key. The S2_API_KEY
// environment variable takes precedence over the config file.
func GetS2APIKey() string {
	if key := os.Getenv("S2_API_KEY"); key != "" {
		return key
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.S2APIKey
}

// GetCrossrefMailto returns the Crossref polite-pool contact address.
func GetCrossrefMailto() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.CrossrefMailto
}

// GetSimilarityThreshold returns the configured title similarity
// threshold, or zero if unset so callers can apply their default.
func GetSimilarityThreshold() float64 {
	cfg, _ := LoadGlobalConfig()
	return cfg.SimilarityThreshold
}

// GetMaxResults returns the configured per-source result cap, or zero
// if unset.
func GetMaxResults() int {
	cfg, _ := LoadGlobalConfig()
	return cfg.MaxResults
}

// GetDataDir returns the library data directory. Defaults to
// ~/.local/share/paperbase, respecting XDG_DATA_HOME.
func GetDataDir() string {
	cfg, _ := LoadGlobalConfig()
	if cfg.DataDir != "" {
		return cfg.DataDir
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, GlobalConfigDir)
}

// PapersPath returns the path to papers.jsonl under the data directory.
func PapersPath() string {
	return filepath.Join(GetDataDir(), PapersFile)
}

// DBPath returns the path to the SQLite index under the data directory.
func DBPath() string {
	return filepath.Join(GetDataDir(), DBFile)
}

// ExpandTilde expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}

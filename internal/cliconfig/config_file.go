package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ServiceURL     string `toml:"service_url"`
	AuthKey        string `toml:"auth_key"`
	Concurrency    int    `toml:"concurrency"`
	Actions        int    `toml:"actions"`
	MaxVolumeBytes int    `toml:"max_volume_bytes"`
	DrainBudget    string `toml:"drain_budget"`
	HTTPTimeout    string `toml:"http_timeout"`
	SpoolDir       string `toml:"spool_dir"`
	FlushInterval  string `toml:"flush_interval"`
	DefaultIndex   string `toml:"default_index"`
	DefaultRouting string `toml:"default_routing"`
	Replication    string `toml:"replication"`
	Consistency    string `toml:"consistency"`
	Threaded       *bool  `toml:"threaded"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.bulkship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".bulkship", "config.toml")
	}
	return ""
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("spool-dir", fc.SpoolDir, &cfg.SpoolDir)
	s.setString("default-index", fc.DefaultIndex, &cfg.DefaultIndex)
	s.setString("default-routing", fc.DefaultRouting, &cfg.DefaultRouting)
	s.setString("replication", fc.Replication, &cfg.Replication)
	s.setString("consistency", fc.Consistency, &cfg.Consistency)

	s.setInt("concurrency", fc.Concurrency, &cfg.Concurrency)
	s.setInt("actions", fc.Actions, &cfg.Actions)
	s.setInt("max-volume", fc.MaxVolumeBytes, &cfg.MaxVolumeBytes)

	if err := s.setDuration("drain-budget", fc.DrainBudget, &cfg.DrainBudget); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-interval", fc.FlushInterval, &cfg.FlushInterval); err != nil {
		return err
	}

	s.setBool("threaded", fc.Threaded, &cfg.Threaded)

	return nil
}

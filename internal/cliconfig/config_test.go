package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.DefaultIndex = "logs"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServiceURL != DefaultServiceURL {
		t.Errorf("ServiceURL = %s, want %s", cfg.ServiceURL, DefaultServiceURL)
	}
	if cfg.Actions != 1000 {
		t.Errorf("Actions = %d, want 1000", cfg.Actions)
	}
	if cfg.MaxVolumeBytes != 5<<20 {
		t.Errorf("MaxVolumeBytes = %d, want %d", cfg.MaxVolumeBytes, 5<<20)
	}
	if cfg.DrainBudget != 60*time.Second {
		t.Errorf("DrainBudget = %v, want 60s", cfg.DrainBudget)
	}
}

func TestValidateRequiresDefaultIndex(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted config without a default index")
	}
}

func TestValidateTrimsTrailingSlash(t *testing.T) {
	cfg := validConfig()
	cfg.ServiceURL = "http://cluster:9200/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if cfg.ServiceURL != "http://cluster:9200" {
		t.Errorf("ServiceURL = %s, want trailing slash removed", cfg.ServiceURL)
	}
}

func TestValidateRestoresEmptyServiceURL(t *testing.T) {
	cfg := validConfig()
	cfg.ServiceURL = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if cfg.ServiceURL != DefaultServiceURL {
		t.Errorf("ServiceURL = %s, want %s", cfg.ServiceURL, DefaultServiceURL)
	}
}

func TestValidateRejectsNonPositiveDurations(t *testing.T) {
	cfg := validConfig()
	cfg.HTTPTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted zero HTTP timeout")
	}

	cfg = validConfig()
	cfg.FlushInterval = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted negative flush interval")
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("BULKSHIP_SERVICE_URL", "http://env:9200")
	t.Setenv("BULKSHIP_AUTH_KEY", "env-key")
	t.Setenv("BULKSHIP_CONCURRENCY", "12")
	t.Setenv("BULKSHIP_ACTIONS", "-1")
	t.Setenv("BULKSHIP_DRAIN_BUDGET", "90s")
	t.Setenv("BULKSHIP_DEFAULT_INDEX", "envindex")
	t.Setenv("BULKSHIP_THREADED", "true")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig returned error: %v", err)
	}

	if cfg.ServiceURL != "http://env:9200" {
		t.Errorf("ServiceURL = %s, want http://env:9200", cfg.ServiceURL)
	}
	if cfg.AuthKey != "env-key" {
		t.Errorf("AuthKey = %s, want env-key", cfg.AuthKey)
	}
	if cfg.Concurrency != 12 {
		t.Errorf("Concurrency = %d, want 12", cfg.Concurrency)
	}
	// Negative values pass through; they disable the threshold downstream.
	if cfg.Actions != -1 {
		t.Errorf("Actions = %d, want -1", cfg.Actions)
	}
	if cfg.DrainBudget != 90*time.Second {
		t.Errorf("DrainBudget = %v, want 90s", cfg.DrainBudget)
	}
	if cfg.DefaultIndex != "envindex" {
		t.Errorf("DefaultIndex = %s, want envindex", cfg.DefaultIndex)
	}
	if !cfg.Threaded {
		t.Error("Threaded = false, want true")
	}
}

func TestApplyEnvConfigRespectsChangedFlags(t *testing.T) {
	t.Setenv("BULKSHIP_SERVICE_URL", "http://env:9200")
	t.Setenv("BULKSHIP_CONCURRENCY", "12")

	cfg := DefaultConfig()
	cfg.ServiceURL = "http://flag:9200"
	cfg.Concurrency = 3

	changed := map[string]bool{"service-url": true, "concurrency": true}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig returned error: %v", err)
	}

	if cfg.ServiceURL != "http://flag:9200" {
		t.Errorf("ServiceURL = %s, flag value was overridden", cfg.ServiceURL)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency = %d, flag value was overridden", cfg.Concurrency)
	}
}

func TestApplyEnvConfigInvalidValues(t *testing.T) {
	t.Setenv("BULKSHIP_CONCURRENCY", "not-a-number")
	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Error("ApplyEnvConfig accepted a non-numeric concurrency")
	}

	os.Unsetenv("BULKSHIP_CONCURRENCY")
	t.Setenv("BULKSHIP_DRAIN_BUDGET", "ninety seconds")
	cfg = DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Error("ApplyEnvConfig accepted a malformed duration")
	}
}

func TestLoadAndApplyFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
service_url = "http://file:9200"
auth_key = "file-key"
concurrency = 6
actions = 250
drain_budget = "45s"
default_index = "fileindex"
threaded = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig returned error: %v", err)
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig returned error: %v", err)
	}

	if cfg.ServiceURL != "http://file:9200" {
		t.Errorf("ServiceURL = %s, want http://file:9200", cfg.ServiceURL)
	}
	if cfg.AuthKey != "file-key" {
		t.Errorf("AuthKey = %s, want file-key", cfg.AuthKey)
	}
	if cfg.Concurrency != 6 {
		t.Errorf("Concurrency = %d, want 6", cfg.Concurrency)
	}
	if cfg.Actions != 250 {
		t.Errorf("Actions = %d, want 250", cfg.Actions)
	}
	if cfg.DrainBudget != 45*time.Second {
		t.Errorf("DrainBudget = %v, want 45s", cfg.DrainBudget)
	}
	if cfg.DefaultIndex != "fileindex" {
		t.Errorf("DefaultIndex = %s, want fileindex", cfg.DefaultIndex)
	}
	if !cfg.Threaded {
		t.Error("Threaded = false, want true")
	}
}

func TestApplyFileConfigRespectsChangedFlags(t *testing.T) {
	fc := FileConfig{ServiceURL: "http://file:9200", Actions: 250}

	cfg := DefaultConfig()
	cfg.ServiceURL = "http://flag:9200"

	changed := map[string]bool{"service-url": true}
	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig returned error: %v", err)
	}

	if cfg.ServiceURL != "http://flag:9200" {
		t.Errorf("ServiceURL = %s, flag value was overridden", cfg.ServiceURL)
	}
	if cfg.Actions != 250 {
		t.Errorf("Actions = %d, want file value 250", cfg.Actions)
	}
}

func TestApplyFileConfigBadDuration(t *testing.T) {
	fc := FileConfig{DrainBudget: "soon"}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err == nil {
		t.Error("ApplyFileConfig accepted a malformed duration")
	}
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("LoadFileConfig returned nil error for a missing file")
	}
}

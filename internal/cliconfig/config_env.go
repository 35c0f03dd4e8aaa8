package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (BULKSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-url", os.Getenv("BULKSHIP_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv("BULKSHIP_AUTH_KEY"), &cfg.AuthKey)
	s.setString("spool-dir", os.Getenv("BULKSHIP_SPOOL_DIR"), &cfg.SpoolDir)
	s.setString("default-index", os.Getenv("BULKSHIP_DEFAULT_INDEX"), &cfg.DefaultIndex)
	s.setString("default-routing", os.Getenv("BULKSHIP_DEFAULT_ROUTING"), &cfg.DefaultRouting)
	s.setString("replication", os.Getenv("BULKSHIP_REPLICATION"), &cfg.Replication)
	s.setString("consistency", os.Getenv("BULKSHIP_CONSISTENCY"), &cfg.Consistency)

	if err := s.setIntFromString("concurrency", os.Getenv("BULKSHIP_CONCURRENCY"), &cfg.Concurrency); err != nil {
		return err
	}
	if err := s.setIntFromString("actions", os.Getenv("BULKSHIP_ACTIONS"), &cfg.Actions); err != nil {
		return err
	}
	if err := s.setIntFromString("max-volume", os.Getenv("BULKSHIP_MAX_VOLUME_BYTES"), &cfg.MaxVolumeBytes); err != nil {
		return err
	}

	if err := s.setDuration("drain-budget", os.Getenv("BULKSHIP_DRAIN_BUDGET"), &cfg.DrainBudget); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("BULKSHIP_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("flush-interval", os.Getenv("BULKSHIP_FLUSH_INTERVAL"), &cfg.FlushInterval); err != nil {
		return err
	}

	s.setBoolFromString("threaded", os.Getenv("BULKSHIP_THREADED"), &cfg.Threaded)

	return nil
}

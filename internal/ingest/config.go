package ingest

import (
	"runtime"
	"time"

	"github.com/bft-labs/bulkship/internal/domain"
)

// Default threshold and drain values, applied by DefaultConfig.
const (
	// DefaultActions is the default action-count flush threshold.
	DefaultActions = 1000

	// DefaultMaxVolumeBytes is the default byte-volume flush threshold (5 MB).
	DefaultMaxVolumeBytes = 5 << 20

	// DefaultDrainBudget is the default time Close waits for in-flight
	// batches to complete.
	DefaultDrainBudget = 60 * time.Second

	// MaxConcurrency caps the number of simultaneously in-flight batches
	// regardless of configuration.
	MaxConcurrency = 256
)

// Config controls batching thresholds and concurrency for a Processor.
//
// No value is ever rejected: out-of-range inputs are clamped or defaulted by
// the constructor. Start from DefaultConfig and override fields as needed;
// setting Actions or MaxVolumeBytes to zero (or negative) disables that
// flush trigger entirely.
type Config struct {
	// Concurrency is the maximum number of batches in flight at once.
	// Zero selects 4x the available parallelism; negative values take
	// their absolute value. The result is clamped to MaxConcurrency.
	Concurrency int

	// Actions is the action-count flush threshold. When the buffer reaches
	// this many operations, exactly Actions of the oldest operations are
	// dispatched. Zero or negative disables count-based flushing.
	Actions int

	// MaxVolumeBytes is the byte-volume flush threshold. When the buffer's
	// estimated size reaches it, the entire buffer is dispatched. Zero or
	// negative disables size-based flushing.
	MaxVolumeBytes int

	// DrainBudget is how long Close waits for outstanding batches.
	// Zero selects DefaultDrainBudget.
	DrainBudget time.Duration

	// Delivery is forwarded unmodified to the transport with every batch.
	Delivery domain.DeliveryOptions
}

// DefaultConfig returns a Config with the standard thresholds.
func DefaultConfig() Config {
	return Config{
		Actions:        DefaultActions,
		MaxVolumeBytes: DefaultMaxVolumeBytes,
		DrainBudget:    DefaultDrainBudget,
	}
}

// sanitize clamps configuration values into valid ranges. Invalid input is
// corrected, never rejected.
func (c *Config) sanitize() {
	if c.Concurrency == 0 {
		c.Concurrency = 4 * runtime.GOMAXPROCS(0)
	}
	if c.Concurrency < 0 {
		c.Concurrency = -c.Concurrency
	}
	if c.Concurrency > MaxConcurrency {
		c.Concurrency = MaxConcurrency
	}
	if c.DrainBudget == 0 {
		c.DrainBudget = DefaultDrainBudget
	}
}

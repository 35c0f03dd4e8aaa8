package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	httpAdapter "github.com/bft-labs/bulkship/internal/adapters/http"
	logAdapter "github.com/bft-labs/bulkship/internal/adapters/log"
	"github.com/bft-labs/bulkship/internal/bulkformat"
	"github.com/bft-labs/bulkship/internal/cliconfig"
	"github.com/bft-labs/bulkship/internal/domain"
	"github.com/bft-labs/bulkship/internal/ingest"
	"github.com/bft-labs/bulkship/internal/ports"
	"github.com/bft-labs/bulkship/internal/spool"
)

const longHelp = `Ship bulk index/delete operations to a storage cluster in batches.

bulkship reads newline-delimited bulk input (an action line per operation,
followed by a source line for index actions), accumulates it into batches,
and dispatches them with a bounded number of requests in flight.

With file arguments or piped stdin it runs once and exits after draining.
With --spool-dir it keeps watching the directory for new *.ndjson files
until interrupted.`

var exampleUsage = `  bulkship --default-index logs ops.ndjson
  generator | bulkship --default-index logs --actions 500
  bulkship --spool-dir /var/spool/bulkship --default-index logs`

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	root := &cobra.Command{
		Use:     "bulkship [files...]",
		Short:   "Ship bulk index/delete operations to a storage cluster in batches",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first, then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cmd.Context(), cfg, args, log)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.bulkship/config.toml)")
	root.Flags().StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "base URL of the storage cluster")
	root.Flags().StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for authentication")
	root.Flags().IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "max batches in flight (0 = 4x CPUs)")
	root.Flags().IntVar(&cfg.Actions, "actions", cfg.Actions, "action-count flush threshold (0 disables)")
	root.Flags().IntVar(&cfg.MaxVolumeBytes, "max-volume", cfg.MaxVolumeBytes, "byte-volume flush threshold (0 disables)")
	root.Flags().DurationVar(&cfg.DrainBudget, "drain-budget", cfg.DrainBudget, "how long to wait for in-flight batches on shutdown")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout per batch request")
	root.Flags().StringVar(&cfg.SpoolDir, "spool-dir", cfg.SpoolDir, "watch this directory for *.ndjson files instead of reading arguments")
	root.Flags().DurationVar(&cfg.FlushInterval, "flush-interval", cfg.FlushInterval, "periodic flush interval in spool mode")
	root.Flags().StringVar(&cfg.DefaultIndex, "default-index", cfg.DefaultIndex, "index applied to actions that omit _index")
	root.Flags().StringVar(&cfg.DefaultRouting, "default-routing", cfg.DefaultRouting, "routing applied to actions that omit routing")
	root.Flags().StringVar(&cfg.Replication, "replication", cfg.Replication, "replication mode forwarded to the cluster")
	root.Flags().StringVar(&cfg.Consistency, "consistency", cfg.Consistency, "consistency level forwarded to the cluster")
	root.Flags().BoolVar(&cfg.Threaded, "threaded", cfg.Threaded, "request threaded response listeners on the cluster")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("bulkship")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliconfig.Config, args []string, log zerolog.Logger) error {
	logger := logAdapter.NewZerologAdapterWithLogger(log)

	transport := httpAdapter.NewTransport(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.ServiceURL,
		cfg.AuthKey,
		logger,
	)

	listener := newLogListener(logger)

	proc := ingest.New(transport, ingest.Config{
		Concurrency:    cfg.Concurrency,
		Actions:        cfg.Actions,
		MaxVolumeBytes: cfg.MaxVolumeBytes,
		DrainBudget:    cfg.DrainBudget,
		Delivery: domain.DeliveryOptions{
			Threaded:    cfg.Threaded,
			Replication: cfg.Replication,
			Consistency: cfg.Consistency,
		},
	}, ingest.WithListener(listener), ingest.WithLogger(logger))

	defaults := bulkformat.Defaults{Index: cfg.DefaultIndex, Routing: cfg.DefaultRouting}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var err error
	if cfg.SpoolDir != "" {
		err = runSpool(ctx, cfg, defaults, proc, logger)
	} else {
		err = runOnce(ctx, args, defaults, proc)
	}

	drained := proc.Close(ctx)
	listener.logSummary(logger)
	if !drained {
		logger.Warn("drain budget exhausted, batches still in flight",
			ports.Int("in_flight", proc.InFlight()))
	}
	return err
}

// runOnce ingests the given files, or stdin when none are given.
func runOnce(ctx context.Context, args []string, defaults bulkformat.Defaults, proc *ingest.Processor) error {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return proc.AddRaw(ctx, data, false, defaults)
	}

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := proc.AddRaw(ctx, data, false, defaults); err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
	}
	return nil
}

// runSpool watches the spool directory until a signal arrives.
func runSpool(ctx context.Context, cfg cliconfig.Config, defaults bulkformat.Defaults, proc *ingest.Processor, logger ports.Logger) error {
	watcher := spool.New(cfg.SpoolDir, defaults, cfg.FlushInterval, proc, logger)
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start spool watcher: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		logger.Info("received signal, stopping...")
	case <-ctx.Done():
	}

	watcher.Stop()
	return nil
}

// logListener logs batch lifecycle events and keeps running totals.
type logListener struct {
	logger     ports.Logger
	batches    atomic.Int64
	operations atomic.Int64
	failures   atomic.Int64
}

func newLogListener(logger ports.Logger) *logListener {
	return &logListener{logger: logger}
}

func (l *logListener) BeforeBulk(id int64, inFlight int, batch *domain.Batch) {
	l.batches.Add(1)
	l.operations.Add(int64(batch.Size()))
	l.logger.Debug("dispatching batch",
		ports.Int64("batch_id", id),
		ports.Int("in_flight", inFlight),
		ports.Int("operations", batch.Size()),
		ports.Int("bytes", batch.TotalBytes))
}

func (l *logListener) AfterBulk(id int64, inFlight int, resp *ports.BatchResponse, err error) {
	if err != nil {
		l.failures.Add(1)
		l.logger.Error("batch failed",
			ports.Int64("batch_id", id),
			ports.Int("in_flight", inFlight),
			ports.Err(err))
		return
	}
	l.logger.Info("batch complete",
		ports.Int64("batch_id", id),
		ports.Int("in_flight", inFlight),
		ports.Int("items", resp.Items),
		ports.Duration("took", resp.Took),
		ports.Bool("item_errors", resp.Errors))
}

func (l *logListener) logSummary(logger ports.Logger) {
	logger.Info("ingest summary",
		ports.Int64("batches", l.batches.Load()),
		ports.Int64("operations", l.operations.Load()),
		ports.Int64("failed_batches", l.failures.Load()))
}

// Package spool feeds bulk-format files from a spool directory into the
// ingest processor.
//
// Producers drop *.ndjson files into the directory; the watcher parses each
// file into operations, hands them to the processor, and renames the file
// with a .done suffix. Producers should write files elsewhere and rename
// them into the spool directory so the watcher never observes a partial
// write. A periodic flush keeps small workloads from lingering below the
// processor's thresholds.
package spool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/bulkship/internal/bulkformat"
	"github.com/bft-labs/bulkship/internal/ports"
)

// spoolExt is the file extension the watcher picks up.
const spoolExt = ".ndjson"

// DefaultFlushInterval is how often the watcher flushes the processor when
// no threshold has fired.
const DefaultFlushInterval = 5 * time.Second

// Ingestor is the subset of the processor the watcher needs.
type Ingestor interface {
	// AddRaw parses and appends a raw bulk fragment.
	AddRaw(ctx context.Context, data []byte, contentUnsafe bool, defaults bulkformat.Defaults) error

	// Flush dispatches the current buffer unconditionally.
	Flush(ctx context.Context) error
}

// Watcher monitors a spool directory and feeds its files to an Ingestor.
type Watcher struct {
	dir           string
	defaults      bulkformat.Defaults
	flushInterval time.Duration
	ingestor      Ingestor
	logger        ports.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher for dir. A non-positive flushInterval selects
// DefaultFlushInterval.
func New(dir string, defaults bulkformat.Defaults, flushInterval time.Duration, ingestor Ingestor, logger ports.Logger) *Watcher {
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}
	return &Watcher{
		dir:           dir,
		defaults:      defaults,
		flushInterval: flushInterval,
		ingestor:      ingestor,
		logger:        logger,
	}
}

// Start ingests any files already present, then begins watching for new
// ones. It returns after the watch loop has started; call Stop to shut the
// watcher down.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.ingestExisting(watchCtx)

	w.wg.Add(1)
	go w.watchLoop(watchCtx, watcher)

	w.logger.Info("spool watcher started", ports.String("dir", w.dir))
	return nil
}

// Stop terminates the watch loop and waits for it to finish. Pending
// buffered operations are flushed before returning.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()

	if err := w.ingestor.Flush(context.Background()); err != nil {
		w.logger.Error("final flush failed", ports.Err(err))
	}
}

// watchLoop reacts to new spool files and drives the periodic flush.
func (w *Watcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer w.wg.Done()
	defer watcher.Close()

	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, spoolExt) {
				continue
			}
			// Rename covers producers moving a finished file into
			// the directory; Create covers direct writes.
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.ingestFile(ctx, event.Name)

		case <-ticker.C:
			if err := w.ingestor.Flush(ctx); err != nil {
				w.logger.Error("periodic flush failed", ports.Err(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("spool watcher error", ports.Err(err))
		}
	}
}

// ingestExisting processes files that were already in the directory when the
// watcher started, oldest name first.
func (w *Watcher) ingestExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Error("read spool dir failed", ports.String("dir", w.dir), ports.Err(err))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), spoolExt) {
			continue
		}
		w.ingestFile(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

// ingestFile reads one spool file, feeds it to the ingestor, and marks it
// done. A file that fails to parse is renamed with a .failed suffix so it
// is not retried forever.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		w.logger.Error("read spool file failed", ports.String("file", path), ports.Err(err))
		return
	}

	// The slice is owned by us, so the processor may alias it.
	if err := w.ingestor.AddRaw(ctx, data, false, w.defaults); err != nil {
		w.logger.Error("ingest spool file failed", ports.String("file", path), ports.Err(err))
		w.markFile(path, ".failed")
		return
	}

	w.logger.Debug("ingested spool file", ports.String("file", path), ports.Int("bytes", len(data)))
	w.markFile(path, ".done")
}

func (w *Watcher) markFile(path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil {
		w.logger.Error("rename spool file failed", ports.String("file", path), ports.Err(err))
	}
}

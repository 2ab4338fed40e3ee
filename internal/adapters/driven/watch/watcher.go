// Package watch provides a filesystem watcher that folds corpus files
// into the example store as they appear.
//
// The watcher monitors one directory for .json corpus files. Events are
// debounced so a file being written in several bursts is loaded once,
// after it settles. Loading goes through the example service, which
// embeds, appends and reindexes; files that fail to parse are logged
// and skipped so one bad drop does not stop the watch.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driving"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/logger"
)

// Ensure CorpusWatcher implements the interface.
var _ driven.CorpusWatcher = (*CorpusWatcher)(nil)

// Default configuration values.
const (
	DefaultDebounce = 500 * time.Millisecond

	// sweepInterval is how often settled events are checked for.
	sweepInterval = 100 * time.Millisecond
)

// Config holds configuration for the corpus watcher.
type Config struct {
	// Dir is the corpus directory to watch (required).
	Dir string

	// Debounce is how long a file must stay quiet before it is loaded
	// (default: 500ms).
	Debounce time.Duration
}

// CorpusWatcher watches a directory for example corpus files.
type CorpusWatcher struct {
	watcher  *fsnotify.Watcher
	examples driving.ExampleService
	dir      string
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewCorpusWatcher creates a watcher over the given corpus directory.
func NewCorpusWatcher(cfg Config, examples driving.ExampleService) (*CorpusWatcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watch: corpus directory is required")
	}
	if examples == nil {
		return nil, fmt.Errorf("watch: example service is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	return &CorpusWatcher{
		watcher:  watcher,
		examples: examples,
		dir:      cfg.Dir,
		debounce: cfg.Debounce,
		pending:  make(map[string]time.Time),
	}, nil
}

// Start begins watching. It blocks until the context is cancelled (a
// clean stop, returns nil) or the watch fails.
func (w *CorpusWatcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0700); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("Watching corpus directory %s", w.dir)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Corpus watch error: %v", err)

		case <-ticker.C:
			w.loadSettled(ctx)
		}
	}
}

// Close stops watching and releases the underlying watcher.
func (w *CorpusWatcher) Close() error {
	return w.watcher.Close()
}

// handleEvent records a corpus file event for debounced loading.
// Removals are ignored; the corpus is append-only and never retracts.
func (w *CorpusWatcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// loadSettled loads files whose last event is older than the debounce
// window.
func (w *CorpusWatcher) loadSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.loadFile(ctx, path)
	}
}

// loadFile folds one corpus file into the example store.
func (w *CorpusWatcher) loadFile(ctx context.Context, path string) {
	count, err := w.examples.AddFromFile(ctx, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Written and removed within the debounce window
			logger.Debug("Corpus file %s vanished before loading", path)
			return
		}
		logger.Warn("Loading corpus file %s: %v", path, err)
		return
	}
	logger.Info("Corpus file %s added %d examples", path, count)
}

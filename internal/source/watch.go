package source

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"autosearch/internal/eventbus"
)

// DefaultReloadDelay collects bursts of writes into one reload
const DefaultReloadDelay = 100 * time.Millisecond

// Watcher reloads a Dataset whenever its file changes on disk
type Watcher struct {
	path    string
	dataset *Dataset
	bus     eventbus.EventBus
	logger  *log.Logger
	delay   time.Duration

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for the dataset file at path
func NewWatcher(path string, dataset *Dataset, bus eventbus.EventBus, logger *log.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		path:    abs,
		dataset: dataset,
		bus:     bus,
		logger:  logger,
		delay:   DefaultReloadDelay,
		watcher: fsw,
	}, nil
}

// Start watches the file's directory until ctx is done or Stop is called.
// Editors often replace files by rename, so the directory is watched rather
// than the file itself.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.wg.Add(1)
	go w.processEvents(ctx)
	w.logger.Printf("Watching %s for changes", w.path)
	return nil
}

// Stop ends watching and waits for the event loop to exit
func (w *Watcher) Stop() error {
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("Watch error on %s: %v", w.path, err)
			w.bus.Publish(eventbus.ErrorEvent{Message: fmt.Sprintf("Watching %s failed", w.path), Err: err})

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	items, err := LoadFile(w.path)
	if err != nil {
		// Keep serving the previous contents
		w.logger.Printf("Reload of %s failed: %v", w.path, err)
		w.bus.Publish(eventbus.ErrorEvent{Message: fmt.Sprintf("Reload of %s failed", filepath.Base(w.path)), Err: err})
		return
	}
	w.dataset.Replace(items)
	w.logger.Printf("Reloaded %d suggestions from %s", len(items), w.path)
	w.bus.Publish(eventbus.SourceReloadedEvent{Path: w.path, Count: len(items)})
}

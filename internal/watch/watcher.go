// Package watch reports batches of changed PHP files below a project root.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rouffj/pdepend/internal/config"
	"github.com/rouffj/pdepend/internal/debug"
	"github.com/rouffj/pdepend/internal/discover"
	"github.com/rouffj/pdepend/pkg/pathutil"
)

// EventType is the kind of change seen for a file.
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Change is one file of a batch. Path is slash-separated and relative to
// the project root.
type Change struct {
	Path string
	Type EventType
}

// Handler receives each debounced batch, sorted by path. It runs on the
// watcher's goroutine; Stop waits for a running handler to return.
type Handler func(ctx context.Context, batch []Change)

// Watcher monitors the file system below the project root.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	matcher  *discover.Matcher
	maxSize  int64
	debounce time.Duration
	handler  Handler

	pending chan Change
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	statsMu sync.RWMutex
	stats   Stats
}

// Stats contains statistics about file watching operations
type Stats struct {
	Batches         int64
	EventsProcessed int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}

// New creates a watcher for cfg.Project.Root. Files are filtered the way
// discovery filters them.
func New(cfg *config.Config, handler Handler) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch: nil handler")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = config.DefaultDebounceMs * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watcher:  fw,
		root:     cfg.Project.Root,
		matcher:  discover.NewMatcher(cfg.Project.Root, discover.OptionsFromConfig(cfg)),
		maxSize:  cfg.Index.MaxFileSize,
		debounce: debounce,
		handler:  handler,
		pending:  make(chan Change, 256),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start adds watches for every kept directory and begins delivering
// batches.
func (w *Watcher) Start() error {
	debug.Log("WATCH", "starting file watcher for %s\n", w.root)

	if err := w.addWatches(w.root, false); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", w.root, err)
	}

	w.setActive(true)
	w.wg.Add(2)
	go w.processEvents()
	go w.debounceLoop()
	return nil
}

// Stop closes the watcher and waits for its goroutines. Changes still
// waiting for the debounce delay are dropped.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	w.setActive(false)
	debug.Log("WATCH", "file watcher stopped\n")
	return err
}

// addWatches watches root and every directory below it that is not
// excluded. With announce set, files already present are reported as
// created; this covers files written into a new directory before its
// watch was in place.
func (w *Watcher) addWatches(root string, announce bool) error {
	visitedDirs := make(map[string]bool)

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel := w.rel(path)

		if !d.IsDir() {
			if announce && w.keep(path, rel) {
				w.enqueue(Change{Path: rel, Type: EventCreate})
			}
			return nil
		}

		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visitedDirs[real] {
			return filepath.SkipDir
		}
		visitedDirs[real] = true

		if path != w.root && w.matcher.ExcludeDir(rel) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			debug.Warn("WATCH", "failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) rel(path string) string {
	return pathutil.ToRelative(path, w.root)
}

func (w *Watcher) keep(path, rel string) bool {
	if !w.matcher.Match(rel) {
		return false
	}
	if w.maxSize > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() > w.maxSize {
			debug.Log("WATCH", "skipping oversized file %s (%d bytes)\n", rel, info.Size())
			return false
		}
	}
	return true
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.statsMu.Lock()
			w.stats.ErrorCount++
			w.statsMu.Unlock()
			debug.Warn("WATCH", "file watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	rel := w.rel(path)
	debug.Log("WATCH", "received %v for %s\n", event.Op, rel)

	info, err := os.Stat(path)
	if err != nil {
		// gone: removed or renamed away
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.matcher.Match(rel) {
			w.enqueue(Change{Path: rel, Type: EventRemove})
		}
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !w.matcher.ExcludeDir(rel) {
			if err := w.addWatches(path, true); err != nil {
				debug.Warn("WATCH", "failed to watch new directory %s: %v", rel, err)
			}
		}
		return
	}

	if !w.keep(path, rel) {
		return
	}

	var t EventType
	switch {
	case event.Op&fsnotify.Create != 0:
		t = EventCreate
	case event.Op&fsnotify.Write != 0:
		t = EventWrite
	case event.Op&fsnotify.Rename != 0:
		t = EventRename
	default:
		return
	}
	w.enqueue(Change{Path: rel, Type: t})
}

func (w *Watcher) enqueue(c Change) {
	select {
	case w.pending <- c:
	case <-w.ctx.Done():
	}
}

// debounceLoop collects changes until none arrived for the debounce
// delay, then hands the batch to the handler. A later event for a path
// replaces an earlier one, except that a write never hides a create.
func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	batch := make(map[string]EventType)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case c := <-w.pending:
			if prev, ok := batch[c.Path]; ok && prev == EventCreate && c.Type == EventWrite {
				c.Type = EventCreate
			}
			batch[c.Path] = c.Type
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(batch) == 0 {
				continue
			}
			w.flush(batch)
			batch = make(map[string]EventType)
		}
	}
}

func (w *Watcher) flush(batch map[string]EventType) {
	changes := make([]Change, 0, len(batch))
	for path, t := range batch {
		changes = append(changes, Change{Path: path, Type: t})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	debug.Log("WATCH", "processing %d debounced file events\n", len(changes))
	w.statsMu.Lock()
	w.stats.Batches++
	w.stats.EventsProcessed += int64(len(changes))
	w.stats.LastEventTime = time.Now()
	w.statsMu.Unlock()

	w.handler(w.ctx, changes)
}

func (w *Watcher) setActive(active bool) {
	w.statsMu.Lock()
	w.stats.IsActive = active
	w.statsMu.Unlock()
}

// GetStats returns current watch mode statistics
func (w *Watcher) GetStats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	return w.stats
}

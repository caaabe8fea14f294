// Package watch implements the fsnotify-driven incremental re-analysis
// supplement: on a changed source file it performs spec.md §3's atomic
// per-file refresh (remove_file then re-extract and insert_file) against a
// live graph.Table, so a long-running `symgraph watch` stays current
// without a full project re-scan. Grounded on the teacher's
// internal/core/watcher.go (debounce map, recursive directory add,
// fsnotify.Watcher event loop), re-targeted at internal/graph instead of
// the teacher's database-backed refresh.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aaamil13/symgraph/internal/cache"
	"github.com/aaamil13/symgraph/internal/extract"
	"github.com/aaamil13/symgraph/internal/graph"
	"github.com/aaamil13/symgraph/internal/logging"
	"github.com/aaamil13/symgraph/internal/resolve"
	"github.com/aaamil13/symgraph/internal/symbols"
	"github.com/aaamil13/symgraph/internal/symerr"
	"github.com/aaamil13/symgraph/internal/tscheck"
	"github.com/aaamil13/symgraph/internal/tsparse"
)

// DebounceDelay is the default quiet period before a changed file is
// re-extracted, matching the teacher's watcher.
const DebounceDelay = 300 * time.Millisecond

// EventHandler is notified after each debounced refresh, with the affected
// file_key and any error encountered while re-extracting it. Useful for
// CLI progress lines and tests; may be nil.
type EventHandler func(fileKey string, err error)

// Watcher watches root for source-file changes and keeps table current.
type Watcher struct {
	root  string
	table *graph.Table

	provider *tsparse.Provider
	resolve  resolve.Options

	fsWatcher *fsnotify.Watcher
	debounce  map[string]*time.Timer
	mu        sync.Mutex

	Cache   *cache.Cache // optional; nil disables the content-hash cache
	stop    chan struct{}
	onEvent EventHandler
	log     *logging.Logger
}

// New creates a Watcher over root, applying changes to table in place.
func New(root string, table *graph.Table, opts resolve.Options, onEvent EventHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:      root,
		table:     table,
		provider:  tsparse.NewProvider(),
		resolve:   opts,
		fsWatcher: fsw,
		debounce:  make(map[string]*time.Timer),
		stop:      make(chan struct{}),
		onEvent:   onEvent,
		log:       logging.New("watch"),
	}, nil
}

// WithCache attaches a content-hash cache; refresh consults it before
// re-parsing a changed file and populates it after a miss. A nil cache (the
// default) simply disables the optimization, mirroring
// internal/project.Analyzer.WithCache.
func (w *Watcher) WithCache(c *cache.Cache) *Watcher {
	w.Cache = c
	return w
}

// Start adds root and its subdirectories to the watch list and begins the
// event loop in a background goroutine.
func (w *Watcher) Start() error {
	if err := w.addDirectoryRecursive(w.root); err != nil {
		return err
	}
	go w.eventLoop()
	return nil
}

// Stop ends the event loop and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	close(w.stop)
	return w.fsWatcher.Close()
}

func (w *Watcher) addDirectoryRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := w.fsWatcher.Add(path); err != nil {
				w.log.Warn("failed to watch directory", "path", path, "error", err)
			}
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if _, ok := tsparse.DialectForPath(event.Name); !ok {
		return
	}

	switch {
	case event.Op&fsnotify.Write == fsnotify.Write, event.Op&fsnotify.Create == fsnotify.Create:
		w.debounceRefresh(event.Name)
	case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
		w.remove(event.Name)
	}
}

func (w *Watcher) debounceRefresh(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.debounce[path]; exists {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(DebounceDelay, func() {
		w.mu.Lock()
		delete(w.debounce, path)
		w.mu.Unlock()
		w.refresh(path)
	})
}

// refresh performs the atomic per-file refresh: remove_file then re-extract
// and insert_file, per spec.md §3.
func (w *Watcher) refresh(path string) {
	fileKey := extract.FileKeyForPath(path)

	content, err := os.ReadFile(path)
	if err != nil {
		w.report(fileKey, err)
		return
	}

	var hash string
	if w.Cache != nil {
		hash = cache.ContentHash(content)
		if fs, found, err := w.Cache.Get(hash, fileKey); err == nil && found {
			w.apply(fileKey, fs)
			return
		} else if err != nil {
			w.log.Warn("cache lookup failed", "path", path, "error", err)
		}
	}

	dialect, ok := tsparse.DialectForPath(path)
	if !ok {
		w.report(fileKey, &symerr.InvalidInput{Reason: "unrecognized source extension", Path: path})
		return
	}

	parsed, err := w.provider.Parse(dialect, content)
	if err != nil {
		w.report(fileKey, &symerr.CheckerError{Path: path, Err: err})
		return
	}
	defer parsed.Close()

	prog := tscheck.NewProgram(fileKey, path, parsed)
	fs := extract.New(w.resolve).Extract(prog)

	if w.Cache != nil {
		if err := w.Cache.Put(hash, fs); err != nil {
			w.log.Warn("cache store failed", "path", path, "error", err)
		}
	}

	w.apply(fileKey, fs)
}

// apply performs the atomic remove_file + insert_file swap against table and
// reports the outcome, shared by both the cache-hit and re-extraction paths.
func (w *Watcher) apply(fileKey string, fs *symbols.FileSymbols) {
	w.mu.Lock()
	w.table.RemoveFile(fileKey)
	err := w.table.InsertFile(fs)
	w.mu.Unlock()
	if err != nil {
		w.report(fileKey, err)
		return
	}
	w.report(fileKey, nil)
}

func (w *Watcher) remove(path string) {
	fileKey := extract.FileKeyForPath(path)
	w.mu.Lock()
	w.table.RemoveFile(fileKey)
	w.mu.Unlock()
	w.report(fileKey, nil)
}

func (w *Watcher) report(fileKey string, err error) {
	if err != nil {
		w.log.Warn("refresh failed", "file", fileKey, "error", err)
	}
	if w.onEvent != nil {
		w.onEvent(fileKey, err)
	}
}

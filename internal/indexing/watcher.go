package indexing

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/codemap/internal/debug"
	cmerrors "github.com/standardbeagle/codemap/internal/errors"
	"github.com/standardbeagle/codemap/internal/parser"
)

// watchSkipDirs are never registered with the watcher. Event storms in
// these trees would only ever trigger pointless rebuilds.
var watchSkipDirs = map[string]bool{
	".git":         true,
	".codemap":     true,
	"node_modules": true,
	"__pycache__":  true,
	".venv":        true,
	"vendor":       true,
	"target":       true,
}

// Watcher triggers debounced full rebuilds when watched source files
// change. Event bursts from editors and branch switches collapse into a
// single rebuild.
type Watcher struct {
	builder  *Builder
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending int

	// onRebuild is invoked after each triggered rebuild, for test
	// synchronization.
	onRebuild func(error)
}

func NewWatcher(builder *Builder, debounceMs int) *Watcher {
	if debounceMs <= 0 {
		debounceMs = 50
	}
	return &Watcher{
		builder:  builder,
		debounce: time.Duration(debounceMs) * time.Millisecond,
	}
}

// SetOnRebuild registers a callback invoked with each rebuild's result.
func (w *Watcher) SetOnRebuild(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onRebuild = fn
}

// Run watches the repository tree until ctx is cancelled. New
// directories are added to the watch as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	root := w.builder.source.Root()
	if err := addRecursive(fsw, root); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			debug.Indexf("watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") && name != ".codemap.kdl" {
		return
	}
	if ev.Op.Has(fsnotify.Create) && !watchSkipDirs[name] {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			// a new directory needs its own watch before events from
			// files inside it can arrive
			if err := addRecursive(fsw, ev.Name); err == nil {
				w.schedule(ctx)
			}
			return
		}
	}
	if parser.LanguageForPath(ev.Name) == "" && name != ".codemap.kdl" {
		return
	}
	w.schedule(ctx)
}

// schedule resets the debounce timer so the rebuild fires only after
// the event burst quiets down.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending++
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.rebuild(ctx) })
}

func (w *Watcher) rebuild(ctx context.Context) {
	w.mu.Lock()
	n := w.pending
	w.pending = 0
	callback := w.onRebuild
	w.mu.Unlock()

	if n == 0 || ctx.Err() != nil {
		return
	}

	debug.Indexf("rebuilding after %d change events", n)
	_, err := w.builder.Build(ctx)
	if err != nil && err != cmerrors.ErrStillBuilding {
		debug.Indexf("watch rebuild failed: %v", err)
	}
	if callback != nil {
		callback(err)
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (watchSkipDirs[name] || strings.HasPrefix(name, ".")) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			debug.Indexf("watch add %s: %v", path, err)
		}
		return nil
	})
}

package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/willibrandon/gocsx/observability"
)

// DefaultDebounce is the quiet period before created files are synced.
const DefaultDebounce = 100 * time.Millisecond

// DefaultIgnore lists directory names that are never watched.
var DefaultIgnore = []string{".git", ".vs", ".vscode", ".idea", "bin", "obj", "node_modules"}

// Watcher feeds filesystem events below a root directory to a Syncer.
// Created files are batched. A rename directly followed by a create, or
// followed within the debounce window by a create of the same file name, is
// treated as a rename; an unpaired rename as a delete.
type Watcher struct {
	root     string
	syncer   *Syncer
	logger   observability.Logger
	debounce time.Duration
	ignore   map[string]bool

	fsw     *fsnotify.Watcher
	creates *Debouncer[string]
	expired chan string
	done    chan struct{}

	mu      sync.Mutex
	dirs    map[string]bool
	renames map[string]*pendingRename
	// lastRename is set while the previous event was a rename.
	lastRename string

	onBatch func(*BatchResult)
}

type pendingRename struct {
	isDir bool
	timer *time.Timer
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period for created files and rename pairing.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore replaces the directory names that are not watched.
func WithIgnore(names ...string) WatcherOption {
	return func(w *Watcher) {
		w.ignore = make(map[string]bool, len(names))
		for _, n := range names {
			w.ignore[n] = true
		}
	}
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(logger observability.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = logger }
}

// WithBatchHandler is called with the result of every synced batch.
func WithBatchHandler(fn func(*BatchResult)) WatcherOption {
	return func(w *Watcher) { w.onBatch = fn }
}

// NewWatcher starts watching every directory below root.
func NewWatcher(root string, syncer *Syncer, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:     abs,
		syncer:   syncer,
		logger:   observability.NewNullLogger(),
		debounce: DefaultDebounce,
		fsw:      fsw,
		expired:  make(chan string, 64),
		done:     make(chan struct{}),
		dirs:     make(map[string]bool),
		renames:  make(map[string]*pendingRename),
	}
	WithIgnore(DefaultIgnore...)(w)
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(abs, nil); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is done. Pending creates are synced before it returns.
func (w *Watcher) Run(ctx context.Context) error {
	w.start(ctx)
	defer w.stop()

	w.logger.Info("Watching {Root}", w.root)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watch error: {Error}", err)
		case old := <-w.expired:
			w.expire(ctx, old)
		}
	}
}

func (w *Watcher) start(ctx context.Context) {
	w.creates = NewDebouncer(w.debounce, func(paths []string) { w.syncCreated(ctx, paths) })
}

func (w *Watcher) stop() {
	close(w.done)
	w.creates.Stop()
	_ = w.fsw.Close()
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if w.ignored(path) {
		return
	}

	w.mu.Lock()
	last := w.lastRename
	w.lastRename = ""
	w.mu.Unlock()

	switch {
	case ev.Has(fsnotify.Create):
		w.created(ctx, path, last)
	case ev.Has(fsnotify.Rename):
		w.mu.Lock()
		w.lastRename = path
		isDir := w.dirs[path]
		p := &pendingRename{isDir: isDir}
		p.timer = time.AfterFunc(w.debounce, func() {
			select {
			case w.expired <- path:
			case <-w.done:
			}
		})
		if prev, ok := w.renames[path]; ok {
			prev.timer.Stop()
		}
		w.renames[path] = p
		w.mu.Unlock()
	case ev.Has(fsnotify.Remove):
		w.mu.Lock()
		isDir := w.forget(path)
		w.mu.Unlock()
		w.deleted(ctx, path, isDir)
	}
}

func (w *Watcher) created(ctx context.Context, path, lastRename string) {
	if old, isDir, ok := w.pairRename(path, lastRename); ok {
		isDir = isDir || isDirectory(path)
		if isDir {
			w.rewatch(old, path)
		}
		// A file written to a temporary name and renamed into place before
		// the batch flushed was never classified; it is a create.
		if w.dropPendingCreates(old) > 0 {
			w.queueCreated(path)
			return
		}
		if err := w.syncer.HandleRenamed(ctx, old, path, isDir); err != nil {
			w.logger.Error("Could not rename {OldPath} to {NewPath}: {Error}", old, path, err)
		}
		return
	}

	w.queueCreated(path)
}

// queueCreated batches path and, for a directory, the files below it.
func (w *Watcher) queueCreated(path string) {
	var found []string
	if err := w.addTree(path, &found); err != nil {
		w.logger.Warn("Could not watch {Path}: {Error}", path, err)
	}
	w.creates.Add(path)
	for _, f := range found {
		w.creates.Add(f)
	}
}

// dropPendingCreates removes path and everything below it from the batch
// of created files that has not been synced yet.
func (w *Watcher) dropPendingCreates(path string) int {
	prefix := path + string(filepath.Separator)
	return w.creates.Remove(func(p string) bool {
		return p == path || strings.HasPrefix(p, prefix)
	})
}

// pairRename takes the pending rename that newPath completes: the rename
// right before it, else one with the same file name.
func (w *Watcher) pairRename(newPath, lastRename string) (string, bool, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	match := ""
	if _, ok := w.renames[lastRename]; ok {
		match = lastRename
	} else {
		for old := range w.renames {
			if filepath.Base(old) == filepath.Base(newPath) {
				match = old
				break
			}
		}
	}
	if match == "" {
		return "", false, false
	}
	p := w.renames[match]
	p.timer.Stop()
	delete(w.renames, match)
	return match, p.isDir, true
}

func (w *Watcher) expire(ctx context.Context, old string) {
	w.mu.Lock()
	p, ok := w.renames[old]
	if ok {
		delete(w.renames, old)
		w.forget(old)
	}
	w.mu.Unlock()
	if ok {
		w.deleted(ctx, old, p.isDir)
	}
}

func (w *Watcher) deleted(ctx context.Context, path string, isDir bool) {
	if err := w.syncer.HandleDeleted(ctx, path, isDir); err != nil {
		w.logger.Error("Could not remove {Path}: {Error}", path, err)
	}
}

func (w *Watcher) syncCreated(ctx context.Context, paths []string) {
	batchID := uuid.New().String()
	logger := w.logger.ForContext("BatchId", batchID)

	ctx, span := observability.StartWatchBatchSpan(ctx, "create", len(paths))
	observability.WatchBatchSize.Observe(float64(len(paths)))

	res, err := w.syncer.HandleCreated(ctx, paths)
	observability.EndSpanWithError(span, err)
	if err != nil {
		logger.Error("Could not sync {Count} created path(s): {Error}", len(paths), err)
	}
	for manifest, files := range res.Added {
		logger.Info("Added {Count} file(s) to {ManifestPath}", len(files), manifest)
	}
	if w.onBatch != nil {
		w.onBatch(res)
	}
}

// addTree watches dir and every directory below it. Files found on the way
// are appended to found when it is not nil.
func (w *Watcher) addTree(dir string, found *[]string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if found != nil && p != dir {
				*found = append(*found, p)
			}
			return nil
		}
		if p != w.root && w.ignore[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return err
		}
		w.mu.Lock()
		w.dirs[p] = true
		w.mu.Unlock()
		return nil
	})
}

// rewatch moves the watches of a renamed directory tree.
func (w *Watcher) rewatch(oldDir, newDir string) {
	w.mu.Lock()
	w.forget(oldDir)
	w.mu.Unlock()
	if err := w.addTree(newDir, nil); err != nil {
		w.logger.Warn("Could not watch {Path}: {Error}", newDir, err)
	}
}

// forget drops path and everything below it from the watched directories and
// reports whether path was one. The caller holds w.mu.
func (w *Watcher) forget(path string) bool {
	isDir := w.dirs[path]
	prefix := path + string(filepath.Separator)
	for d := range w.dirs {
		if d == path || strings.HasPrefix(d, prefix) {
			delete(w.dirs, d)
			_ = w.fsw.Remove(d)
		}
	}
	return isDir
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if w.ignore[part] {
			return true
		}
	}
	return false
}

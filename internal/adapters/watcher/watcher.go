// Package watcher evicts cached documents when they change on disk.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Invalidator drops a cached path
type Invalidator interface {
	Invalidate(key string)
}

// Op is the kind of change observed
type Op string

const (
	OpWrite  Op = "write"
	OpCreate Op = "create"
	OpRemove Op = "remove"
	OpRename Op = "rename"
)

// Event is a change to a file under the watched root
type Event struct {
	Path string
	Op   Op
}

// skipDirectories are never watched
var skipDirectories = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// Watcher watches a memory bank directory tree using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	cache     Invalidator
	onChange  func(Event)
	logger    *zap.Logger

	root    string
	started atomic.Bool
	done    chan struct{}
	once    sync.Once
}

// Option configures a Watcher
type Option func(*Watcher)

// WithOnChange registers a callback invoked after each invalidation
func WithOnChange(fn func(Event)) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a watcher that invalidates entries of c. c may be nil when
// only the callback is wanted.
func New(c Invalidator, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{
		fsWatcher: fw,
		cache:     c,
		logger:    zap.NewNop(),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start watches root recursively until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	w.root = abs

	for dir := range w.directories(abs) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.started.Store(true)
	go w.processEvents(ctx)
	w.logger.Info("watching memory bank", zap.String("root", abs))
	return nil
}

// Stop releases the underlying watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		err = w.fsWatcher.Close()
		if w.started.Load() {
			<-w.done
		}
	})
	return err
}

// Done is closed once event processing has ended
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) directories(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skip(d.Name()) {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func skip(name string) bool {
	return skipDirectories[name] || strings.HasPrefix(name, ".")
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			op, ok := convert(event.Op)
			if !ok {
				continue
			}
			w.handle(Event{Path: filepath.Clean(event.Name), Op: op})

			if op == OpCreate {
				w.watchCreated(event.Name)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// watchCreated adds a newly created directory and everything below it
func (w *Watcher) watchCreated(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || skip(info.Name()) {
		return
	}
	for dir := range w.directories(path) {
		if err := w.fsWatcher.Add(dir); err != nil {
			w.logger.Warn("failed to watch directory", zap.String("path", dir), zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev Event) {
	if w.cache != nil {
		w.cache.Invalidate(ev.Path)
	}
	w.logger.Debug("file changed", zap.String("path", ev.Path), zap.String("op", string(ev.Op)))
	if w.onChange != nil {
		w.onChange(ev)
	}
}

func convert(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Write):
		return OpWrite, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	}
	return "", false
}

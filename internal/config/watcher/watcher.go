// Package watcher reloads a settings file when it changes on disk.
//
// The watcher observes the file's directory rather than the file itself,
// so editors that save by writing a temporary file and renaming it over
// the original are seen. Bursts of events are debounced into one callback.
package watcher

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/indentscope/internal/logging"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 100 * time.Millisecond

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = 1 << iota
	// OpCreate indicates the file was created.
	OpCreate
	// OpRemove indicates the file was deleted.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
)

// String returns the operation names joined by "|".
func (op Operation) String() string {
	var names []string
	for _, n := range []struct {
		op   Operation
		name string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
	} {
		if op&n.op != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "unknown"
	}
	return strings.Join(names, "|")
}

// Event describes a debounced change.
type Event struct {
	// Path is the absolute path of the watched file.
	Path string
	// Op combines every operation seen during the debounce window.
	Op Operation
	// Time is when the last operation was seen.
	Time time.Time
}

// Handler is called when a change is detected. It runs on the watcher's
// timer goroutine.
type Handler func(event Event)

// Watcher monitors one file for changes.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	path     string
	handler  Handler
	debounce time.Duration
	logger   *logging.Logger

	pending *Event
	timer   *time.Timer
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New starts watching path. The file need not exist yet, but its
// directory must.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		path:     abs,
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   logging.Null,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("watcher")

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher. Pending changes are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = nil
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.pending == nil {
		w.pending = &Event{Path: w.path}
	}
	w.pending.Op |= op
	w.pending.Time = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

// fire delivers the pending event once the debounce window has passed.
func (w *Watcher) fire() {
	w.mu.Lock()
	ev := w.pending
	w.pending = nil
	closed := w.closed
	w.mu.Unlock()

	if ev == nil || closed {
		return
	}
	w.logger.Debug("%s changed (%v)", ev.Path, ev.Op)
	if w.handler != nil {
		w.handler(*ev)
	}
}

// convertOp maps fsnotify operations to watcher operations. Chmod alone is
// ignored.
func convertOp(fsOp fsnotify.Op) Operation {
	var op Operation
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}

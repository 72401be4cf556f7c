// Package app wires the indentscope viewer together and runs it.
//
// Everything an Application owns runs on its loop: terminal input is read
// on a separate goroutine and posted to the loop, settings reloads are
// posted by the file watcher, and frames are composed on the loop turn
// after a redraw was requested.
package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dshills/indentscope/internal/animate"
	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/config/watcher"
	"github.com/dshills/indentscope/internal/editor"
	"github.com/dshills/indentscope/internal/event"
	"github.com/dshills/indentscope/internal/indent"
	"github.com/dshills/indentscope/internal/logging"
	"github.com/dshills/indentscope/internal/loop"
	"github.com/dshills/indentscope/internal/renderer"
	"github.com/dshills/indentscope/internal/renderer/backend"
	"github.com/dshills/indentscope/internal/renderer/style"
	"github.com/dshills/indentscope/internal/scope"
)

// Application is the central coordinator of the viewer.
type Application struct {
	mu sync.Mutex

	// Core infrastructure
	sched   loop.Scheduler
	bus     *event.Bus
	config  *config.Manager
	watcher *watcher.Watcher
	logger  *logging.Logger
	metrics *Metrics

	// Host side
	editor *editor.Editor
	scopes *editor.IndentScopes
	styles *style.Registry

	// Rendering
	anim     *animate.Scheduler
	engine   *indent.Engine
	ctrl     *scope.Controller
	composer *renderer.Composer
	backend  backend.Backend

	subs         *subscriptionManager
	cancelScopes func()
	buffers      []int
	settings     config.Settings

	// Loop state
	framePending bool
	status       string

	// State
	running atomic.Bool
	cancel  context.CancelFunc

	// Options
	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the settings file. Empty means defaults and
	// environment overrides only.
	ConfigPath string

	// Watch reloads the settings file when it changes.
	Watch bool

	// Files are opened one window each. When empty, Text is shown.
	Files []string

	// Text is the content shown when no files are given. Empty means a
	// built-in sample.
	Text string

	// FPS overrides animate.fps when non-zero.
	FPS int

	// Style overrides animate.style when non-empty.
	Style string

	// Backend is the terminal to draw on.
	Backend backend.Backend

	// Scheduler is the loop everything runs on. Defaults to a new loop.Loop.
	Scheduler loop.Scheduler

	// Logger defaults to logging.Null.
	Logger *logging.Logger
}

// runner is a scheduler that can drive itself.
type runner interface {
	Run(ctx context.Context) error
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	if opts.Backend == nil {
		return nil, &InitError{Component: "backend", Err: ErrNoBackend}
	}
	app := &Application{
		opts:    opts,
		sched:   opts.Scheduler,
		backend: opts.Backend,
		logger:  opts.Logger,
		metrics: NewMetrics(),
	}
	if app.sched == nil {
		app.sched = loop.New()
	}
	if app.logger == nil {
		app.logger = logging.Null
	}

	if err := app.bootstrap(); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

// Run initializes the backend and processes input, timers and frames
// until ctx is cancelled or Stop is called. Blocks until shutdown. An
// Application runs once.
func (app *Application) Run(ctx context.Context) error {
	r, ok := app.sched.(runner)
	if !ok {
		return ErrNoRunner
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.start(); err != nil {
		return err
	}
	defer app.backend.Shutdown()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.mu.Lock()
	app.cancel = cancel
	app.mu.Unlock()

	go app.pollInput(ctx)

	err := r.Run(ctx)
	cancel()
	app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
	app.close()
	if errors.Is(err, context.Canceled) || errors.Is(err, loop.ErrClosed) {
		return nil
	}
	return err
}

// Stop requests shutdown. Safe to call from any goroutine.
func (app *Application) Stop() {
	app.mu.Lock()
	cancel := app.cancel
	app.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	// Unblock the input goroutine.
	app.backend.PostEvent(backend.Event{Type: backend.EventInterrupt})
}

// close releases everything bootstrap acquired, in reverse order.
func (app *Application) close() {
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			app.logger.Warn("closing watcher: %v", err)
		}
		app.watcher = nil
	}
	if app.cancelScopes != nil {
		app.cancelScopes()
		app.cancelScopes = nil
	}
	if app.subs != nil {
		app.subs.cancelAll()
	}
	if app.anim != nil {
		app.anim.Clear()
	}
	if app.bus != nil {
		app.bus.Close()
	}
	if app.config != nil {
		if err := app.config.Close(); err != nil {
			app.logger.Warn("closing config: %v", err)
		}
	}
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// EventBus returns the event bus.
func (app *Application) EventBus() *event.Bus {
	return app.bus
}

// Editor returns the host editor.
func (app *Application) Editor() *editor.Editor {
	return app.editor
}

// Engine returns the indent engine.
func (app *Application) Engine() *indent.Engine {
	return app.engine
}

// Scope returns the scope controller.
func (app *Application) Scope() *scope.Controller {
	return app.ctrl
}

// Settings returns the settings in effect.
func (app *Application) Settings() config.Settings {
	return app.settings
}

// Metrics returns the metrics tracker.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Status returns the transient status message.
func (app *Application) Status() string {
	return app.status
}

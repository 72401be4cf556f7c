package app

import (
	"fmt"

	"github.com/dshills/indentscope/internal/animate"
	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/config/watcher"
	"github.com/dshills/indentscope/internal/editor"
	"github.com/dshills/indentscope/internal/event"
	"github.com/dshills/indentscope/internal/indent"
	"github.com/dshills/indentscope/internal/renderer"
	"github.com/dshills/indentscope/internal/renderer/core"
	"github.com/dshills/indentscope/internal/renderer/style"
	"github.com/dshills/indentscope/internal/scope"
)

// sampleText is shown when neither files nor text are given.
const sampleText = `package main

import "fmt"

func main() {
	for i := 0; i < 3; i++ {
		if i%2 == 0 {
			fmt.Println("even", i)
		} else {
			fmt.Println("odd", i)
		}
	}

	switch {
	case true:
		fmt.Println("done")
	}
}
`

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Event Bus - messaging foundation
	app.bus = event.NewBus(event.WithLogger(app.logger))

	// 2. Settings
	app.config = config.NewManager(app.opts.ConfigPath, config.WithLogger(app.logger))
	settings, err := app.config.Load()
	if err != nil {
		app.logger.Warn("using previous settings: %v", err)
		app.status = "config: " + err.Error()
	}
	settings, err = app.override(settings)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.settings = settings

	// 3. Highlight groups
	app.styles = style.NewRegistry(core.ColorDefault)
	app.defineGroups(settings)

	// 4. Host editor and scope provider
	app.editor = editor.New(editor.WithBus(app.bus), editor.WithLogger(app.logger))
	if err := app.openBuffers(); err != nil {
		return &InitError{Component: "editor", Err: err}
	}
	app.scopes = editor.NewIndentScopes(app.editor)

	// 5. Animation scheduler, scope controller and indent engine
	vars := app.editor.Vars()
	app.anim = animate.New(app.sched,
		animate.WithToggles(vars),
		animate.WithLogger(app.logger),
	)
	app.ctrl = scope.New(app.editor, app.editor.Decorations(), redrawer{app}, app.anim, settings,
		scope.WithHighlights(app.styles),
		scope.WithLogger(app.logger),
	)
	app.engine = indent.New(app.editor, app.editor.Decorations(), settings,
		indent.WithScopes(app.ctrl),
		indent.WithToggles(vars),
		indent.WithLogger(app.logger),
	)
	app.cancelScopes = app.scopes.Subscribe(app.ctrl.OnScope)

	// 6. Composer
	app.composer = renderer.New(app.backend, app.styles, renderer.WithLogger(app.logger))

	// 7. Lifecycle wiring
	app.subs = newSubscriptionManager(app)
	if err := app.subs.setupSubscriptions(); err != nil {
		return &InitError{Component: "subscriptions", Err: err}
	}

	// 8. Live reload
	if app.opts.Watch && app.opts.ConfigPath != "" {
		w, err := watcher.New(app.opts.ConfigPath, func(watcher.Event) {
			app.sched.Defer(app.reload)
		}, watcher.WithLogger(app.logger))
		if err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
		app.watcher = w
	}

	app.logger.Info("bootstrap complete: %d buffers", len(app.buffers))
	return nil
}

// override applies the command line overrides to s.
func (app *Application) override(s config.Settings) (config.Settings, error) {
	if app.opts.FPS != 0 {
		if app.opts.FPS < 0 || app.opts.FPS > config.MaxFPS {
			return s, fmt.Errorf("%w: fps %d not in 1..%d", ErrInvalidOption, app.opts.FPS, config.MaxFPS)
		}
		s.Animate.FPS = app.opts.FPS
	}
	if app.opts.Style != "" {
		st := config.Style(app.opts.Style)
		if !st.Valid() {
			return s, fmt.Errorf("%w: style %q", ErrInvalidOption, app.opts.Style)
		}
		s.Animate.Style = st
	}
	return s, nil
}

// defineGroups gives every highlight group named by s that the registry
// does not know a color of its own, cycling through a rainbow.
func (app *Application) defineGroups(s config.Settings) {
	seen := make(map[string]bool)
	var missing []string
	for _, hls := range [][]string{s.Indent.Hl, s.Scope.Hl, s.Chunk.Hl} {
		for _, name := range hls {
			if seen[name] || app.styles.Defined(name) {
				continue
			}
			seen[name] = true
			missing = append(missing, name)
		}
	}
	for i, name := range app.styles.DefineRainbow(len(missing)) {
		if st, ok := app.styles.Lookup(name); ok {
			app.styles.Define(missing[i], st)
		}
	}
}

// openBuffers loads the files to show, or the fallback text.
func (app *Application) openBuffers() error {
	for _, path := range app.opts.Files {
		b, err := app.editor.LoadFile(path)
		if err != nil {
			return NewOperationError("open", path, err)
		}
		app.buffers = append(app.buffers, b.ID())
	}
	if len(app.buffers) > 0 {
		return nil
	}

	text, name := app.opts.Text, "[text]"
	if text == "" {
		text, name = sampleText, "[sample]"
	}
	b := app.editor.OpenBuffer(text, editor.WithName(name), editor.WithFiletype("go"))
	app.buffers = append(app.buffers, b.ID())
	return nil
}

// redrawer forwards redraw requests to the editor and schedules a frame.
type redrawer struct {
	app *Application
}

func (r redrawer) Redraw(win, from, to int) {
	r.app.editor.Redraw(win, from, to)
	r.app.requestFrame()
}

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/indentscope/internal/event"
	"github.com/dshills/indentscope/internal/renderer"
	"github.com/dshills/indentscope/internal/renderer/backend"
	"github.com/dshills/indentscope/internal/renderer/core"
)

// statusStyle is the style of the bottom row.
var statusStyle = core.NewStyle(core.ColorWhite).WithBackground(core.ColorFromIndex(238))

// start initializes the backend, opens one window per buffer and queues
// the first frame.
func (app *Application) start() error {
	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}

	width, _ := app.backend.Size()
	for _, buf := range app.buffers {
		if _, err := app.editor.OpenWindow(buf, max(width, 1), 1); err != nil {
			return &InitError{Component: "editor", Err: err}
		}
	}
	app.layout()

	app.engine.SetFocus(app.editor.CurrentWindow())
	for _, w := range app.editor.Windows() {
		app.scopes.Update(w.ID())
	}
	app.requestFrame()
	return nil
}

// pollInput reads terminal events and posts them to the loop until ctx
// is done or the backend shuts down.
func (app *Application) pollInput(ctx context.Context) {
	for {
		ev := app.backend.PollEvent()
		if ctx.Err() != nil {
			return
		}
		switch ev.Type {
		case backend.EventNone:
			return
		case backend.EventInterrupt:
			continue
		}
		app.sched.Defer(func() { app.handleEvent(ev) })
	}
}

// handleEvent processes a backend event on the loop.
func (app *Application) handleEvent(ev backend.Event) {
	app.metrics.RecordInput()
	switch ev.Type {
	case backend.EventResize:
		app.layout()
	case backend.EventKey:
		app.handleKey(ev)
	default:
		return
	}
	app.requestFrame()
}

// layout stacks the windows vertically above the status row.
func (app *Application) layout() {
	wins := app.editor.Windows()
	if len(wins) == 0 {
		return
	}
	width, height := app.backend.Size()
	rows := max(height-1, len(wins))
	each := rows / len(wins)

	y := 0
	for i, w := range wins {
		h := each
		if i == len(wins)-1 {
			h = rows - y
		}
		if err := app.editor.Place(w.ID(), 0, y, max(width, 1), h); err != nil {
			app.logger.Debug("placing window %d: %v", w.ID(), err)
		}
		y += h
	}
	app.backend.Clear()
	app.requestFrame()
}

// requestFrame queues one frame for the next loop turn.
func (app *Application) requestFrame() {
	if app.framePending {
		return
	}
	app.framePending = true
	app.sched.Defer(app.frame)
}

// frame redraws the dirty rows of every window, then the status row.
func (app *Application) frame() {
	app.framePending = false
	start := time.Now()

	frames := app.editor.Tracker().Take()
	deco := app.editor.Decorations()
	for _, w := range app.editor.Windows() {
		f, ok := frames[w.ID()]
		if !ok {
			continue
		}
		info := w.Info()
		deco.Clear(w.ID())
		if err := app.engine.OnViewport(w.ID(), info.Buffer, info.Top, info.Bottom); err != nil {
			app.logger.Debug("frame: %v", err)
		}
		app.composer.DrawPane(renderer.Pane{X: w.X, Y: w.Y, Info: info, Buffer: w.Buffer()}, deco, f)
	}

	app.drawStatus()
	app.placeCursor()
	app.composer.Show()
	app.metrics.RecordFrame(time.Since(start))
}

func (app *Application) drawStatus() {
	_, height := app.backend.Size()
	if height < 2 {
		return
	}
	app.composer.DrawStatus(height-1, app.statusLine(), statusStyle)
}

// statusLine describes the current window.
func (app *Application) statusLine() string {
	var parts []string
	if w, ok := app.editor.Win(app.editor.CurrentWindow()); ok {
		info := w.Info()
		b := w.Buffer()
		parts = append(parts, b.Info().Name, fmt.Sprintf("%d/%d", info.CursorLine, b.LineCount()))
		if r, ok := app.ctrl.Visible(w.ID()); ok {
			parts = append(parts, fmt.Sprintf("scope %d-%d", r.From, r.To))
		}
	}
	if !app.toggled(guidesToggle) {
		parts = append(parts, "guides off")
	}
	if !app.toggled(animationToggle) {
		parts = append(parts, "animation off")
	}
	if app.status != "" {
		parts = append(parts, app.status)
	}
	return " " + strings.Join(parts, "  ")
}

// placeCursor puts the terminal cursor on the first non-blank column of
// the cursor line.
func (app *Application) placeCursor() {
	w, ok := app.editor.Win(app.editor.CurrentWindow())
	if !ok {
		app.backend.HideCursor()
		return
	}
	info := w.Info()
	col := w.Buffer().Indent(info.CursorLine) - info.LeftCol
	if col < 0 || col >= info.Width {
		app.backend.HideCursor()
		return
	}
	app.backend.ShowCursor(w.X+col, w.Y+info.CursorLine-info.Top)
}

// reload loads the settings again and installs them.
func (app *Application) reload() {
	settings, err := app.config.Load()
	if err == nil {
		settings, err = app.override(settings)
	}
	app.metrics.RecordReload(err)

	if err == nil {
		app.settings = settings
		app.defineGroups(settings)
		app.engine.Reset(settings)
		app.ctrl.Reset(settings)
		app.redrawAll()
	}

	payload := event.ConfigReloaded{Path: app.config.Path(), Err: err}
	if perr := app.bus.Publish(context.Background(), event.NewEvent(event.TopicConfigReloaded, payload, "app")); perr != nil {
		app.logger.Debug("publish %s: %v", event.TopicConfigReloaded, perr)
	}
	app.requestFrame()
}

func (app *Application) redrawAll() {
	for _, w := range app.editor.Windows() {
		app.editor.Tracker().RedrawAll(w.ID())
	}
	app.requestFrame()
}

func (app *Application) setStatus(msg string) {
	app.status = msg
	app.requestFrame()
}

package app

import (
	"github.com/dshills/indentscope/internal/animate"
	"github.com/dshills/indentscope/internal/editor"
	"github.com/dshills/indentscope/internal/indent"
	"github.com/dshills/indentscope/internal/renderer/backend"
)

// Global toggles flipped from the keyboard.
const (
	guidesToggle    = indent.ToggleKey
	animationToggle = animate.DefaultTogglePrefix
)

// handleKey maps a key to a viewer command.
func (app *Application) handleKey(ev backend.Event) {
	if ev.Key == backend.KeyCtrlC || ev.Key == backend.KeyEscape {
		app.Stop()
		return
	}

	w, ok := app.editor.Win(app.editor.CurrentWindow())
	if !ok {
		if ev.Key == backend.KeyRune && ev.Rune == 'q' {
			app.Stop()
		}
		return
	}
	win := w.ID()
	page := max(w.Height-1, 1)

	var err error
	switch ev.Key {
	case backend.KeyUp:
		err = app.editor.MoveCursor(win, -1)
	case backend.KeyDown:
		err = app.editor.MoveCursor(win, 1)
	case backend.KeyPageUp:
		err = app.editor.Scroll(win, -page)
	case backend.KeyPageDown:
		err = app.editor.Scroll(win, page)
	case backend.KeyHome:
		err = app.editor.SetCursor(win, 1)
	case backend.KeyEnd:
		err = app.editor.SetCursor(win, w.Buffer().LineCount())
	case backend.KeyLeft:
		err = app.editor.ScrollLeft(win, -1)
	case backend.KeyRight:
		err = app.editor.ScrollLeft(win, 1)
	case backend.KeyTab:
		err = app.focusNext()
	case backend.KeyRune:
		err = app.handleRune(w, ev.Rune)
	}
	if err != nil {
		app.logger.Debug("key %d: %v", ev.Key, err)
	}
}

func (app *Application) handleRune(w *editor.Window, r rune) error {
	win := w.ID()
	switch r {
	case 'q':
		app.Stop()
	case 'k':
		return app.editor.MoveCursor(win, -1)
	case 'j':
		return app.editor.MoveCursor(win, 1)
	case 'h':
		return app.editor.ScrollLeft(win, -1)
	case 'l':
		return app.editor.ScrollLeft(win, 1)
	case 'g':
		return app.editor.SetCursor(win, 1)
	case 'G':
		return app.editor.SetCursor(win, w.Buffer().LineCount())
	case '<':
		return app.editor.ScrollLeft(win, -w.Info().IndentWidth())
	case '>':
		return app.editor.ScrollLeft(win, w.Info().IndentWidth())
	case 'a':
		on := app.editor.Vars().ToggleGlobal(animationToggle)
		app.setStatus("animation " + onOff(on))
	case 'i':
		on := app.editor.Vars().ToggleGlobal(guidesToggle)
		app.redrawAll()
		app.setStatus("guides " + onOff(on))
	case 'r':
		app.reload()
	}
	return nil
}

// focusNext moves focus to the window after the current one.
func (app *Application) focusNext() error {
	wins := app.editor.Windows()
	if len(wins) < 2 {
		return nil
	}
	cur := app.editor.CurrentWindow()
	for i, w := range wins {
		if w.ID() == cur {
			return app.editor.Focus(wins[(i+1)%len(wins)].ID())
		}
	}
	return app.editor.Focus(wins[0].ID())
}

// toggled reports whether a global toggle is on. Unset toggles are on.
func (app *Application) toggled(key string) bool {
	v, ok := app.editor.Vars().GlobalVar(key)
	return !ok || v
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

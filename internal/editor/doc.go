// Package editor is a small in-memory editor host. It owns line buffers
// and windows, stores toggle variables, collects the decorations of each
// frame and records redraw requests, so indent guides and scopes can run
// without an embedding editor. IndentScopes supplies scopes found from
// indentation.
package editor

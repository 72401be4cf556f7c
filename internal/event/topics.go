package event

// Lifecycle topics.
const (
	TopicWindowClosed   Topic = "window.closed"
	TopicWindowFocused  Topic = "window.focused"
	TopicBufferDeleted  Topic = "buffer.deleted"
	TopicConfigReloaded Topic = "config.reloaded"

	// TopicAll matches every published topic.
	TopicAll Topic = WildcardMulti
)

// WindowClosed is published when a window goes away.
type WindowClosed struct {
	Win int
}

// WindowFocused is published when the current window changes.
type WindowFocused struct {
	Win  int
	Prev int
}

// BufferDeleted is published when a buffer is deleted.
type BufferDeleted struct {
	Buf int
}

// ConfigReloaded is published after a settings reload attempt. Err is nil
// when the new settings took effect.
type ConfigReloaded struct {
	Path string
	Err  error
}

// Editing topics.
const (
	TopicBufferChanged Topic = "buffer.changed"
	TopicCursorMoved   Topic = "cursor.moved"
)

// BufferChanged is published after the text of a buffer changed.
type BufferChanged struct {
	Buf  int
	Tick uint64
}

// CursorMoved is published when the cursor of a window moved to another
// line or the window scrolled.
type CursorMoved struct {
	Win  int
	Line int
}

package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{OpCreate | OpWrite, "write|create"},
		{Operation(64), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestConvertOp(t *testing.T) {
	tests := []struct {
		in   fsnotify.Op
		want Operation
	}{
		{fsnotify.Write, OpWrite},
		{fsnotify.Create | fsnotify.Write, OpCreate | OpWrite},
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
		{fsnotify.Chmod, 0},
	}
	for _, tt := range tests {
		if got := convertOp(tt.in); got != tt.want {
			t.Errorf("convertOp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWatcher_DetectsFileModification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "indentscope.toml")
	if err := os.WriteFile(path, []byte("[indent]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	events := make(chan Event, 10)
	w, err := New(path, func(ev Event) { events <- ev }, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("[scope]\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case ev := <-events:
		if ev.Path != w.Path() {
			t.Errorf("Path = %q, want %q", ev.Path, w.Path())
		}
		if ev.Op&OpWrite == 0 && ev.Op&OpCreate == 0 {
			t.Errorf("Op = %v, want a write", ev.Op)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_DetectsFileCreation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "indentscope.json")

	events := make(chan Event, 10)
	w, err := New(path, func(ev Event) { events <- ev }, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Op&OpCreate == 0 {
			t.Errorf("Op = %v, want create", ev.Op)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("creation not reported")
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "indentscope.toml")

	var calls atomic.Int32
	w, err := New(path, func(Event) { calls.Add(1) }, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("handler called %d times for another file", n)
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "indentscope.toml")
	if _, err := New(path, nil); err == nil {
		t.Error("New() on a missing directory should fail")
	}
}

func TestWatcher_Close(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "indentscope.toml")

	var calls atomic.Int32
	w, err := New(path, func(Event) { calls.Add(1) }, WithDebounce(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("pending change delivered after Close: %d calls", n)
	}
}

package loader

import (
	"fmt"
	"io"

	"github.com/tidwall/gjson"
)

// JSONLoader loads configuration from JSON files.
type JSONLoader struct {
	fs   FileSystem
	path string
}

// NewJSONLoader creates a JSON loader for the given path.
func NewJSONLoader(path string) *JSONLoader {
	return NewJSONLoaderWithFS(DefaultFS(), path)
}

// NewJSONLoaderWithFS creates a JSON loader with a custom file system.
func NewJSONLoaderWithFS(fs FileSystem, path string) *JSONLoader {
	return &JSONLoader{fs: fs, path: path}
}

// Load reads configuration from the configured path.
func (l *JSONLoader) Load() (map[string]any, error) {
	data, err := readFile(l.fs, l.path)
	if err != nil || data == nil {
		return nil, err
	}
	return l.parse(l.path, data)
}

// LoadFromReader reads configuration from an io.Reader.
func (l *JSONLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.parse("<reader>", data)
}

func (l *JSONLoader) parse(source string, data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: source, Message: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ParseError{Path: source, Message: "top level value must be an object"}
	}
	config, ok := root.Value().(map[string]any)
	if !ok {
		return nil, &ParseError{Path: source, Message: "top level value must be an object"}
	}
	return config, nil
}

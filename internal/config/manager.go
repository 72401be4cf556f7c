package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/indentscope/internal/config/loader"
	"github.com/dshills/indentscope/internal/logging"
)

// Manager resolves settings from defaults, a settings file and the
// environment, and keeps the last good result.
//
// Functions decoded from a Lua file stay bound to the script that defined
// them, so the manager keeps that script open until a later load replaces
// it or Close is called. Lua functions are not safe for concurrent use;
// call Load and the decoded functions from one goroutine.
type Manager struct {
	mu sync.RWMutex

	path      string
	fs        loader.FileSystem
	envPrefix string
	logger    *logging.Logger

	settings Settings
	loads    int
	script   *loader.LuaLoader
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithFileSystem sets the file system settings files are read from.
func WithFileSystem(fs loader.FileSystem) ManagerOption {
	return func(m *Manager) {
		m.fs = fs
	}
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables environment overrides.
func WithEnvPrefix(prefix string) ManagerOption {
	return func(m *Manager) {
		m.envPrefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager for the settings file at path. An empty
// path means defaults and environment only.
func NewManager(path string, opts ...ManagerOption) *Manager {
	m := &Manager{
		path:      path,
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		logger:    logging.Null,
		settings:  Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.WithComponent("config")
	return m
}

// Path returns the settings file path.
func (m *Manager) Path() string {
	return m.path
}

// Load resolves the settings. On failure the previous settings stay in
// effect and the error describes every problem found.
func (m *Manager) Load() (Settings, error) {
	data := make(map[string]any)

	var script *loader.LuaLoader
	if m.path != "" {
		l, err := loader.ForPath(m.fs, m.path)
		if err != nil {
			return m.Settings(), err
		}
		if lua, ok := l.(*loader.LuaLoader); ok {
			script = lua
		}
		file, err := l.Load()
		if err != nil {
			closeScript(script)
			m.logger.Warn("loading %s: %v", m.path, err)
			return m.Settings(), err
		}
		data = loader.DeepMerge(data, file)
	}

	if m.envPrefix != "" {
		env, err := loader.NewEnvLoader(m.envPrefix).Load()
		if err != nil {
			closeScript(script)
			return m.Settings(), err
		}
		data = loader.DeepMerge(data, env)
	}

	s, err := Decode(data, Default())
	if err == nil {
		err = s.Validate()
	}
	if err != nil {
		closeScript(script)
		m.logger.Warn("rejecting settings: %v", err)
		return m.Settings(), err
	}

	m.mu.Lock()
	prev := m.script
	m.settings = s
	m.script = script
	m.loads++
	m.mu.Unlock()
	closeScript(prev)

	m.logger.Info("settings loaded from %s", m.describe())
	return s, nil
}

// Settings returns the current settings.
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Loads returns the number of successful loads.
func (m *Manager) Loads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads
}

// Close releases the Lua script behind the current settings.
func (m *Manager) Close() error {
	m.mu.Lock()
	script := m.script
	m.script = nil
	m.mu.Unlock()
	return closeScript(script)
}

func (m *Manager) describe() string {
	var parts []string
	if m.path != "" {
		parts = append(parts, filepath.Base(m.path))
	}
	if m.envPrefix != "" {
		parts = append(parts, m.envPrefix+"*")
	}
	if len(parts) == 0 {
		return "defaults"
	}
	return fmt.Sprintf("defaults, %s", strings.Join(parts, ", "))
}

func closeScript(l *loader.LuaLoader) error {
	if l == nil {
		return nil
	}
	return l.Close()
}

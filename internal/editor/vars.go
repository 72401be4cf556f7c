package editor

import "sync"

// Vars holds boolean editor variables, global and per buffer. It
// implements host.Toggles.
type Vars struct {
	mu     sync.RWMutex
	global map[string]bool
	buffer map[int]map[string]bool
}

// NewVars creates an empty variable store.
func NewVars() *Vars {
	return &Vars{
		global: make(map[string]bool),
		buffer: make(map[int]map[string]bool),
	}
}

// GlobalVar returns the global variable key.
func (v *Vars) GlobalVar(key string) (bool, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.global[key]
	return val, ok
}

// BufferVar returns the variable key local to buf.
func (v *Vars) BufferVar(buf int, key string) (bool, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.buffer[buf][key]
	return val, ok
}

// SetGlobal sets a global variable.
func (v *Vars) SetGlobal(key string, val bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.global[key] = val
}

// SetBuffer sets a variable local to buf.
func (v *Vars) SetBuffer(buf int, key string, val bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	m, ok := v.buffer[buf]
	if !ok {
		m = make(map[string]bool)
		v.buffer[buf] = m
	}
	m[key] = val
}

// ToggleGlobal flips a global variable, treating unset as true, and
// returns the new value.
func (v *Vars) ToggleGlobal(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	val, ok := v.global[key]
	if !ok {
		val = true
	}
	val = !val
	v.global[key] = val
	return val
}

// UnsetGlobal removes a global variable.
func (v *Vars) UnsetGlobal(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.global, key)
}

// DropBuffer removes every variable of buf.
func (v *Vars) DropBuffer(buf int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.buffer, buf)
}

// Package style maps highlight group names to styles.
//
// Guides name their highlight by group, the way an editor does, and the
// composer resolves the group when it draws. Default groups are derived
// from the background color so guides stay subdued on light and dark
// terminals alike.
package style

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/indentscope/internal/renderer/core"
)

// Default group names.
const (
	GroupIndent = "IndentScopeIndent"
	GroupScope  = "IndentScopeScope"
	GroupChunk  = "IndentScopeChunk"
	GroupNormal = "Normal"

	// UnderlineSuffix is appended to a group name to form its underline group.
	UnderlineSuffix = "Underline"

	// RainbowPrefix names the groups made by DefineRainbow.
	RainbowPrefix = "IndentScopeRainbow"
)

// Registry holds highlight groups. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	groups     map[string]core.Style
	background core.Color
}

// NewRegistry creates a registry with the default groups derived from
// background. Pass core.ColorDefault when the background is unknown.
func NewRegistry(background core.Color) *Registry {
	r := &Registry{
		groups:     make(map[string]core.Style),
		background: background,
	}
	for name, s := range DefaultGroups(background) {
		r.groups[name] = s
	}
	return r
}

// DefaultGroups returns the default group styles for a background.
func DefaultGroups(background core.Color) map[string]core.Style {
	bg := background
	if bg.IsDefault() || bg.Indexed {
		bg = core.ColorBlack
	}
	fg := core.ColorWhite
	if isLight(bg) {
		fg = core.ColorBlack
	}
	return map[string]core.Style{
		GroupNormal: core.DefaultStyle(),
		GroupIndent: core.NewStyle(bg.Blend(fg, 0.25)),
		GroupScope:  core.NewStyle(core.FromHCL(210, 0.45, 0.65)),
		GroupChunk:  core.NewStyle(core.FromHCL(35, 0.55, 0.70)),
	}
}

func isLight(c core.Color) bool {
	return int(c.R)*299+int(c.G)*587+int(c.B)*114 > 128*1000
}

// Define sets the style of a group, replacing any previous definition.
func (r *Registry) Define(name string, s core.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[name] = s
}

// Lookup returns the style of a group.
func (r *Registry) Lookup(name string) (core.Style, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.groups[name]
	return s, ok
}

// Defined reports whether a group exists.
func (r *Registry) Defined(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// UnderlineGroup returns the underline variant of a group, defining it
// from the base group's foreground when it does not exist yet.
func (r *Registry) UnderlineGroup(name string) string {
	under := name + UnderlineSuffix
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[under]; !ok {
		base, ok := r.groups[name]
		if !ok {
			base = core.DefaultStyle()
		}
		r.groups[under] = core.DefaultStyle().WithForeground(base.Foreground).Underline()
	}
	return under
}

// DefineRainbow defines n groups with evenly spaced hues and returns their
// names in order, for cycling guide colors by indent level.
func (r *Registry) DefineRainbow(n int) []string {
	if n <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, n)
	for i := range n {
		hue := float64(i) * 360 / float64(n)
		c := core.FromHCL(hue, 0.35, 0.55)
		if isLight(r.background) {
			c = c.Darken(0.3)
		}
		names[i] = fmt.Sprintf("%s%d", RainbowPrefix, i+1)
		r.groups[names[i]] = core.NewStyle(c)
	}
	return names
}

// Names returns every defined group name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

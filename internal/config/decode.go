package config

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dshills/indentscope/internal/animate/easing"
	"github.com/dshills/indentscope/internal/config/loader"
	"github.com/dshills/indentscope/internal/host"
)

// Decode applies data on top of base and returns the result.
//
// Keys are snake_case and mirror the Settings structure. Every problem is
// collected into a *ValidationError; the returned settings are still usable
// with the offending keys left at their base values.
func Decode(data map[string]any, base Settings) (Settings, error) {
	d := &decoder{errs: &ValidationError{}}
	s := base
	// Copy slices so the caller's base is never aliased.
	s.Indent.Hl = append([]string(nil), base.Indent.Hl...)
	s.Scope.Hl = append([]string(nil), base.Scope.Hl...)
	s.Chunk.Hl = append([]string(nil), base.Chunk.Hl...)

	for _, key := range sortedKeys(data) {
		val := data[key]
		switch key {
		case "indent":
			d.section(key, val, func(k string, v any) bool {
				return d.indent(&s.Indent, k, v)
			})
		case "scope":
			d.section(key, val, func(k string, v any) bool {
				return d.scope(&s.Scope, k, v)
			})
		case "chunk":
			d.section(key, val, func(k string, v any) bool {
				return d.chunk(&s.Chunk, k, v)
			})
		case "animate":
			d.section(key, val, func(k string, v any) bool {
				return d.animate(&s.Animate, k, v)
			})
		case "filter":
			d.filter(&s, val)
		default:
			d.errs.Add(key, nil, ErrUnknownSetting, "")
		}
	}
	return s, d.errs.AsError()
}

type decoder struct {
	errs *ValidationError
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// section walks a table, reporting keys that field does not recognize.
func (d *decoder) section(name string, val any, field func(key string, v any) bool) {
	m, ok := val.(map[string]any)
	if !ok {
		d.errs.Add(name, val, ErrTypeMismatch, "expected a table")
		return
	}
	for _, k := range sortedKeys(m) {
		if !field(name+"."+k, m[k]) {
			d.errs.Add(name+"."+k, nil, ErrUnknownSetting, "")
		}
	}
}

func (d *decoder) indent(s *IndentSettings, path string, v any) bool {
	switch path {
	case "indent.enabled":
		d.boolean(path, v, &s.Enabled)
	case "indent.char":
		d.text(path, v, &s.Char)
	case "indent.hl":
		d.hl(path, v, &s.Hl)
	case "indent.priority":
		d.integer(path, v, &s.Priority)
	case "indent.only_scope":
		d.boolean(path, v, &s.OnlyScope)
	case "indent.only_current":
		d.boolean(path, v, &s.OnlyCurrent)
	default:
		return false
	}
	return true
}

func (d *decoder) scope(s *ScopeSettings, path string, v any) bool {
	switch path {
	case "scope.enabled":
		d.boolean(path, v, &s.Enabled)
	case "scope.char":
		d.text(path, v, &s.Char)
	case "scope.underline":
		d.boolean(path, v, &s.Underline)
	case "scope.priority":
		d.integer(path, v, &s.Priority)
	case "scope.only_current":
		d.boolean(path, v, &s.OnlyCurrent)
	case "scope.hl":
		d.hl(path, v, &s.Hl)
	case "scope.always_overlap":
		d.boolean(path, v, &s.AlwaysOverlap)
	default:
		return false
	}
	return true
}

func (d *decoder) chunk(s *ChunkSettings, path string, v any) bool {
	switch path {
	case "chunk.enabled":
		d.boolean(path, v, &s.Enabled)
	case "chunk.priority":
		d.integer(path, v, &s.Priority)
	case "chunk.only_current":
		d.boolean(path, v, &s.OnlyCurrent)
	case "chunk.hl":
		d.hl(path, v, &s.Hl)
	case "chunk.char":
		d.section(path, v, func(k string, v any) bool {
			switch k {
			case "chunk.char.corner_top":
				d.text(k, v, &s.Char.CornerTop)
			case "chunk.char.corner_bottom":
				d.text(k, v, &s.Char.CornerBottom)
			case "chunk.char.horizontal":
				d.text(k, v, &s.Char.Horizontal)
			case "chunk.char.vertical":
				d.text(k, v, &s.Char.Vertical)
			case "chunk.char.arrow":
				d.text(k, v, &s.Char.Arrow)
			default:
				return false
			}
			return true
		})
	default:
		return false
	}
	return true
}

func (d *decoder) animate(s *AnimateSettings, path string, v any) bool {
	switch path {
	case "animate.enabled":
		d.boolean(path, v, &s.Enabled)
	case "animate.style":
		var style string
		if d.text(path, v, &style) {
			s.Style = Style(style)
		}
	case "animate.easing":
		if fn, ok := v.(loader.Func); ok {
			s.EasingFunc = scriptEasing(fn)
			break
		}
		if d.text(path, v, &s.Easing) {
			s.EasingFunc = nil
		}
	case "animate.duration":
		if m, ok := v.(map[string]any); ok {
			d.section(path, m, func(k string, v any) bool {
				switch k {
				case "animate.duration.step":
					d.millis(k, v, &s.Step)
				case "animate.duration.total":
					d.millis(k, v, &s.Total)
				default:
					return false
				}
				return true
			})
			break
		}
		d.millis(path, v, &s.Total)
	case "animate.fps":
		d.integer(path, v, &s.FPS)
	default:
		return false
	}
	return true
}

// filter accepts a function of the buffer info or a table of rules.
func (d *decoder) filter(s *Settings, v any) {
	switch val := v.(type) {
	case loader.Func:
		s.Filter = scriptFilter(val)
	case map[string]any:
		var rules filterRules
		d.section("filter", val, func(k string, v any) bool {
			switch k {
			case "filter.buftypes":
				d.list(k, v, &rules.buftypes)
			case "filter.exclude_filetypes":
				d.list(k, v, &rules.excludeFiletypes)
			default:
				return false
			}
			return true
		})
		s.Filter = rules.accepts
	default:
		d.errs.Add("filter", v, ErrTypeMismatch, "expected a function or a table")
	}
}

type filterRules struct {
	buftypes         []string
	excludeFiletypes []string
}

func (r filterRules) accepts(info host.BufferInfo) bool {
	for _, ft := range r.excludeFiletypes {
		if info.Filetype == ft {
			return false
		}
	}
	if r.buftypes == nil {
		return DefaultFilter(info)
	}
	for _, bt := range r.buftypes {
		if info.Buftype == bt {
			return true
		}
	}
	return false
}

// scriptEasing adapts a script function to easing.Func. Calls that fail
// or return a non-number fall back to linear.
func scriptEasing(fn loader.Func) easing.Func {
	linear := easing.MustLookup(string(easing.Linear))
	return func(t, b, c, dur float64) float64 {
		res, err := fn(t, b, c, dur)
		if err != nil || len(res) == 0 {
			return linear(t, b, c, dur)
		}
		if n, ok := number(res[0]); ok && !math.IsNaN(n) {
			return n
		}
		return linear(t, b, c, dur)
	}
}

// scriptFilter adapts a script function to Filter. A failed call rejects
// the buffer.
func scriptFilter(fn loader.Func) Filter {
	return func(info host.BufferInfo) bool {
		res, err := fn(map[string]any{
			"id":       info.ID,
			"name":     info.Name,
			"filetype": info.Filetype,
			"buftype":  info.Buftype,
		})
		if err != nil || len(res) == 0 {
			return false
		}
		ok, _ := res[0].(bool)
		return ok
	}
}

func (d *decoder) boolean(path string, v any, dst *bool) {
	b, ok := v.(bool)
	if !ok {
		d.errs.Add(path, v, ErrTypeMismatch, "expected a boolean")
		return
	}
	*dst = b
}

func (d *decoder) text(path string, v any, dst *string) bool {
	str, ok := v.(string)
	if !ok {
		d.errs.Add(path, v, ErrTypeMismatch, "expected a string")
		return false
	}
	*dst = str
	return true
}

func (d *decoder) integer(path string, v any, dst *int) {
	n, ok := number(v)
	if !ok {
		d.errs.Add(path, v, ErrTypeMismatch, "expected a number")
		return
	}
	if n != math.Trunc(n) {
		d.errs.Add(path, v, ErrTypeMismatch, "expected an integer")
		return
	}
	*dst = int(n)
}

// millis reads a duration given in milliseconds.
func (d *decoder) millis(path string, v any, dst *time.Duration) {
	n, ok := number(v)
	if !ok {
		d.errs.Add(path, v, ErrTypeMismatch, "expected milliseconds")
		return
	}
	*dst = time.Duration(n * float64(time.Millisecond))
}

func (d *decoder) list(path string, v any, dst *[]string) bool {
	list, ok := v.([]any)
	if !ok {
		d.errs.Add(path, v, ErrTypeMismatch, "expected a list of strings")
		return false
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		str, ok := item.(string)
		if !ok {
			d.errs.Add(fmt.Sprintf("%s[%d]", path, i), item, ErrTypeMismatch, "expected a string")
			return false
		}
		out = append(out, str)
	}
	*dst = out
	return true
}

// hl accepts a single group name or a list of names.
func (d *decoder) hl(path string, v any, dst *[]string) {
	if str, ok := v.(string); ok {
		*dst = []string{str}
		return
	}
	d.list(path, v, dst)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

package loader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const (
	// DefaultLuaTimeout bounds the execution of a configuration script.
	DefaultLuaTimeout = 2 * time.Second

	// DefaultLuaCallTimeout bounds a single call of a script function.
	DefaultLuaCallTimeout = 100 * time.Millisecond
)

var (
	// ErrLuaClosed is returned when calling a function of a closed script.
	ErrLuaClosed = errors.New("lua state closed")

	// ErrLuaTimeout is returned by a function that ran past the call
	// timeout, and by every later call of that function.
	ErrLuaTimeout = errors.New("lua function timed out")
)

// Func is a Lua function returned by a configuration script. It must be
// called from the goroutine that loaded the script.
type Func func(args ...any) ([]any, error)

// LuaLoader runs a Lua script that returns the configuration table.
//
// Functions in the returned table are kept callable as Func values, so
// the Lua state stays open until Close is called or the next Load
// replaces it.
type LuaLoader struct {
	fs      FileSystem
	path    string
	timeout     time.Duration
	callTimeout time.Duration
	state       *luaState
}

type luaState struct {
	L           *lua.LState
	callTimeout time.Duration
	closed      bool
}

// NewLuaLoader creates a Lua loader for the given path.
func NewLuaLoader(path string) *LuaLoader {
	return NewLuaLoaderWithFS(DefaultFS(), path)
}

// NewLuaLoaderWithFS creates a Lua loader with a custom file system.
func NewLuaLoaderWithFS(fs FileSystem, path string) *LuaLoader {
	return &LuaLoader{
		fs:          fs,
		path:        path,
		timeout:     DefaultLuaTimeout,
		callTimeout: DefaultLuaCallTimeout,
	}
}

// SetTimeout changes the script execution timeout.
func (l *LuaLoader) SetTimeout(d time.Duration) {
	if d > 0 {
		l.timeout = d
	}
}

// SetCallTimeout changes the time budget of each call of a script
// function. It applies to scripts loaded afterwards.
func (l *LuaLoader) SetCallTimeout(d time.Duration) {
	if d > 0 {
		l.callTimeout = d
	}
}

// Load runs the script and converts the returned table.
func (l *LuaLoader) Load() (map[string]any, error) {
	data, err := readFile(l.fs, l.path)
	if err != nil || data == nil {
		return nil, err
	}
	return l.run(l.path, string(data))
}

// LoadString runs code as a configuration script.
func (l *LuaLoader) LoadString(code string) (map[string]any, error) {
	return l.run("<string>", code)
}

func (l *LuaLoader) run(source, code string) (map[string]any, error) {
	st := &luaState{L: newLuaState(), callTimeout: l.callTimeout}

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	st.L.SetContext(ctx)

	top := st.L.GetTop()
	err := st.L.DoString(code)
	st.L.RemoveContext()
	if err != nil {
		st.L.Close()
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	if st.L.GetTop() <= top {
		st.L.Close()
		return nil, &ParseError{Path: source, Message: "script must return a table"}
	}
	tbl, ok := st.L.Get(top + 1).(*lua.LTable)
	st.L.SetTop(top)
	if !ok {
		st.L.Close()
		return nil, &ParseError{Path: source, Message: "script must return a table"}
	}

	config, ok := st.toGo(tbl, make(map[*lua.LTable]bool)).(map[string]any)
	if !ok {
		st.L.Close()
		return nil, &ParseError{Path: source, Message: "script must return a table with named fields"}
	}

	l.Close()
	l.state = st
	return config, nil
}

// Close releases the Lua state of the last loaded script.
func (l *LuaLoader) Close() error {
	if l.state != nil && !l.state.closed {
		l.state.closed = true
		l.state.L.Close()
	}
	return nil
}

// newLuaState opens only the libraries a configuration script needs.
func newLuaState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	return L
}

func (st *luaState) toGo(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LFunction:
		return st.wrap(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		return st.tableToGo(v, visited)
	default:
		return lv.String()
	}
}

// tableToGo converts sequences to []any and everything else to maps.
func (st *luaState) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	isArray := true
	maxN, count := 0, 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if kn, ok := k.(lua.LNumber); ok {
			n := int(kn)
			if float64(n) == float64(kn) && n > 0 {
				maxN = max(maxN, n)
				return
			}
		}
		isArray = false
	})

	if isArray && maxN > 0 && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = st.toGo(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = strconv.FormatFloat(float64(kv), 'f', -1, 64)
		default:
			key = k.String()
		}
		m[key] = st.toGo(v, visited)
	})
	return m
}

func (st *luaState) toLua(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case map[string]any:
		t := st.L.NewTable()
		for k, item := range val {
			t.RawSetString(k, st.toLua(item))
		}
		return t
	case []any:
		t := st.L.NewTable()
		for _, item := range val {
			t.Append(st.toLua(item))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(val))
	}
}

// wrap exposes fn as a Func. Each call runs under the call timeout; a
// function that exceeds it stays disabled so later calls fail fast.
func (st *luaState) wrap(fn *lua.LFunction) Func {
	var timedOut bool
	return func(args ...any) (results []any, err error) {
		if st.closed {
			return nil, ErrLuaClosed
		}
		if timedOut {
			return nil, ErrLuaTimeout
		}
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("lua panic: %v", r)
			}
		}()

		L := st.L
		ctx, cancel := context.WithTimeout(context.Background(), st.callTimeout)
		defer cancel()
		L.SetContext(ctx)
		defer L.RemoveContext()

		top := L.GetTop()
		L.Push(fn)
		for _, a := range args {
			L.Push(st.toLua(a))
		}
		if err := L.PCall(len(args), lua.MultRet, nil); err != nil {
			L.SetTop(top)
			if ctx.Err() != nil {
				timedOut = true
				return nil, fmt.Errorf("%w: %v", ErrLuaTimeout, err)
			}
			return nil, err
		}
		n := L.GetTop() - top
		results = make([]any, n)
		for i := 0; i < n; i++ {
			results[i] = st.toGo(L.Get(top+i+1), make(map[*lua.LTable]bool))
		}
		L.SetTop(top)
		return results, nil
	}
}

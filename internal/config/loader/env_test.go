package loader

import (
	"strings"
	"testing"
)

func getByPath(data map[string]any, path string) (any, bool) {
	current := data
	parts := strings.Split(path, ".")
	for i, part := range parts {
		v, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		if current, ok = v.(map[string]any); !ok {
			return nil, false
		}
	}
	return nil, false
}

func TestEnvLoader_Load(t *testing.T) {
	l := NewEnvLoader(DefaultEnvPrefix)
	l.environ = func() []string {
		return []string{
			"INDENTSCOPE_ANIMATE_FPS=30",
			"INDENTSCOPE_SCOPE_ONLY_CURRENT=yes",
			"INDENTSCOPE_ANIMATE_DURATION_TOTAL=250",
			"INDENTSCOPE_CHUNK_CHAR_ARROW=▶",
			"INDENTSCOPE_INDENT_HL=[\"A\",\"B\"]",
			"INDENTSCOPE_ANIMATE_STYLE=down",
			"INDENTSCOPE_BOGUS=1",
			"HOME=/root",
		}
	}

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"animate.fps", int64(30)},
		{"scope.only_current", true},
		{"animate.duration.total", int64(250)},
		{"chunk.char.arrow", "▶"},
		{"animate.style", "down"},
	}
	for _, tt := range tests {
		if got, ok := getByPath(config, tt.path); !ok || got != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.path, got, got, tt.want)
		}
	}

	if hl, ok := getByPath(config, "indent.hl"); !ok || len(hl.([]any)) != 2 {
		t.Errorf("indent.hl = %v", hl)
	}
	if _, ok := config["bogus"]; ok {
		t.Error("variable without a setting name was loaded")
	}
	if _, ok := config["home"]; ok {
		t.Error("unprefixed variable was loaded")
	}
}

func TestEnvLoader_RealEnvironment(t *testing.T) {
	t.Setenv("INDENTSCOPE_INDENT_ENABLED", "false")

	config, err := NewEnvLoader(DefaultEnvPrefix).Load()
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := getByPath(config, "indent.enabled"); !ok || v != false {
		t.Errorf("indent.enabled = %v", v)
	}
}

func TestEnvLoader_envToPath(t *testing.T) {
	l := NewEnvLoader(DefaultEnvPrefix)
	tests := []struct {
		env  string
		want string
	}{
		{"INDENTSCOPE_ANIMATE_FPS", "animate.fps"},
		{"INDENTSCOPE_INDENT_ONLY_SCOPE", "indent.only_scope"},
		{"INDENTSCOPE_SCOPE", ""},
		{"INDENTSCOPE_", ""},
	}
	for _, tt := range tests {
		if got := l.envToPath(tt.env); got != tt.want {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestEnvLoader_parseValue(t *testing.T) {
	l := NewEnvLoader(DefaultEnvPrefix)
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"true", true},
		{"OFF", false},
		{"42", int64(42)},
		{"1.5", 1.5},
		{"out", "out"},
		{"[1", "[1"},
	}
	for _, tt := range tests {
		if got := l.parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}

func TestEnvLoader_AddMapping(t *testing.T) {
	l := NewEnvLoaderWithMapping("X_", nil)
	l.AddMapping("X_GUIDE", "indent.char")
	l.environ = func() []string { return []string{"X_GUIDE=┊"} }

	config, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := getByPath(config, "indent.char"); v != "┊" {
		t.Errorf("indent.char = %v", v)
	}
}

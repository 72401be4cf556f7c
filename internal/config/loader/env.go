package loader

import (
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultEnvPrefix is the prefix of indentscope environment variables.
const DefaultEnvPrefix = "INDENTSCOPE_"

// EnvLoader loads configuration from environment variables.
//
// A variable PREFIX_SECTION_NAME maps to the setting path section.name,
// lower-cased, with the remaining underscores kept: for example
// INDENTSCOPE_SCOPE_ONLY_CURRENT sets scope.only_current. Nested settings
// are reached through the mapping table.
type EnvLoader struct {
	prefix  string
	mapping map[string]string // env var -> config path
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "INDENTSCOPE_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		environ: os.Environ,
	}
}

// defaultEnvMapping maps the variables whose path has more than two parts.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "ANIMATE_DURATION_STEP":    "animate.duration.step",
		prefix + "ANIMATE_DURATION_TOTAL":   "animate.duration.total",
		prefix + "CHUNK_CHAR_CORNER_TOP":    "chunk.char.corner_top",
		prefix + "CHUNK_CHAR_CORNER_BOTTOM": "chunk.char.corner_bottom",
		prefix + "CHUNK_CHAR_HORIZONTAL":    "chunk.char.horizontal",
		prefix + "CHUNK_CHAR_VERTICAL":      "chunk.char.vertical",
		prefix + "CHUNK_CHAR_ARROW":         "chunk.char.arrow",
	}
}

// Load reads environment variables and returns a configuration map.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(config, path, l.parseValue(value))
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// envToPath converts INDENTSCOPE_SCOPE_ONLY_CURRENT to scope.only_current.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, setting, ok := strings.Cut(name, "_")
	if !ok || section == "" || setting == "" {
		return ""
	}
	return section + "." + setting
}

// parseValue attempts to parse the string value into an appropriate type.
func (l *EnvLoader) parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Only parse floats with a decimal point to avoid misinterpreting ints.
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	// JSON arrays, e.g. INDENTSCOPE_INDENT_HL='["A","B"]'.
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		if gjson.Valid(s) {
			return gjson.Parse(s).Value()
		}
	}

	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

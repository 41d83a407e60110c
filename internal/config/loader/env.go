package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "TABLEAU_")
	mapping map[string]string // Env var -> config path
	lookup  func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "TABLEAU_").
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, defaultEnvMapping(prefix))
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		lookup:  os.Environ,
	}
}

// WithEnviron makes the loader read from a fixed KEY=VALUE list.
func (l *EnvLoader) WithEnviron(environ []string) *EnvLoader {
	l.lookup = func() []string { return environ }
	return l
}

// defaultEnvMapping returns the short names for common settings.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "FPS":        "render.fps",
		prefix + "BACKEND":    "render.backend",
		prefix + "BACKGROUND": "render.background",
		prefix + "LOG_LEVEL":  "log.level",
		prefix + "LOG_FILE":   "log.file",
		prefix + "SCRIPT":     "script.path",
		prefix + "WATCH":      "script.watch",
		prefix + "ART":        "art.path",
	}
}

// Load reads environment variables and returns a configuration map.
// Mapped variables win over the generic SECTION_KEY form.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	mapped := make(map[string]string)

	for _, env := range l.lookup() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if _, isMapped := l.mapping[name]; isMapped {
			mapped[name] = value
			continue
		}
		setByPath(config, l.envToPath(name), parseValue(value))
	}

	for name, value := range mapped {
		setByPath(config, l.mapping[name], parseValue(value))
	}

	return config, nil
}

// envToPath converts TABLEAU_RENDER_FPS to render.fps. Words after the
// section are joined with underscores, matching the TOML keys.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok {
		return section
	}
	return section + "." + key
}

// parseValue converts a string to a bool or an integer when it is
// clearly one, and leaves it a string otherwise.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
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

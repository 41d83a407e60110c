package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/tableau/internal/config/loader"
	"github.com/dshills/tableau/internal/renderer/core"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TABLEAU_"

// Limits and choices for validated settings.
const (
	MinFPS = 1
	MaxFPS = 240
)

// Backend names.
const (
	BackendTCell = "tcell"
	BackendANSI  = "ansi"
)

var (
	backends  = []string{BackendTCell, BackendANSI}
	logLevels = []string{"debug", "info", "warn", "error"}
)

// Config is the complete application configuration.
type Config struct {
	Render RenderConfig `toml:"render"`
	Log    LogConfig    `toml:"log"`
	Script ScriptConfig `toml:"script"`
	Art    ArtConfig    `toml:"art"`
}

// RenderConfig controls the frame loop and the output backend.
type RenderConfig struct {
	FPS        int    `toml:"fps"`
	Backend    string `toml:"backend"`
	Background string `toml:"background"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `toml:"level"`
	// File is the log path. "-" disables logging.
	File string `toml:"file"`
}

// ScriptConfig selects the Lua scene script.
type ScriptConfig struct {
	// Path is the script file. Empty runs the built-in demo.
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// ArtConfig selects the art sheet.
type ArtConfig struct {
	// Path is the YAML sheet. Empty uses the built-in card sheet.
	Path string `toml:"path"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			FPS:        30,
			Backend:    BackendTCell,
			Background: "default",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(os.TempDir(), "tableau.log"),
		},
	}
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	fs  loader.FileSystem
	env *loader.EnvLoader
}

// WithFileSystem reads the config file from fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnviron reads overrides from a fixed KEY=VALUE list instead of the
// process environment.
func WithEnviron(environ []string) Option {
	return func(o *loadOptions) {
		o.env = loader.NewEnvLoader(EnvPrefix).WithEnviron(environ)
	}
}

// Load builds the configuration from the defaults, the TOML file at path
// and the environment, in increasing priority. A missing file is not an
// error. The result is not validated; call Validate after applying any
// command line overrides.
func Load(path string, opts ...Option) (*Config, error) {
	o := loadOptions{
		fs:  loader.DefaultFS(),
		env: loader.NewEnvLoader(EnvPrefix),
	}
	for _, opt := range opts {
		opt(&o)
	}

	layers := []loader.Loader{
		loader.NewTOMLLoaderWithFS(o.fs, path),
		o.env,
	}
	var merged map[string]any
	for _, l := range layers {
		data, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	cfg := Default()
	if err := decode(merged, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode applies a raw map over cfg by round-tripping it through TOML,
// so raw values get the same type checks as the file.
func decode(data map[string]any, cfg *Config) error {
	if len(data) == 0 {
		return nil
	}
	raw, err := toml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return &ValidationError{
				Path:    "config",
				Message: "unknown setting",
				Value:   strings.TrimSpace(sme.String()),
				Code:    ErrCodeUnknownSetting,
			}
		}
		return &ValidationError{
			Path:    "config",
			Message: err.Error(),
			Code:    ErrCodeTypeMismatch,
		}
	}
	return nil
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Render.FPS < MinFPS || c.Render.FPS > MaxFPS {
		errs = append(errs, &ValidationError{
			Path:    "render.fps",
			Message: fmt.Sprintf("must be between %d and %d", MinFPS, MaxFPS),
			Value:   c.Render.FPS,
			Code:    ErrCodeOutOfRange,
		})
	}
	if !slices.Contains(backends, c.Render.Backend) {
		errs = append(errs, &ValidationError{
			Path:    "render.backend",
			Message: "must be one of " + strings.Join(backends, ", "),
			Value:   c.Render.Backend,
			Code:    ErrCodeInvalidEnum,
		})
	}
	if _, err := core.ParseColor(c.Render.Background); err != nil {
		errs = append(errs, &ValidationError{
			Path:    "render.background",
			Message: "must be a color name or hex value",
			Value:   c.Render.Background,
			Code:    ErrCodePatternMismatch,
		})
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, &ValidationError{
			Path:    "log.level",
			Message: "must be one of " + strings.Join(logLevels, ", "),
			Value:   c.Log.Level,
			Code:    ErrCodeInvalidEnum,
		})
	}
	if c.Script.Watch && c.Script.Path == "" {
		errs = append(errs, &ValidationError{
			Path:    "script.watch",
			Message: "requires script.path",
			Value:   c.Script.Watch,
			Code:    ErrCodeRequiredMissing,
		})
	}

	return errors.Join(errs...)
}

// BackgroundColor returns the parsed background color.
func (c *Config) BackgroundColor() core.Color {
	bg, err := core.ParseColor(c.Render.Background)
	if err != nil {
		return core.ColorDefault
	}
	return bg
}

// FrameInterval returns the time between frames.
func (c *Config) FrameInterval() time.Duration {
	fps := min(max(c.Render.FPS, MinFPS), MaxFPS)
	return time.Second / time.Duration(fps)
}

// LoggingDisabled reports whether log output is discarded.
func (c *Config) LoggingDisabled() bool {
	return c.Log.File == "-" || c.Log.File == ""
}

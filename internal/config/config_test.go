package config

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dshills/tableau/internal/config/loader"
	"github.com/dshills/tableau/internal/renderer/core"
)

func fileSystem(files map[string]string) loader.FileSystem {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return loader.FSAdapter{FS: m}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if cfg.Render.FPS != 30 || cfg.Render.Backend != "tcell" {
		t.Errorf("unexpected defaults %+v", cfg.Render)
	}
}

func TestLoadLayers(t *testing.T) {
	fsys := fileSystem(map[string]string{"tableau.toml": `
[render]
fps = 60
background = "#102030"

[script]
path = "scene.lua"
`})

	cfg, err := Load("tableau.toml",
		WithFileSystem(fsys),
		WithEnviron([]string{"TABLEAU_FPS=12", "TABLEAU_LOG_LEVEL=debug"}),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Render.FPS != 12 {
		t.Errorf("Render.FPS = %d, want 12 from the environment", cfg.Render.FPS)
	}
	if cfg.Render.Background != "#102030" {
		t.Errorf("Render.Background = %q, want file value", cfg.Render.Background)
	}
	if cfg.Render.Backend != "tcell" {
		t.Errorf("Render.Backend = %q, want default", cfg.Render.Backend)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Script.Path != "scene.lua" {
		t.Errorf("Script.Path = %q, want scene.lua", cfg.Script.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("nope.toml", WithFileSystem(fileSystem(nil)), WithEnviron(nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Render.FPS != Default().Render.FPS {
		t.Errorf("Render.FPS = %d, want default", cfg.Render.FPS)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		environ []string
		code    ValidationErrorCode
	}{
		{"unknown key", "[render]\nspeed = 3\n", nil, ErrCodeUnknownSetting},
		{"wrong type", "[render]\nfps = \"fast\"\n", nil, ErrCodeTypeMismatch},
		{"env wrong type", "", []string{"TABLEAU_FPS=fast"}, ErrCodeTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fileSystem(map[string]string{"c.toml": tt.file})
			_, err := Load("c.toml", WithFileSystem(fsys), WithEnviron(tt.environ))

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Load() error = %v, want ValidationError", err)
			}
			if ve.Code != tt.code {
				t.Errorf("Code = %v, want %v", ve.Code, tt.code)
			}
		})
	}
}

func TestLoadParseError(t *testing.T) {
	fsys := fileSystem(map[string]string{"c.toml": "[render\n"})
	_, err := Load("c.toml", WithFileSystem(fsys), WithEnviron(nil))

	var pe *loader.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("Load() error = %v, want ParseError", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		path   string
	}{
		{"fps low", func(c *Config) { c.Render.FPS = 0 }, "render.fps"},
		{"fps high", func(c *Config) { c.Render.FPS = 241 }, "render.fps"},
		{"backend", func(c *Config) { c.Render.Backend = "sdl" }, "render.backend"},
		{"background", func(c *Config) { c.Render.Background = "plaid" }, "render.background"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"watch without path", func(c *Config) { c.Script.Watch = true }, "script.watch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() = %v, want validation failure", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Path != tt.path {
				t.Errorf("Validate() = %v, want failure on %s", err, tt.path)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Render.FPS = -1
	cfg.Render.Backend = "x"

	err := cfg.Validate()
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 2 {
		t.Errorf("Validate() = %v, want two joined errors", err)
	}
}

func TestHelpers(t *testing.T) {
	cfg := Default()
	cfg.Render.FPS = 50
	if got := cfg.FrameInterval(); got != 20*time.Millisecond {
		t.Errorf("FrameInterval() = %v, want 20ms", got)
	}

	cfg.Render.Background = "blue"
	if got := cfg.BackgroundColor(); !got.Equals(core.ColorBlue) {
		t.Errorf("BackgroundColor() = %v, want blue", got)
	}

	cfg.Log.File = "-"
	if !cfg.LoggingDisabled() {
		t.Error("LoggingDisabled() = false for \"-\"")
	}
}

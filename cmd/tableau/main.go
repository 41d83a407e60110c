// Package main is the entry point for the tableau scene player.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/dshills/tableau/internal/app"
	"github.com/dshills/tableau/internal/art"
	"github.com/dshills/tableau/internal/config"
	"github.com/dshills/tableau/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type flags struct {
	configPath string
	script     string
	artPath    string
	backend    string
	fps        int
	logLevel   string
	logFile    string
	background string
	watch      bool
}

func run() int {
	fs := flag.NewFlagSet("tableau", flag.ContinueOnError)
	var f flags
	var showVersion, showHelp bool

	fs.StringVarP(&f.configPath, "config", "c", "", "Path to configuration file")
	fs.StringVarP(&f.script, "script", "s", "", "Lua script to run (default: built-in demo)")
	fs.StringVarP(&f.artPath, "art", "a", "", "YAML art sheet (default: built-in sheet)")
	fs.StringVarP(&f.backend, "backend", "b", "", "Terminal backend (tcell, ansi)")
	fs.IntVar(&f.fps, "fps", 0, "Frames per second")
	fs.StringVar(&f.background, "background", "", "Background color (name or #rrggbb)")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFile, "log-file", "", `Log file ("-" disables logging)`)
	fs.BoolVarP(&f.watch, "watch", "w", false, "Reload the script when it changes")
	fs.BoolVarP(&showVersion, "version", "v", false, "Show version information")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show help message")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "tableau - terminal scene player\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tableau [options] [script.lua]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys: q/Esc/Ctrl-C quit, r reload script, Ctrl-L redraw\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment variables with the %s prefix override the config file.\n", config.EnvPrefix)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if showHelp {
		fs.Usage()
		return 0
	}
	if showVersion {
		fmt.Printf("tableau %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected at most one script, got %d\n", fs.NArg())
		return 2
	}
	if fs.NArg() == 1 && f.script == "" {
		f.script = fs.Arg(0)
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	applyFlags(fs, &f, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration:\n%v\n", err)
		return 1
	}

	logger, closer, err := app.OpenLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closer.Close()

	sheet, err := loadSheet(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	term, err := newBackend(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}

	application, err := app.New(app.Options{
		Config:  cfg,
		Backend: term,
		Sheet:   sheet,
		Logger:  logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("%v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(fs *flag.FlagSet, f *flags, cfg *config.Config) {
	if f.script != "" {
		cfg.Script.Path = f.script
	}
	if fs.Changed("art") {
		cfg.Art.Path = f.artPath
	}
	if fs.Changed("backend") {
		cfg.Render.Backend = f.backend
	}
	if fs.Changed("fps") {
		cfg.Render.FPS = f.fps
	}
	if fs.Changed("background") {
		cfg.Render.Background = f.background
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("log-file") {
		cfg.Log.File = f.logFile
	}
	if fs.Changed("watch") {
		cfg.Script.Watch = f.watch
	}
}

func loadSheet(cfg *config.Config) (*art.Sheet, error) {
	if cfg.Art.Path == "" {
		return art.Default(), nil
	}
	return art.Load(cfg.Art.Path)
}

func newBackend(cfg *config.Config) (backend.Backend, error) {
	switch cfg.Render.Backend {
	case config.BackendANSI:
		return backend.NewANSI(os.Stdin, os.Stdout), nil
	default:
		return backend.NewTerminal()
	}
}

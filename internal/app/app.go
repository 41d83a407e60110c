package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dshills/tableau/internal/art"
	"github.com/dshills/tableau/internal/config"
	"github.com/dshills/tableau/internal/renderer/backend"
	"github.com/dshills/tableau/internal/renderer/core"
	"github.com/dshills/tableau/internal/renderer/scene"
	"github.com/dshills/tableau/internal/script"
)

// Options configures application creation.
type Options struct {
	// Config is the validated configuration. Defaults to config.Default().
	Config *config.Config

	// Backend is the terminal to render into. Required.
	Backend backend.Backend

	// Sheet holds the art pieces scripts draw with. Defaults to the
	// built-in sheet.
	Sheet *art.Sheet

	// Logger receives diagnostics. Defaults to NullLogger.
	Logger *Logger

	// DriverOptions are passed to the script driver.
	DriverOptions []script.DriverOption
}

// Application runs the frame loop: input events, script ticks and scene
// flushes all happen on the goroutine that called Run.
type Application struct {
	cfg     *config.Config
	backend backend.Backend
	logger  *Logger

	scene  *scene.Manager
	driver *script.Driver

	running atomic.Bool
}

// New creates an application from opts.
func New(opts Options) (*Application, error) {
	if opts.Backend == nil {
		return nil, &InitError{Component: "backend", Err: ErrNoBackend}
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = NullLogger
	}
	sheet := opts.Sheet
	if sheet == nil {
		sheet = art.Default()
	}

	m := scene.NewManager(opts.Backend, opts.Backend,
		scene.WithLogger(logger.WithComponent("scene")),
		scene.WithBackground(cfg.BackgroundColor()),
	)

	driverOpts := append([]script.DriverOption{
		script.WithLogger(logger.WithComponent("script")),
	}, opts.DriverOptions...)

	app := &Application{
		cfg:     cfg,
		backend: opts.Backend,
		logger:  logger.WithField("session", m.Session().String()),
		scene:   m,
		driver:  script.NewDriver(m, sheet, cfg.Script.Path, driverOpts...),
	}
	return app, nil
}

// Scene returns the scene manager.
func (app *Application) Scene() *scene.Manager {
	return app.scene
}

// Driver returns the script driver.
func (app *Application) Driver() *script.Driver {
	return app.driver
}

// IsRunning reports whether Run is in progress.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Run takes over the terminal and runs frames until the user quits, ctx
// is cancelled or the sink fails. Script failures are logged and do not
// stop the loop.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()

	// A load failure leaves an empty scene; the next reload may fix it.
	_ = app.driver.Load()
	defer app.driver.Close()

	var (
		changes   <-chan struct{}
		watchErrs <-chan error
	)
	if path := app.driver.Path(); app.cfg.Script.Watch && path != "" {
		w, err := script.NewWatcher(path, script.DefaultDebounce)
		if err != nil {
			app.logger.Warn("watch %s: %v", path, err)
		} else {
			defer w.Close()
			changes = w.Changes()
			watchErrs = w.Errors()
		}
	}

	done := make(chan struct{})
	defer close(done)
	events := make(chan backend.Event, 16)
	go app.pollEvents(events, done)

	interval := app.cfg.FrameInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	app.logger.Info("running interval=%s", interval)
	app.scene.Invalidate()
	if err := app.frame(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := app.handleEvent(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}

		case <-changes:
			app.reload("watch")

		case err := <-watchErrs:
			app.logger.Warn("watch: %v", err)

		case <-ticker.C:
			if err := app.frame(); err != nil {
				return err
			}
		}
	}
}

// pollEvents forwards backend events until the backend closes or done is
// closed.
func (app *Application) pollEvents(events chan<- backend.Event, done <-chan struct{}) {
	defer close(events)
	for {
		ev := app.backend.PollEvent()
		if ev.Type == backend.EventClosed {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// frame advances the script and flushes the scene.
func (app *Application) frame() error {
	app.driver.Tick()
	if err := app.scene.Flush(); err != nil {
		return NewOperationError("flush", "", err).WithContext(fmt.Sprintf("frame %d", app.driver.Frame()))
	}
	return nil
}

// handleEvent processes a backend event.
// Returns ErrQuit if the application should exit.
func (app *Application) handleEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventKey:
		return app.handleKey(ev)
	case backend.EventMouse:
		app.handleMouse(ev)
	case backend.EventResize:
		app.logger.Debug("resize rows=%d cols=%d", ev.Height, ev.Width)
		app.scene.Invalidate()
	case backend.EventClosed:
		return ErrQuit
	}
	return nil
}

func (app *Application) handleKey(ev backend.Event) error {
	switch ev.Key {
	case backend.KeyCtrlC, backend.KeyEscape:
		return ErrQuit
	case backend.KeyCtrlL:
		app.scene.Invalidate()
	case backend.KeyRune:
		switch ev.Rune {
		case 'q', 'Q':
			return ErrQuit
		case 'r', 'R':
			app.reload("key")
		}
	}
	return nil
}

func (app *Application) handleMouse(ev backend.Event) {
	if !ev.Pressed {
		return
	}
	s, ok := app.scene.HitTest(core.Pos{Row: ev.Row, Col: ev.Col})
	if !ok {
		return
	}
	app.logger.Debug("click sprite=%d row=%d col=%d", s.ID(), ev.Row, ev.Col)
	app.driver.Click(s.ID())
}

func (app *Application) reload(reason string) {
	if err := app.driver.Reload(); err != nil {
		// The driver already logged the script error.
		return
	}
	app.logger.Info("reloaded reason=%s", reason)
}

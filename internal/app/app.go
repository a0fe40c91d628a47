// Package app wires configuration, logging, scripting and an editing engine
// into the textcore command: it loads documents, optionally edits them with
// a Lua script, and prints their soft-wrapped view.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/textcore/internal/config"
	"github.com/dshills/textcore/internal/engine"
	"github.com/dshills/textcore/internal/logging"
	"github.com/dshills/textcore/internal/script"
)

// Application loads documents into an engine and renders them.
type Application struct {
	config *config.Config
	logger *logging.Logger
	engine *engine.Engine

	script string

	in  io.Reader
	out io.Writer

	running  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once

	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// Files are the documents to render. Standard input is read when empty.
	Files []string

	// LogLevel overrides the configured logging verbosity when set.
	LogLevel string

	// Width overrides the viewport width in pixels when positive.
	Width float64

	// CharWidth overrides the cell width in pixels when positive.
	CharWidth float64

	// NoWrap disables soft wrapping.
	NoWrap bool

	// Watch re-renders the single file whenever it changes on disk.
	Watch bool

	// Script is a Lua file run against each document before it is
	// rendered.
	Script string

	// Stdin and Stdout default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer

	// LogOutput defaults to os.Stderr.
	LogOutput io.Writer
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts: opts,
		in:   opts.Stdin,
		out:  opts.Stdout,
		done: make(chan struct{}),
	}
	if app.in == nil {
		app.in = os.Stdin
	}
	if app.out == nil {
		app.out = os.Stdout
	}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config: file, then environment, then flags
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if err := cfg.ApplyEnv(config.DefaultEnvPrefix); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if app.opts.LogLevel != "" {
		cfg.Logging.Level = app.opts.LogLevel
	}
	if app.opts.Width > 0 {
		cfg.Wrap.ViewportWidth = app.opts.Width
	}
	if app.opts.CharWidth > 0 {
		cfg.Wrap.CharWidth = app.opts.CharWidth
	}
	if app.opts.NoWrap {
		cfg.Wrap.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.config = cfg

	// 2. Logging
	app.logger = logging.New(logging.Config{
		Level:  cfg.LogLevel(),
		Output: app.opts.LogOutput,
		Prefix: "textcore",
	})

	// 3. Engine
	app.engine = engine.New(
		engine.WithConfig(cfg),
		engine.WithLogger(app.logger.WithComponent("engine")),
	)

	if app.opts.Watch && len(app.opts.Files) != 1 {
		return &InitError{Component: "watch", Err: ErrWatchNeedsOneFile}
	}

	// 4. Script
	if app.opts.Script != "" {
		code, err := os.ReadFile(app.opts.Script)
		if err != nil {
			return &InitError{Component: "script", Err: err}
		}
		app.script = string(code)
	}

	app.logger.Debug("initialized (wrap=%t, columns=%d)",
		cfg.Wrap.Enabled, app.engine.Mapper().Columns())
	return nil
}

// Run renders every document. In watch mode it then re-renders the file
// after each external change until ctx is done or Shutdown is called.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if len(app.opts.Files) == 0 {
		return app.renderStdin(ctx)
	}

	for i, path := range app.opts.Files {
		if len(app.opts.Files) > 1 {
			if i > 0 {
				fmt.Fprintln(app.out)
			}
			fmt.Fprintf(app.out, "==> %s <==\n", path)
		}
		if err := app.renderFile(ctx, path); err != nil {
			return err
		}
	}

	if !app.opts.Watch {
		return nil
	}
	return app.watch(ctx)
}

func (app *Application) renderStdin(ctx context.Context) error {
	data, err := io.ReadAll(app.in)
	if err != nil {
		return &OperationError{Op: "read", Target: "stdin", Err: err}
	}
	app.engine.LoadText(string(data))
	return app.process(ctx)
}

func (app *Application) renderFile(ctx context.Context, path string) error {
	if err := app.engine.LoadFile(path); err != nil {
		return &OperationError{Op: "open", Target: path, Err: err}
	}
	return app.process(ctx)
}

// process runs the script, if any, against the loaded document and
// renders the result.
func (app *Application) process(ctx context.Context) error {
	if app.script != "" {
		st := script.NewState(app.engine,
			script.WithOutput(app.out),
			script.WithLogger(app.logger.WithComponent("script")),
		)
		err := st.DoString(ctx, app.opts.Script, app.script)
		_ = st.Close()
		if err != nil {
			return &OperationError{Op: "script", Target: app.engine.Path(), Err: err}
		}
	}
	return app.render()
}

// watch reloads and re-renders the file on every change event.
func (app *Application) watch(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	path := app.engine.Path()
	events, err := app.engine.Watch(ctx)
	if err != nil {
		return &OperationError{Op: "watch", Target: path, Err: err}
	}
	app.logger.Info("watching %s", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-app.done:
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			app.logger.Debug("change: %s", ev.Op)
			if err := app.engine.LoadFile(path); err != nil {
				// The file may be mid-replace; keep the last good view.
				app.logger.Warn("reload %s: %v", path, err)
				continue
			}
			fmt.Fprintf(app.out, "\n==> %s (%s) <==\n", path, ev.Timestamp.Format("15:04:05"))
			if err := app.process(ctx); err != nil {
				return err
			}
		}
	}
}

// render prints every visual row of the current document. The first row
// of a logical line carries its 1-based number; continuation rows carry a
// blank gutter.
func (app *Application) render() error {
	m := app.engine.Mapper()
	tabs := m.Tabs()
	gutter := len(strconv.Itoa(app.engine.LineCount()))
	blank := strings.Repeat(" ", gutter)

	var sb strings.Builder
	total := m.TotalVisualLines()
	for row := 0; row < total; row++ {
		vp, ok := m.VisualToLogical(row)
		if !ok {
			break
		}
		if vp.Segment == 0 {
			fmt.Fprintf(&sb, "%*d | ", gutter, vp.Line+1)
		} else {
			sb.WriteString(blank)
			sb.WriteString(" : ")
		}
		sb.WriteString(tabs.ExpandTabs(m.SegmentText(vp.Line, vp.Segment)))
		sb.WriteByte('\n')
	}

	if _, err := io.WriteString(app.out, sb.String()); err != nil {
		return &OperationError{Op: "render", Target: app.engine.Path(), Err: err}
	}
	return nil
}

// Shutdown stops a running watch loop. It is safe to call more than once.
func (app *Application) Shutdown() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}

// IsRunning returns true while Run is in progress.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the effective configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Engine returns the editing engine.
func (app *Application) Engine() *engine.Engine {
	return app.engine
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.logger
}

// Package main is the entry point for the textcore wrap viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/textcore/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, exit, code := parseFlags(args, stdout, stderr)
	if exit {
		return code
	}
	opts.Stdout = stdout
	opts.LogOutput = stderr

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseFlags parses args. When exit is true the caller returns code
// without running.
func parseFlags(args []string, stdout, stderr io.Writer) (opts app.Options, exit bool, code int) {
	fs := flag.NewFlagSet("textcore", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var showVersion bool
	var showHelp bool

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.Float64Var(&opts.Width, "width", 0, "Viewport width in pixels (overrides config)")
	fs.Float64Var(&opts.CharWidth, "char-width", 0, "Cell width in pixels (overrides config)")
	fs.BoolVar(&opts.NoWrap, "nowrap", false, "Disable soft wrapping")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.Watch, "watch", false, "Re-render the file when it changes on disk")
	fs.StringVar(&opts.Script, "script", "", "Lua script to run against each document before rendering")
	fs.StringVar(&opts.Script, "s", "", "Lua script (shorthand)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "textcore - soft-wrapped text viewer\n\n")
		fmt.Fprintf(stderr, "Usage: textcore [options] [files...]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  textcore notes.txt                 Wrap at the configured width\n")
		fmt.Fprintf(stderr, "  textcore -width 400 notes.txt      Wrap at 40 cells\n")
		fmt.Fprintf(stderr, "  cat notes.txt | textcore           Read standard input\n")
		fmt.Fprintf(stderr, "  textcore -watch notes.txt          Re-render on every change\n")
		fmt.Fprintf(stderr, "  textcore -s fix.lua notes.txt      Edit with a script, then render\n")
		fmt.Fprintf(stderr, "\nEnvironment variables TEXTCORE_* override the config file.\n")
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return opts, true, 0
		}
		return opts, true, 2
	}

	if showHelp {
		fs.Usage()
		return opts, true, 0
	}

	if showVersion {
		fmt.Fprintf(stdout, "textcore %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, true, 0
	}

	// Remaining arguments are files to render
	opts.Files = fs.Args()
	return opts, false, 0
}

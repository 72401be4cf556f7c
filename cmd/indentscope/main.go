// Package main is the entry point for the indentscope viewer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/indentscope/internal/app"
	"github.com/dshills/indentscope/internal/logging"
	"github.com/dshills/indentscope/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type flags struct {
	opts     app.Options
	logLevel string
	logFile  string
	logDir   string
}

func main() {
	os.Exit(run())
}

func run() int {
	f := parseFlags()

	logger, closer, err := openLogger(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if closer != nil {
		defer closer.Close()
	}
	f.opts.Logger = logger

	// Create terminal backend
	term, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	f.opts.Backend = term

	// Create application
	application, err := app.New(f.opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		var ie *app.InitError
		if errors.As(err, &ie) {
			fmt.Fprintf(os.Stderr, "Error: failed to start %s: %v\n", ie.Component, ie.Err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// openLogger returns the logger selected by the flags. The terminal owns
// stderr, so without a log file everything is discarded.
func openLogger(f flags) (*logging.Logger, io.Closer, error) {
	level := logging.ParseLevel(f.logLevel)
	switch {
	case f.logFile != "":
		file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return logging.New(logging.Config{Level: level, Output: file, Prefix: "indentscope"}), file, nil
	case f.logDir != "":
		return logging.OpenFile(f.logDir, level)
	default:
		return logging.Null, nil, nil
	}
}

func parseFlags() flags {
	var f flags
	var showVersion bool
	var showHelp bool

	flag.StringVar(&f.opts.ConfigPath, "config", "", "Path to settings file (.toml, .json or .lua)")
	flag.StringVar(&f.opts.ConfigPath, "c", "", "Path to settings file (shorthand)")
	flag.BoolVar(&f.opts.Watch, "watch", true, "Reload the settings file when it changes")
	flag.IntVar(&f.opts.FPS, "fps", 0, "Override animate.fps")
	flag.StringVar(&f.opts.Style, "style", "", "Override animate.style (out, up_down, down, up)")
	flag.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.logFile, "log-file", "", "Append logs to this file")
	flag.StringVar(&f.logDir, "log-dir", "", "Write dated log files in this directory")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "indentscope - indent guides and animated scopes in the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: indentscope [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  j/k, arrows     move the cursor\n")
		fmt.Fprintf(os.Stderr, "  PgUp/PgDn       scroll\n")
		fmt.Fprintf(os.Stderr, "  h/l, </>        scroll horizontally\n")
		fmt.Fprintf(os.Stderr, "  Tab             next window\n")
		fmt.Fprintf(os.Stderr, "  a               toggle animation\n")
		fmt.Fprintf(os.Stderr, "  i               toggle guides\n")
		fmt.Fprintf(os.Stderr, "  r               reload settings\n")
		fmt.Fprintf(os.Stderr, "  q               quit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("indentscope %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	// Validate log level
	switch f.logLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", f.logLevel)
		os.Exit(1)
	}

	// Remaining arguments are files to open
	f.opts.Files = flag.Args()
	return f
}

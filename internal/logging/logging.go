// Package logging builds the zerolog loggers used across gitupdater and
// carries them through context.Context.
//
// Every component obtains its logger with FromContext and tags entries with
// a "component" field, so a single log stream can be filtered per subsystem
// (cache, header, store, cli).
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Output targets.
const (
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// Config describes how a logger should be built.
type Config struct {
	// Level is a zerolog level name ("debug", "info", ...). Invalid values fall back to info.
	Level string
	// Format is "json" or "console". Empty selects console on a terminal and json otherwise.
	Format string
	// Output is "stderr" or "file".
	Output string
	// File is the log file path when Output is "file".
	File string
	// Caller adds the caller location to every entry.
	Caller bool
}

// LogPathResult is the outcome of NewLoggerWithPath.
type LogPathResult struct {
	Logger zerolog.Logger

	// FilePath is the log file in use when UsingFile is set.
	FilePath  string
	UsingFile bool

	// FallbackUsed is set when a file was requested but could not be opened.
	FallbackUsed   bool
	FallbackReason string

	file *os.File
}

// Close releases the log file handle, if any.
func (r *LogPathResult) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// NewLogger builds a logger from cfg, writing to w when Output is not "file".
func NewLogger(cfg Config, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if useConsole(cfg.Format, w) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// NewLoggerWithPath builds a logger from cfg and opens the log file when one is
// configured. A file that cannot be opened downgrades the logger to stderr.
func NewLoggerWithPath(cfg Config) LogPathResult {
	if cfg.Output != OutputFile || cfg.File == "" {
		return LogPathResult{Logger: NewLogger(cfg, os.Stderr)}
	}

	f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		fileCfg := cfg
		fileCfg.Output = OutputStderr
		return LogPathResult{
			Logger:         NewLogger(fileCfg, os.Stderr),
			FallbackUsed:   true,
			FallbackReason: err.Error(),
		}
	}

	fileCfg := cfg
	if fileCfg.Format == "" {
		fileCfg.Format = FormatJSON
	}
	return LogPathResult{
		Logger:    NewLogger(fileCfg, f),
		FilePath:  cfg.File,
		UsingFile: true,
		file:      f,
	}
}

// ComponentLogger returns a child logger tagged with the component name.
func ComponentLogger(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// FromContext returns the logger attached to ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		l := zerolog.Nop()
		return &l
	}
	return zerolog.Ctx(ctx)
}

// PrintLogPathMessage tells the user where logs are going.
func PrintLogPathMessage(w io.Writer, path string) {
	_, _ = fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning reports that file logging was requested but unavailable.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: could not open log file (%s), logging to stderr\n", reason)
}

func useConsole(format string, w io.Writer) bool {
	switch format {
	case FormatConsole:
		return true
	case FormatJSON:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

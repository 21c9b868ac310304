package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ekisa-team/whisperd/internal/env"
)

// Options configures logger construction.
type Options struct {
	level      slog.Leveler
	format     string
	logFile    string
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	logToFile  bool
	noColor    bool
}

// Option mutates Options.
type Option func(*Options)

// WithLevel sets the minimum level. Pass a *slog.LevelVar to allow
// live adjustment after construction.
func WithLevel(level slog.Leveler) Option {
	return func(o *Options) { o.level = level }
}

// WithLogToFile enables the rotating file sink.
func WithLogToFile(enabled bool) Option {
	return func(o *Options) { o.logToFile = enabled }
}

// WithLogFile sets the log file path.
func WithLogFile(path string) Option {
	return func(o *Options) { o.logFile = path }
}

// WithRotation sets the rotation policy of the file sink.
func WithRotation(maxSizeMB, maxBackups, maxAgeDays int) Option {
	return func(o *Options) {
		o.maxSizeMB = maxSizeMB
		o.maxBackups = maxBackups
		o.maxAgeDays = maxAgeDays
	}
}

// WithNoColor disables ANSI colors on the console handler.
func WithNoColor(noColor bool) Option {
	return func(o *Options) { o.noColor = noColor }
}

// WithConsoleFormat picks the console handler: "json", "text", or
// "auto" to follow the environment.
func WithConsoleFormat(format string) Option {
	return func(o *Options) { o.format = format }
}

// ParseLevel maps a configured level name onto a slog level. Unknown
// names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the process logger. Development gets a compact colorized
// console handler, production gets JSON. When file logging is enabled,
// a JSON handler writing to a size-rotated file is layered on top.
func New(environment env.Environment, opts ...Option) *slog.Logger {
	options := &Options{
		level:      slog.LevelInfo,
		logFile:    "logs/whisperd.log",
		maxSizeMB:  50,
		maxBackups: 3,
		maxAgeDays: 28,
	}
	for _, opt := range opts {
		opt(options)
	}

	useJSON := environment.IsProduction()
	switch options.format {
	case "json":
		useJSON = true
	case "text":
		useJSON = false
	}

	var console slog.Handler
	if useJSON {
		console = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: options.level})
	} else {
		console = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      options.level,
			TimeFormat: time.Kitchen,
			NoColor:    options.noColor,
		})
	}

	if !options.logToFile {
		return slog.New(console)
	}

	rotator := &lumberjack.Logger{
		Filename:   options.logFile,
		MaxSize:    options.maxSizeMB,
		MaxBackups: options.maxBackups,
		MaxAge:     options.maxAgeDays,
		Compress:   true,
	}
	file := slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: options.level})

	return slog.New(fanout{console, file})
}

// NewNop returns a logger that discards everything. Useful in tests.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fanout duplicates records across handlers.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (f fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}

// Package logging provides the logger used across sql-archiver.
package logging

import (
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Logger is the narrow logging surface the archiver depends on.
// Arguments after msg are slog-style key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// SlogLogger adapts *slog.Logger to Logger.
type SlogLogger struct {
	l *slog.Logger
}

func (s SlogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s SlogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s SlogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s SlogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }
func (s SlogLogger) With(args ...any) Logger       { return SlogLogger{l: s.l.With(args...)} }

// Options selects level and output format.
type Options struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "text" (tint) or "json"
	Debug  bool   // forces debug level and source locations
}

// New builds a Logger writing to w.
func New(w io.Writer, opts Options) SlogLogger {
	level := ParseLevel(opts.Level)
	if opts.Debug {
		level = slog.LevelDebug
	}

	shortfile := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.SourceKey {
			if s, ok := a.Value.Any().(*slog.Source); ok {
				s.File = path.Base(s.File)
			}
		}
		return a
	}

	var h slog.Handler
	switch strings.ToLower(opts.Format) {
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   opts.Debug,
			Level:       level,
			ReplaceAttr: shortfile,
		})
	default:
		h = tint.NewHandler(w, &tint.Options{
			AddSource:   opts.Debug,
			Level:       level,
			TimeFormat:  time.DateTime,
			ReplaceAttr: shortfile,
		})
	}
	return SlogLogger{l: slog.New(h)}
}

// Discard drops everything; handy in tests.
func Discard() SlogLogger {
	return SlogLogger{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

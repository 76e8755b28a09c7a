// Package logging holds the process-wide structured logger shared by the
// renderer, texture manager, config watcher and app packages.
package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
)

// nopHandler discards all records. Enabled returns false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger replaces the shared logger. By default nothing is logged.
// Passing nil restores the silent logger.
//
// Levels in use:
//   - Debug: resource lifecycle (texture recreation, dispatch sizes)
//   - Info: lifecycle events (adapter selected, manager rebuilt, vsync changed)
//   - Warn: skipped frames and unexpected surface errors
//   - Error: emitted right before a fatal exit
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the shared logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ParseLevel maps a config level name to a slog level. Unknown names fall
// back to Info.
func ParseLevel(name string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(name)))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

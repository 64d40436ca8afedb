package internal

import (
	"context"
	"log/slog"
)

// LevelTrace is used for per-field decoding output, below debug.
const LevelTrace slog.Level = slog.LevelDebug - 2

// LogEnabled reports whether l is non-nil and would log at lvl.
func LogEnabled(l *slog.Logger, lvl slog.Level) bool {
	return l != nil && l.Handler().Enabled(context.Background(), lvl)
}

// LogAttrs logs to l if it is not nil. All pktview binaries log through it.
func LogAttrs(l *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if l != nil {
		l.LogAttrs(context.Background(), level, msg, attrs...)
	}
}

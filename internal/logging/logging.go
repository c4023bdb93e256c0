package logging

import (
	"fmt"
	"io"
	"log/slog"
)

// Debug controls whether debug logs are printed.
var Debug bool

// Setup installs a text slog handler on w as the default logger. Debug
// level output is enabled when debug is set.
func Setup(w io.Writer, debug bool) {
	Debug = debug
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// Debugf logs a formatted debug message when Debug is enabled.
func Debugf(format string, v ...any) {
	if Debug {
		slog.Debug(fmt.Sprintf(format, v...))
	}
}

package logger

import (
	"io"
	"log/slog"
	"strings"

	"github.com/MatusOllah/slogcolor"
	"github.com/fatih/color"
)

// New builds the process logger: colored text for development, JSON otherwise.
func New(w io.Writer, env, level string) *slog.Logger {
	lvl := ParseLevel(level)
	if env == "production" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	}
	opts := slogcolor.DefaultOptions
	opts.Level = lvl
	opts.MsgColor = color.New(color.FgMagenta)
	opts.SrcFileMode = slogcolor.Nop
	return slog.New(slogcolor.NewHandler(w, opts))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

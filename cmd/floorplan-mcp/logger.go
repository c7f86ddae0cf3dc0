package main

import (
	"io"
	"log/slog"
)

// newLogger returns a text logger on w. stdout carries the MCP protocol, so
// callers pass stderr.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

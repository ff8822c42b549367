// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps a slog.Logger so it can be passed around the application
type Logger struct {
	*slog.Logger
}

// New returns a Logger writing text formatted records to stderr
func New(level slog.Level) *Logger {
	return NewLogger(level)
}

// NewLogger returns a Logger for the given level. If one or more writers are given, the
// records are written to all of them, otherwise stderr is used.
func NewLogger(level slog.Level, output ...io.Writer) *Logger {
	var out io.Writer = os.Stderr
	switch len(output) {
	case 0:
	case 1:
		out = output[0]
	default:
		out = io.MultiWriter(output...)
	}
	return &Logger{slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))}
}

// Err returns a slog.Attr for the given error
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}

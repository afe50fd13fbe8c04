// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Opts selects where logs go.
type Opts struct {
	Debug bool
	// File, when set, receives a copy of the logs, rotated at 1MB.
	File string
	// Console defaults to os.Stderr.
	Console *os.File
}

// Setup replaces log.Logger.
//
// The console gets human readable output when it is a terminal and JSON
// otherwise. The returned function closes the log file, if any.
func Setup(opts *Opts) (func() error, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	var w io.Writer = console
	if isatty.IsTerminal(console.Fd()) || isatty.IsCygwinTerminal(console.Fd()) {
		w = zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05.000"}
	}
	closer := func() error { return nil }
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return nil, err
		}
		f := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    1,
			MaxBackups: 2,
		}
		w = io.MultiWriter(w, f)
		closer = f.Close
	}
	log.Logger = New(w, opts.Debug)
	zerolog.SetGlobalLevel(level(opts.Debug))
	return closer, nil
}

// New returns a logger writing to w with timestamps.
func New(w io.Writer, debug bool) zerolog.Logger {
	return zerolog.New(w).Level(level(debug)).With().Timestamp().Logger()
}

func level(debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

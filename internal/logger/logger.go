// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

// Package logger builds the zerolog logger handed to every component.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel overrides whatever level the command line asked for.
const EnvLevel = "SIREN_LOG_LEVEL"

type Config struct {
	Level  string // trace, debug, info, warn, error
	Pretty bool   // human readable console output
	Out    io.Writer
}

// New returns a logger writing to cfg.Out (stderr when nil). An unknown
// level falls back to warn.
func New(cfg Config) zerolog.Logger {
	level := cfg.Level
	if env := strings.TrimSpace(os.Getenv(EnvLevel)); env != "" {
		level = env
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// LevelFromVerbosity maps -q and repeated -v flags to a level name.
func LevelFromVerbosity(verbose int, quiet bool) string {
	switch {
	case quiet:
		return "error"
	case verbose >= 3:
		return "trace"
	case verbose == 2:
		return "debug"
	case verbose == 1:
		return "info"
	default:
		return "warn"
	}
}

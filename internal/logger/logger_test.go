// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestNewWritesJSONAtLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	log := New(Config{Level: "info", Out: &buf})

	log.Debug().Msg("hidden")
	log.Info().Str("tool", "ruff").Msg("started")

	line := buf.String()
	assert.NotContains(t, line, "hidden")
	assert.Equal(t, "ruff", gjson.Get(line, "tool").String())
	assert.Equal(t, "info", gjson.Get(line, "level").String())
	assert.True(t, gjson.Get(line, "time").Exists())
}

func TestNewLevelFallbacks(t *testing.T) {
	t.Setenv(EnvLevel, "")
	assert.Equal(t, zerolog.WarnLevel, New(Config{Level: "nonsense", Out: &bytes.Buffer{}}).GetLevel())
	assert.Equal(t, zerolog.WarnLevel, New(Config{Out: &bytes.Buffer{}}).GetLevel())

	t.Setenv(EnvLevel, "DEBUG")
	assert.Equal(t, zerolog.DebugLevel, New(Config{Level: "error", Out: &bytes.Buffer{}}).GetLevel())
}

func TestNewPretty(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Pretty: true, Out: &buf})
	log.Warn().Msg("careful")
	assert.Contains(t, buf.String(), "careful")
	assert.False(t, gjson.Valid(buf.String()))
}

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, "warn", LevelFromVerbosity(0, false))
	assert.Equal(t, "info", LevelFromVerbosity(1, false))
	assert.Equal(t, "debug", LevelFromVerbosity(2, false))
	assert.Equal(t, "trace", LevelFromVerbosity(5, false))
	assert.Equal(t, "error", LevelFromVerbosity(2, true))
}

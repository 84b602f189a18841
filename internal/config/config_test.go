// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

const sampleFile = `
[general]
fail_level = "warning"
max_parallelism = 3
timeout = "30s"

[output]
format = "json"
max_issues_per_tool = 20

[tools.ruff]
extra_args = ["--select", "E,F"]
report_level = "warning"
timeout = "10s"

[tools.pylint]
enabled = false

[tools.mypy]
env = { MYPY_CACHE_DIR = "/tmp/mypy" }
config_file = "mypy.ini"
auto_fix = true
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := NewLoader(nil).Load("", t.TempDir())
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.General, cfg.General)
	assert.Equal(t, def.Output, cfg.Output)
	assert.Empty(t, cfg.Path)
	assert.Equal(t, model.SeverityError, cfg.FailSeverity())
}

func TestLoadFindsFileWalkingUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), sampleFile)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := NewLoader(nil).Load("", nested)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, FileName), cfg.Path)
	assert.Equal(t, "warning", cfg.General.FailLevel)
	assert.Equal(t, model.SeverityWarning, cfg.FailSeverity())
	assert.Equal(t, 3, cfg.General.MaxParallelism)
	assert.Equal(t, 30*time.Second, cfg.General.Timeout)
	assert.Equal(t, 5*time.Second, cfg.General.GracePeriod)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 20, cfg.Output.MaxIssuesPerTool)

	ruff := cfg.Tools["ruff"]
	assert.True(t, ruff.Enabled, "enabled defaults to true")
	assert.Equal(t, []string{"--select", "E,F"}, ruff.ExtraArgs)
	assert.Equal(t, "warning", ruff.ReportLevel)
	assert.Equal(t, 10*time.Second, ruff.Timeout)

	assert.False(t, cfg.Tools["pylint"].Enabled)

	mypy := cfg.Tools["mypy"]
	assert.True(t, mypy.AutoFix)
	assert.Equal(t, "mypy.ini", mypy.ConfigFile)
	assert.Equal(t, map[string]string{"MYPY_CACHE_DIR": "/tmp/mypy"}, mypy.Env)

	assert.True(t, cfg.Tools.For("black").Enabled, "unmentioned tools are enabled")
}

func TestLoadPrecedence(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "custom.toml")
	writeFile(t, path, sampleFile)

	t.Setenv("SIREN_OUTPUT_FORMAT", "yaml")
	t.Setenv("SIREN_GENERAL_FAIL_LEVEL", "info")

	fs := pflag.NewFlagSet("check", pflag.ContinueOnError)
	fs.String("fail-level", "error", "")
	require.NoError(t, fs.Parse([]string{"--fail-level", "style"}))

	v := viper.New()
	require.NoError(t, v.BindPFlag("general.fail_level", fs.Lookup("fail-level")))

	cfg, err := NewLoader(v).Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "style", cfg.General.FailLevel, "flag beats env")
	assert.Equal(t, "yaml", cfg.Output.Format, "env beats file")
	assert.Equal(t, 3, cfg.General.MaxParallelism, "file beats default")
}

func TestLoadErrors(t *testing.T) {
	root := t.TempDir()

	_, err := NewLoader(nil).Load(filepath.Join(root, "missing.toml"), "")
	assert.Error(t, err)

	bad := filepath.Join(root, "bad.toml")
	writeFile(t, bad, "[general\nfail_level=")
	_, err = NewLoader(nil).Load(bad, "")
	assert.Error(t, err)

	invalid := filepath.Join(root, "invalid.toml")
	writeFile(t, invalid, "[general]\nfail_level = \"loud\"\n[output]\nformat = \"xml\"\n")
	_, err = NewLoader(nil).Load(invalid, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "general.fail_level")
	assert.ErrorContains(t, err, "output.format")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.General.MaxParallelism = -1
	cfg.General.Timeout = -time.Second
	cfg.Output.MaxIssuesPerTool = -2
	cfg.Tools["ruff"] = model.ToolConfig{Enabled: true, ReportLevel: "fatal", Timeout: -1}

	err := cfg.Validate()
	require.Error(t, err)

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	for _, key := range []string{
		"general.max_parallelism", "general.timeout", "output.max_issues_per_tool",
		"tools.ruff.timeout", "tools.ruff.report_level",
	} {
		assert.ErrorContains(t, err, key)
	}
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	found, err := FindConfigFile(root)
	require.NoError(t, err)
	assert.Empty(t, found)

	writeFile(t, filepath.Join(root, FileName), "")
	file := filepath.Join(root, "src", "main.go")
	writeFile(t, file, "package main\n")

	found, err = FindConfigFile(file)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), found)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, WriteDefault(path, []string{"ruff", "black"}, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[tools.ruff]")
	assert.Contains(t, string(data), `timeout = "1m0s"`)

	cfg, err := NewLoader(nil).Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.General.Timeout)
	assert.Equal(t, 0, cfg.General.MaxParallelism)
	assert.True(t, cfg.Tools["black"].Enabled)

	err = WriteDefault(path, nil, false)
	assert.ErrorIs(t, err, ErrConfigExists)
	assert.NoError(t, WriteDefault(path, nil, true))
}

// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

type fakeRunner struct {
	installed map[string]bool
	result    ports.ProcessResult
	err       error
	calls     []ports.Command
}

func (r *fakeRunner) Run(_ context.Context, cmd ports.Command) (ports.ProcessResult, error) {
	r.calls = append(r.calls, cmd)
	return r.result, r.err
}

func (r *fakeRunner) LookPath(name string) (string, error) {
	if r.installed[name] {
		return "/usr/bin/" + name, nil
	}
	return "", fmt.Errorf("%s: not found", name)
}

func newTool(spec Spec, runner *fakeRunner) *CommandTool {
	return NewCommandTool(spec, runner, zerolog.Nop())
}

func TestCommandToolCanHandle(t *testing.T) {
	ruff := newTool(RuffSpec(), &fakeRunner{})
	assert.True(t, ruff.CanHandle("src/app.py"))
	assert.True(t, ruff.CanHandle("stubs/app.pyi"))
	assert.False(t, ruff.CanHandle("src/app.js"))
	assert.False(t, ruff.CanHandle("README"))

	prettier := newTool(PrettierSpec(), &fakeRunner{})
	assert.True(t, prettier.CanHandle("web/site.scss"))
	assert.True(t, prettier.CanHandle("docs/guide.md"))
	assert.False(t, prettier.CanHandle("main.go"))

	djlint := newTool(DjLintSpec(), &fakeRunner{})
	assert.True(t, djlint.CanHandle("templates/base.jinja"))
	assert.False(t, djlint.CanHandle("app.css"))
}

func TestCommandToolAvailable(t *testing.T) {
	runner := &fakeRunner{installed: map[string]bool{"cargo": true}}

	assert.False(t, newTool(ClippySpec(), runner).Available(), "clippy probes cargo-clippy, not cargo")
	runner.installed["cargo-clippy"] = true
	assert.True(t, newTool(ClippySpec(), runner).Available())

	assert.False(t, newTool(RuffSpec(), runner).Available())
	assert.True(t, newTool(RuffSpec(), runner).WithExecutable("cargo").Available())
}

func TestCommandToolArgs(t *testing.T) {
	tool := newTool(RuffSpec(), &fakeRunner{})

	cfg := model.DefaultToolConfig()
	assert.Equal(t,
		[]string{"check", "--output-format=concise", "--no-fix", "a.py"},
		tool.Args([]string{"a.py"}, cfg))

	cfg.AutoFix = true
	cfg.ConfigFile = "ruff.toml"
	cfg.ExtraArgs = []string{"--select", "E"}
	assert.Equal(t,
		[]string{"check", "--output-format=concise", "--fix", "--config", "ruff.toml", "--select", "E", "a.py", "b.py"},
		tool.Args([]string{"a.py", "b.py"}, cfg))

	pylint := newTool(PylintSpec(), &fakeRunner{})
	assert.Contains(t, pylint.Args(nil, model.ToolConfig{ConfigFile: ".pylintrc"}), "--rcfile=.pylintrc")

	vet := newTool(GoVetSpec(), &fakeRunner{})
	assert.Equal(t, []string{"vet", "./..."}, vet.Args([]string{"main.go"}, model.DefaultToolConfig()))
}

func TestCommandToolExecute(t *testing.T) {
	runner := &fakeRunner{result: ports.ProcessResult{
		ExitCode: 1,
		Stdout:   []byte("a.py:1:1: F401 [*] unused import\nb.py:2:1: D100 Missing docstring\n"),
	}}
	tool := newTool(RuffSpec(), runner)

	cfg := model.DefaultToolConfig()
	cfg.Env = map[string]string{"RUFF_CACHE_DIR": "/tmp/ruff"}
	cfg.ExecutablePath = "/opt/ruff/bin/ruff"
	res, err := tool.Execute(context.Background(), []string{"a.py", "b.py"}, cfg)
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "/opt/ruff/bin/ruff", call.Name)
	assert.Equal(t, cfg.Env, call.Env)
	assert.Empty(t, call.Dir)

	assert.Equal(t, "ruff", res.ToolName)
	assert.Equal(t, model.ToolTypeLinter, res.ToolType)
	assert.True(t, res.Success, "exit code 1 only means issues were found")
	assert.Empty(t, res.Diagnostic)
	require.Len(t, res.Issues, 2)
	assert.Contains(t, res.Stdout, "F401")

	cfg.ReportLevel = "warning"
	res, err = tool.Execute(context.Background(), []string{"a.py", "b.py"}, cfg)
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "F401", res.Issues[0].Code)
}

func TestCommandToolExecuteFailure(t *testing.T) {
	runner := &fakeRunner{result: ports.ProcessResult{
		ExitCode: 2,
		Stderr:   []byte("\nerror: Failed to parse ruff.toml\ncaused by: bad key\n"),
	}}
	res, err := newTool(RuffSpec(), runner).Execute(context.Background(), []string{"a.py"}, model.DefaultToolConfig())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "exit status 2: error: Failed to parse ruff.toml", res.Diagnostic)

	runner.result = ports.ProcessResult{ExitCode: 3}
	res, err = newTool(RuffSpec(), runner).Execute(context.Background(), []string{"a.py"}, model.DefaultToolConfig())
	require.NoError(t, err)
	assert.Equal(t, "exit status 3", res.Diagnostic)
}

func TestCommandToolExecutePassesRunnerErrors(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("start ruff: %w", ports.ErrBinaryVanished)}
	_, err := newTool(RuffSpec(), runner).Execute(context.Background(), []string{"a.py"}, model.DefaultToolConfig())
	assert.ErrorIs(t, err, ports.ErrBinaryVanished)

	runner.err = context.DeadlineExceeded
	_, err = newTool(RuffSpec(), runner).Execute(context.Background(), []string{"a.py"}, model.DefaultToolConfig())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCommandToolNormalizesReportedPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte("[package]\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	lib := filepath.Join(root, "src", "lib.rs")
	require.NoError(t, os.WriteFile(lib, []byte("fn main() {}\n"), 0o644))

	runner := &fakeRunner{result: ports.ProcessResult{
		Stdout: []byte(`{"reason":"compiler-message","message":{"message":"unused","level":"warning","code":{"code":"dead_code"},"spans":[{"file_name":"src/lib.rs","line_start":1,"column_start":4,"is_primary":true}]}}`),
	}}
	res, err := newTool(ClippySpec(), runner).Execute(context.Background(), []string{lib}, model.DefaultToolConfig())
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, root, runner.calls[0].Dir)
	assert.NotContains(t, runner.calls[0].Args, lib)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, lib, res.Issues[0].File)
}

func TestCommandToolVersion(t *testing.T) {
	runner := &fakeRunner{result: ports.ProcessResult{Stdout: []byte("\nruff 0.6.9\nextra\n")}}
	tool := newTool(RuffSpec(), runner)
	assert.Equal(t, "ruff 0.6.9", tool.Version(context.Background()))
	assert.Equal(t, []string{"--version"}, runner.calls[0].Args)

	runner.result = ports.ProcessResult{ExitCode: 1}
	assert.Empty(t, tool.Version(context.Background()))

	clippy := newTool(ClippySpec(), runner)
	clippy.Version(context.Background())
	assert.Equal(t, ports.Command{Name: "cargo", Args: []string{"clippy", "--version"}}, runner.calls[2])
}

// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package tools

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

// Output is what a parser sees of one tool invocation.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Dir      string
	Files    []string
	Fix      bool
}

// Combined returns stdout followed by stderr.
func (o Output) Combined() []byte {
	if len(o.Stderr) == 0 {
		return o.Stdout
	}
	out := make([]byte, 0, len(o.Stdout)+len(o.Stderr)+1)
	out = append(out, o.Stdout...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return append(out, o.Stderr...)
}

// Lines iterates over the non-empty, trimmed lines of b.
func Lines(b []byte, fn func(line string)) {
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			fn(line)
		}
	}
}

// Spec describes how to drive one external tool.
type Spec struct {
	Name        string
	Description string
	Type        model.ToolType
	Languages   []model.Language

	// Patterns are matched against the base name of a file.
	Patterns []string

	// Probe is looked up in PATH to decide availability. Defaults to Binary.
	Binary string
	Probe  string

	BaseArgs    []string
	CheckArgs   []string
	FixArgs     []string
	ConfigArgs  func(path string) []string
	VersionArgs []string

	// NoFiles tools work on the whole project rooted at WorkDir instead of
	// receiving file arguments.
	NoFiles bool
	WorkDir func(files []string) string

	// OKExitCodes defaults to {0}. Succeeded, when set, replaces it.
	OKExitCodes []int
	Succeeded   func(exitCode int, issues []model.LintIssue) bool

	Parse func(out Output) []model.LintIssue
}

// CommandTool implements ports.Tool on top of an external command.
type CommandTool struct {
	spec       Spec
	runner     ports.ProcessRunner
	logger     zerolog.Logger
	executable string
}

var _ ports.Tool = (*CommandTool)(nil)

func NewCommandTool(spec Spec, runner ports.ProcessRunner, logger zerolog.Logger) *CommandTool {
	if len(spec.OKExitCodes) == 0 {
		spec.OKExitCodes = []int{0}
	}
	if spec.VersionArgs == nil {
		spec.VersionArgs = []string{"--version"}
	}
	return &CommandTool{
		spec:   spec,
		runner: runner,
		logger: logger.With().Str("tool", spec.Name).Logger(),
	}
}

// WithExecutable points the tool at a specific binary instead of looking
// up Spec.Binary in PATH.
func (t *CommandTool) WithExecutable(path string) *CommandTool {
	t.executable = path
	return t
}

func (t *CommandTool) Name() string                { return t.spec.Name }
func (t *CommandTool) Description() string         { return t.spec.Description }
func (t *CommandTool) Type() model.ToolType        { return t.spec.Type }
func (t *CommandTool) Languages() []model.Language { return t.spec.Languages }
func (t *CommandTool) Patterns() []string          { return t.spec.Patterns }

func (t *CommandTool) binary(cfg model.ToolConfig) string {
	return firstNonEmpty(cfg.ExecutablePath, t.executable, t.spec.Binary)
}

// CanHandle only accepts files whose language belongs to the tool, so a
// pattern can never widen the tool past its languages.
func (t *CommandTool) CanHandle(path string) bool {
	if !model.ContainsLanguage(t.spec.Languages, model.LanguageFromPath(path)) {
		return false
	}
	base := filepath.Base(path)
	for _, pattern := range t.spec.Patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (t *CommandTool) Available() bool {
	probe := t.binary(model.ToolConfig{})
	if t.executable == "" && t.spec.Probe != "" {
		probe = t.spec.Probe
	}
	_, err := t.runner.LookPath(probe)
	return err == nil
}

// Version returns the first line the tool prints for its version flag, or
// an empty string.
func (t *CommandTool) Version(ctx context.Context) string {
	res, err := t.runner.Run(ctx, ports.Command{
		Name: t.binary(model.ToolConfig{}),
		Args: t.spec.VersionArgs,
	})
	if err != nil || res.ExitCode != 0 {
		return ""
	}
	var version string
	Lines(Output{Stdout: res.Stdout, Stderr: res.Stderr}.Combined(), func(line string) {
		if version == "" {
			version = line
		}
	})
	return version
}

func (t *CommandTool) Args(files []string, cfg model.ToolConfig) []string {
	args := append([]string(nil), t.spec.BaseArgs...)
	if cfg.AutoFix {
		args = append(args, t.spec.FixArgs...)
	} else {
		args = append(args, t.spec.CheckArgs...)
	}
	if cfg.ConfigFile != "" && t.spec.ConfigArgs != nil {
		args = append(args, t.spec.ConfigArgs(cfg.ConfigFile)...)
	}
	args = append(args, cfg.ExtraArgs...)
	if !t.spec.NoFiles {
		args = append(args, files...)
	}
	return args
}

func (t *CommandTool) Execute(ctx context.Context, files []string, cfg model.ToolConfig) (model.LintResult, error) {
	result := model.LintResult{
		ToolName: t.spec.Name,
		ToolType: t.spec.Type,
	}

	var dir string
	if t.spec.WorkDir != nil {
		dir = t.spec.WorkDir(files)
	}
	argFiles := files
	if dir != "" && !t.spec.NoFiles {
		argFiles = absPaths(files)
	}

	cmd := ports.Command{
		Name: t.binary(cfg),
		Args: t.Args(argFiles, cfg),
		Dir:  dir,
		Env:  cfg.Env,
	}
	t.logger.Debug().Str("command", cmd.Name).Strs("args", cmd.Args).Str("dir", dir).Msg("running tool")

	res, err := t.runner.Run(ctx, cmd)
	result.Stdout = string(res.Stdout)
	result.Stderr = string(res.Stderr)
	if err != nil {
		return result, err
	}

	var issues []model.LintIssue
	if t.spec.Parse != nil {
		issues = t.spec.Parse(Output{
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
			Dir:      dir,
			Files:    files,
			Fix:      cfg.AutoFix,
		})
	}
	issues = normalizeIssueFiles(issues, files, dir)
	issues = model.FilterIssues(issues, cfg.ReportLevel)

	result.Issues = issues
	result.Success = t.succeeded(res.ExitCode, issues)
	if !result.Success {
		result.Diagnostic = diagnostic(res)
	}
	return result, nil
}

func (t *CommandTool) succeeded(code int, issues []model.LintIssue) bool {
	if t.spec.Succeeded != nil {
		return t.spec.Succeeded(code, issues)
	}
	for _, ok := range t.spec.OKExitCodes {
		if code == ok {
			return true
		}
	}
	return false
}

// diagnostic picks the most useful line of a failed run.
func diagnostic(res ports.ProcessResult) string {
	var first string
	Lines(res.Stderr, func(line string) {
		if first == "" {
			first = line
		}
	})
	if first == "" {
		Lines(res.Stdout, func(line string) {
			if first == "" {
				first = line
			}
		})
	}
	if first == "" {
		return fmt.Sprintf("exit status %d", res.ExitCode)
	}
	return fmt.Sprintf("exit status %d: %s", res.ExitCode, first)
}

// normalizeIssueFiles maps the paths a tool reports back onto the exact
// strings it was given. Tools print absolute paths, paths relative to their
// working directory or paths relative to ours.
func normalizeIssueFiles(issues []model.LintIssue, files []string, dir string) []model.LintIssue {
	if len(issues) == 0 {
		return issues
	}

	byAbs := make(map[string]string, len(files))
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			byAbs[abs] = f
		}
	}

	base := dir
	if base == "" {
		base, _ = os.Getwd()
	} else if abs, err := filepath.Abs(base); err == nil {
		base = abs
	}

	for i := range issues {
		reported := issues[i].File
		if reported == "" {
			continue
		}
		abs := reported
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(base, abs)
		}
		if original, ok := byAbs[filepath.Clean(abs)]; ok {
			issues[i].File = original
			continue
		}
		if cwdAbs, err := filepath.Abs(reported); err == nil {
			if original, ok := byAbs[cwdAbs]; ok {
				issues[i].File = original
			}
		}
	}
	return issues
}

// nearestDir walks up from the directory of the first file looking for
// marker and falls back to that directory.
func nearestDir(marker string) func(files []string) string {
	return func(files []string) string {
		if len(files) == 0 {
			return ""
		}
		start, err := filepath.Abs(filepath.Dir(files[0]))
		if err != nil {
			return filepath.Dir(files[0])
		}
		for dir := start; ; {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return start
			}
			dir = parent
		}
	}
}

func absPaths(files []string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			out[i] = abs
		} else {
			out[i] = f
		}
	}
	return out
}

func flag(name string) func(string) []string {
	return func(path string) []string {
		return []string{name, path}
	}
}

func flagEq(name string) func(string) []string {
	return func(path string) []string {
		return []string{name + "=" + path}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

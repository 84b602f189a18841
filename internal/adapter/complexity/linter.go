// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

// Package complexity is a built-in linter that flags overly complex
// functions in Go, C and C++ sources without any external binary.
package complexity

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

const ToolName = "complexity"

// Thresholds above which a function is reported. Zero disables a check.
//
// Findings are warnings or milder so the linter cannot fail the default
// quality gate on its own. ErrorCCN opts into error-level findings.
type Thresholds struct {
	MaxCCN     int
	ErrorCCN   int
	MaxNesting int
	MaxParams  int
	MaxLines   int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxCCN:     15,
		MaxNesting: 4,
		MaxParams:  6,
		MaxLines:   80,
	}
}

// ParseThresholds reads --max-ccn, --error-ccn, --max-nesting,
// --max-params and --max-lines from a tool's extra_args.
func ParseThresholds(args []string) (Thresholds, error) {
	th := DefaultThresholds()

	fs := pflag.NewFlagSet(ToolName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&th.MaxCCN, "max-ccn", th.MaxCCN, "maximum cyclomatic complexity")
	fs.IntVar(&th.ErrorCCN, "error-ccn", th.ErrorCCN, "cyclomatic complexity reported as an error")
	fs.IntVar(&th.MaxNesting, "max-nesting", th.MaxNesting, "maximum block nesting")
	fs.IntVar(&th.MaxParams, "max-params", th.MaxParams, "maximum number of parameters")
	fs.IntVar(&th.MaxLines, "max-lines", th.MaxLines, "maximum code lines per function")

	if err := fs.Parse(args); err != nil {
		return Thresholds{}, fmt.Errorf("invalid %s arguments: %w", ToolName, err)
	}
	if fs.NArg() > 0 {
		return Thresholds{}, fmt.Errorf("invalid %s arguments: unexpected %q", ToolName, fs.Arg(0))
	}
	return th, nil
}

// Check turns the metrics of one file into issues.
func (th Thresholds) Check(path string, fns []FunctionMetrics) []model.LintIssue {
	var issues []model.LintIssue
	report := func(fn FunctionMetrics, sev model.Severity, code, format string, args ...any) {
		issues = append(issues, model.LintIssue{
			Severity: sev,
			Message:  fmt.Sprintf("function %s "+format, append([]any{fn.Name}, args...)...),
			File:     path,
			Line:     fn.StartLine,
			Column:   1,
			Code:     code,
		})
	}

	for _, fn := range fns {
		switch {
		case th.ErrorCCN > 0 && fn.CCN > th.ErrorCCN:
			report(fn, model.SeverityError, "ccn", "has cyclomatic complexity %d (error above %d)", fn.CCN, th.ErrorCCN)
		case th.MaxCCN > 0 && fn.CCN > th.MaxCCN:
			report(fn, model.SeverityWarning, "ccn", "has cyclomatic complexity %d (max %d)", fn.CCN, th.MaxCCN)
		}
		if th.MaxNesting > 0 && fn.MaxNesting > th.MaxNesting {
			report(fn, model.SeverityWarning, "nesting", "nests %d levels deep (max %d)", fn.MaxNesting, th.MaxNesting)
		}
		if th.MaxParams > 0 && fn.Parameters > th.MaxParams {
			report(fn, model.SeverityStyle, "params", "takes %d parameters (max %d)", fn.Parameters, th.MaxParams)
		}
		if th.MaxLines > 0 && fn.NLOC > th.MaxLines {
			report(fn, model.SeverityInfo, "length", "has %d lines of code (max %d)", fn.NLOC, th.MaxLines)
		}
	}
	return issues
}

// Measure dispatches on the language of path.
func Measure(path string, src []byte) ([]FunctionMetrics, error) {
	switch model.LanguageFromPath(path) {
	case model.LanguageGo:
		return goFunctions(path, src)
	case model.LanguageC, model.LanguageCpp:
		return cFunctions(src), nil
	default:
		return nil, fmt.Errorf("%s: unsupported language", path)
	}
}

// Linter implements ports.Tool in process.
type Linter struct {
	reader ports.FileReader
	logger zerolog.Logger
}

var _ ports.Tool = (*Linter)(nil)

func NewLinter(reader ports.FileReader, logger zerolog.Logger) *Linter {
	return &Linter{
		reader: reader,
		logger: logger.With().Str("tool", ToolName).Logger(),
	}
}

func (l *Linter) Name() string         { return ToolName }
func (l *Linter) Type() model.ToolType { return model.ToolTypeLinter }
func (l *Linter) Available() bool      { return true }

func (l *Linter) Description() string {
	return "Built-in function complexity checks for Go, C and C++"
}

func (l *Linter) Languages() []model.Language {
	return []model.Language{model.LanguageGo, model.LanguageC, model.LanguageCpp}
}

func (l *Linter) CanHandle(path string) bool {
	return model.ContainsLanguage(l.Languages(), model.LanguageFromPath(path))
}

func (l *Linter) Version(context.Context) string {
	return "builtin (" + runtime.Version() + ")"
}

// Execute never fails because of what it finds: unreadable or unparsable
// files become warnings. Only bad arguments fail the run.
func (l *Linter) Execute(ctx context.Context, files []string, cfg model.ToolConfig) (model.LintResult, error) {
	result := model.LintResult{
		ToolName: ToolName,
		ToolType: model.ToolTypeLinter,
	}

	th, err := ParseThresholds(cfg.ExtraArgs)
	if err != nil {
		return result, err
	}

	var issues []model.LintIssue
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		src, err := l.reader.ReadFile(path)
		if err != nil {
			issues = append(issues, model.LintIssue{
				Severity: model.SeverityWarning,
				Message:  fmt.Sprintf("cannot read file: %v", err),
				File:     path,
				Code:     "read",
			})
			continue
		}

		fns, err := Measure(path, src)
		if err != nil {
			issues = append(issues, model.LintIssue{
				Severity: model.SeverityWarning,
				Message:  err.Error(),
				File:     path,
				Code:     "parse",
			})
			continue
		}
		l.logger.Trace().Str("file", path).Int("functions", len(fns)).Msg("measured")
		issues = append(issues, th.Check(path, fns)...)
	}

	result.Issues = model.FilterIssues(issues, cfg.ReportLevel)
	result.Success = true
	return result, nil
}

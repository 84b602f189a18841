// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

func TestAggregateScenarioB(t *testing.T) {
	formatter := newFakeTool("FormatterA", model.ToolTypeFormatter, model.LanguagePython, ".py")
	linter := newFakeTool("LinterB", model.ToolTypeLinter, model.LanguagePython, ".py")
	linter.exec = func(context.Context, []string, model.ToolConfig) (model.LintResult, error) {
		return model.LintResult{Success: false, Diagnostic: "config parse error"}, nil
	}

	res := NewResolver(frozenRegistry(formatter, linter), nopLogger()).Resolve(ResolveRequest{
		Files: detected("a.py", "b.js"),
		Types: []model.ToolType{model.ToolTypeFormatter, model.ToolTypeLinter},
	})
	results := NewScheduler(Options{}, nopLogger()).Run(context.Background(), res.Units)
	report := Aggregate(results, ReportMeta{Command: model.CommandCheck})

	assert.False(t, report.OverallSuccess)
	require.Contains(t, report.CountsByTool, "LinterB")
	assert.False(t, report.CountsByTool["LinterB"].Success)
	assert.Equal(t, 1, report.CountsByTool["LinterB"].Failures)
	assert.Equal(t, model.StatusFailed, report.CountsByTool["LinterB"].Status)
	assert.True(t, report.CountsByTool["FormatterA"].Success)
	assert.Equal(t, model.StatusSucceeded, report.CountsByTool["FormatterA"].Status)
	assert.Equal(t, 1, report.CountsByStatus[model.StatusFailed])
	assert.Equal(t, 1, report.CountsByStatus[model.StatusSucceeded])
}

func TestAggregateOrdersByIndexWithoutMutatingInput(t *testing.T) {
	input := []model.LintResult{
		{Index: 2, ToolName: "c", Success: true, Status: model.StatusSucceeded},
		{Index: 0, ToolName: "a", Success: true, Status: model.StatusSucceeded,
			Issues: []model.LintIssue{{Severity: model.SeverityWarning, Message: "w"}}},
		{Index: 1, ToolName: "b", Success: true, Status: model.StatusSucceeded},
	}

	report := Aggregate(input, ReportMeta{})

	names := []string{report.Results[0].ToolName, report.Results[1].ToolName, report.Results[2].ToolName}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, "c", input[0].ToolName)

	report.Results[0].Issues[0].Message = "changed"
	assert.Equal(t, "w", input[1].Issues[0].Message)
}

func TestAggregateCounts(t *testing.T) {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	results := []model.LintResult{
		{
			Index: 0, ToolName: "ruff", ToolType: model.ToolTypeLinter, Success: true,
			Status: model.StatusSucceeded, ExecutionTime: time.Second,
			Issues: []model.LintIssue{
				{Severity: model.SeverityWarning, Message: "w1"},
				{Severity: model.SeverityStyle, Message: "s1"},
			},
		},
		{
			Index: 1, ToolName: "ruff", ToolType: model.ToolTypeLinter, Success: false,
			Status: model.StatusTimedOut, ExecutionTime: 2 * time.Second,
		},
		{
			Index: 2, ToolName: "mypy", ToolType: model.ToolTypeTypeChecker, Success: true,
			Status: model.StatusSucceeded,
			Issues: []model.LintIssue{{Severity: model.SeverityError, Message: "e1"}},
		},
	}

	report := Aggregate(results, ReportMeta{
		RunID:            "run-1",
		Command:          model.CommandCheck,
		StartedAt:        started,
		FinishedAt:       started.Add(3 * time.Second),
		Skipped:          []model.SkippedTool{{ToolName: "pylint", Reason: SkipReasonNotInstalled}},
		ResolutionErrors: []error{errors.New("unknown tool \"x\"")},
	})

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 3*time.Second, report.Duration)
	assert.Equal(t, started.Add(3*time.Second), report.GeneratedAt)
	assert.Equal(t, map[model.Severity]int{
		model.SeverityError:   1,
		model.SeverityWarning: 1,
		model.SeverityStyle:   1,
	}, report.CountsBySeverity)
	assert.Equal(t, 3, report.TotalIssues())

	ruff := report.CountsByTool["ruff"]
	assert.Equal(t, 2, ruff.Units)
	assert.Equal(t, 1, ruff.Failures)
	assert.Equal(t, 2, ruff.Issues)
	assert.Equal(t, model.StatusTimedOut, ruff.Status)
	assert.Equal(t, 3*time.Second, ruff.Duration)

	assert.Equal(t, 1, report.CountsByStatus[model.StatusSkipped])
	assert.Equal(t, 1, report.CountsByStatus[model.StatusTimedOut])
	assert.Equal(t, []string{"unknown tool \"x\""}, report.ResolutionErrors)
	assert.False(t, report.OverallSuccess)
}

func TestAggregateOverallSuccess(t *testing.T) {
	warnOnly := []model.LintResult{{
		Index: 0, ToolName: "ruff", Success: true, Status: model.StatusSucceeded,
		Issues: []model.LintIssue{{Severity: model.SeverityWarning, Message: "w"}},
	}}
	report := Aggregate(warnOnly, ReportMeta{})
	assert.True(t, report.OverallSuccess)
	assert.False(t, report.Failed(model.SeverityError))
	assert.True(t, report.Failed(model.SeverityWarning))

	withError := []model.LintResult{{
		Index: 0, ToolName: "ruff", Success: true, Status: model.StatusSucceeded,
		Issues: []model.LintIssue{{Severity: model.SeverityError, Message: "e"}},
	}}
	assert.False(t, Aggregate(withError, ReportMeta{}).OverallSuccess)

	empty := Aggregate(nil, ReportMeta{})
	assert.True(t, empty.OverallSuccess)
	assert.Empty(t, empty.Results)
}

func TestReportIssuesMatching(t *testing.T) {
	report := Aggregate([]model.LintResult{
		{Index: 1, ToolName: "mypy", Success: true, Issues: []model.LintIssue{
			{Severity: model.SeverityError, Message: "m1"},
		}},
		{Index: 0, ToolName: "ruff", Success: true, Issues: []model.LintIssue{
			{Severity: model.SeverityInfo, Message: "r1"},
			{Severity: model.SeverityError, Message: "r2"},
		}},
	}, ReportMeta{})

	errorsOnly := report.IssuesMatching(func(issue model.LintIssue) bool {
		return issue.Severity == model.SeverityError
	})
	require.Len(t, errorsOnly, 2)
	assert.Equal(t, "ruff", errorsOnly[0].ToolName)
	assert.Equal(t, "r2", errorsOnly[0].Issue.Message)
	assert.Equal(t, "mypy", errorsOnly[1].ToolName)

	assert.Len(t, report.IssuesMatching(nil), 3)
	assert.Equal(t, 3, report.CountAtLeast(model.SeverityInfo))
	assert.Equal(t, 2, report.CountAtLeast(model.SeverityWarning))
}

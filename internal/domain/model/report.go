// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package model

import "time"

// ToolSummary aggregates the results a single tool produced in one run.
type ToolSummary struct {
	ToolType   ToolType         `json:"toolType" yaml:"toolType"`
	Status     UnitStatus       `json:"status" yaml:"status"`
	Success    bool             `json:"success" yaml:"success"`
	Units      int              `json:"units" yaml:"units"`
	Failures   int              `json:"failures" yaml:"failures"`
	Issues     int              `json:"issues" yaml:"issues"`
	BySeverity map[Severity]int `json:"bySeverity" yaml:"bySeverity"`
	Duration   time.Duration    `json:"duration" yaml:"duration"`
}

// Report is the aggregated outcome of one run.
type Report struct {
	RunID            string                 `json:"runId" yaml:"runId"`
	Command          Command                `json:"command" yaml:"command"`
	RootPath         string                 `json:"rootPath" yaml:"rootPath"`
	GeneratedAt      time.Time              `json:"generatedAt" yaml:"generatedAt"`
	Duration         time.Duration          `json:"duration" yaml:"duration"`
	Results          []LintResult           `json:"results" yaml:"results"`
	Skipped          []SkippedTool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	ResolutionErrors []string               `json:"resolutionErrors,omitempty" yaml:"resolutionErrors,omitempty"`
	CountsBySeverity map[Severity]int       `json:"countsBySeverity" yaml:"countsBySeverity"`
	CountsByTool     map[string]ToolSummary `json:"countsByTool" yaml:"countsByTool"`
	CountsByStatus   map[UnitStatus]int     `json:"countsByStatus" yaml:"countsByStatus"`
	OverallSuccess   bool                   `json:"overallSuccess" yaml:"overallSuccess"`
}

// IssueRef ties an issue to the tool that reported it.
type IssueRef struct {
	ToolName string
	Index    int
	Issue    LintIssue
}

// IssuesMatching returns every issue satisfying pred, in result order and,
// within a result, in the order the tool reported them.
func (r *Report) IssuesMatching(pred func(LintIssue) bool) []IssueRef {
	if r == nil {
		return nil
	}
	var out []IssueRef
	for _, res := range r.Results {
		for _, issue := range res.Issues {
			if pred == nil || pred(issue) {
				out = append(out, IssueRef{ToolName: res.ToolName, Index: res.Index, Issue: issue})
			}
		}
	}
	return out
}

// CountAtLeast counts issues whose severity is level or worse.
func (r *Report) CountAtLeast(level Severity) int {
	return len(r.IssuesMatching(func(issue LintIssue) bool {
		return issue.Severity.AtLeast(level)
	}))
}

// TotalIssues is the number of issues across all results.
func (r *Report) TotalIssues() int {
	total := 0
	for _, n := range r.CountsBySeverity {
		total += n
	}
	return total
}

// Failed reports whether the run should be considered a failure for the
// given fail level: any tool that did not succeed, or any issue at or above
// failLevel.
func (r *Report) Failed(failLevel Severity) bool {
	if r == nil {
		return false
	}
	for _, res := range r.Results {
		if !res.Success {
			return true
		}
	}
	return r.CountAtLeast(failLevel) > 0
}

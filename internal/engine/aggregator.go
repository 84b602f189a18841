// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package engine

import (
	"sort"
	"time"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

// ReportMeta carries the run-level data the aggregator cannot derive from
// results alone.
type ReportMeta struct {
	RunID            string
	Command          model.Command
	RootPath         string
	StartedAt        time.Time
	FinishedAt       time.Time
	Skipped          []model.SkippedTool
	ResolutionErrors []error
}

// Aggregate builds a report from scheduler results. Results are copied and
// ordered by unit index; the input slice is left untouched.
func Aggregate(results []model.LintResult, meta ReportMeta) *model.Report {
	ordered := make([]model.LintResult, len(results))
	for i, r := range results {
		r.Issues = append([]model.LintIssue(nil), r.Issues...)
		r.Files = append([]string(nil), r.Files...)
		ordered[i] = r
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})

	report := &model.Report{
		RunID:            meta.RunID,
		Command:          meta.Command,
		RootPath:         meta.RootPath,
		GeneratedAt:      meta.FinishedAt,
		Results:          ordered,
		Skipped:          append([]model.SkippedTool(nil), meta.Skipped...),
		CountsBySeverity: make(map[model.Severity]int),
		CountsByTool:     make(map[string]model.ToolSummary),
		CountsByStatus:   make(map[model.UnitStatus]int),
		OverallSuccess:   true,
	}
	if !meta.StartedAt.IsZero() && meta.FinishedAt.After(meta.StartedAt) {
		report.Duration = meta.FinishedAt.Sub(meta.StartedAt)
	}
	for _, err := range meta.ResolutionErrors {
		report.ResolutionErrors = append(report.ResolutionErrors, err.Error())
	}

	for _, res := range ordered {
		report.CountsByStatus[res.Status]++
		if !res.Success {
			report.OverallSuccess = false
		}

		summary, ok := report.CountsByTool[res.ToolName]
		if !ok {
			summary = model.ToolSummary{
				ToolType:   res.ToolType,
				Status:     res.Status,
				Success:    true,
				BySeverity: make(map[model.Severity]int),
			}
		}
		summary.Units++
		summary.Duration += res.ExecutionTime
		if !res.Success {
			summary.Success = false
			summary.Failures++
		}
		if statusRank(res.Status) > statusRank(summary.Status) {
			summary.Status = res.Status
		}

		for _, issue := range res.Issues {
			report.CountsBySeverity[issue.Severity]++
			summary.BySeverity[issue.Severity]++
			summary.Issues++
		}
		report.CountsByTool[res.ToolName] = summary
	}

	if len(meta.Skipped) > 0 {
		report.CountsByStatus[model.StatusSkipped] += len(meta.Skipped)
	}

	if report.CountsBySeverity[model.SeverityError] > 0 {
		report.OverallSuccess = false
	}
	return report
}

// statusRank orders terminal statuses so a tool summary shows the worst
// outcome among its units.
func statusRank(s model.UnitStatus) int {
	switch s {
	case model.StatusFailed:
		return 4
	case model.StatusTimedOut:
		return 3
	case model.StatusCancelled:
		return 2
	case model.StatusSucceeded:
		return 1
	default:
		return 0
	}
}

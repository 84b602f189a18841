// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"strings"
	"time"
)

// Severity of a reported issue. Higher Rank is more severe.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityStyle   Severity = "style"
)

// AllSeverities lists severities from most to least severe.
func AllSeverities() []Severity {
	return []Severity{SeverityError, SeverityWarning, SeverityInfo, SeverityStyle}
}

func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 4
	case SeverityWarning:
		return 3
	case SeverityInfo:
		return 2
	case SeverityStyle:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as, or more severe than, level.
func (s Severity) AtLeast(level Severity) bool {
	return s.Rank() >= level.Rank()
}

func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "errors":
		return SeverityError, nil
	case "warning", "warn", "warnings":
		return SeverityWarning, nil
	case "info", "note":
		return SeverityInfo, nil
	case "style":
		return SeverityStyle, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// LintIssue is one finding reported by a tool. File, Line, Column and Code
// are optional; their zero value means "not reported".
type LintIssue struct {
	Severity     Severity `json:"severity" yaml:"severity"`
	Message      string   `json:"message" yaml:"message"`
	File         string   `json:"file,omitempty" yaml:"file,omitempty"`
	Line         int      `json:"line,omitempty" yaml:"line,omitempty"`
	Column       int      `json:"column,omitempty" yaml:"column,omitempty"`
	Code         string   `json:"code,omitempty" yaml:"code,omitempty"`
	FixAvailable bool     `json:"fixAvailable" yaml:"fixAvailable"`
}

// FilterIssues keeps issues at or above level. An empty or unknown level
// keeps everything. The input slice is reused.
func FilterIssues(issues []LintIssue, level string) []LintIssue {
	if level == "" {
		return issues
	}
	threshold, err := ParseSeverity(level)
	if err != nil {
		return issues
	}
	kept := issues[:0]
	for _, issue := range issues {
		if issue.Severity.AtLeast(threshold) {
			kept = append(kept, issue)
		}
	}
	return kept
}

// UnitStatus is the lifecycle state of one execution unit.
//
//	pending -> running -> succeeded | failed | timed_out | cancelled
//
// skipped is assigned by the resolver before scheduling.
type UnitStatus string

const (
	StatusPending   UnitStatus = "pending"
	StatusRunning   UnitStatus = "running"
	StatusSucceeded UnitStatus = "succeeded"
	StatusFailed    UnitStatus = "failed"
	StatusTimedOut  UnitStatus = "timed_out"
	StatusSkipped   UnitStatus = "skipped"
	StatusCancelled UnitStatus = "cancelled"
)

// Terminal reports whether no further transition can follow s.
func (s UnitStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusTimedOut, StatusSkipped, StatusCancelled:
		return true
	default:
		return false
	}
}

// LintResult is the outcome of running one tool over one file subset.
//
// Success is false when the tool itself could not run properly; a tool that
// ran and found issues is still successful.
type LintResult struct {
	Index         int           `json:"index" yaml:"index"`
	ToolName      string        `json:"toolName" yaml:"toolName"`
	ToolType      ToolType      `json:"toolType" yaml:"toolType"`
	Status        UnitStatus    `json:"status" yaml:"status"`
	Success       bool          `json:"success" yaml:"success"`
	Issues        []LintIssue   `json:"issues" yaml:"issues"`
	Files         []string      `json:"files,omitempty" yaml:"files,omitempty"`
	ExecutionTime time.Duration `json:"executionTime" yaml:"executionTime"`
	Stdout        string        `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr        string        `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	Diagnostic    string        `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
}

// SkippedTool records a tool the resolver decided not to schedule.
type SkippedTool struct {
	ToolName string   `json:"toolName" yaml:"toolName"`
	ToolType ToolType `json:"toolType" yaml:"toolType"`
	Reason   string   `json:"reason" yaml:"reason"`
}

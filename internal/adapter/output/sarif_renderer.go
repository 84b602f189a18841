// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Results     []sarifResult     `json:"results"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string `json:"name"`
	InformationURI string `json:"informationUri,omitempty"`
}

type sarifInvocation struct {
	ExecutionSuccessful bool                `json:"executionSuccessful"`
	Notifications       []sarifNotification `json:"toolExecutionNotifications,omitempty"`
}

type sarifNotification struct {
	Level   string       `json:"level"`
	Message sarifMessage `json:"message"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId,omitempty"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

// SARIFRenderer emits one SARIF run per tool, in the order tools first
// appear in the report.
type SARIFRenderer struct {
	opts Options
}

func NewSARIFRenderer(opts Options) *SARIFRenderer {
	return &SARIFRenderer{opts: opts}
}

var _ ports.OutputRenderer = (*SARIFRenderer)(nil)

func (r *SARIFRenderer) Format() string {
	return "sarif"
}

func (r *SARIFRenderer) Render(report *model.Report) (string, error) {
	report = relativized(report, r.opts.RelativeTo)

	log := sarifLog{Version: sarifVersion, Schema: sarifSchema, Runs: []sarifRun{}}
	byTool := make(map[string]int)

	for _, res := range report.Results {
		idx, ok := byTool[res.ToolName]
		if !ok {
			idx = len(log.Runs)
			byTool[res.ToolName] = idx
			log.Runs = append(log.Runs, sarifRun{
				Tool:    sarifTool{Driver: sarifDriver{Name: res.ToolName}},
				Results: []sarifResult{},
			})
		}
		run := &log.Runs[idx]

		inv := sarifInvocation{ExecutionSuccessful: res.Success}
		if res.Diagnostic != "" {
			inv.Notifications = []sarifNotification{{
				Level:   "error",
				Message: sarifMessage{Text: res.Diagnostic},
			}}
		}
		run.Invocations = append(run.Invocations, inv)

		for _, issue := range res.Issues {
			run.Results = append(run.Results, sarifIssue(issue))
		}
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

func sarifIssue(issue model.LintIssue) sarifResult {
	out := sarifResult{
		RuleID:  issue.Code,
		Level:   sarifLevel(issue.Severity),
		Message: sarifMessage{Text: issue.Message},
	}
	if issue.File == "" {
		return out
	}
	loc := sarifLocation{PhysicalLocation: sarifPhysicalLocation{
		ArtifactLocation: sarifArtifact{URI: issue.File},
	}}
	if issue.Line > 0 {
		loc.PhysicalLocation.Region = &sarifRegion{StartLine: issue.Line, StartColumn: issue.Column}
	}
	out.Locations = []sarifLocation{loc}
	return out
}

func sarifLevel(sev model.Severity) string {
	switch sev {
	case model.SeverityError:
		return "error"
	case model.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

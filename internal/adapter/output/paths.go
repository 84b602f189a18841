// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package output

import (
	"path/filepath"
	"strings"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

// displayPath rewrites path relative to base when both resolve and the
// result does not climb out of base.
func displayPath(path, base string) string {
	if path == "" || base == "" {
		return path
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return path
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

// relativized returns a copy of report with issue paths made relative to
// base. The input is left alone.
func relativized(report *model.Report, base string) *model.Report {
	if base == "" || report == nil {
		return report
	}
	out := *report
	out.Results = make([]model.LintResult, len(report.Results))
	for i, res := range report.Results {
		res.Issues = append([]model.LintIssue(nil), res.Issues...)
		for j := range res.Issues {
			res.Issues[j].File = displayPath(res.Issues[j].File, base)
		}
		res.Files = append([]string(nil), res.Files...)
		for j := range res.Files {
			res.Files[j] = displayPath(res.Files[j], base)
		}
		out.Results[i] = res
	}
	return &out
}

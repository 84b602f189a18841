// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package tools

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

var templatePatterns = []string{"*.html", "*.htm", "*.djhtml", "*.jinja", "*.j2", "*.hbs"}

func DjLintSpec() Spec {
	return Spec{
		Name:        "djlint",
		Description: "Linter for HTML templates (Django, Jinja, Nunjucks, Handlebars)",
		Type:        model.ToolTypeLinter,
		Languages:   []model.Language{model.LanguageHTML},
		Patterns:    templatePatterns,
		Binary:      "djlint",
		BaseArgs:    []string{"--lint"},
		ConfigArgs:  flag("--configuration"),
		OKExitCodes: []int{0, 1},
		Parse:       parseDjLint,
	}
}

func DjLintFormatSpec() Spec {
	return Spec{
		Name:        "djlint-format",
		Description: "Formatter for HTML templates",
		Type:        model.ToolTypeFormatter,
		Languages:   []model.Language{model.LanguageHTML},
		Patterns:    templatePatterns,
		Binary:      "djlint",
		CheckArgs:   []string{"--check"},
		FixArgs:     []string{"--reformat", "--quiet"},
		ConfigArgs:  flag("--configuration"),
		OKExitCodes: []int{0, 1},
		Parse:       parseDjLintFormat,
	}
}

var djlintLine = regexp.MustCompile(`^([A-Z]\d{3,4}) (\d+):(\d+) (.+)$`)

// parseDjLint reads the grouped lint output:
//
//	templates/base.html
//	───────────────────
//	H021 14:8 Inline styles should be avoided. <div style="
func parseDjLint(out Output) []model.LintIssue {
	var (
		issues  []model.LintIssue
		current string
	)
	Lines(out.Combined(), func(line string) {
		if strings.HasPrefix(line, "─") || strings.HasPrefix(line, "Linting") ||
			strings.Contains(line, "[Linted]") || strings.Contains(line, "would be updated") {
			return
		}
		m := djlintLine.FindStringSubmatch(line)
		if m == nil {
			current = line
			return
		}

		sev := model.SeverityInfo
		switch m[1][0] {
		case 'H':
			sev = model.SeverityWarning
		case 'T':
			sev = model.SeverityError
		}
		issues = append(issues, model.LintIssue{
			Severity: sev,
			Message:  m[4],
			File:     current,
			Line:     atoi(m[2]),
			Column:   atoi(m[3]),
			Code:     m[1],
		})
	})
	return issues
}

// parseDjLintFormat reports every input file that djlint names in its
// check output.
func parseDjLintFormat(out Output) []model.LintIssue {
	if out.Fix {
		return nil
	}
	wanted := make(map[string]string, len(out.Files))
	for _, f := range out.Files {
		wanted[filepath.Clean(f)] = f
		if abs, err := filepath.Abs(f); err == nil {
			wanted[abs] = f
		}
	}

	var issues []model.LintIssue
	seen := make(map[string]bool)
	Lines(out.Combined(), func(line string) {
		original, ok := wanted[filepath.Clean(line)]
		if !ok || seen[original] {
			return
		}
		seen[original] = true
		issues = append(issues, needsFormatting(original, 0))
	})
	return issues
}

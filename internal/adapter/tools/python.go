// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package tools

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

var pythonPatterns = []string{"*.py", "*.pyi", "*.pyx"}

func RuffSpec() Spec {
	return Spec{
		Name:        "ruff",
		Description: "Extremely fast Python linter",
		Type:        model.ToolTypeLinter,
		Languages:   []model.Language{model.LanguagePython},
		Patterns:    pythonPatterns,
		Binary:      "ruff",
		BaseArgs:    []string{"check", "--output-format=concise"},
		CheckArgs:   []string{"--no-fix"},
		FixArgs:     []string{"--fix"},
		ConfigArgs:  flag("--config"),
		OKExitCodes: []int{0, 1},
		Parse:       parseRuff,
	}
}

func RuffFixSpec() Spec {
	return Spec{
		Name:        "ruff-fix",
		Description: "Applies ruff's automatic fixes",
		Type:        model.ToolTypeFixer,
		Languages:   []model.Language{model.LanguagePython},
		Patterns:    pythonPatterns,
		Binary:      "ruff",
		BaseArgs:    []string{"check", "--fix", "--output-format=concise"},
		ConfigArgs:  flag("--config"),
		OKExitCodes: []int{0, 1},
		Parse:       parseRuff,
	}
}

func RuffFormatSpec() Spec {
	return Spec{
		Name:        "ruff-format",
		Description: "Python formatter bundled with ruff",
		Type:        model.ToolTypeFormatter,
		Languages:   []model.Language{model.LanguagePython},
		Patterns:    pythonPatterns,
		Binary:      "ruff",
		BaseArgs:    []string{"format"},
		CheckArgs:   []string{"--check"},
		ConfigArgs:  flag("--config"),
		OKExitCodes: []int{0, 1},
		Parse:       reformatParser(regexp.MustCompile(`^Would reformat: (.+)$`)),
	}
}

func BlackSpec() Spec {
	return Spec{
		Name:        "black",
		Description: "The uncompromising Python code formatter",
		Type:        model.ToolTypeFormatter,
		Languages:   []model.Language{model.LanguagePython},
		Patterns:    []string{"*.py", "*.pyi"},
		Binary:      "black",
		CheckArgs:   []string{"--check"},
		FixArgs:     []string{"--quiet"},
		ConfigArgs:  flag("--config"),
		OKExitCodes: []int{0, 1},
		Parse:       reformatParser(regexp.MustCompile(`^would reformat (.+)$`)),
	}
}

func PylintSpec() Spec {
	return Spec{
		Name:        "pylint",
		Description: "Python static code analyser",
		Type:        model.ToolTypeLinter,
		Languages:   []model.Language{model.LanguagePython},
		Patterns:    []string{"*.py"},
		Binary:      "pylint",
		BaseArgs:    []string{"--output-format=text", "--score=n", "--reports=n"},
		ConfigArgs:  flagEq("--rcfile"),
		// pylint's exit status is a bit mask; 1 is fatal and 32 a usage error.
		Succeeded: func(code int, _ []model.LintIssue) bool {
			return code&(1|32) == 0
		},
		Parse: parsePylint,
	}
}

func MypySpec() Spec {
	return Spec{
		Name:        "mypy",
		Description: "Optional static type checker for Python",
		Type:        model.ToolTypeTypeChecker,
		Languages:   []model.Language{model.LanguagePython},
		Patterns:    []string{"*.py", "*.pyi"},
		Binary:      "mypy",
		BaseArgs:    []string{"--no-pretty", "--show-column-numbers", "--no-error-summary", "--show-error-codes"},
		ConfigArgs:  flag("--config-file"),
		OKExitCodes: []int{0, 1},
		Parse:       parseMypy,
	}
}

// file:line:col: CODE [*] message
var ruffLine = regexp.MustCompile(`^(.+?):(\d+):(\d+): ([A-Z]+[0-9]+)( \[\*\])? (.+)$`)

func parseRuff(out Output) []model.LintIssue {
	var issues []model.LintIssue
	Lines(out.Stdout, func(line string) {
		m := ruffLine.FindStringSubmatch(line)
		if m == nil {
			return
		}
		issues = append(issues, model.LintIssue{
			Severity:     ruffSeverity(m[4]),
			Message:      m[6],
			File:         m[1],
			Line:         atoi(m[2]),
			Column:       atoi(m[3]),
			Code:         m[4],
			FixAvailable: m[5] != "",
		})
	})
	return issues
}

func ruffSeverity(code string) model.Severity {
	switch {
	case strings.HasPrefix(code, "E"), strings.HasPrefix(code, "F"):
		return model.SeverityError
	case strings.HasPrefix(code, "W"):
		return model.SeverityWarning
	default:
		return model.SeverityStyle
	}
}

// path:line:col: C0114: Missing module docstring (missing-module-docstring)
var pylintLine = regexp.MustCompile(`^(.+?):(\d+):(\d+): ([A-Z])(\d{4}): (.+?)(?: \(([a-z0-9-]+)\))?$`)

func parsePylint(out Output) []model.LintIssue {
	var issues []model.LintIssue
	Lines(out.Stdout, func(line string) {
		m := pylintLine.FindStringSubmatch(line)
		if m == nil {
			return
		}
		code := m[4] + m[5]
		if m[7] != "" {
			code += "(" + m[7] + ")"
		}
		issues = append(issues, model.LintIssue{
			Severity: pylintSeverity(m[4]),
			Message:  m[6],
			File:     m[1],
			Line:     atoi(m[2]),
			Column:   atoi(m[3]),
			Code:     code,
		})
	})
	return issues
}

func pylintSeverity(category string) model.Severity {
	switch category {
	case "F", "E":
		return model.SeverityError
	case "W":
		return model.SeverityWarning
	case "I":
		return model.SeverityInfo
	default:
		return model.SeverityStyle
	}
}

// path:line[:col]: error: message  [code]
var mypyLine = regexp.MustCompile(`^(.+?):(\d+):(?:(\d+):)? (error|warning|note): (.+?)(?:  \[([a-z0-9-]+)\])?$`)

func parseMypy(out Output) []model.LintIssue {
	var issues []model.LintIssue
	Lines(out.Stdout, func(line string) {
		m := mypyLine.FindStringSubmatch(line)
		if m == nil {
			return
		}
		sev := model.SeverityInfo
		switch m[4] {
		case "error":
			sev = model.SeverityError
		case "warning":
			sev = model.SeverityWarning
		}
		issues = append(issues, model.LintIssue{
			Severity: sev,
			Message:  m[5],
			File:     m[1],
			Line:     atoi(m[2]),
			Column:   atoi(m[3]),
			Code:     m[6],
		})
	})
	return issues
}

// reformatParser turns "would reformat <file>" style lines of a formatter
// running in check mode into style issues. In fix mode nothing is reported.
func reformatParser(re *regexp.Regexp) func(Output) []model.LintIssue {
	return func(out Output) []model.LintIssue {
		if out.Fix {
			return nil
		}
		var issues []model.LintIssue
		Lines(out.Combined(), func(line string) {
			m := re.FindStringSubmatch(line)
			if m == nil {
				return
			}
			issues = append(issues, needsFormatting(strings.TrimSpace(m[1]), 0))
		})
		return issues
	}
}

func needsFormatting(file string, line int) model.LintIssue {
	return model.LintIssue{
		Severity:     model.SeverityStyle,
		Message:      "file needs formatting",
		File:         file,
		Line:         line,
		FixAvailable: true,
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

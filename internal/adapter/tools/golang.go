// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package tools

import (
	"regexp"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

func GofmtSpec() Spec {
	return Spec{
		Name:        "gofmt",
		Description: "Formats Go source code",
		Type:        model.ToolTypeFormatter,
		Languages:   []model.Language{model.LanguageGo},
		Patterns:    []string{"*.go"},
		Binary:      "gofmt",
		CheckArgs:   []string{"-l"},
		FixArgs:     []string{"-l", "-w"},
		Parse:       parseGofmt,
	}
}

func GoVetSpec() Spec {
	return Spec{
		Name:        "go-vet",
		Description: "Reports suspicious constructs in Go packages",
		Type:        model.ToolTypeLinter,
		Languages:   []model.Language{model.LanguageGo},
		Patterns:    []string{"*.go"},
		Binary:      "go",
		BaseArgs:    []string{"vet", "./..."},
		VersionArgs: []string{"version"},
		NoFiles:     true,
		WorkDir:     nearestDir("go.mod"),
		Succeeded: func(code int, issues []model.LintIssue) bool {
			return code == 0 || len(issues) > 0
		},
		Parse: parseGoVet,
	}
}

// gofmt -l prints one file per line.
func parseGofmt(out Output) []model.LintIssue {
	if out.Fix {
		return nil
	}
	var issues []model.LintIssue
	Lines(out.Stdout, func(line string) {
		issues = append(issues, needsFormatting(line, 0))
	})
	return issues
}

// ./main.go:12:2: fmt.Printf format %d has arg s of wrong type string
var vetLine = regexp.MustCompile(`^(?:vet: )?(.+?\.go):(\d+):(\d+): (.+)$`)

func parseGoVet(out Output) []model.LintIssue {
	var issues []model.LintIssue
	Lines(out.Stderr, func(line string) {
		m := vetLine.FindStringSubmatch(line)
		if m == nil {
			return
		}
		issues = append(issues, model.LintIssue{
			Severity: model.SeverityWarning,
			Message:  m[4],
			File:     m[1],
			Line:     atoi(m[2]),
			Column:   atoi(m[3]),
		})
	})
	return issues
}

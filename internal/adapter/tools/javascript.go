// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package tools

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

var (
	scriptLanguages = []model.Language{model.LanguageJavaScript, model.LanguageTypeScript}
	scriptPatterns  = []string{"*.js", "*.jsx", "*.mjs", "*.cjs", "*.ts", "*.tsx", "*.mts", "*.cts"}
)

func ESLintSpec() Spec {
	return Spec{
		Name:        "eslint",
		Description: "Pluggable JavaScript and TypeScript linter",
		Type:        model.ToolTypeLinter,
		Languages:   scriptLanguages,
		Patterns:    scriptPatterns,
		Binary:      "eslint",
		BaseArgs:    []string{"--format=json"},
		FixArgs:     []string{"--fix"},
		ConfigArgs:  flag("--config"),
		OKExitCodes: []int{0, 1},
		Parse:       parseESLint,
	}
}

func ESLintFixSpec() Spec {
	spec := ESLintSpec()
	spec.Name = "eslint-fix"
	spec.Description = "Applies ESLint's automatic fixes"
	spec.Type = model.ToolTypeFixer
	spec.BaseArgs = []string{"--format=json", "--fix"}
	spec.FixArgs = nil
	return spec
}

func PrettierSpec() Spec {
	return Spec{
		Name:        "prettier",
		Description: "Opinionated formatter for web languages",
		Type:        model.ToolTypeFormatter,
		Languages: []model.Language{
			model.LanguageJavaScript, model.LanguageTypeScript, model.LanguageCSS,
			model.LanguageHTML, model.LanguageJSON, model.LanguageYAML, model.LanguageMarkdown,
		},
		Patterns: append(append([]string(nil), scriptPatterns...),
			"*.css", "*.scss", "*.html", "*.htm", "*.json", "*.yml", "*.yaml", "*.md", "*.markdown"),
		Binary:      "prettier",
		CheckArgs:   []string{"--check"},
		FixArgs:     []string{"--write", "--log-level=warn"},
		ConfigArgs:  flag("--config"),
		OKExitCodes: []int{0, 1},
		Parse:       parsePrettier,
	}
}

func TSCSpec() Spec {
	return Spec{
		Name:        "tsc",
		Description: "TypeScript compiler in type-check mode",
		Type:        model.ToolTypeTypeChecker,
		Languages:   []model.Language{model.LanguageTypeScript},
		Patterns:    []string{"*.ts", "*.tsx", "*.mts", "*.cts"},
		Binary:      "tsc",
		BaseArgs:    []string{"--noEmit", "--pretty", "false"},
		ConfigArgs:  flag("--project"),
		NoFiles:     true,
		WorkDir:     nearestDir("tsconfig.json"),
		OKExitCodes: []int{0, 1, 2},
		Parse:       parseTSC,
	}
}

// parseESLint reads ESLint's JSON formatter output: an array of files, each
// with a messages array.
func parseESLint(out Output) []model.LintIssue {
	doc := gjson.ParseBytes(out.Stdout)
	if !doc.IsArray() {
		return nil
	}

	var issues []model.LintIssue
	doc.ForEach(func(_, file gjson.Result) bool {
		path := file.Get("filePath").String()
		file.Get("messages").ForEach(func(_, msg gjson.Result) bool {
			sev := model.SeverityInfo
			switch msg.Get("severity").Int() {
			case 2:
				sev = model.SeverityError
			case 1:
				sev = model.SeverityWarning
			}
			issues = append(issues, model.LintIssue{
				Severity:     sev,
				Message:      msg.Get("message").String(),
				File:         path,
				Line:         int(msg.Get("line").Int()),
				Column:       int(msg.Get("column").Int()),
				Code:         msg.Get("ruleId").String(),
				FixAvailable: msg.Get("fix").Exists(),
			})
			return true
		})
		return true
	})
	return issues
}

// [warn] src/app.js
func parsePrettier(out Output) []model.LintIssue {
	if out.Fix {
		return nil
	}
	var issues []model.LintIssue
	Lines(out.Combined(), func(line string) {
		rest, ok := strings.CutPrefix(line, "[warn] ")
		if !ok || strings.HasPrefix(rest, "Code style issues") {
			return
		}
		issues = append(issues, needsFormatting(rest, 0))
	})
	return issues
}

// src/a.ts(3,7): error TS2322: Type 'string' is not assignable to type 'number'.
var tscLine = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\): (error|warning) (TS\d+): (.+)$`)

func parseTSC(out Output) []model.LintIssue {
	var issues []model.LintIssue
	Lines(out.Stdout, func(line string) {
		m := tscLine.FindStringSubmatch(line)
		if m == nil {
			return
		}
		sev := model.SeverityWarning
		if m[4] == "error" {
			sev = model.SeverityError
		}
		issues = append(issues, model.LintIssue{
			Severity: sev,
			Message:  m[6],
			File:     m[1],
			Line:     atoi(m[2]),
			Column:   atoi(m[3]),
			Code:     m[5],
		})
	})
	return issues
}

// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package tools

import (
	"regexp"

	"github.com/tidwall/gjson"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

func RustfmtSpec() Spec {
	return Spec{
		Name:        "rustfmt",
		Description: "Formatter for Rust code",
		Type:        model.ToolTypeFormatter,
		Languages:   []model.Language{model.LanguageRust},
		Patterns:    []string{"*.rs"},
		Binary:      "rustfmt",
		BaseArgs:    []string{"--edition", "2021"},
		CheckArgs:   []string{"--check"},
		ConfigArgs:  flag("--config-path"),
		OKExitCodes: []int{0, 1},
		Parse:       parseRustfmt,
	}
}

func ClippySpec() Spec {
	return Spec{
		Name:        "clippy",
		Description: "Collection of lints to catch common mistakes in Rust",
		Type:        model.ToolTypeLinter,
		Languages:   []model.Language{model.LanguageRust},
		Patterns:    []string{"*.rs"},
		Binary:      "cargo",
		Probe:       "cargo-clippy",
		BaseArgs:    []string{"clippy", "--message-format=json", "--quiet"},
		FixArgs:     []string{"--fix", "--allow-dirty", "--allow-staged"},
		VersionArgs: []string{"clippy", "--version"},
		NoFiles:     true,
		WorkDir:     nearestDir("Cargo.toml"),
		Succeeded:   clippySucceeded,
		Parse:       parseClippy,
	}
}

func ClippyFixSpec() Spec {
	spec := ClippySpec()
	spec.Name = "clippy-fix"
	spec.Description = "Applies clippy's machine-applicable suggestions"
	spec.Type = model.ToolTypeFixer
	spec.BaseArgs = []string{"clippy", "--fix", "--allow-dirty", "--allow-staged", "--message-format=json", "--quiet"}
	spec.FixArgs = nil
	return spec
}

// cargo exits with 101 when the crate does not compile. Compiler errors
// are findings, so that only counts as a failure when nothing was parsed.
func clippySucceeded(code int, issues []model.LintIssue) bool {
	return code == 0 || (code == 101 && len(issues) > 0)
}

// Diff in /src/main.rs at line 3:   (older rustfmt)
// Diff in /src/main.rs:3:
var rustfmtDiff = regexp.MustCompile(`^Diff in (.+?)(?: at line |:)(\d+):?$`)

func parseRustfmt(out Output) []model.LintIssue {
	if out.Fix {
		return nil
	}
	var issues []model.LintIssue
	Lines(out.Stdout, func(line string) {
		if m := rustfmtDiff.FindStringSubmatch(line); m != nil {
			issues = append(issues, needsFormatting(m[1], atoi(m[2])))
		}
	})
	return issues
}

// parseClippy reads cargo's JSON message stream, one object per line, and
// keeps compiler messages that carry a primary span.
func parseClippy(out Output) []model.LintIssue {
	var issues []model.LintIssue
	Lines(out.Stdout, func(line string) {
		if !gjson.Valid(line) {
			return
		}
		msg := gjson.Get(line, "message")
		if gjson.Get(line, "reason").String() != "compiler-message" || !msg.Exists() {
			return
		}

		var span gjson.Result
		msg.Get("spans").ForEach(func(_, s gjson.Result) bool {
			if s.Get("is_primary").Bool() {
				span = s
				return false
			}
			return true
		})
		if !span.Exists() {
			return
		}

		sev := model.SeverityInfo
		switch msg.Get("level").String() {
		case "error", "error: internal compiler error":
			sev = model.SeverityError
		case "warning":
			sev = model.SeverityWarning
		}

		issues = append(issues, model.LintIssue{
			Severity:     sev,
			Message:      msg.Get("message").String(),
			File:         span.Get("file_name").String(),
			Line:         int(span.Get("line_start").Int()),
			Column:       int(span.Get("column_start").Int()),
			Code:         msg.Get("code.code").String(),
			FixAvailable: span.Get("suggestion_applicability").String() == "MachineApplicable",
		})
	})
	return issues
}

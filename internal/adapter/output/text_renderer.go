// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

// palette holds one color.Color per role so a renderer can switch colours
// off without touching the global color.NoColor.
type palette struct {
	title  *color.Color
	muted  *color.Color
	file   *color.Color
	good   *color.Color
	warn   *color.Color
	danger *color.Color
	info   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title:  color.New(color.Bold, color.FgYellow),
		muted:  color.New(color.FgHiBlack),
		file:   color.New(color.FgBlue),
		good:   color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		danger: color.New(color.FgRed, color.Bold),
		info:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.title, p.muted, p.file, p.good, p.warn, p.danger, p.info} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev model.Severity) *color.Color {
	switch sev {
	case model.SeverityError:
		return p.danger
	case model.SeverityWarning:
		return p.warn
	case model.SeverityInfo:
		return p.info
	default:
		return p.muted
	}
}

func (p palette) status(status model.UnitStatus) *color.Color {
	switch status {
	case model.StatusSucceeded:
		return p.good
	case model.StatusFailed, model.StatusTimedOut:
		return p.danger
	default:
		return p.warn
	}
}

type TextRenderer struct {
	opts Options
}

func NewTextRenderer(opts Options) *TextRenderer {
	return &TextRenderer{opts: opts}
}

var _ ports.OutputRenderer = (*TextRenderer)(nil)

func (r *TextRenderer) Format() string {
	return "text"
}

func (r *TextRenderer) Render(report *model.Report) (string, error) {
	report = relativized(report, r.opts.RelativeTo)
	p := newPalette(r.opts.Color)
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", p.title.Sprint("siren "+string(report.Command)), p.muted.Sprint(shortID(report.RunID)))
	if report.RootPath != "" {
		fmt.Fprintf(&b, "%s %s\n", p.muted.Sprint("Root:"), report.RootPath)
	}

	for _, res := range report.Results {
		b.WriteByte('\n')
		r.writeResult(&b, p, res)
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.title.Sprint("Skipped"))
		for _, sk := range report.Skipped {
			fmt.Fprintf(&b, "  %s %s\n", sk.ToolName, p.muted.Sprintf("(%s)", sk.Reason))
		}
	}

	if len(report.ResolutionErrors) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.title.Sprint("Configuration problems"))
		for _, msg := range report.ResolutionErrors {
			fmt.Fprintf(&b, "  %s %s\n", p.warn.Sprint("-"), msg)
		}
	}

	b.WriteByte('\n')
	b.WriteString(r.summary(p, report))
	b.WriteByte('\n')
	return b.String(), nil
}

func (r *TextRenderer) writeResult(b *strings.Builder, p palette, res model.LintResult) {
	fmt.Fprintf(b, "%s %s %s %s\n",
		p.title.Sprint(res.ToolName),
		p.muted.Sprintf("(%s)", res.ToolType),
		p.status(res.Status).Sprint(statusLabel(res.Status)),
		p.muted.Sprint(formatDuration(res.ExecutionTime)),
	)
	if res.Diagnostic != "" {
		fmt.Fprintf(b, "  %s\n", p.danger.Sprint(res.Diagnostic))
	}

	limit := len(res.Issues)
	if r.opts.MaxIssuesPerTool > 0 && limit > r.opts.MaxIssuesPerTool {
		limit = r.opts.MaxIssuesPerTool
	}
	for _, issue := range res.Issues[:limit] {
		sev := p.severity(issue.Severity)
		line := fmt.Sprintf("  %s %s", sev.Sprintf("%-7s", issue.Severity), p.file.Sprint(location(issue)))
		if issue.Code != "" {
			line += " " + p.muted.Sprint(issue.Code)
		}
		line += " " + issue.Message
		if issue.FixAvailable {
			line += " " + p.good.Sprint("[fixable]")
		}
		b.WriteString(line + "\n")
	}
	if hidden := len(res.Issues) - limit; hidden > 0 {
		fmt.Fprintf(b, "  %s\n", p.muted.Sprintf("... %d more", hidden))
	}
	if len(res.Issues) == 0 && res.Success {
		fmt.Fprintf(b, "  %s\n", p.good.Sprint("no issues"))
	}

	if r.opts.ShowOutput {
		writeRaw(b, p, "stdout", res.Stdout)
		writeRaw(b, p, "stderr", res.Stderr)
	}
}

func writeRaw(b *strings.Builder, p palette, name, text string) {
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintf(b, "  %s\n", p.muted.Sprint(name+":"))
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(b, "    %s\n", line)
	}
}

func (r *TextRenderer) summary(p palette, report *model.Report) string {
	verdict := p.good.Sprint("PASSED")
	if !report.OverallSuccess {
		verdict = p.danger.Sprint("FAILED")
	}

	var counts []string
	for _, sev := range model.AllSeverities() {
		if n := report.CountsBySeverity[sev]; n > 0 {
			counts = append(counts, p.severity(sev).Sprintf("%d %s", n, sev))
		}
	}
	issues := "no issues"
	if len(counts) > 0 {
		issues = strings.Join(counts, ", ")
	}

	lines := []string{
		fmt.Sprintf("Result:   %s", verdict),
		fmt.Sprintf("Tools:    %d run, %d skipped", len(report.Results), len(report.Skipped)),
		fmt.Sprintf("Issues:   %s", issues),
		fmt.Sprintf("Duration: %s", formatDuration(report.Duration)),
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	if r.opts.Color {
		style = style.BorderForeground(lipgloss.Color("8"))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func statusLabel(status model.UnitStatus) string {
	switch status {
	case model.StatusTimedOut:
		return "timed out"
	case "":
		return "unknown"
	default:
		return string(status)
	}
}

func location(issue model.LintIssue) string {
	switch {
	case issue.File == "":
		return "-"
	case issue.Line == 0:
		return issue.File
	case issue.Column == 0:
		return fmt.Sprintf("%s:%d", issue.File, issue.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", issue.File, issue.Line, issue.Column)
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Millisecond:
		return d.String()
	default:
		return d.Round(time.Millisecond).String()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

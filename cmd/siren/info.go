// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/usecase"
)

var infoFormats = []string{"text", "json", "yaml"}

const complexityNote = `The built-in "complexity" linter (Go, C, C++) needs no binary and is always
installed, so "siren check" runs it by default. It only reports warnings
unless extra_args in [tools.complexity] sets --error-ccn=N. Turn it off with
enabled = false in that section.`

// encodeInfo renders v as JSON or YAML. Text is left to the caller.
func encodeInfo(format string, v any) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		return string(data), nil
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode yaml: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
	return "", usageErrorf("unknown format %q (want one of %s)", format, strings.Join(infoFormats, ", "))
}

func (a *App) runDetect(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("detect", pflag.ContinueOnError)
	flagSet.SortFlags = false

	var common commonOptions
	addCommonFlags(flagSet, &common)
	format := flagSet.String("format", "text", "Output format ("+strings.Join(infoFormats, "|")+")")
	setUsage(flagSet, "siren detect [options] [paths...]")

	if err := parseFlags(flagSet, args); err != nil {
		return err
	}
	paths := flagSet.Args()

	if _, err := a.load(flagSet, common, startDir(paths), ""); err != nil {
		return err
	}

	info, err := usecase.NewDetectProjectUseCase(a.deps.Detector).Execute(ctx, paths)
	if err != nil {
		return err
	}

	if *format != "text" {
		out, err := encodeInfo(*format, info)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, out)
		return nil
	}

	fmt.Fprintf(a.stdout, "Root:  %s\n", info.RootPath)
	fmt.Fprintf(a.stdout, "Files: %d (%d ignored)\n", info.TotalFiles, info.IgnoredFiles)
	if len(info.Languages) > 0 {
		fmt.Fprintln(a.stdout, "\nLanguages:")
		for _, lang := range info.Languages {
			fmt.Fprintf(a.stdout, "  %-12s %d\n", lang, info.FileCounts[lang])
		}
	}
	if len(info.Frameworks) > 0 {
		names := make([]string, len(info.Frameworks))
		for i, fw := range info.Frameworks {
			names[i] = string(fw)
		}
		fmt.Fprintf(a.stdout, "\nFrameworks: %s\n", strings.Join(names, ", "))
	}
	if len(info.ToolConfigs) > 0 {
		fmt.Fprintln(a.stdout, "\nTool configuration:")
		for _, tc := range info.ToolConfigs {
			fmt.Fprintf(a.stdout, "  %-12s %s\n", tc.ToolName, tc.ConfigPath)
		}
	}
	return nil
}

func (a *App) runListTools(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("tools", pflag.ContinueOnError)
	flagSet.SortFlags = false

	var common commonOptions
	addCommonFlags(flagSet, &common)
	langs := flagSet.StringSliceP("lang", "l", nil, "Only list tools for these languages")
	types := flagSet.StringSlice("types", nil, "Only list these tool types")
	availableOnly := flagSet.Bool("available", false, "Only list installed tools")
	versions := flagSet.Bool("versions", true, "Ask installed tools for their version")
	format := flagSet.String("format", "text", "Output format ("+strings.Join(infoFormats, "|")+")")
	setUsage(flagSet, "siren tools [options]", complexityNote)

	if err := parseFlags(flagSet, args); err != nil {
		return err
	}
	if _, err := a.load(flagSet, common, ".", ""); err != nil {
		return err
	}

	req := usecase.ListToolsRequest{
		AvailableOnly: *availableOnly,
		Versions:      *versions,
	}
	var err error
	if req.Languages, err = parseLanguages(*langs); err != nil {
		return err
	}
	if req.Types, err = parseToolTypes(*types); err != nil {
		return err
	}

	infos, err := usecase.NewListToolsUseCase(a.deps.Registry).Execute(ctx, req)
	if err != nil {
		return err
	}

	if *format != "text" {
		out, err := encodeInfo(*format, infos)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, out)
		return nil
	}
	fmt.Fprintln(a.stdout, toolsTable(infos))
	return nil
}

func toolsTable(infos []model.ToolInfo) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	missing := cell.Foreground(lipgloss.Color("1"))

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("TOOL", "TYPE", "LANGUAGES", "INSTALLED", "VERSION")

	for _, info := range infos {
		langs := make([]string, len(info.Languages))
		for i, lang := range info.Languages {
			langs[i] = string(lang)
		}
		installed := "yes"
		if !info.Available {
			installed = "no"
		}
		t.Row(info.Name, string(info.Type), strings.Join(langs, ", "), installed, info.Version)
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return header
		case col == 3 && row >= 0 && row < len(infos) && !infos[row].Available:
			return missing
		default:
			return cell
		}
	})
	return t.String()
}

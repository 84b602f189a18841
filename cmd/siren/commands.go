// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/rafaelvolkmer/siren/internal/adapter/output"
	"github.com/rafaelvolkmer/siren/internal/config"
	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/engine"
	"github.com/rafaelvolkmer/siren/internal/usecase"
)

// flagKeys maps flag names onto configuration keys. Flags missing from a
// command's FlagSet are skipped.
var flagKeys = map[string]string{
	"git-modified": "general.git_modified_only",
	"fail-level":   "general.fail_level",
	"jobs":         "general.max_parallelism",
	"timeout":      "general.timeout",
	"save-report":  "general.save_report",
	"show-output":  "output.show_output",
	"max-issues":   "output.max_issues_per_tool",
	"no-color":     "output.no_color",
}

type commonOptions struct {
	configPath string
	verbose    int
	quiet      bool
}

func addCommonFlags(flagSet *pflag.FlagSet, opts *commonOptions) {
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "Configuration file (default: nearest "+config.FileName+")")
	flagSet.CountVarP(&opts.verbose, "verbose", "v", "More log output (-v info, -vv debug, -vvv trace)")
	flagSet.BoolVarP(&opts.quiet, "quiet", "q", false, "Only log errors")
	flagSet.Bool("no-color", false, "Disable coloured output")
}

func setUsage(flagSet *pflag.FlagSet, synopsis string, notes ...string) {
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s\n\nOptions:\n", synopsis)
		flagSet.PrintDefaults()
		for _, note := range notes {
			fmt.Fprintf(os.Stderr, "\n%s\n", note)
		}
	}
}

// load binds the parsed flags into viper, reads the configuration and
// builds the dependencies. outputFlag names the flag carrying the output
// format, if the command has one.
func (a *App) load(flagSet *pflag.FlagSet, opts commonOptions, startDir, outputFlag string) (*config.Config, error) {
	v := a.viper()
	for name, key := range flagKeys {
		if f := flagSet.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	if f := flagSet.Lookup(outputFlag); f != nil {
		if err := v.BindPFlag("output.format", f); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", outputFlag, err)
		}
	}

	cfg, err := a.config.Load(opts.configPath, startDir)
	if err != nil {
		return nil, err
	}
	if err := a.setup(cfg, opts); err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		a.deps.Logger.Debug().Str("path", cfg.Path).Msg("configuration loaded")
	}
	return cfg, nil
}

// runTools handles check, format and fix.
func (a *App) runTools(ctx context.Context, cmd model.Command, args []string) error {
	def := config.Default()

	flagSet := pflag.NewFlagSet(string(cmd), pflag.ContinueOnError)
	flagSet.SortFlags = false

	var common commonOptions
	addCommonFlags(flagSet, &common)
	flagSet.BoolP("git-modified", "g", false, "Only run on files git reports as modified")
	langs := flagSet.StringSliceP("lang", "l", nil, "Only run on these languages")
	types := flagSet.StringSlice("types", nil, "Only run these tool types (formatter, linter, typechecker, fixer)")
	names := flagSet.StringSlice("tools", nil, "Only run these tools")
	flagSet.String("fail-level", def.General.FailLevel, "Fail on issues of this severity or worse (error, warning, info, style)")
	flagSet.IntP("jobs", "j", 0, "Tools running at once (0 = number of CPUs)")
	flagSet.Duration("timeout", def.General.Timeout, "Time limit for one tool run")
	flagSet.Bool("save-report", false, "Save the report for \"siren report\"")
	flagSet.Bool("show-output", false, "Include raw tool output in the text report")
	flagSet.Int("max-issues", 0, "Issues shown per tool in the text report (0 = all)")

	var checkOnly, formatFirst *bool
	outputFlag := "format"
	switch cmd {
	case model.CommandFormat:
		checkOnly = flagSet.Bool("check", false, "Only report files that need formatting")
	case model.CommandFix:
		formatFirst = flagSet.Bool("format", true, "Run formatters together with the fixers")
		outputFlag = "output"
	}
	flagSet.String(outputFlag, def.Output.Format, "Output format ("+strings.Join(output.Formats(), "|")+")")
	setUsage(flagSet, "siren "+string(cmd)+" [options] [paths...]")

	if err := parseFlags(flagSet, args); err != nil {
		return err
	}
	paths := flagSet.Args()

	cfg, err := a.load(flagSet, common, startDir(paths), outputFlag)
	if err != nil {
		return err
	}

	req := usecase.RunToolsRequest{
		Command:         cmd,
		Paths:           paths,
		GitModifiedOnly: cfg.General.GitModifiedOnly,
		ToolNames:       *names,
		Configs:         cfg.Tools,
		SaveReport:      cfg.General.SaveReport,
	}
	if req.Languages, err = parseLanguages(*langs); err != nil {
		return err
	}
	if req.Types, err = parseToolTypes(*types); err != nil {
		return err
	}
	if checkOnly != nil {
		req.CheckOnly = *checkOnly
	}
	if formatFirst != nil && !*formatFirst && len(req.Types) == 0 {
		req.Types = []model.ToolType{model.ToolTypeFixer}
	}

	d := a.deps
	scheduler := engine.NewScheduler(engine.Options{
		MaxParallelism: cfg.General.MaxParallelism,
		Timeout:        cfg.General.Timeout,
		GracePeriod:    cfg.General.GracePeriod,
		OnTransition: func(unit engine.ExecutionUnit, status model.UnitStatus) {
			d.Logger.Debug().
				Str("tool", unit.Tool.Name()).
				Int("unit", unit.Index).
				Str("status", string(status)).
				Msg("unit transition")
		},
	}, d.Logger)

	runUseCase := usecase.NewRunToolsUseCase(
		d.Detector,
		d.GitClient,
		engine.NewResolver(d.Registry, d.Logger),
		scheduler,
		d.Storage,
		d.Logger,
	)

	report, runErr := runUseCase.Execute(ctx, req)
	if report == nil {
		return runErr
	}

	rendered, err := a.reportUseCase(cfg, report.RootPath).Render(report, cfg.Output.Format)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, rendered)

	if runErr != nil {
		return runErr
	}
	if report.Failed(cfg.FailSeverity()) {
		return errQualityGate
	}
	return nil
}

func (a *App) reportUseCase(cfg *config.Config, root string) *usecase.GenerateReportUseCase {
	opts := output.Options{
		Color:            output.ColorEnabled(os.Stdout, cfg.Output.NoColor),
		ShowOutput:       cfg.Output.ShowOutput,
		MaxIssuesPerTool: cfg.Output.MaxIssuesPerTool,
	}
	if cfg.General.UseRelativePaths {
		opts.RelativeTo = root
	}
	return usecase.NewGenerateReportUseCase(a.deps.Storage, output.NewDefaultRegistry(opts))
}

// runReport renders the report the last run saved with --save-report.
func (a *App) runReport(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("report", pflag.ContinueOnError)
	flagSet.SortFlags = false

	var common commonOptions
	addCommonFlags(flagSet, &common)
	flagSet.String("format", config.Default().Output.Format, "Output format ("+strings.Join(output.Formats(), "|")+")")
	flagSet.Bool("show-output", false, "Include raw tool output in the text report")
	flagSet.Int("max-issues", 0, "Issues shown per tool in the text report (0 = all)")
	setUsage(flagSet, "siren report [options] [dir]")

	if err := parseFlags(flagSet, args); err != nil {
		return err
	}
	root, err := singleDir(flagSet.Args())
	if err != nil {
		return err
	}

	cfg, err := a.load(flagSet, common, root, "format")
	if err != nil {
		return err
	}

	rendered, err := a.reportUseCase(cfg, root).Execute(ctx, usecase.GenerateReportRequest{
		RootPath: root,
		Format:   cfg.Output.Format,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, rendered)
	return nil
}

// runInit writes a default configuration listing every known tool.
func (a *App) runInit(args []string) error {
	flagSet := pflag.NewFlagSet("init", pflag.ContinueOnError)
	flagSet.SortFlags = false

	var common commonOptions
	flagSet.CountVarP(&common.verbose, "verbose", "v", "More log output")
	force := flagSet.BoolP("force", "f", false, "Overwrite an existing "+config.FileName)
	setUsage(flagSet, "siren init [options] [dir]")

	if err := parseFlags(flagSet, args); err != nil {
		return err
	}
	dir, err := singleDir(flagSet.Args())
	if err != nil {
		return err
	}
	if err := a.setup(config.Default(), common); err != nil {
		return err
	}

	var names []string
	for _, tool := range a.deps.Registry.AllTools() {
		names = append(names, tool.Name())
	}

	path := filepath.Join(dir, config.FileName)
	if err := config.WriteDefault(path, names, *force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}
	fmt.Fprintf(a.stdout, "wrote %s\n", path)
	return nil
}

func parseLanguages(values []string) ([]model.Language, error) {
	var out []model.Language
	for _, v := range values {
		lang, err := model.ParseLanguage(v)
		if err != nil {
			return nil, &usageError{err: err}
		}
		out = append(out, lang)
	}
	return out, nil
}

func parseToolTypes(values []string) ([]model.ToolType, error) {
	var out []model.ToolType
	for _, v := range values {
		t, err := model.ParseToolType(v)
		if err != nil {
			return nil, &usageError{err: err}
		}
		out = append(out, t)
	}
	return out, nil
}

// startDir is where the configuration search begins for a set of targets.
func startDir(paths []string) string {
	if len(paths) == 0 {
		return "."
	}
	dir := paths[0]
	for strings.ContainsAny(dir, "*?[") {
		dir = filepath.Dir(dir)
	}
	if st, err := os.Stat(dir); err == nil && !st.IsDir() {
		dir = filepath.Dir(dir)
	}
	return dir
}

func singleDir(args []string) (string, error) {
	switch len(args) {
	case 0:
		return ".", nil
	case 1:
		return args[0], nil
	default:
		return "", usageErrorf("expected at most one directory, got %d", len(args))
	}
}

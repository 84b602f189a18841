// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

// Command siren runs formatters, linters, type checkers and fixers for
// every language found in a project and reports their findings together.
//
// Subcommands:
//
//   - check:  run linters and type checkers (default)
//   - format: run formatters, or only report unformatted files with --check
//   - fix:    run fixers, and formatters unless --format=false
//   - detect: show the languages and tool configurations found
//   - tools:  list the known tools and whether they are installed
//   - init:   write a default .siren.toml
//   - report: render the last saved report
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	gitadapter "github.com/rafaelvolkmer/siren/internal/adapter/git"
	"github.com/rafaelvolkmer/siren/internal/adapter/tools"
	"github.com/rafaelvolkmer/siren/internal/config"
	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
	"github.com/rafaelvolkmer/siren/internal/engine"
	"github.com/rafaelvolkmer/siren/internal/infrastructure"
	"github.com/rafaelvolkmer/siren/internal/logger"
)

// errQualityGate makes main exit with status 1 without printing anything
// more; the report already says why.
var errQualityGate = errors.New("quality gate failed")

// usageError marks command-line mistakes, which exit with status 2.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// App wires configuration, shared dependencies and command handlers.
type App struct {
	config *config.Loader
	deps   *Dependencies
	stdout io.Writer
}

// Dependencies are built once the command line has been parsed, since the
// logger level and the tool executables depend on it.
type Dependencies struct {
	Logger    zerolog.Logger
	Runner    *infrastructure.ExecRunner
	Detector  *infrastructure.FSDetector
	Storage   *infrastructure.FileStorage
	GitClient ports.GitClient
	Registry  *engine.Registry
}

func NewApp(stdout io.Writer) *App {
	return &App{
		config: config.NewLoader(viper.New()),
		stdout: stdout,
	}
}

func (a *App) viper() *viper.Viper {
	return a.config.Viper()
}

// setup creates the dependencies for one command invocation.
func (a *App) setup(cfg *config.Config, opts commonOptions) error {
	appLogger := logger.New(logger.Config{
		Level:  logger.LevelFromVerbosity(opts.verbose, opts.quiet),
		Pretty: true,
	})

	runner := infrastructure.NewExecRunner(appLogger)
	detector := infrastructure.NewFSDetector(appLogger)

	registry := engine.NewRegistry()
	if err := tools.RegisterDefaults(registry, runner, detector, cfg.Tools, appLogger); err != nil {
		return err
	}
	registry.Freeze()

	a.deps = &Dependencies{
		Logger:    appLogger,
		Runner:    runner,
		Detector:  detector,
		Storage:   infrastructure.NewFileStorage(),
		GitClient: gitadapter.NewGitCLI(runner),
		Registry:  registry,
	}
	return nil
}

func main() {
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, NewApp(os.Stdout), os.Args[1:]))
}

// run dispatches to a subcommand and turns its outcome into an exit code.
func run(ctx context.Context, app *App, args []string) int {
	command := string(model.CommandCheck)
	if len(args) > 0 {
		switch first := args[0]; {
		case first == "-h" || first == "--help":
			printUsage()
			return 0
		case isCommand(first):
			command, args = first, args[1:]
		case !looksLikeTarget(first):
			log.Printf("unknown command %q", first)
			printUsage()
			return 2
		}
	}

	var err error
	switch command {
	case "check":
		err = app.runTools(ctx, model.CommandCheck, args)
	case "format":
		err = app.runTools(ctx, model.CommandFormat, args)
	case "fix":
		err = app.runTools(ctx, model.CommandFix, args)
	case "detect":
		err = app.runDetect(ctx, args)
	case "tools":
		err = app.runListTools(ctx, args)
	case "init":
		err = app.runInit(args)
	case "report":
		err = app.runReport(ctx, args)
	case "help":
		printUsage()
		return 0
	}

	var usage *usageError
	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
		return 0
	case errors.Is(err, errQualityGate):
		return 1
	case errors.As(err, &usage):
		log.Printf("error: %v", err)
		return 2
	default:
		log.Printf("error: %v", err)
		return 1
	}
}

var commands = []string{"check", "format", "fix", "detect", "tools", "init", "report", "help"}

func isCommand(arg string) bool {
	for _, c := range commands {
		if arg == c {
			return true
		}
	}
	return false
}

// looksLikeTarget reports whether arg is a flag or a path, which both
// belong to the implicit check command.
func looksLikeTarget(arg string) bool {
	if strings.HasPrefix(arg, "-") || strings.ContainsAny(arg, "*?[") {
		return true
	}
	_, err := os.Stat(arg)
	return err == nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `siren - one front end for many code quality tools

Usage:
  siren [check] [options] [paths...]
  siren format  [options] [paths...]
  siren fix     [options] [paths...]
  siren detect  [options] [paths...]
  siren tools   [options]
  siren init    [options] [dir]
  siren report  [options] [dir]

Commands:
  check    Run linters and type checkers (default)
  format   Format files, or only list unformatted ones with --check
  fix      Apply automatic fixes, formatting first unless --format=false
  detect   Show detected languages and tool configuration files
  tools    List known tools and whether they are installed
  init     Write a default %s
  report   Render the report saved by --save-report

Run "siren <command> -h" for command-specific flags.
`, config.FileName)
}

// parseFlags treats every parse failure except -h as a usage error.
func parseFlags(flagSet *pflag.FlagSet, args []string) error {
	err := flagSet.Parse(args)
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return &usageError{err: err}
}

// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

const (
	DefaultTimeout     = 60 * time.Second
	DefaultGracePeriod = 5 * time.Second
)

type Options struct {
	// MaxParallelism bounds the number of units running at once.
	// Zero means runtime.NumCPU().
	MaxParallelism int

	// Timeout applies to units whose config has no Timeout of its own.
	Timeout time.Duration

	// GracePeriod is how long running units may continue after the parent
	// context is done before they are killed.
	GracePeriod time.Duration

	// OnTransition, when set, is called from the unit's goroutine every time
	// a unit changes state. It must be safe for concurrent use.
	OnTransition func(unit ExecutionUnit, status model.UnitStatus)
}

// Scheduler runs execution units with bounded parallelism. A unit that
// fails, panics or hangs never affects its siblings.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

func NewScheduler(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.MaxParallelism <= 0 {
		opts.MaxParallelism = runtime.NumCPU()
		if opts.MaxParallelism < 1 {
			opts.MaxParallelism = 1
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	return &Scheduler{opts: opts, logger: logger}
}

func (s *Scheduler) Options() Options {
	return s.opts
}

// Run executes units and returns exactly one result per unit, at the
// unit's position in units, whatever the completion order.
//
// When ctx is done, units that have not started are cancelled. Units
// already running get GracePeriod to finish before their context is
// cancelled too.
func (s *Scheduler) Run(ctx context.Context, units []ExecutionUnit) []model.LintResult {
	results := make([]model.LintResult, len(units))
	if len(units) == 0 {
		return results
	}

	runCtx, stop := s.runContext(ctx)
	defer stop()

	for _, wave := range groupByWave(units) {
		var g errgroup.Group
		g.SetLimit(s.opts.MaxParallelism)

		for _, i := range wave {
			i := i
			if ctx.Err() != nil {
				results[i] = s.notStarted(units[i])
				continue
			}
			// Go blocks while the wave is at the limit, so ctx may be
			// done by the time the unit gets its slot.
			g.Go(func() error {
				if ctx.Err() != nil {
					results[i] = s.notStarted(units[i])
					return nil
				}
				results[i] = s.runUnit(runCtx, units[i])
				return nil
			})
		}

		_ = g.Wait()
	}

	return results
}

// runContext detaches running units from ctx and cancels them GracePeriod
// after ctx is done.
func (s *Scheduler) runContext(ctx context.Context) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	stopAfter := context.AfterFunc(ctx, func() {
		mu.Lock()
		defer mu.Unlock()
		timer = time.AfterFunc(s.opts.GracePeriod, cancel)
	})

	return runCtx, func() {
		stopAfter()
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		cancel()
	}
}

type unitOutcome struct {
	result   model.LintResult
	err      error
	panicked any
	stack    []byte
}

func (s *Scheduler) runUnit(runCtx context.Context, unit ExecutionUnit) model.LintResult {
	timeout := unit.Config.Timeout
	if timeout <= 0 {
		timeout = s.opts.Timeout
	}

	log := s.logger.With().Str("tool", unit.Tool.Name()).Int("unit", unit.Index).Logger()
	log.Debug().Int("files", len(unit.Files)).Int("wave", unit.Wave).Dur("timeout", timeout).Msg("unit started")
	s.notify(unit, model.StatusRunning)

	execCtx, cancel := context.WithTimeout(runCtx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan unitOutcome, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- unitOutcome{panicked: p, stack: debug.Stack()}
			}
		}()
		files := append([]string(nil), unit.Files...)
		res, err := unit.Tool.Execute(execCtx, files, unit.Config.Clone())
		done <- unitOutcome{result: res, err: err}
	}()

	var result model.LintResult
	select {
	case out := <-done:
		elapsed := time.Since(start)
		if execCtx.Err() != nil && (out.err != nil || out.panicked != nil || !out.result.Success) {
			result = s.aborted(unit, execCtx, timeout, elapsed)
		} else {
			result = s.completed(unit, out, elapsed, log)
		}
	case <-execCtx.Done():
		result = s.aborted(unit, execCtx, timeout, time.Since(start))
		s.awaitExit(done, log)
	}

	log.Debug().
		Str("status", string(result.Status)).
		Dur("duration", result.ExecutionTime).
		Int("issues", len(result.Issues)).
		Msg("unit finished")
	s.notify(unit, result.Status)
	return result
}

// awaitExit keeps the unit's slot until Execute returns, so a tool still
// being killed never overlaps the next wave or a queued unit. A tool that
// does not return within GracePeriod is abandoned.
func (s *Scheduler) awaitExit(done <-chan unitOutcome, log zerolog.Logger) {
	timer := time.NewTimer(s.opts.GracePeriod)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		log.Error().Dur("grace_period", s.opts.GracePeriod).Msg("tool ignored cancellation, abandoning it")
	}
}

func (s *Scheduler) completed(unit ExecutionUnit, out unitOutcome, elapsed time.Duration, log zerolog.Logger) model.LintResult {
	switch {
	case out.panicked != nil:
		log.Error().Interface("panic", out.panicked).Bytes("stack", out.stack).Msg("tool panicked")
		return s.failed(unit, fmt.Sprintf("tool panicked: %v", out.panicked), elapsed)

	case errors.Is(out.err, ports.ErrBinaryVanished):
		log.Warn().Err(out.err).Msg("tool binary vanished after resolution")
		res := s.failed(unit, fmt.Sprintf("binary vanished: %v", out.err), elapsed)
		res.Stdout, res.Stderr = out.result.Stdout, out.result.Stderr
		return res

	case out.err != nil:
		log.Warn().Err(out.err).Msg("tool execution failed")
		res := s.failed(unit, out.err.Error(), elapsed)
		res.Stdout, res.Stderr = out.result.Stdout, out.result.Stderr
		return res
	}

	res := out.result
	res.Index = unit.Index
	res.ToolName = unit.Tool.Name()
	res.ToolType = unit.Tool.Type()
	res.Files = unit.Files
	res.ExecutionTime = elapsed
	res.Issues = s.ownIssues(unit, res.Issues, log)

	if res.Success {
		res.Status = model.StatusSucceeded
		return res
	}

	res.Status = model.StatusFailed
	if res.Diagnostic == "" {
		res.Diagnostic = "tool reported a failure"
	}
	log.Warn().Str("diagnostic", res.Diagnostic).Msg("tool did not run successfully")
	return res
}

// ownIssues drops issues that point at files outside the unit's subset.
func (s *Scheduler) ownIssues(unit ExecutionUnit, issues []model.LintIssue, log zerolog.Logger) []model.LintIssue {
	if len(issues) == 0 {
		return issues
	}
	allowed := make(map[string]struct{}, len(unit.Files))
	for _, f := range unit.Files {
		allowed[filepath.Clean(f)] = struct{}{}
	}

	kept := make([]model.LintIssue, 0, len(issues))
	for _, issue := range issues {
		if issue.File != "" {
			if _, ok := allowed[filepath.Clean(issue.File)]; !ok {
				log.Debug().Str("file", issue.File).Msg("dropping issue outside unit files")
				continue
			}
		}
		kept = append(kept, issue)
	}
	return kept
}

func (s *Scheduler) aborted(unit ExecutionUnit, execCtx context.Context, timeout, elapsed time.Duration) model.LintResult {
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		s.logger.Warn().Str("tool", unit.Tool.Name()).Dur("timeout", timeout).Msg("tool timed out")
		return model.LintResult{
			Index:         unit.Index,
			ToolName:      unit.Tool.Name(),
			ToolType:      unit.Tool.Type(),
			Status:        model.StatusTimedOut,
			Files:         unit.Files,
			ExecutionTime: elapsed,
			Diagnostic:    fmt.Sprintf("timed out after %s", timeout),
		}
	}
	return s.cancelled(unit, "run cancelled, tool was killed after the grace period", elapsed)
}

func (s *Scheduler) failed(unit ExecutionUnit, diagnostic string, elapsed time.Duration) model.LintResult {
	return model.LintResult{
		Index:    unit.Index,
		ToolName: unit.Tool.Name(),
		ToolType: unit.Tool.Type(),
		Status:   model.StatusFailed,
		Issues: []model.LintIssue{{
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("%s failed: %s", unit.Tool.Name(), diagnostic),
		}},
		Files:         unit.Files,
		ExecutionTime: elapsed,
		Diagnostic:    diagnostic,
	}
}

func (s *Scheduler) notStarted(unit ExecutionUnit) model.LintResult {
	res := s.cancelled(unit, "run cancelled before the tool started", 0)
	s.notify(unit, model.StatusCancelled)
	return res
}

func (s *Scheduler) cancelled(unit ExecutionUnit, diagnostic string, elapsed time.Duration) model.LintResult {
	return model.LintResult{
		Index:         unit.Index,
		ToolName:      unit.Tool.Name(),
		ToolType:      unit.Tool.Type(),
		Status:        model.StatusCancelled,
		Files:         unit.Files,
		ExecutionTime: elapsed,
		Diagnostic:    diagnostic,
	}
}

func (s *Scheduler) notify(unit ExecutionUnit, status model.UnitStatus) {
	if s.opts.OnTransition != nil {
		s.opts.OnTransition(unit, status)
	}
}

// groupByWave returns unit positions grouped by wave, waves ascending and
// positions in submission order.
func groupByWave(units []ExecutionUnit) [][]int {
	byWave := make(map[int][]int)
	var waves []int
	for i, u := range units {
		if _, ok := byWave[u.Wave]; !ok {
			waves = append(waves, u.Wave)
		}
		byWave[u.Wave] = append(byWave[u.Wave], i)
	}
	sort.Ints(waves)

	out := make([][]int, 0, len(waves))
	for _, w := range waves {
		out = append(out, byWave[w])
	}
	return out
}

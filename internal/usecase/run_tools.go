// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
	"github.com/rafaelvolkmer/siren/internal/engine"
)

type RunToolsRequest struct {
	Command         model.Command
	Paths           []string
	GitModifiedOnly bool
	Languages       []model.Language
	Types           []model.ToolType
	ToolNames       []string
	Configs         model.ToolConfigs
	SaveReport      bool

	// CheckOnly keeps format and fix from writing files.
	CheckOnly bool
}

// DefaultTypes are the tool types a command runs when none are requested.
func DefaultTypes(cmd model.Command) []model.ToolType {
	switch cmd {
	case model.CommandFormat:
		return []model.ToolType{model.ToolTypeFormatter}
	case model.CommandFix:
		return []model.ToolType{model.ToolTypeFormatter, model.ToolTypeFixer}
	default:
		return []model.ToolType{model.ToolTypeLinter, model.ToolTypeTypeChecker}
	}
}

// Writes reports whether cmd modifies files.
func Writes(cmd model.Command, checkOnly bool) bool {
	return cmd != model.CommandCheck && !checkOnly
}

// RunToolsUseCase is one full run: detect, resolve, schedule, aggregate.
type RunToolsUseCase struct {
	detector  ports.ProjectDetector
	git       ports.GitClient
	resolver  *engine.Resolver
	scheduler *engine.Scheduler
	storage   ports.ReportStorage
	logger    zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewRunToolsUseCase(
	detector ports.ProjectDetector,
	git ports.GitClient,
	resolver *engine.Resolver,
	scheduler *engine.Scheduler,
	storage ports.ReportStorage,
	logger zerolog.Logger,
) *RunToolsUseCase {
	return &RunToolsUseCase{
		detector:  detector,
		git:       git,
		resolver:  resolver,
		scheduler: scheduler,
		storage:   storage,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Execute returns the report even when saving it fails; the error then
// says so.
func (uc *RunToolsUseCase) Execute(ctx context.Context, req RunToolsRequest) (*model.Report, error) {
	if req.Command == "" {
		req.Command = model.CommandCheck
	}
	started := uc.now()

	info, files, err := uc.detector.Detect(ctx, req.Paths)
	if err != nil {
		return nil, fmt.Errorf("detect project: %w", err)
	}

	if req.GitModifiedOnly {
		files, err = uc.onlyModified(ctx, info.RootPath, files)
		if err != nil {
			return nil, err
		}
	}

	types := req.Types
	if len(types) == 0 {
		types = DefaultTypes(req.Command)
	}

	resolution := uc.resolver.Resolve(engine.ResolveRequest{
		Files:        files,
		Languages:    req.Languages,
		Types:        types,
		ToolNames:    req.ToolNames,
		Configs:      req.Configs,
		ForceAutoFix: Writes(req.Command, req.CheckOnly),
	})
	for _, rerr := range resolution.Errors {
		uc.logger.Warn().Err(rerr).Msg("resolution problem")
	}
	uc.logger.Info().
		Str("command", string(req.Command)).
		Int("files", len(files)).
		Int("units", len(resolution.Units)).
		Int("skipped", len(resolution.Skipped)).
		Msg("resolved")

	results := uc.scheduler.Run(ctx, resolution.Units)

	report := engine.Aggregate(results, engine.ReportMeta{
		RunID:            uc.newID(),
		Command:          req.Command,
		RootPath:         info.RootPath,
		StartedAt:        started,
		FinishedAt:       uc.now(),
		Skipped:          resolution.Skipped,
		ResolutionErrors: resolution.Errors,
	})

	if req.SaveReport && uc.storage != nil {
		if err := uc.storage.Save(ctx, info.RootPath, report); err != nil {
			return report, fmt.Errorf("save report: %w", err)
		}
	}
	return report, nil
}

func (uc *RunToolsUseCase) onlyModified(ctx context.Context, root string, files []model.DetectedFile) ([]model.DetectedFile, error) {
	if uc.git == nil {
		return nil, errors.New("git integration is not configured")
	}
	modified, err := uc.git.ModifiedFiles(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("list modified files: %w", err)
	}

	keep := make(map[string]struct{}, len(modified))
	for _, path := range modified {
		keep[absClean(path)] = struct{}{}
	}

	out := files[:0:0]
	for _, f := range files {
		if _, ok := keep[absClean(f.Path)]; ok {
			out = append(out, f)
		}
	}
	uc.logger.Debug().Int("modified", len(modified)).Int("kept", len(out)).Msg("filtered by git status")
	return out, nil
}

func absClean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
	"github.com/rafaelvolkmer/siren/internal/engine"
)

func newRunUseCase(t *testing.T, detector ports.ProjectDetector, git ports.GitClient, storage ports.ReportStorage, tools ...ports.Tool) *RunToolsUseCase {
	t.Helper()

	reg := engine.NewRegistry()
	for _, tool := range tools {
		require.NoError(t, reg.Register(tool))
	}
	reg.Freeze()

	logger := zerolog.Nop()
	uc := NewRunToolsUseCase(
		detector,
		git,
		engine.NewResolver(reg, logger),
		engine.NewScheduler(engine.Options{MaxParallelism: 2, Timeout: 10 * time.Second}, logger),
		storage,
		logger,
	)
	uc.newID = func() string { return "run-1" }
	return uc
}

func TestDefaultTypes(t *testing.T) {
	assert.Equal(t, []model.ToolType{model.ToolTypeLinter, model.ToolTypeTypeChecker}, DefaultTypes(model.CommandCheck))
	assert.Equal(t, []model.ToolType{model.ToolTypeFormatter}, DefaultTypes(model.CommandFormat))
	assert.Equal(t, []model.ToolType{model.ToolTypeFormatter, model.ToolTypeFixer}, DefaultTypes(model.CommandFix))

	assert.False(t, Writes(model.CommandCheck, false))
	assert.True(t, Writes(model.CommandFormat, false))
	assert.False(t, Writes(model.CommandFormat, true))
	assert.True(t, Writes(model.CommandFix, false))
}

func TestRunToolsCheck(t *testing.T) {
	root := t.TempDir()
	ruff := newFakeTool("ruff", model.ToolTypeLinter, model.LanguagePython, ".py")
	ruff.issues = []model.LintIssue{{Severity: model.SeverityError, Message: "undefined name", File: filepath.Join(root, "a.py"), Line: 3}}
	ruffFix := newFakeTool("ruff-fix", model.ToolTypeFixer, model.LanguagePython, ".py")
	eslint := newFakeTool("eslint", model.ToolTypeLinter, model.LanguageJavaScript, ".js")
	eslint.available = false

	detector := &fakeDetector{root: root, files: detectedFiles(root, "a.py", "b.py", "c.js")}
	uc := newRunUseCase(t, detector, nil, nil, ruff, ruffFix, eslint)

	report, err := uc.Execute(context.Background(), RunToolsRequest{Command: model.CommandCheck})
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, model.CommandCheck, report.Command)
	assert.Equal(t, root, report.RootPath)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "ruff", report.Results[0].ToolName)
	assert.Equal(t, 1, report.TotalIssues())
	assert.False(t, report.OverallSuccess)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "eslint", report.Skipped[0].ToolName)

	assert.Empty(t, ruffFix.executedWith(), "fixers do not run on check")
	assert.Equal(t, [][]string{{filepath.Join(root, "a.py"), filepath.Join(root, "b.py")}}, ruff.executedWith())
}

func TestRunToolsFix(t *testing.T) {
	root := t.TempDir()
	ruff := newFakeTool("ruff", model.ToolTypeLinter, model.LanguagePython, ".py")
	ruffFix := newFakeTool("ruff-fix", model.ToolTypeFixer, model.LanguagePython, ".py")
	black := newFakeTool("black", model.ToolTypeFormatter, model.LanguagePython, ".py")

	uc := newRunUseCase(t, &fakeDetector{root: root, files: detectedFiles(root, "a.py")}, nil, nil, ruff, ruffFix, black)

	report, err := uc.Execute(context.Background(), RunToolsRequest{Command: model.CommandFix})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "ruff-fix", report.Results[0].ToolName)
	assert.Equal(t, "black", report.Results[1].ToolName)
	assert.True(t, report.OverallSuccess)
	assert.Empty(t, ruff.executedWith())
	assert.Equal(t, []bool{true}, ruffFix.autoFixed())
	assert.Equal(t, []bool{true}, black.autoFixed())

	_, err = uc.Execute(context.Background(), RunToolsRequest{
		Command: model.CommandFix,
		Types:   []model.ToolType{model.ToolTypeFixer},
	})
	require.NoError(t, err)
	assert.Len(t, black.autoFixed(), 1, "explicit types leave formatters out")
}

func TestRunToolsFormatCheckOnly(t *testing.T) {
	root := t.TempDir()
	black := newFakeTool("black", model.ToolTypeFormatter, model.LanguagePython, ".py")

	uc := newRunUseCase(t, &fakeDetector{root: root, files: detectedFiles(root, "a.py")}, nil, nil, black)

	_, err := uc.Execute(context.Background(), RunToolsRequest{Command: model.CommandFormat, CheckOnly: true})
	require.NoError(t, err)
	_, err = uc.Execute(context.Background(), RunToolsRequest{Command: model.CommandFormat})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, black.autoFixed())
}

func TestRunToolsExplicitFilters(t *testing.T) {
	root := t.TempDir()
	ruff := newFakeTool("ruff", model.ToolTypeLinter, model.LanguagePython, ".py")
	eslint := newFakeTool("eslint", model.ToolTypeLinter, model.LanguageJavaScript, ".js")

	uc := newRunUseCase(t, &fakeDetector{root: root, files: detectedFiles(root, "a.py", "b.js")}, nil, nil, ruff, eslint)

	report, err := uc.Execute(context.Background(), RunToolsRequest{
		Languages: []model.Language{model.LanguageJavaScript},
		ToolNames: []string{"eslint", "nope"},
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "eslint", report.Results[0].ToolName)
	assert.Empty(t, ruff.executedWith())
	assert.Len(t, report.ResolutionErrors, 1)
}

func TestRunToolsGitModifiedOnly(t *testing.T) {
	root := t.TempDir()
	ruff := newFakeTool("ruff", model.ToolTypeLinter, model.LanguagePython, ".py")
	git := &fakeGit{modified: []string{filepath.Join(root, "b.py"), filepath.Join(root, "gone.py")}}

	uc := newRunUseCase(t, &fakeDetector{root: root, files: detectedFiles(root, "a.py", "b.py")}, git, nil, ruff)

	_, err := uc.Execute(context.Background(), RunToolsRequest{GitModifiedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{filepath.Join(root, "b.py")}}, ruff.executedWith())
}

func TestRunToolsGitErrors(t *testing.T) {
	root := t.TempDir()
	ruff := newFakeTool("ruff", model.ToolTypeLinter, model.LanguagePython, ".py")
	detector := &fakeDetector{root: root, files: detectedFiles(root, "a.py")}

	uc := newRunUseCase(t, detector, &fakeGit{err: errors.New("not a git repository")}, nil, ruff)
	_, err := uc.Execute(context.Background(), RunToolsRequest{GitModifiedOnly: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a git repository")

	uc = newRunUseCase(t, detector, nil, nil, newFakeTool("ruff", model.ToolTypeLinter, model.LanguagePython, ".py"))
	_, err = uc.Execute(context.Background(), RunToolsRequest{GitModifiedOnly: true})
	require.Error(t, err)
}

func TestRunToolsDetectError(t *testing.T) {
	uc := newRunUseCase(t, &fakeDetector{err: errors.New("stat nowhere: no such file")}, nil, nil)

	_, err := uc.Execute(context.Background(), RunToolsRequest{Paths: []string{"nowhere"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detect project")
}

func TestRunToolsSavesReport(t *testing.T) {
	root := t.TempDir()
	ruff := newFakeTool("ruff", model.ToolTypeLinter, model.LanguagePython, ".py")
	storage := newMemoryStorage()
	detector := &fakeDetector{root: root, files: detectedFiles(root, "a.py")}

	uc := newRunUseCase(t, detector, nil, storage, ruff)
	report, err := uc.Execute(context.Background(), RunToolsRequest{SaveReport: true})
	require.NoError(t, err)
	assert.Same(t, report, storage.saved[root])

	storage.saveErr = errors.New("disk full")
	report, err = uc.Execute(context.Background(), RunToolsRequest{SaveReport: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save report")
	assert.NotNil(t, report)
}

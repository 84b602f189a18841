// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

type fakeTool struct {
	name      string
	toolType  model.ToolType
	language  model.Language
	ext       string
	available bool
	version   string
	issues    []model.LintIssue

	mu      sync.Mutex
	calls   [][]string
	configs []model.ToolConfig
}

func newFakeTool(name string, toolType model.ToolType, lang model.Language, ext string) *fakeTool {
	return &fakeTool{name: name, toolType: toolType, language: lang, ext: ext, available: true}
}

func (f *fakeTool) Name() string                { return f.name }
func (f *fakeTool) Description() string         { return f.name + " tool" }
func (f *fakeTool) Type() model.ToolType        { return f.toolType }
func (f *fakeTool) Languages() []model.Language { return []model.Language{f.language} }
func (f *fakeTool) Available() bool             { return f.available }
func (f *fakeTool) Version(context.Context) string {
	return f.version
}

func (f *fakeTool) CanHandle(path string) bool {
	return strings.HasSuffix(path, f.ext)
}

func (f *fakeTool) Execute(_ context.Context, files []string, cfg model.ToolConfig) (model.LintResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), files...))
	f.configs = append(f.configs, cfg)
	f.mu.Unlock()
	return model.LintResult{Success: true, Issues: f.issues}, nil
}

func (f *fakeTool) executedWith() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeTool) autoFixed() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.configs))
	for i, cfg := range f.configs {
		out[i] = cfg.AutoFix
	}
	return out
}

type fakeDetector struct {
	root  string
	files []model.DetectedFile
	err   error
}

func (d *fakeDetector) Detect(context.Context, []string) (*model.ProjectInfo, []model.DetectedFile, error) {
	if d.err != nil {
		return nil, nil, d.err
	}
	return &model.ProjectInfo{RootPath: d.root, TotalFiles: len(d.files)}, d.files, nil
}

type fakeGit struct {
	modified []string
	err      error
}

func (g *fakeGit) ModifiedFiles(context.Context, string) ([]string, error) {
	return g.modified, g.err
}

type memoryStorage struct {
	saved   map[string]*model.Report
	saveErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{saved: make(map[string]*model.Report)}
}

func (s *memoryStorage) Save(_ context.Context, root string, report *model.Report) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[root] = report
	return nil
}

func (s *memoryStorage) Load(_ context.Context, root string) (*model.Report, error) {
	report, ok := s.saved[root]
	if !ok {
		return nil, errors.New("no saved report")
	}
	return report, nil
}

func detectedFiles(root string, names ...string) []model.DetectedFile {
	out := make([]model.DetectedFile, len(names))
	for i, name := range names {
		path := filepath.Join(root, name)
		out[i] = model.DetectedFile{Path: path, Language: model.LanguageFromPath(path)}
	}
	return out
}

var _ ports.Tool = (*fakeTool)(nil)

// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

type execFunc func(ctx context.Context, files []string, cfg model.ToolConfig) (model.LintResult, error)

type fakeTool struct {
	name       string
	toolType   model.ToolType
	languages  []model.Language
	extensions []string
	only       map[string]bool
	missing    bool
	probes     atomic.Int32
	exec       execFunc
}

func newFakeTool(name string, toolType model.ToolType, lang model.Language, exts ...string) *fakeTool {
	return &fakeTool{
		name:       name,
		toolType:   toolType,
		languages:  []model.Language{lang},
		extensions: exts,
	}
}

func (f *fakeTool) Name() string                   { return f.name }
func (f *fakeTool) Description() string            { return "fake " + f.name }
func (f *fakeTool) Type() model.ToolType           { return f.toolType }
func (f *fakeTool) Languages() []model.Language    { return f.languages }
func (f *fakeTool) Version(context.Context) string { return "0.0.0" }

func (f *fakeTool) Available() bool {
	f.probes.Add(1)
	return !f.missing
}

func (f *fakeTool) CanHandle(path string) bool {
	if !model.ContainsLanguage(f.languages, model.LanguageFromPath(path)) {
		return false
	}
	if f.only != nil && !f.only[path] {
		return false
	}
	ext := filepath.Ext(path)
	for _, e := range f.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (f *fakeTool) Execute(ctx context.Context, files []string, cfg model.ToolConfig) (model.LintResult, error) {
	if f.exec != nil {
		return f.exec(ctx, files, cfg)
	}
	return model.LintResult{Success: true}, nil
}

func detected(paths ...string) []model.DetectedFile {
	out := make([]model.DetectedFile, 0, len(paths))
	for _, p := range paths {
		out = append(out, model.DetectedFile{Path: p, Language: model.LanguageFromPath(p)})
	}
	return out
}

func frozenRegistry(tools ...*fakeTool) *Registry {
	reg := NewRegistry()
	for _, tool := range tools {
		if err := reg.Register(tool); err != nil {
			panic(err)
		}
	}
	reg.Freeze()
	return reg
}

func unitFor(index int, tool *fakeTool, files ...string) ExecutionUnit {
	return ExecutionUnit{
		Index:  index,
		Tool:   tool,
		Files:  files,
		Config: model.DefaultToolConfig(),
	}
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package engine

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

const (
	SkipReasonDisabled     = "disabled"
	SkipReasonNotInstalled = "not installed"
)

// ResolveRequest is everything resolution depends on. Empty Languages or
// Types mean "all"; an empty ToolNames means no name restriction.
type ResolveRequest struct {
	Files        []model.DetectedFile
	Languages    []model.Language
	Types        []model.ToolType
	ToolNames    []string
	Configs      model.ToolConfigs
	ForceAutoFix bool
}

// ExecutionUnit is one tool over one file subset with its resolved config.
//
// Units of the same Wave may run concurrently. Waves run in ascending order,
// and units that write files never share a file within a wave.
type ExecutionUnit struct {
	Index  int
	Tool   ports.Tool
	Files  []string
	Config model.ToolConfig
	Wave   int
}

// Writes reports whether the unit may modify its files.
func (u ExecutionUnit) Writes() bool {
	return u.Tool.Type() == model.ToolTypeFixer || u.Config.AutoFix
}

type Resolution struct {
	Units   []ExecutionUnit
	Skipped []model.SkippedTool
	Errors  []error
}

// Resolver turns detected files and configuration into execution units.
type Resolver struct {
	registry *Registry
	logger   zerolog.Logger
}

func NewResolver(registry *Registry, logger zerolog.Logger) *Resolver {
	return &Resolver{registry: registry, logger: logger}
}

// Resolve is deterministic: for identical requests and registry contents it
// returns the same units in the same order.
func (r *Resolver) Resolve(req ResolveRequest) Resolution {
	var res Resolution

	res.Errors = append(res.Errors, r.unknownTools(req)...)

	byLang, langOrder := partitionByLanguage(req.Files)

	type candidate struct {
		tool   ports.Tool
		config model.ToolConfig
		files  []string
		seen   map[string]struct{}
	}
	var (
		candidates []*candidate
		index      = make(map[string]*candidate)
		skipped    = make(map[string]bool)
		available  = make(map[string]bool)
	)

	for _, lang := range langOrder {
		if len(req.Languages) > 0 && !model.ContainsLanguage(req.Languages, lang) {
			continue
		}
		for _, tool := range r.registry.ToolsForLanguage(lang) {
			name := tool.Name()
			if skipped[name] {
				continue
			}
			if len(req.Types) > 0 && !model.ContainsToolType(req.Types, tool.Type()) {
				continue
			}
			if len(req.ToolNames) > 0 && !containsString(req.ToolNames, name) {
				continue
			}

			c, ok := index[name]
			if !ok {
				cfg := req.Configs.For(name)
				if !cfg.Enabled {
					skipped[name] = true
					res.Skipped = append(res.Skipped, model.SkippedTool{
						ToolName: name,
						ToolType: tool.Type(),
						Reason:   SkipReasonDisabled,
					})
					continue
				}
				c = &candidate{tool: tool, config: cfg, seen: make(map[string]struct{})}
				index[name] = c
				candidates = append(candidates, c)
			}

			for _, path := range byLang[lang] {
				if _, dup := c.seen[path]; dup {
					continue
				}
				if tool.CanHandle(path) {
					c.seen[path] = struct{}{}
					c.files = append(c.files, path)
				}
			}
		}
	}

	for _, c := range candidates {
		if len(c.files) == 0 {
			continue
		}
		name := c.tool.Name()
		ok, probed := available[name]
		if !probed {
			ok = c.tool.Available()
			available[name] = ok
		}
		if !ok {
			r.logger.Debug().Str("tool", name).Msg("tool not installed, skipping")
			res.Skipped = append(res.Skipped, model.SkippedTool{
				ToolName: name,
				ToolType: c.tool.Type(),
				Reason:   SkipReasonNotInstalled,
			})
			continue
		}

		cfg := c.config
		if req.ForceAutoFix {
			cfg.AutoFix = true
		}
		res.Units = append(res.Units, ExecutionUnit{
			Index:  len(res.Units),
			Tool:   c.tool,
			Files:  c.files,
			Config: cfg,
		})
	}

	assignWaves(res.Units)

	r.logger.Debug().
		Int("units", len(res.Units)).
		Int("skipped", len(res.Skipped)).
		Int("errors", len(res.Errors)).
		Msg("resolution done")
	return res
}

// unknownTools reports config entries and name filters that reference
// tools the registry does not know. Config keys are visited in sorted order
// so the error list stays deterministic.
func (r *Resolver) unknownTools(req ResolveRequest) []error {
	var errs []error

	names := make([]string, 0, len(req.Configs))
	for name := range req.Configs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := r.registry.ToolByName(name); !ok {
			errs = append(errs, &ResolutionError{Tool: name, Source: "configuration", Err: ErrUnknownTool})
		}
	}

	for _, name := range req.ToolNames {
		if _, ok := r.registry.ToolByName(name); !ok {
			errs = append(errs, &ResolutionError{Tool: name, Source: "tool filter", Err: ErrUnknownTool})
		}
	}
	return errs
}

func partitionByLanguage(files []model.DetectedFile) (map[model.Language][]string, []model.Language) {
	byLang := make(map[model.Language][]string)
	var order []model.Language
	for _, f := range files {
		if f.Language == model.LanguageUnknown || f.Path == "" {
			continue
		}
		if _, ok := byLang[f.Language]; !ok {
			order = append(order, f.Language)
		}
		byLang[f.Language] = append(byLang[f.Language], f.Path)
	}
	return byLang, order
}

// assignWaves puts read-only units in wave 0 and greedily places each
// writing unit in the first wave where none of its files is already
// claimed by another writing unit.
func assignWaves(units []ExecutionUnit) {
	var claimed []map[string]struct{}

	for i := range units {
		if !units[i].Writes() {
			units[i].Wave = 0
			continue
		}

		wave := 0
		for ; wave < len(claimed); wave++ {
			if !overlaps(claimed[wave], units[i].Files) {
				break
			}
		}
		if wave == len(claimed) {
			claimed = append(claimed, make(map[string]struct{}))
		}
		for _, f := range units[i].Files {
			claimed[wave][f] = struct{}{}
		}
		units[i].Wave = wave
	}
}

func overlaps(set map[string]struct{}, files []string) bool {
	for _, f := range files {
		if _, ok := set[f]; ok {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

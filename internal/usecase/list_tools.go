// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

// versionProbes bounds how many --version processes run at once.
const versionProbes = 4

type ToolLister interface {
	AllTools() []ports.Tool
}

type ListToolsRequest struct {
	Languages     []model.Language
	Types         []model.ToolType
	AvailableOnly bool
	Versions      bool
}

type ListToolsUseCase struct {
	registry ToolLister
}

func NewListToolsUseCase(registry ToolLister) *ListToolsUseCase {
	return &ListToolsUseCase{registry: registry}
}

// Execute lists tools in registration order. Versions are only probed for
// installed tools.
func (uc *ListToolsUseCase) Execute(ctx context.Context, req ListToolsRequest) ([]model.ToolInfo, error) {
	var (
		tools []ports.Tool
		infos []model.ToolInfo
	)
	for _, tool := range uc.registry.AllTools() {
		if len(req.Types) > 0 && !model.ContainsToolType(req.Types, tool.Type()) {
			continue
		}
		if len(req.Languages) > 0 && !anyLanguage(tool.Languages(), req.Languages) {
			continue
		}
		available := tool.Available()
		if req.AvailableOnly && !available {
			continue
		}
		tools = append(tools, tool)
		infos = append(infos, model.ToolInfo{
			Name:        tool.Name(),
			Description: tool.Description(),
			Type:        tool.Type(),
			Languages:   tool.Languages(),
			Available:   available,
		})
	}

	if !req.Versions {
		return infos, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(versionProbes)
	for i, tool := range tools {
		i, tool := i, tool
		if !infos[i].Available {
			continue
		}
		g.Go(func() error {
			infos[i].Version = tool.Version(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, ctx.Err()
}

func anyLanguage(have, want []model.Language) bool {
	for _, lang := range want {
		if model.ContainsLanguage(have, lang) {
			return true
		}
	}
	return false
}

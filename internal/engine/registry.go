// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package engine

import (
	"sync"
	"sync/atomic"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

// Registry owns the tool descriptors of a process. It is filled once at
// startup and then frozen; queries after Freeze take no locks.
//
// All query results follow registration order.
type Registry struct {
	mu     sync.Mutex
	frozen atomic.Bool
	tools  []ports.Tool
	byName map[string]int
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register adds a tool. It fails with ErrDuplicateTool when the name is
// already taken and with ErrRegistryFrozen after Freeze.
func (r *Registry) Register(tool ports.Tool) error {
	if tool == nil || tool.Name() == "" {
		return &RegistrationError{Err: ErrInvalidTool}
	}
	name := tool.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return &RegistrationError{Tool: name, Err: ErrRegistryFrozen}
	}
	if _, exists := r.byName[name]; exists {
		return &RegistrationError{Tool: name, Err: ErrDuplicateTool}
	}

	r.byName[name] = len(r.tools)
	r.tools = append(r.tools, tool)
	return nil
}

// Freeze ends the registration phase.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen.Store(true)
}

func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// snapshot returns the tool slice. Before Freeze it copies under the lock;
// afterwards the slice never changes and is returned as is.
func (r *Registry) snapshot() []ports.Tool {
	if r.frozen.Load() {
		return r.tools
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ports.Tool(nil), r.tools...)
}

func (r *Registry) AllTools() []ports.Tool {
	return append([]ports.Tool(nil), r.snapshot()...)
}

func (r *Registry) ToolByName(name string) (ports.Tool, bool) {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	idx, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.tools[idx], true
}

func (r *Registry) ToolsForLanguage(lang model.Language) []ports.Tool {
	return r.filter(func(t ports.Tool) bool {
		return model.ContainsLanguage(t.Languages(), lang)
	})
}

func (r *Registry) ToolsByType(toolType model.ToolType) []ports.Tool {
	return r.filter(func(t ports.Tool) bool {
		return t.Type() == toolType
	})
}

func (r *Registry) ToolsForLanguageAndType(lang model.Language, toolType model.ToolType) []ports.Tool {
	return r.filter(func(t ports.Tool) bool {
		return t.Type() == toolType && model.ContainsLanguage(t.Languages(), lang)
	})
}

func (r *Registry) Len() int {
	return len(r.snapshot())
}

func (r *Registry) filter(keep func(ports.Tool) bool) []ports.Tool {
	var out []ports.Tool
	for _, t := range r.snapshot() {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

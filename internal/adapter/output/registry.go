// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package output

import (
	"os"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

// Options tune how a report is presented. RelativeTo, when set, makes
// issue paths relative to that directory; it is the only option the
// structured formats honour.
type Options struct {
	Color            bool
	ShowOutput       bool
	MaxIssuesPerTool int
	RelativeTo       string
}

type RendererRegistry struct {
	byFormat map[string]ports.OutputRenderer
}

func NewRendererRegistry(renderers ...ports.OutputRenderer) *RendererRegistry {
	m := make(map[string]ports.OutputRenderer, len(renderers))
	for _, r := range renderers {
		if r == nil {
			continue
		}
		m[strings.ToLower(r.Format())] = r
	}
	return &RendererRegistry{byFormat: m}
}

// NewDefaultRegistry holds every built-in format.
func NewDefaultRegistry(opts Options) *RendererRegistry {
	return NewRendererRegistry(
		NewTextRenderer(opts),
		NewJSONRenderer(opts),
		NewYAMLRenderer(opts),
		NewSARIFRenderer(opts),
	)
}

var _ ports.RendererRegistry = (*RendererRegistry)(nil)

func (r *RendererRegistry) Get(format string) (ports.OutputRenderer, bool) {
	if r == nil {
		return nil, false
	}
	out, ok := r.byFormat[strings.ToLower(strings.TrimSpace(format))]
	return out, ok
}

// List returns the renderers sorted by format name.
func (r *RendererRegistry) List() []ports.OutputRenderer {
	out := make([]ports.OutputRenderer, 0, len(r.byFormat))
	for _, v := range r.byFormat {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Format() < out[j].Format() })
	return out
}

// Formats lists the known format names.
func Formats() []string {
	return []string{"json", "sarif", "text", "yaml"}
}

// ColorEnabled decides whether f gets ANSI colours: never with noColor or
// NO_COLOR set, otherwise only on a terminal.
func ColorEnabled(f *os.File, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package tools

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rafaelvolkmer/siren/internal/adapter/complexity"
	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

// Registerer is the part of the engine registry RegisterDefaults needs.
type Registerer interface {
	Register(tool ports.Tool) error
}

// DefaultSpecs lists the external tools siren knows about. The order is
// the registration order, which in turn is the order tools run and
// report in.
func DefaultSpecs() []Spec {
	return []Spec{
		RustfmtSpec(),
		ClippySpec(),
		ClippyFixSpec(),
		RuffFormatSpec(),
		BlackSpec(),
		RuffSpec(),
		RuffFixSpec(),
		PylintSpec(),
		MypySpec(),
		PrettierSpec(),
		ESLintSpec(),
		ESLintFixSpec(),
		TSCSpec(),
		DjLintFormatSpec(),
		DjLintSpec(),
		GofmtSpec(),
		GoVetSpec(),
	}
}

// RegisterDefaults registers every built-in tool. A configured
// executable_path replaces the PATH lookup of the matching tool.
func RegisterDefaults(reg Registerer, runner ports.ProcessRunner, reader ports.FileReader, cfgs model.ToolConfigs, logger zerolog.Logger) error {
	for _, spec := range DefaultSpecs() {
		tool := NewCommandTool(spec, runner, logger)
		if path := cfgs.For(spec.Name).ExecutablePath; path != "" {
			tool.WithExecutable(path)
		}
		if err := reg.Register(tool); err != nil {
			return fmt.Errorf("register %s: %w", spec.Name, err)
		}
	}
	if err := reg.Register(complexity.NewLinter(reader, logger)); err != nil {
		return fmt.Errorf("register %s: %w", complexity.ToolName, err)
	}
	return nil
}

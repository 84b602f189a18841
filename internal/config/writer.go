// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

var ErrConfigExists = errors.New("configuration file already exists")

// The file layout written by siren init. Durations are strings so the file
// reads "60s" rather than nanoseconds.
type fileConfig struct {
	General fileGeneral         `toml:"general"`
	Output  fileOutput          `toml:"output"`
	Tools   map[string]fileTool `toml:"tools"`
}

type fileGeneral struct {
	FailLevel        string `toml:"fail_level"`
	MaxParallelism   int    `toml:"max_parallelism"`
	Timeout          string `toml:"timeout"`
	GracePeriod      string `toml:"grace_period"`
	GitModifiedOnly  bool   `toml:"git_modified_only"`
	UseRelativePaths bool   `toml:"use_relative_paths"`
}

type fileOutput struct {
	Format           string `toml:"format"`
	MaxIssuesPerTool int    `toml:"max_issues_per_tool"`
	ShowOutput       bool   `toml:"show_output"`
}

type fileTool struct {
	Enabled     bool     `toml:"enabled"`
	AutoFix     bool     `toml:"auto_fix"`
	ExtraArgs   []string `toml:"extra_args"`
	ReportLevel string   `toml:"report_level,omitempty"`
}

// Encode renders cfg as TOML. Only the tools listed in toolNames are
// written; tools cfg does not mention get their defaults.
func Encode(cfg *Config, toolNames []string) ([]byte, error) {
	out := fileConfig{
		General: fileGeneral{
			FailLevel:        cfg.General.FailLevel,
			MaxParallelism:   cfg.General.MaxParallelism,
			Timeout:          cfg.General.Timeout.String(),
			GracePeriod:      cfg.General.GracePeriod.String(),
			GitModifiedOnly:  cfg.General.GitModifiedOnly,
			UseRelativePaths: cfg.General.UseRelativePaths,
		},
		Output: fileOutput{
			Format:           cfg.Output.Format,
			MaxIssuesPerTool: cfg.Output.MaxIssuesPerTool,
			ShowOutput:       cfg.Output.ShowOutput,
		},
		Tools: make(map[string]fileTool, len(toolNames)),
	}
	for _, name := range toolNames {
		tc := cfg.Tools.For(name)
		extra := tc.ExtraArgs
		if extra == nil {
			extra = []string{}
		}
		out.Tools[name] = fileTool{
			Enabled:     tc.Enabled,
			AutoFix:     tc.AutoFix,
			ExtraArgs:   extra,
			ReportLevel: tc.ReportLevel,
		}
	}

	var buf bytes.Buffer
	buf.WriteString("# siren configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default configuration to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, toolNames []string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s: %w (use --force to overwrite)", path, ErrConfigExists)
	}

	cfg := Default()
	// a fixed value keeps the generated file identical across machines
	cfg.General.MaxParallelism = 0

	data, err := Encode(cfg, toolNames)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

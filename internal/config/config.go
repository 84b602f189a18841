// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

// Package config loads .siren.toml, SIREN_* environment variables and
// command-line flags into one Config.
package config

import (
	"runtime"
	"time"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

const (
	FileName  = ".siren.toml"
	EnvPrefix = "SIREN"
)

type Config struct {
	General GeneralConfig     `mapstructure:"general"`
	Output  OutputConfig      `mapstructure:"output"`
	Tools   model.ToolConfigs `mapstructure:"tools"`

	// Path of the file the configuration was read from, if any.
	Path string `mapstructure:"-"`
}

type GeneralConfig struct {
	FailLevel        string        `mapstructure:"fail_level"`
	MaxParallelism   int           `mapstructure:"max_parallelism"`
	Timeout          time.Duration `mapstructure:"timeout"`
	GracePeriod      time.Duration `mapstructure:"grace_period"`
	GitModifiedOnly  bool          `mapstructure:"git_modified_only"`
	UseRelativePaths bool          `mapstructure:"use_relative_paths"`
	SaveReport       bool          `mapstructure:"save_report"`
}

type OutputConfig struct {
	Format           string `mapstructure:"format"`
	MaxIssuesPerTool int    `mapstructure:"max_issues_per_tool"`
	ShowOutput       bool   `mapstructure:"show_output"`
	NoColor          bool   `mapstructure:"no_color"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			FailLevel:        string(model.SeverityError),
			MaxParallelism:   runtime.NumCPU(),
			Timeout:          60 * time.Second,
			GracePeriod:      5 * time.Second,
			UseRelativePaths: true,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Tools: model.ToolConfigs{},
	}
}

// FailSeverity is the parsed general.fail_level. Validate guarantees it
// parses.
func (c *Config) FailSeverity() model.Severity {
	sev, err := model.ParseSeverity(c.General.FailLevel)
	if err != nil {
		return model.SeverityError
	}
	return sev
}

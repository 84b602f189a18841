// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"strings"
	"time"
)

// ToolType is the capability a tool descriptor offers.
type ToolType string

const (
	ToolTypeFormatter   ToolType = "formatter"
	ToolTypeLinter      ToolType = "linter"
	ToolTypeTypeChecker ToolType = "typechecker"
	ToolTypeFixer       ToolType = "fixer"
)

func AllToolTypes() []ToolType {
	return []ToolType{ToolTypeFormatter, ToolTypeLinter, ToolTypeTypeChecker, ToolTypeFixer}
}

// ParseToolType accepts the canonical names and their plurals
// ("linters", "formatters", ...), plus "type-checker".
func ParseToolType(s string) (ToolType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimSuffix(name, "s")
	switch name {
	case "formatter", "format":
		return ToolTypeFormatter, nil
	case "linter", "lint":
		return ToolTypeLinter, nil
	case "typechecker", "type-checker", "type_checker", "type":
		return ToolTypeTypeChecker, nil
	case "fixer", "fix":
		return ToolTypeFixer, nil
	}
	return "", fmt.Errorf("unknown tool type %q", s)
}

// ContainsToolType reports whether t is in types.
func ContainsToolType(types []ToolType, t ToolType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// ToolConfig holds the per-tool settings read from .siren.toml. The core
// treats it as read-only.
type ToolConfig struct {
	Enabled        bool              `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	ExtraArgs      []string          `mapstructure:"extra_args" json:"extraArgs,omitempty" yaml:"extraArgs,omitempty"`
	Env            map[string]string `mapstructure:"env" json:"env,omitempty" yaml:"env,omitempty"`
	ExecutablePath string            `mapstructure:"executable_path" json:"executablePath,omitempty" yaml:"executablePath,omitempty"`
	ConfigFile     string            `mapstructure:"config_file" json:"configFile,omitempty" yaml:"configFile,omitempty"`
	AutoFix        bool              `mapstructure:"auto_fix" json:"autoFix" yaml:"autoFix"`
	Timeout        time.Duration     `mapstructure:"timeout" json:"timeout,omitempty" yaml:"timeout,omitempty"`
	ReportLevel    string            `mapstructure:"report_level" json:"reportLevel,omitempty" yaml:"reportLevel,omitempty"`
}

// DefaultToolConfig is what a tool gets when the configuration does not
// mention it.
func DefaultToolConfig() ToolConfig {
	return ToolConfig{Enabled: true}
}

// Clone returns a deep copy so callers can adjust a resolved config without
// touching the shared configuration.
func (c ToolConfig) Clone() ToolConfig {
	out := c
	if c.ExtraArgs != nil {
		out.ExtraArgs = append([]string(nil), c.ExtraArgs...)
	}
	if c.Env != nil {
		out.Env = make(map[string]string, len(c.Env))
		for k, v := range c.Env {
			out.Env[k] = v
		}
	}
	return out
}

// ToolConfigs maps tool names to their configuration.
type ToolConfigs map[string]ToolConfig

// For returns the configuration for the named tool, falling back to
// DefaultToolConfig.
func (c ToolConfigs) For(name string) ToolConfig {
	if cfg, ok := c[name]; ok {
		return cfg.Clone()
	}
	return DefaultToolConfig()
}

// Command is the CLI command a run was started for.
type Command string

const (
	CommandCheck  Command = "check"
	CommandFormat Command = "format"
	CommandFix    Command = "fix"
)

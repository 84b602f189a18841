// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package model

// DetectedFile pairs a candidate file with its language.
type DetectedFile struct {
	Path     string   `json:"path" yaml:"path"`
	Language Language `json:"language" yaml:"language"`
}

// DetectedToolConfig is a configuration file of a third-party tool found
// in the project, such as .eslintrc.json or pyproject.toml.
type DetectedToolConfig struct {
	ToolName   string   `json:"toolName" yaml:"toolName"`
	ConfigPath string   `json:"configPath" yaml:"configPath"`
	Language   Language `json:"language" yaml:"language"`
}

// ProjectInfo summarizes what detection found under the requested paths.
type ProjectInfo struct {
	RootPath     string               `json:"rootPath" yaml:"rootPath"`
	Languages    []Language           `json:"languages" yaml:"languages"`
	FileCounts   map[Language]int     `json:"fileCounts" yaml:"fileCounts"`
	TotalFiles   int                  `json:"totalFiles" yaml:"totalFiles"`
	ToolConfigs  []DetectedToolConfig `json:"toolConfigs,omitempty" yaml:"toolConfigs,omitempty"`
	Frameworks   []Framework          `json:"frameworks,omitempty" yaml:"frameworks,omitempty"`
	IgnoredFiles int                  `json:"ignoredFiles" yaml:"ignoredFiles"`
}

// ToolInfo describes a registered tool for introspection.
type ToolInfo struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Type        ToolType   `json:"type" yaml:"type"`
	Languages   []Language `json:"languages" yaml:"languages"`
	Available   bool       `json:"available" yaml:"available"`
	Version     string     `json:"version,omitempty" yaml:"version,omitempty"`
}

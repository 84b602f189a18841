// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Language identifies the language of a source file. The set is closed;
// anything siren cannot classify is LanguageUnknown.
type Language string

const (
	LanguageUnknown    Language = "unknown"
	LanguageRust       Language = "rust"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageHTML       Language = "html"
	LanguageCSS        Language = "css"
	LanguageGo         Language = "go"
	LanguageRuby       Language = "ruby"
	LanguagePHP        Language = "php"
	LanguageJava       Language = "java"
	LanguageC          Language = "c"
	LanguageCpp        Language = "cpp"
	LanguageCSharp     Language = "csharp"
	LanguageSwift      Language = "swift"
	LanguageMarkdown   Language = "markdown"
	LanguageJSON       Language = "json"
	LanguageYAML       Language = "yaml"
	LanguageTOML       Language = "toml"
	LanguageDocker     Language = "docker"
	LanguageMakefile   Language = "makefile"
)

// AllLanguages lists every known language except LanguageUnknown, in a
// stable order.
func AllLanguages() []Language {
	return []Language{
		LanguageRust, LanguagePython, LanguageJavaScript, LanguageTypeScript,
		LanguageHTML, LanguageCSS, LanguageGo, LanguageRuby, LanguagePHP,
		LanguageJava, LanguageC, LanguageCpp, LanguageCSharp, LanguageSwift,
		LanguageMarkdown, LanguageJSON, LanguageYAML, LanguageTOML,
		LanguageDocker, LanguageMakefile,
	}
}

var extensionLanguages = map[string]Language{
	".rs":       LanguageRust,
	".py":       LanguagePython,
	".pyi":      LanguagePython,
	".pyx":      LanguagePython,
	".js":       LanguageJavaScript,
	".jsx":      LanguageJavaScript,
	".mjs":      LanguageJavaScript,
	".cjs":      LanguageJavaScript,
	".ts":       LanguageTypeScript,
	".tsx":      LanguageTypeScript,
	".mts":      LanguageTypeScript,
	".cts":      LanguageTypeScript,
	".html":     LanguageHTML,
	".htm":      LanguageHTML,
	".djhtml":   LanguageHTML,
	".jinja":    LanguageHTML,
	".j2":       LanguageHTML,
	".hbs":      LanguageHTML,
	".css":      LanguageCSS,
	".scss":     LanguageCSS,
	".go":       LanguageGo,
	".rb":       LanguageRuby,
	".php":      LanguagePHP,
	".java":     LanguageJava,
	".c":        LanguageC,
	".cpp":      LanguageCpp,
	".cc":       LanguageCpp,
	".cxx":      LanguageCpp,
	".h":        LanguageCpp,
	".hh":       LanguageCpp,
	".hpp":      LanguageCpp,
	".cs":       LanguageCSharp,
	".swift":    LanguageSwift,
	".md":       LanguageMarkdown,
	".markdown": LanguageMarkdown,
	".json":     LanguageJSON,
	".yml":      LanguageYAML,
	".yaml":     LanguageYAML,
	".toml":     LanguageTOML,
}

// fileNameLanguages classifies files that carry no meaningful extension.
var fileNameLanguages = map[string]Language{
	"Dockerfile":  LanguageDocker,
	"Makefile":    LanguageMakefile,
	"GNUmakefile": LanguageMakefile,
	"Gemfile":     LanguageRuby,
	"Rakefile":    LanguageRuby,
}

// LanguageFromPath derives the language of a file from its extension or,
// for well-known extensionless files, from its base name.
func LanguageFromPath(path string) Language {
	base := filepath.Base(path)
	if lang, ok := fileNameLanguages[base]; ok {
		return lang
	}
	if lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(base))]; ok {
		return lang
	}
	return LanguageUnknown
}

// ParseLanguage accepts the canonical names plus a few common aliases
// ("js", "ts", "py", "c++", ...).
func ParseLanguage(s string) (Language, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "js":
		return LanguageJavaScript, nil
	case "ts":
		return LanguageTypeScript, nil
	case "py":
		return LanguagePython, nil
	case "rs":
		return LanguageRust, nil
	case "golang":
		return LanguageGo, nil
	case "c++", "cxx":
		return LanguageCpp, nil
	case "c#", "cs":
		return LanguageCSharp, nil
	case "yml":
		return LanguageYAML, nil
	case "md":
		return LanguageMarkdown, nil
	case "dockerfile":
		return LanguageDocker, nil
	}
	for _, lang := range AllLanguages() {
		if string(lang) == name {
			return lang, nil
		}
	}
	return LanguageUnknown, fmt.Errorf("unknown language %q", s)
}

// ContainsLanguage reports whether lang is in langs.
func ContainsLanguage(langs []Language, lang Language) bool {
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}

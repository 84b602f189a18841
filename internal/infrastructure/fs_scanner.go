// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package infrastructure

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

// ignoredDirs are never descended into.
var ignoredDirs = map[string]struct{}{
	".git":          {},
	".hg":           {},
	".svn":          {},
	".siren":        {},
	".idea":         {},
	".vscode":       {},
	".venv":         {},
	"venv":          {},
	"__pycache__":   {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".pytest_cache": {},
	".tox":          {},
	"node_modules":  {},
	"vendor":        {},
	"target":        {},
	"dist":          {},
	"build":         {},
}

type toolConfigFile struct {
	name     string
	tool     string
	language model.Language
}

// knownToolConfigs are looked up in the project root, in this order.
var knownToolConfigs = []toolConfigFile{
	{"rustfmt.toml", "rustfmt", model.LanguageRust},
	{".rustfmt.toml", "rustfmt", model.LanguageRust},
	{"clippy.toml", "clippy", model.LanguageRust},
	{".clippy.toml", "clippy", model.LanguageRust},
	{"pyproject.toml", "ruff", model.LanguagePython},
	{"ruff.toml", "ruff", model.LanguagePython},
	{".ruff.toml", "ruff", model.LanguagePython},
	{".pylintrc", "pylint", model.LanguagePython},
	{"pylintrc", "pylint", model.LanguagePython},
	{"mypy.ini", "mypy", model.LanguagePython},
	{".mypy.ini", "mypy", model.LanguagePython},
	{".prettierrc", "prettier", model.LanguageJavaScript},
	{".prettierrc.json", "prettier", model.LanguageJavaScript},
	{".prettierrc.yaml", "prettier", model.LanguageJavaScript},
	{".prettierrc.yml", "prettier", model.LanguageJavaScript},
	{".prettierrc.js", "prettier", model.LanguageJavaScript},
	{".prettierrc.toml", "prettier", model.LanguageJavaScript},
	{"prettier.config.js", "prettier", model.LanguageJavaScript},
	{".eslintrc", "eslint", model.LanguageJavaScript},
	{".eslintrc.json", "eslint", model.LanguageJavaScript},
	{".eslintrc.yaml", "eslint", model.LanguageJavaScript},
	{".eslintrc.yml", "eslint", model.LanguageJavaScript},
	{".eslintrc.js", "eslint", model.LanguageJavaScript},
	{"eslint.config.js", "eslint", model.LanguageJavaScript},
	{"eslint.config.mjs", "eslint", model.LanguageJavaScript},
	{"tsconfig.json", "tsc", model.LanguageTypeScript},
	{".djlintrc", "djlint", model.LanguageHTML},
	{".golangci.yml", "golangci-lint", model.LanguageGo},
	{".golangci.yaml", "golangci-lint", model.LanguageGo},
}

// FSDetector walks the requested paths, assigns a language to every file
// and looks for configuration files of known tools.
type FSDetector struct {
	logger zerolog.Logger
}

func NewFSDetector(logger zerolog.Logger) *FSDetector {
	return &FSDetector{logger: logger}
}

var _ ports.ProjectDetector = (*FSDetector)(nil)
var _ ports.FileReader = (*FSDetector)(nil)

// Detect accepts directories, files and glob patterns. An empty paths list
// means the current directory. Files are returned in walk order with
// duplicates removed; files of unknown language are counted but not
// returned.
func (d *FSDetector) Detect(ctx context.Context, paths []string) (*model.ProjectInfo, []model.DetectedFile, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	info := &model.ProjectInfo{
		RootPath:   projectRoot(paths),
		FileCounts: make(map[model.Language]int),
	}

	var files []model.DetectedFile
	seen := make(map[string]struct{})

	add := func(path string) {
		path = filepath.Clean(path)
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}

		lang := model.LanguageFromPath(path)
		if lang == model.LanguageUnknown {
			info.IgnoredFiles++
			return
		}
		info.FileCounts[lang]++
		files = append(files, model.DetectedFile{Path: path, Language: lang})
	}

	for _, p := range paths {
		targets, err := expandPattern(p)
		if err != nil {
			return nil, nil, err
		}
		for _, target := range targets {
			if err := d.collect(ctx, target, add); err != nil {
				return nil, nil, err
			}
		}
	}

	info.TotalFiles = len(files)
	info.Languages = languagesByCount(info.FileCounts)
	info.ToolConfigs = detectToolConfigs(info.RootPath)
	info.Frameworks = detectFrameworks(info.RootPath, info.Languages)

	d.logger.Debug().
		Str("root", info.RootPath).
		Int("files", info.TotalFiles).
		Int("ignored", info.IgnoredFiles).
		Int("tool_configs", len(info.ToolConfigs)).
		Interface("frameworks", info.Frameworks).
		Msg("project detected")
	return info, files, nil
}

func (d *FSDetector) collect(ctx context.Context, target string, add func(string)) error {
	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat %s: %w", target, err)
	}
	if !st.IsDir() {
		add(target)
		return nil
	}

	return filepath.WalkDir(target, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			d.logger.Debug().Err(err).Str("path", path).Msg("skipping unreadable path")
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if path != target && isIgnoredDir(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !entry.Type().IsRegular() {
			return nil
		}
		add(path)
		return nil
	})
}

func (d *FSDetector) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func isIgnoredDir(name string) bool {
	_, ok := ignoredDirs[name]
	return ok
}

// expandPattern resolves a glob. A pattern without matches is an error;
// a plain path is returned as is.
func expandPattern(p string) ([]string, error) {
	if !strings.ContainsAny(p, "*?[") {
		return []string{p}, nil
	}
	matches, err := filepath.Glob(p)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pattern %q matched no files", p)
	}
	return matches, nil
}

// projectRoot is the first requested directory, or the directory of the
// first requested file.
func projectRoot(paths []string) string {
	first := paths[0]
	if strings.ContainsAny(first, "*?[") {
		first = filepath.Dir(first)
		for strings.ContainsAny(first, "*?[") {
			first = filepath.Dir(first)
		}
	}
	if st, err := os.Stat(first); err == nil && !st.IsDir() {
		first = filepath.Dir(first)
	}
	return filepath.Clean(first)
}

func languagesByCount(counts map[model.Language]int) []model.Language {
	langs := make([]model.Language, 0, len(counts))
	for lang := range counts {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		if counts[langs[i]] != counts[langs[j]] {
			return counts[langs[i]] > counts[langs[j]]
		}
		return langs[i] < langs[j]
	})
	return langs
}

func detectToolConfigs(root string) []model.DetectedToolConfig {
	var out []model.DetectedToolConfig
	for _, known := range knownToolConfigs {
		path := filepath.Join(root, known.name)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			out = append(out, model.DetectedToolConfig{
				ToolName:   known.tool,
				ConfigPath: path,
				Language:   known.language,
			})
		}
	}
	return out
}

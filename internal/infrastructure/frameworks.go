// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package infrastructure

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

// projectMarkers answers questions about files in the project root.
type projectMarkers struct {
	root string
	deps map[string]struct{}
}

func newProjectMarkers(root string) *projectMarkers {
	return &projectMarkers{root: root, deps: packageDependencies(root)}
}

// packageDependencies lists every package named in package.json.
func packageDependencies(root string) map[string]struct{} {
	deps := make(map[string]struct{})
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil || !gjson.ValidBytes(data) {
		return deps
	}
	for _, section := range []string{"dependencies", "devDependencies", "peerDependencies"} {
		gjson.GetBytes(data, section).ForEach(func(name, _ gjson.Result) bool {
			deps[name.String()] = struct{}{}
			return true
		})
	}
	return deps
}

func (m *projectMarkers) depends(names ...string) bool {
	for _, name := range names {
		if _, ok := m.deps[name]; ok {
			return true
		}
	}
	return false
}

func (m *projectMarkers) exists(rels ...string) bool {
	for _, rel := range rels {
		if _, err := os.Stat(filepath.Join(m.root, rel)); err == nil {
			return true
		}
	}
	return false
}

// contains does a case-insensitive search for needle in any of the files.
func (m *projectMarkers) contains(needle string, rels ...string) bool {
	lower := bytes.ToLower([]byte(needle))
	for _, rel := range rels {
		data, err := os.ReadFile(filepath.Join(m.root, rel))
		if err == nil && bytes.Contains(bytes.ToLower(data), lower) {
			return true
		}
	}
	return false
}

func (m *projectMarkers) matches(pattern string) bool {
	found, _ := filepath.Glob(filepath.Join(m.root, pattern))
	return len(found) > 0
}

type frameworkRule struct {
	framework model.Framework
	languages []model.Language
	match     func(m *projectMarkers) bool
}

var (
	webLanguages = []model.Language{model.LanguageJavaScript, model.LanguageTypeScript}
	pythonOnly   = []model.Language{model.LanguagePython}
)

// frameworkRules are evaluated in this order. A rule only applies when one
// of its languages was detected.
var frameworkRules = []frameworkRule{
	{model.FrameworkReact, webLanguages, func(m *projectMarkers) bool {
		return m.depends("react", "react-dom") ||
			m.exists("src/App.jsx", "src/App.tsx", "src/App.js") ||
			m.contains("@babel/preset-react", ".babelrc")
	}},
	{model.FrameworkVue, webLanguages, func(m *projectMarkers) bool {
		return m.depends("vue") || m.exists("src/App.vue", "vue.config.js")
	}},
	{model.FrameworkAngular, []model.Language{model.LanguageTypeScript}, func(m *projectMarkers) bool {
		return m.depends("@angular/core") || m.exists("angular.json", ".angular-cli.json")
	}},
	{model.FrameworkDjango, pythonOnly, func(m *projectMarkers) bool {
		return m.contains("django", "manage.py", "requirements.txt", "pyproject.toml") ||
			m.exists("settings.py") || m.matches("*/settings.py")
	}},
	{model.FrameworkFlask, pythonOnly, func(m *projectMarkers) bool {
		return m.contains("flask", "app.py", "wsgi.py", "requirements.txt", "pyproject.toml")
	}},
	{model.FrameworkRails, []model.Language{model.LanguageRuby}, func(m *projectMarkers) bool {
		return m.contains("rails", "Gemfile") ||
			(m.exists("app/controllers") && m.exists("app/models") && m.exists("config/routes.rb"))
	}},
}

// detectFrameworks recognises frameworks from markers in the project root.
func detectFrameworks(root string, languages []model.Language) []model.Framework {
	if len(languages) == 0 {
		return nil
	}
	markers := newProjectMarkers(root)

	var out []model.Framework
	for _, rule := range frameworkRules {
		if !anyLanguage(languages, rule.languages) {
			continue
		}
		if rule.match(markers) {
			out = append(out, rule.framework)
		}
	}
	return out
}

func anyLanguage(detected, wanted []model.Language) bool {
	for _, lang := range wanted {
		if model.ContainsLanguage(detected, lang) {
			return true
		}
	}
	return false
}

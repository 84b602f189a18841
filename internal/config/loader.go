// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Loader reads configuration through a viper instance. Flags bound to that
// instance (with viper.BindPFlag) win over environment variables, which
// win over the file, which wins over defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares v for siren: defaults, SIREN_ environment variables
// and key normalization. A nil v gets a fresh instance.
func NewLoader(v *viper.Viper) *Loader {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return &Loader{v: v}
}

func (l *Loader) Viper() *viper.Viper {
	return l.v
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("general.fail_level", def.General.FailLevel)
	v.SetDefault("general.max_parallelism", def.General.MaxParallelism)
	v.SetDefault("general.timeout", def.General.Timeout)
	v.SetDefault("general.grace_period", def.General.GracePeriod)
	v.SetDefault("general.git_modified_only", def.General.GitModifiedOnly)
	v.SetDefault("general.use_relative_paths", def.General.UseRelativePaths)
	v.SetDefault("general.save_report", def.General.SaveReport)
	v.SetDefault("output.format", def.Output.Format)
	v.SetDefault("output.max_issues_per_tool", def.Output.MaxIssuesPerTool)
	v.SetDefault("output.show_output", def.Output.ShowOutput)
	v.SetDefault("output.no_color", def.Output.NoColor)
}

// Load reads explicit when given, otherwise the nearest .siren.toml found
// by walking up from startDir. No file at all is fine.
func (l *Loader) Load(explicit, startDir string) (*Config, error) {
	path := explicit
	if path == "" {
		found, err := FindConfigFile(startDir)
		if err != nil {
			return nil, err
		}
		path = found
	}

	if path != "" {
		l.v.SetConfigFile(path)
		l.v.SetConfigType("toml")
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Path = path

	if path != "" {
		if err := restoreEnvCase(path, cfg); err != nil {
			return nil, err
		}
	}

	// enabled defaults to true for tools the file mentions
	for name, tc := range cfg.Tools {
		if !l.v.IsSet("tools." + name + ".enabled") {
			tc.Enabled = true
			cfg.Tools[name] = tc
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// restoreEnvCase re-reads tools.<name>.env straight from the file, since
// viper lower-cases every key and environment variable names are case
// sensitive.
func restoreEnvCase(path string, cfg *Config) error {
	var raw struct {
		Tools map[string]struct {
			Env map[string]string `toml:"env"`
		} `toml:"tools"`
	}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	for name, tool := range raw.Tools {
		key := strings.ToLower(name)
		tc, ok := cfg.Tools[key]
		if !ok || len(tool.Env) == 0 {
			continue
		}
		tc.Env = tool.Env
		cfg.Tools[key] = tc
	}
	return nil
}

// FindConfigFile walks up from dir and returns the first .siren.toml, or an
// empty string.
func FindConfigFile(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	if st, err := os.Stat(abs); err == nil && !st.IsDir() {
		abs = filepath.Dir(abs)
	}

	for {
		candidate := filepath.Join(abs, FileName)
		st, err := os.Stat(candidate)
		switch {
		case err == nil && !st.IsDir():
			return candidate, nil
		case err != nil && !errors.Is(err, os.ErrNotExist):
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil
		}
		abs = parent
	}
}

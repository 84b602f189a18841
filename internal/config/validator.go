// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// OutputFormats are the values accepted for output.format.
var OutputFormats = []string{"json", "sarif", "text", "yaml"}

// FieldError names the offending key.
type FieldError struct {
	Key string
	Msg string
}

func (e *FieldError) Error() string {
	return e.Key + ": " + e.Msg
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidConfig
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(key, format string, args ...any) {
		errs = append(errs, &FieldError{Key: key, Msg: fmt.Sprintf(format, args...)})
	}

	if _, err := model.ParseSeverity(c.General.FailLevel); err != nil {
		add("general.fail_level", "%v", err)
	}
	if c.General.MaxParallelism < 0 {
		add("general.max_parallelism", "must not be negative")
	}
	if c.General.Timeout < 0 {
		add("general.timeout", "must not be negative")
	}
	if c.General.GracePeriod < 0 {
		add("general.grace_period", "must not be negative")
	}
	if c.Output.MaxIssuesPerTool < 0 {
		add("output.max_issues_per_tool", "must not be negative")
	}
	if !knownFormat(c.Output.Format) {
		add("output.format", "unknown format %q (want one of %s)", c.Output.Format, strings.Join(OutputFormats, ", "))
	}

	names := make([]string, 0, len(c.Tools))
	for name := range c.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		tc := c.Tools[name]
		if tc.Timeout < 0 {
			add("tools."+name+".timeout", "must not be negative")
		}
		if tc.ReportLevel != "" {
			if _, err := model.ParseSeverity(tc.ReportLevel); err != nil {
				add("tools."+name+".report_level", "%v", err)
			}
		}
	}

	return errors.Join(errs...)
}

func knownFormat(format string) bool {
	format = strings.ToLower(strings.TrimSpace(format))
	for _, f := range OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}

// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package ports

import (
	"context"
	"errors"
	"time"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

// ErrBinaryVanished is returned by a tool whose executable was present when
// the run was planned but could not be started.
var ErrBinaryVanished = errors.New("tool binary vanished")

// Tool is the descriptor of one external formatter, linter, type checker or
// fixer invocation.
//
// CanHandle must only return true for files whose language is one of
// Languages. Execute must honour ctx: when it is done the underlying process
// is expected to be gone.
type Tool interface {
	Name() string
	Description() string
	Type() model.ToolType
	Languages() []model.Language
	CanHandle(path string) bool
	Available() bool
	Version(ctx context.Context) string
	Execute(ctx context.Context, files []string, cfg model.ToolConfig) (model.LintResult, error)
}

type Command struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
}

type ProcessResult struct {
	PID      int
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
	Killed   bool
}

// ProcessRunner starts an external command and waits for it. When ctx ends
// before the process exits, the runner kills the process and everything it
// spawned.
type ProcessRunner interface {
	Run(ctx context.Context, cmd Command) (ProcessResult, error)
	LookPath(name string) (string, error)
}

type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

type ProjectDetector interface {
	Detect(ctx context.Context, paths []string) (*model.ProjectInfo, []model.DetectedFile, error)
}

type GitClient interface {
	ModifiedFiles(ctx context.Context, root string) ([]string, error)
}

type ReportStorage interface {
	Save(ctx context.Context, root string, report *model.Report) error
	Load(ctx context.Context, root string) (*model.Report, error)
}

type OutputRenderer interface {
	Format() string
	Render(report *model.Report) (string, error)
}

type RendererRegistry interface {
	Get(format string) (OutputRenderer, bool)
	List() []OutputRenderer
}

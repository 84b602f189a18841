// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package gitadapter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

// ErrNotRepository is returned when root is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// GitCLI shells out to the git binary through a ProcessRunner.
type GitCLI struct {
	runner ports.ProcessRunner
}

func NewGitCLI(runner ports.ProcessRunner) *GitCLI {
	return &GitCLI{runner: runner}
}

var _ ports.GitClient = (*GitCLI)(nil)

// ModifiedFiles lists tracked files with unstaged changes plus untracked
// files that are not ignored, as paths joined to root.
func (g *GitCLI) ModifiedFiles(ctx context.Context, root string) ([]string, error) {
	res, err := g.runner.Run(ctx, ports.Command{
		Name: "git",
		Args: []string{"-C", root, "ls-files", "--modified", "--others", "--exclude-standard"},
	})
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}
	if res.ExitCode != 0 {
		stderr := strings.TrimSpace(string(res.Stderr))
		if strings.Contains(stderr, "not a git repository") {
			return nil, fmt.Errorf("%s: %w", root, ErrNotRepository)
		}
		return nil, fmt.Errorf("git ls-files exited with %d: %s", res.ExitCode, stderr)
	}

	seen := make(map[string]struct{})
	var files []string

	scanner := bufio.NewScanner(bytes.NewReader(res.Stdout))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(line))
		// A modified file that was deleted is still listed.
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read git output: %w", err)
	}
	return files, nil
}

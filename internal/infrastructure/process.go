// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

// ErrCommandNotFound is returned by LookPath when no executable is found.
var ErrCommandNotFound = errors.New("command not found")

// defaultWaitDelay bounds how long Wait keeps draining output pipes after
// the process was killed. Grandchildren that escaped the process group may
// hold them open.
const defaultWaitDelay = 2 * time.Second

// ExecRunner runs tools as child processes. Each child gets its own process
// group so that cancelling ctx kills the tool and anything it spawned.
type ExecRunner struct {
	logger    zerolog.Logger
	waitDelay time.Duration
}

func NewExecRunner(logger zerolog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger, waitDelay: defaultWaitDelay}
}

var _ ports.ProcessRunner = (*ExecRunner)(nil)

func (r *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	return path, nil
}

// Run starts c and waits for it. A non-zero exit status is not an error:
// it is reported through ProcessResult.ExitCode. An executable that cannot
// be found or started yields ports.ErrBinaryVanished.
func (r *ExecRunner) Run(ctx context.Context, c ports.Command) (ports.ProcessResult, error) {
	var res ports.ProcessResult

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), c.Env)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.waitDelay
	setProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return res, fmt.Errorf("start %s: %w: %v", c.Name, ports.ErrBinaryVanished, err)
		}
		return res, fmt.Errorf("start %s: %w", c.Name, err)
	}
	res.PID = cmd.Process.Pid

	err := cmd.Wait()
	res.Duration = time.Since(start)
	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()
	res.ExitCode = cmd.ProcessState.ExitCode()

	r.logger.Debug().
		Str("command", c.Name).
		Strs("args", c.Args).
		Int("pid", res.PID).
		Int("exit_code", res.ExitCode).
		Dur("duration", res.Duration).
		Msg("process finished")

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.Killed = true
		return res, fmt.Errorf("%s: %w", c.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil, errors.As(err, &exitErr):
		return res, nil
	case errors.Is(err, exec.ErrWaitDelay):
		r.logger.Debug().Str("command", c.Name).Msg("output pipes still open after exit")
		return res, nil
	default:
		return res, fmt.Errorf("wait %s: %w", c.Name, err)
	}
}

// mergeEnv overlays extra on base. Keys from extra win; the result is
// sorted for reproducible child environments.
func mergeEnv(base []string, extra map[string]string) []string {
	merged := make(map[string]string, len(base)+len(extra))
	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}

	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

//go:build linux

package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/engine"
	"github.com/rafaelvolkmer/siren/internal/infrastructure"
)

// exited reports whether pid is no longer running. A zombie waiting to be
// reaped by its new parent counts as exited.
func exited(pid int) bool {
	if errors.Is(unix.Kill(pid, 0), unix.ESRCH) {
		return true
	}
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return true
	}
	fields := strings.Fields(string(stat[strings.LastIndexByte(string(stat), ')')+1:]))
	return len(fields) > 0 && fields[0] == "Z"
}

func readPIDs(t *testing.T, path string) []int {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var pids []int
	for _, field := range strings.Fields(string(data)) {
		pid, err := strconv.Atoi(field)
		require.NoError(t, err)
		pids = append(pids, pid)
	}
	return pids
}

// A real process that outlives its timeout is killed together with the
// children it spawned, reported as timed out, and does not hold up the
// tools next to it.
func TestHangingToolTimesOut(t *testing.T) {
	logger := zerolog.Nop()
	runner := infrastructure.NewExecRunner(logger)
	for _, bin := range []string{"sh", "sleep"} {
		if _, err := runner.LookPath(bin); err != nil {
			t.Skipf("%s not available", bin)
		}
	}

	pidFile := filepath.Join(t.TempDir(), "pids")
	hanging := NewCommandTool(Spec{
		Name:      "hanging",
		Type:      model.ToolTypeLinter,
		Languages: []model.Language{model.LanguagePython},
		Patterns:  []string{"*.py"},
		Binary:    "sh",
		BaseArgs:  []string{"-c", fmt.Sprintf("echo $$ > %[1]s; sleep 30 & echo $! >> %[1]s; wait", pidFile)},
		NoFiles:   true,
	}, runner, logger)
	quick := NewCommandTool(Spec{
		Name:      "quick",
		Type:      model.ToolTypeLinter,
		Languages: []model.Language{model.LanguagePython},
		Patterns:  []string{"*.py"},
		Binary:    "sleep",
		BaseArgs:  []string{"0"},
		NoFiles:   true,
	}, runner, logger)

	scheduler := engine.NewScheduler(engine.Options{Timeout: 200 * time.Millisecond}, logger)
	start := time.Now()
	results := scheduler.Run(context.Background(), []engine.ExecutionUnit{
		{Index: 0, Tool: hanging, Files: []string{"a.py"}, Config: model.DefaultToolConfig()},
		{Index: 1, Tool: quick, Files: []string{"a.py"}, Config: model.DefaultToolConfig()},
	})
	elapsed := time.Since(start)

	require.Len(t, results, 2)
	assert.Equal(t, model.StatusTimedOut, results[0].Status)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Diagnostic, "200ms")

	assert.Equal(t, model.StatusSucceeded, results[1].Status)
	assert.Less(t, elapsed, 10*time.Second)

	pids := readPIDs(t, pidFile)
	require.Len(t, pids, 2, "shell and its background child")
	for _, pid := range pids {
		assert.Eventually(t, func() bool { return exited(pid) }, 2*time.Second, 20*time.Millisecond,
			"process %d survived the timeout", pid)
	}
}

// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package infrastructure

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
)

func TestFileStorageSaveLoad(t *testing.T) {
	root := t.TempDir()
	storage := NewFileStorage()
	ctx := context.Background()

	report := &model.Report{
		RunID:       "2f1c",
		Command:     model.CommandCheck,
		RootPath:    root,
		GeneratedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Results: []model.LintResult{{
			ToolName: "ruff",
			ToolType: model.ToolTypeLinter,
			Status:   model.StatusSucceeded,
			Success:  true,
			Issues: []model.LintIssue{{
				Severity: model.SeverityWarning,
				Message:  "unused import",
				File:     "a.py",
				Line:     3,
				Code:     "F401",
			}},
		}},
		CountsBySeverity: map[model.Severity]int{model.SeverityWarning: 1},
		CountsByStatus:   map[model.UnitStatus]int{model.StatusSucceeded: 1},
		OverallSuccess:   true,
	}

	require.NoError(t, storage.Save(ctx, root, report))
	_, err := os.Stat(ReportPath(root))
	require.NoError(t, err)

	loaded, err := storage.Load(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, loaded.RunID)
	assert.Equal(t, report.Command, loaded.Command)
	assert.True(t, report.GeneratedAt.Equal(loaded.GeneratedAt))
	assert.Equal(t, report.Results, loaded.Results)
	assert.Equal(t, 1, loaded.CountsBySeverity[model.SeverityWarning])

	entries, err := os.ReadDir(root + "/.siren")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStorageLoadMissing(t *testing.T) {
	_, err := NewFileStorage().Load(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNoSavedReport)
}

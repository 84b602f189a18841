// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

const (
	reportDir  = ".siren"
	reportFile = "report.json"
)

// ErrNoSavedReport is returned by Load when no run was saved under root.
var ErrNoSavedReport = errors.New("no saved report")

// FileStorage keeps the last report under <root>/.siren/report.json.
type FileStorage struct{}

func NewFileStorage() *FileStorage {
	return &FileStorage{}
}

var _ ports.ReportStorage = (*FileStorage)(nil)

func ReportPath(root string) string {
	return filepath.Join(root, reportDir, reportFile)
}

func (s *FileStorage) Save(ctx context.Context, root string, report *model.Report) error {
	_ = ctx

	dir := filepath.Join(root, reportDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	// Write to a temp file first so a crash never leaves a truncated report.
	tmp, err := os.CreateTemp(dir, reportFile+".*")
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		tmp.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	if err := os.Rename(tmp.Name(), ReportPath(root)); err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

func (s *FileStorage) Load(ctx context.Context, root string) (*model.Report, error) {
	_ = ctx

	f, err := os.Open(ReportPath(root))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w under %s", ErrNoSavedReport, root)
	}
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	var report model.Report
	if err := json.NewDecoder(f).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

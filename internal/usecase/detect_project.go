// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package usecase

import (
	"context"
	"fmt"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

type DetectProjectUseCase struct {
	detector ports.ProjectDetector
}

func NewDetectProjectUseCase(detector ports.ProjectDetector) *DetectProjectUseCase {
	return &DetectProjectUseCase{detector: detector}
}

func (uc *DetectProjectUseCase) Execute(ctx context.Context, paths []string) (*model.ProjectInfo, error) {
	info, _, err := uc.detector.Detect(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("detect project: %w", err)
	}
	return info, nil
}

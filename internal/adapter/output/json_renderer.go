// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"

	"github.com/rafaelvolkmer/siren/internal/domain/model"
	"github.com/rafaelvolkmer/siren/internal/domain/ports"
)

type JSONRenderer struct {
	opts Options
}

func NewJSONRenderer(opts Options) *JSONRenderer {
	return &JSONRenderer{opts: opts}
}

var _ ports.OutputRenderer = (*JSONRenderer)(nil)

func (r *JSONRenderer) Format() string {
	return "json"
}

func (r *JSONRenderer) Render(report *model.Report) (string, error) {
	data, err := json.MarshalIndent(relativized(report, r.opts.RelativeTo), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

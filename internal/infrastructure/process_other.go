// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

//go:build !unix

package infrastructure

import "os/exec"

// Without process groups the default exec.CommandContext kill is used.
func setProcessGroup(*exec.Cmd) {}

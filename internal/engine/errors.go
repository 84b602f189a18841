// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateTool is returned when a tool name is registered twice.
	ErrDuplicateTool = errors.New("duplicate tool")

	// ErrRegistryFrozen is returned when registering after Freeze.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrInvalidTool is returned for nil tools or tools without a name.
	ErrInvalidTool = errors.New("invalid tool")

	// ErrUnknownTool is returned when configuration or a filter names a tool
	// that is not registered.
	ErrUnknownTool = errors.New("unknown tool")
)

// RegistrationError is fatal: the registry cannot be trusted and no run
// should start.
type RegistrationError struct {
	Tool string
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register tool %q: %v", e.Tool, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// ResolutionError is reported alongside the resolved units; resolution
// continues with the remaining valid entries.
type ResolutionError struct {
	Tool   string
	Source string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s references tool %q: %v", e.Source, e.Tool, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

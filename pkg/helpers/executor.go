// Mod Manager
// Copyright (c) 2026 The Mod Manager Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Mod Manager.
//
// Mod Manager is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Mod Manager is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Mod Manager.  If not, see <http://www.gnu.org/licenses/>.

package helpers

import (
	"context"
	"errors"
	"os/exec"
)

// CommandExecutor abstracts blocking invocation of external tools (the
// privileged helper, lsof) so tests can stub the boundary.
type CommandExecutor interface {
	// Run executes a command, waits for it and returns its exit code.
	// The error is non-nil only when the command could not be run or
	// was terminated by a signal; a non-zero exit is (code, nil).
	Run(ctx context.Context, name string, args ...string) (int, error)
}

// RealCommandExecutor runs commands through os/exec. Production
// implementation.
type RealCommandExecutor struct{}

// Run executes a system command using exec.CommandContext.
func (*RealCommandExecutor) Run(ctx context.Context, name string, args ...string) (int, error) {
	err := exec.CommandContext(ctx, name, args...).Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return -1, err //nolint:wrapcheck // exec error context matters
}

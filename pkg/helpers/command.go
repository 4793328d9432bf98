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
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/ModManagerProject/mod-manager/pkg/config"
	"github.com/rs/zerolog/log"
)

// ExternalCommand is one configured pre/custom command: a verbatim argv
// (no shell expansion), an environment overlay and wait semantics. The
// ID is the config key the command was declared under, the index of an
// entry in the global pre_command list, or a fixed name such as "wrap"
// for ad-hoc commands.
type ExternalCommand struct {
	Env         map[string]string
	ID          string
	Args        []string
	DelayAfter  time.Duration
	WaitForExit bool
}

// NewExternalCommand builds a command that is not backed by a config
// table, e.g. the editor or the wrapped command.
func NewExternalCommand(id string, args []string, waitForExit bool) *ExternalCommand {
	return &ExternalCommand{
		ID:          id,
		Args:        args,
		Env:         map[string]string{},
		WaitForExit: waitForExit,
	}
}

// CommandFromSpec builds a command from its validated config table.
func CommandFromSpec(id string, spec *config.CommandSpec) *ExternalCommand {
	env := make(map[string]string, len(spec.Environment))
	for k, v := range spec.Environment {
		env[k] = v
	}
	return &ExternalCommand{
		ID:          id,
		Args:        spec.Command,
		Env:         env,
		WaitForExit: spec.ShouldWait(),
		DelayAfter:  time.Duration(spec.DelayAfter) * time.Second,
	}
}

// Run spawns the argv with the overlay env applied on top of the
// current process environment. When WaitForExit is set it blocks until
// the child exits and returns nil; otherwise the live process handle is
// returned to the caller.
func (c *ExternalCommand) Run() (*os.Process, error) {
	if len(c.Args) == 0 {
		return nil, fmt.Errorf("command %q has no argv", c.ID)
	}

	//nolint:gosec // argv comes from the user's own config
	cmd := exec.Command(c.Args[0], c.Args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting command %q: %w", c.ID, err)
	}

	if !c.WaitForExit {
		return cmd.Process, nil
	}

	if err := cmd.Wait(); err != nil {
		// The command ran; a bad exit is logged, not surfaced.
		log.Warn().Err(err).Str("command", c.ID).
			Msg("command exited with error")
	}
	return nil, nil //nolint:nilnil // no handle to hand back after wait
}

// MergeEnvironment copies vars into the command's env overlay,
// overwriting existing keys.
func (c *ExternalCommand) MergeEnvironment(vars map[string]string) {
	for k, v := range vars {
		c.Env[k] = v
	}
}

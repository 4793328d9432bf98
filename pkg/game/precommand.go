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

package game

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/ModManagerProject/mod-manager/pkg/helpers"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/spf13/afero"
)

// shouldRunPreCommands folds the game-level flag with the resolved
// tree's.
func (g *Game) shouldRunPreCommands() bool {
	if g.cfg.RunPreCommand {
		return true
	}
	return g.tree != nil && g.tree.ShouldRunPreCommands()
}

// runPreCommands launches the global pre-command list (when enabled)
// followed by the tree's attached commands, in order, deduplicated by
// command ID. Spawn failures are logged and skipped. PIDs of commands
// left running are recorded as marker files under the runtime dir so
// Deactivate can terminate them later.
func (g *Game) runPreCommands(treeCommands []*helpers.ExternalCommand) {
	var commands []*helpers.ExternalCommand
	seen := map[string]bool{}

	if g.shouldRunPreCommands() {
		for i := range g.cfg.PreCommands {
			cmd := helpers.CommandFromSpec(strconv.Itoa(i), &g.cfg.PreCommands[i])
			seen[cmd.ID] = true
			commands = append(commands, cmd)
		}
	}
	for _, cmd := range treeCommands {
		if !seen[cmd.ID] {
			seen[cmd.ID] = true
			commands = append(commands, cmd)
		}
	}

	if len(commands) == 0 {
		return
	}

	if err := g.deps.Fs.MkdirAll(g.paths.RuntimeDir, 0o700); err != nil {
		log.Error().Err(err).Str("game", g.ID).
			Msg("could not create runtime dir, no pre commands were started")
		return
	}

	var running []*os.Process
	for _, cmd := range commands {
		proc, err := cmd.Run()
		if err != nil {
			log.Error().Err(err).Str("game", g.ID).Str("command", cmd.ID).
				Msg("failed to run pre command")
		} else if proc != nil {
			running = append(running, proc)
		}

		if cmd.DelayAfter > 0 {
			g.deps.Clock.Sleep(cmd.DelayAfter)
		}
	}

	for _, proc := range running {
		marker := filepath.Join(g.paths.RuntimeDir, strconv.Itoa(proc.Pid))
		if err := afero.WriteFile(g.deps.Fs, marker, nil, 0o600); err != nil {
			log.Error().Err(err).Int("pid", proc.Pid).Str("game", g.ID).
				Msg("could not record pid, process won't be terminated on deactivate")
		}
	}
}

// terminateChildren sends SIGTERM to every process recorded in the
// runtime dir and removes its marker. Per-PID failures are logged and
// skipped; a child that ignores the signal may later block the
// unmount.
func (g *Game) terminateChildren() {
	entries, err := afero.ReadDir(g.deps.Fs, g.paths.RuntimeDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("game", g.ID).Msg("could not read runtime dir")
		}
		return
	}

	for _, entry := range entries {
		marker := filepath.Join(g.paths.RuntimeDir, entry.Name())

		pid, err := strconv.ParseInt(entry.Name(), 10, 32)
		if err != nil {
			log.Warn().Str("game", g.ID).Str("file", entry.Name()).
				Msg("runtime entry is not a pid, skipping")
			continue
		}

		proc, err := process.NewProcess(int32(pid))
		if err != nil {
			// Already gone; drop the stale marker.
			g.removeMarker(marker)
			continue
		}

		if err := proc.Terminate(); err != nil {
			log.Warn().Err(err).Int64("pid", pid).Str("game", g.ID).
				Msg("terminating recorded process failed")
			continue
		}

		g.removeMarker(marker)
	}
}

func (g *Game) removeMarker(marker string) {
	if err := g.deps.Fs.Remove(marker); err != nil {
		log.Warn().Err(err).Str("file", marker).Msg("could not remove pid marker")
	}
}

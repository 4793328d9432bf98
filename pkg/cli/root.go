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

// Package cli wires the subcommands around the game driver. All real
// work happens in pkg/game; this package only parses arguments and
// maps results to exit status.
package cli

import (
	"github.com/ModManagerProject/mod-manager/pkg/config"
	"github.com/ModManagerProject/mod-manager/pkg/overlay"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. deps carries the injectable
// filesystem and privileged boundary so tests can run the CLI against
// fakes.
func NewRootCmd(deps overlay.Deps) *cobra.Command {
	deps.FillDefaults()

	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Game mod manager using OverlayFS",
		Long: "Manages per-game mod activations by mounting an OverlayFS in place of\n" +
			"the original game directory, so launchers and game binaries see the\n" +
			"game combined with a prioritized stack of mod directories.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newActivateCmd(deps),
		newDeactivateCmd(deps),
		newWrapCmd(deps),
		newSetupCmd(deps),
		newEditCmd(deps),
	)

	return root
}

// setOverride converts a cobra --set flag into the resolver's override
// semantics: nil when the flag wasn't passed, a pointer otherwise (an
// empty value disables all layering).
func setOverride(cmd *cobra.Command, value string) *string {
	if !cmd.Flags().Changed("set") {
		return nil
	}
	return &value
}

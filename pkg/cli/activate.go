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

package cli

import (
	"github.com/ModManagerProject/mod-manager/pkg/game"
	"github.com/ModManagerProject/mod-manager/pkg/overlay"
	"github.com/spf13/cobra"
)

func newActivateCmd(deps overlay.Deps) *cobra.Command {
	var (
		set      string
		writable bool
	)

	cmd := &cobra.Command{
		Use:   "activate [GAME]",
		Short: "Activate mods by mounting the OverlayFS in place",
		Long: "Activate mods by mounting the OverlayFS in place of the game\n" +
			"directory. Without GAME, every configured game is activated.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) > 0 {
				id = args[0]
			} else {
				// Never make every configured game writable at once.
				writable = false
			}

			games, err := game.Load(id, setOverride(cmd, set), deps)
			if err != nil {
				return err
			}

			return game.ActivateAll(cmd.Context(), games, writable)
		},
	}

	cmd.Flags().StringVar(&set, "set", "",
		"override the configured active set; only applies when GAME is given")
	cmd.Flags().BoolVar(&writable, "writable", false,
		"mount with write access; only applies when GAME is given")

	return cmd
}

func newDeactivateCmd(deps overlay.Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate [GAME]",
		Short: "Deactivate mods by unmounting the OverlayFS",
		Long: "Deactivate an activated game by unmounting the OverlayFS and\n" +
			"restoring the original directory. Without GAME, every configured\n" +
			"game is deactivated.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) > 0 {
				id = args[0]
			}

			games, err := game.Load(id, nil, deps)
			if err != nil {
				return err
			}

			return game.DeactivateAll(cmd.Context(), games)
		},
	}
}

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
	"errors"

	"github.com/ModManagerProject/mod-manager/pkg/game"
	"github.com/ModManagerProject/mod-manager/pkg/helpers"
	"github.com/ModManagerProject/mod-manager/pkg/overlay"
	"github.com/spf13/cobra"
)

func newWrapCmd(deps overlay.Deps) *cobra.Command {
	var (
		set      string
		writable bool
	)

	cmd := &cobra.Command{
		Use:   "wrap GAME -- COMMAND...",
		Short: "Wrap a command between activation and deactivation",
		Long: "Activate the game's overlay, run COMMAND, then deactivate again.\n" +
			"The -- separator before COMMAND is mandatory.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dash := cmd.ArgsLenAtDash()
			if dash != 1 {
				return errors.New("usage: wrap GAME -- COMMAND...")
			}
			id, argv := args[0], args[1:]
			if len(argv) == 0 {
				return errors.New("missing command to wrap")
			}

			g, err := game.FromConfigFile(id, setOverride(cmd, set), deps)
			if err != nil {
				return err
			}

			wrapped := helpers.NewExternalCommand("wrap", argv, true)
			return game.RunWithCleanup(cmd.Context(), g, func() error {
				return g.Wrap(cmd.Context(), wrapped, writable)
			})
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "override the configured active set")
	cmd.Flags().BoolVar(&writable, "writable", false, "mount with write access")

	return cmd
}

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
	"fmt"
	"os"

	"github.com/ModManagerProject/mod-manager/pkg/config"
	"github.com/ModManagerProject/mod-manager/pkg/game"
	"github.com/ModManagerProject/mod-manager/pkg/overlay"
	"github.com/spf13/cobra"
)

func newSetupCmd(deps overlay.Deps) *cobra.Command {
	var (
		set      string
		gamePath string
	)

	cmd := &cobra.Command{
		Use:   "setup GAME MOD",
		Short: "Collect changes for a new mod in an isolated upper dir",
		Long: "Mount a writable overlay with a dedicated upper directory, wait\n" +
			"while you modify the game folder, and turn the collected changes\n" +
			"into a new mod named MOD. GAME can be a new identifier when --path\n" +
			"is given; its config file is created first.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, modID := args[0], args[1]

			if _, err := deps.Fs.Stat(config.GameConfigPath(gameID)); os.IsNotExist(err) {
				fmt.Fprintf(cmd.OutOrStdout(),
					"Config file for %q doesn't exist yet, creating one…\n", gameID)
				if err := editConfig(deps.Fs, gameID, gamePath); err != nil {
					return err
				}
			}

			g, err := game.FromConfigFile(gameID, setOverride(cmd, set), deps)
			if err != nil {
				return err
			}

			return game.RunWithCleanup(cmd.Context(), g, func() error {
				return g.Setup(cmd.Context(), modID)
			})
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "override the configured active set")
	cmd.Flags().StringVar(&gamePath, "path", "",
		"populates the path setting of a new config file")

	return cmd
}

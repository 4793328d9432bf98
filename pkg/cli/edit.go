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
	"path/filepath"

	"github.com/ModManagerProject/mod-manager/pkg/config"
	"github.com/ModManagerProject/mod-manager/pkg/helpers"
	"github.com/ModManagerProject/mod-manager/pkg/overlay"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// templatePath seeds the path setting of a fresh config file when
// neither --path nor a template in the main config supplies one.
const templatePath = "/home/username/.local/share/Steam/steamapps/common/game"

func newEditCmd(deps overlay.Deps) *cobra.Command {
	var gamePath string

	cmd := &cobra.Command{
		Use:   "edit GAME",
		Short: "Edit or create a game's configuration file",
		Long: "Open the game's configuration file in $EDITOR, creating it from a\n" +
			"template first when it doesn't exist yet. GAME can be a new\n" +
			"identifier.",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return editConfig(deps.Fs, args[0], gamePath)
		},
	}

	cmd.Flags().StringVar(&gamePath, "path", "",
		"populates the path setting of a new config file")

	return cmd
}

// editConfig creates the config file from a template when missing,
// then opens it in the user's editor and waits.
func editConfig(fsys afero.Fs, gameID, gamePath string) error {
	main, err := config.LoadMainConfig(fsys)
	if err != nil {
		return err
	}

	file := config.GameConfigPath(gameID)
	if _, err := fsys.Stat(file); os.IsNotExist(err) {
		if err := writeConfigTemplate(fsys, file, gamePath, main); err != nil {
			return err
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = main.Editor
	}
	if editor == "" {
		editor = "vi"
	}

	_, err = helpers.NewExternalCommand("editor", []string{editor, file}, true).Run()
	return err
}

func writeConfigTemplate(fsys afero.Fs, file, gamePath string, main *config.MainConfig) error {
	if err := fsys.MkdirAll(filepath.Dir(file), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	path := templatePath
	if main.Template.Path != "" {
		path = main.Template.Path
	}
	if gamePath != "" {
		path = gamePath
	}

	modRootLine := "# mod_root_path = \"/mnt/mods/game\"\n"
	if main.Template.ModRootPath != "" {
		modRootLine = fmt.Sprintf("mod_root_path = %q\n", main.Template.ModRootPath)
	}

	content := fmt.Sprintf(`active = ""
path = %q
%s
["set1"]
mods = [
    "mod1",
    "mod2",
    "mod3",
]
`, path, modRootLine)

	if err := afero.WriteFile(fsys, file, []byte(content), 0o640); err != nil {
		return fmt.Errorf("creating config file %q: %w", file, err)
	}
	return nil
}

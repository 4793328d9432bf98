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

package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// MainConfig is the optional tool-wide config file. It only carries
// conveniences; every game works without it.
type MainConfig struct {
	// Editor is used by the edit command when $EDITOR is unset.
	Editor string `toml:"editor"`

	// Default supplies fallbacks for game configs missing path or
	// mod_root_path.
	Default DefaultConfig `toml:"default"`

	// Template seeds new config files created by the edit command.
	Template TemplateConfig `toml:"template"`
}

// DefaultConfig holds per-game fallback roots. A game with no path
// resolves to <game_root_path>/<gameID>.
type DefaultConfig struct {
	GameRootPath string `toml:"game_root_path"`
	ModRootPath  string `toml:"mod_root_path"`
}

// TemplateConfig holds the strings written into a fresh config file.
type TemplateConfig struct {
	Path        string `toml:"path"`
	ModRootPath string `toml:"mod_root_path"`
}

// LoadMainConfig reads the reserved config.toml. A missing file is not
// an error; it yields the zero value.
func LoadMainConfig(fsys afero.Fs) (*MainConfig, error) {
	file := filepath.Join(ConfigDir(), MainCfgFile)
	data, err := afero.ReadFile(fsys, file)
	if err != nil {
		if os.IsNotExist(err) {
			return &MainConfig{}, nil
		}
		return nil, fmt.Errorf("reading main config: %w", err)
	}

	var cfg MainConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing main config: %w: %w", ErrValue, err)
	}

	log.Debug().Str("file", file).Msg("loaded main config")
	return &cfg, nil
}

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
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// GameConfig is the typed view of one per-game TOML file. Mod set and
// named command tables keep their dynamic keys and are decoded on
// demand through SetSpec and CommandSpec.
type GameConfig struct {
	// ID is the stem of the config file name.
	ID string `toml:"-"`

	// Path is the original game directory.
	Path string `toml:"path" validate:"required"`

	// Active names the default mod set. Empty means no layering.
	Active string `toml:"active"`

	// ModRootPath is where mod folders are searched. Defaults to the
	// per-game directory under the data dir.
	ModRootPath string `toml:"mod_root_path"`

	// Writable forces a writable mount regardless of the active set.
	Writable bool `toml:"writable"`

	// RunPreCommand enables the global pre_command list on activation.
	// The plural spelling run_pre_commands is accepted as a synonym.
	RunPreCommand bool `toml:"run_pre_command"`

	// PreCommands is the global [[pre_command]] list.
	PreCommands []CommandSpec `toml:"pre_command"`

	tables map[string]map[string]any
}

// SetSpec is a mod set table. Members reference either mod folders under
// the mod root or other set tables by name.
type SetSpec struct {
	Mods          []string          `mapstructure:"mods"`
	Command       string            `mapstructure:"command"`
	Environment   map[string]string `mapstructure:"environment"`
	Writable      bool              `mapstructure:"writable"`
	RunPreCommand bool              `mapstructure:"run_pre_command"`
}

// CommandSpec describes one external command: verbatim argv, wait
// semantics and an optional post-delay and environment overlay.
type CommandSpec struct {
	WaitForExit *bool             `toml:"wait_for_exit" mapstructure:"wait_for_exit"`
	Environment map[string]string `toml:"environment" mapstructure:"environment"`
	Command     []string          `toml:"command" mapstructure:"command" validate:"required,min=1,dive,required"`
	DelayAfter  int               `toml:"delay_after" mapstructure:"delay_after" validate:"gte=0"`
}

// ShouldWait reports whether the spawned process must be waited for.
// Defaults to true when the key is absent.
func (s *CommandSpec) ShouldWait() bool {
	return s.WaitForExit == nil || *s.WaitForExit
}

// LoadGameConfig reads and validates the config file for a game ID.
// Defaults for path and mod_root_path come from the main config when
// the file omits them.
func LoadGameConfig(fsys afero.Fs, id string, main *MainConfig) (*GameConfig, error) {
	file := GameConfigPath(id)
	data, err := afero.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("reading config for game %q: %w", id, err)
	}

	cfg := GameConfig{ID: id}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config for game %q: %w: %w", id, ErrValue, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config for game %q: %w: %w", id, ErrValue, err)
	}

	// Accept the historical plural spelling as a synonym.
	if v, ok := raw["run_pre_commands"].(bool); ok && v {
		cfg.RunPreCommand = true
	}

	cfg.tables = make(map[string]map[string]any)
	for key, value := range raw {
		if table, ok := value.(map[string]any); ok {
			cfg.tables[key] = table
		}
	}

	if cfg.Path == "" && main != nil && main.Default.GameRootPath != "" {
		cfg.Path = filepath.Join(main.Default.GameRootPath, id)
		log.Debug().Str("game", id).Str("path", cfg.Path).
			Msg("using default game root for missing path")
	}
	if cfg.ModRootPath == "" {
		if main != nil && main.Default.ModRootPath != "" {
			cfg.ModRootPath = filepath.Join(main.Default.ModRootPath, id)
		} else {
			cfg.ModRootPath = filepath.Join(DataDir(), id)
		}
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config for game %q: %w: %w", id, ErrKeyMissing, err)
	}
	for i := range cfg.PreCommands {
		if err := validateCommandSpec(&cfg.PreCommands[i]); err != nil {
			return nil, fmt.Errorf("pre_command %d of game %q: %w", i, id, err)
		}
	}

	return &cfg, nil
}

// HasTable reports whether a top-level table exists under the given
// name. The resolver uses this to tell nested sets from leaf mods.
func (c *GameConfig) HasTable(name string) bool {
	_, ok := c.tables[name]
	return ok
}

// SetSpec decodes the named set table.
func (c *GameConfig) SetSpec(name string) (SetSpec, error) {
	table, ok := c.tables[name]
	if !ok {
		return SetSpec{}, fmt.Errorf("set %q in game %q: %w", name, c.ID, ErrKeyMissing)
	}

	if _, ok := table["mods"]; !ok {
		return SetSpec{}, fmt.Errorf("key 'mods' of set %q in game %q: %w", name, c.ID, ErrKeyMissing)
	}

	var spec SetSpec
	if err := decodeTable(table, &spec); err != nil {
		return SetSpec{}, fmt.Errorf("set %q in game %q: %w: %w", name, c.ID, ErrValue, err)
	}

	if len(spec.Mods) == 0 {
		return SetSpec{}, fmt.Errorf("key 'mods' of set %q in game %q: %w", name, c.ID, ErrArrayEmpty)
	}

	return spec, nil
}

// CommandSpec decodes the named command table.
func (c *GameConfig) CommandSpec(name string) (CommandSpec, error) {
	table, ok := c.tables[name]
	if !ok {
		return CommandSpec{}, fmt.Errorf("command %q in game %q: %w", name, c.ID, ErrKeyMissing)
	}

	var spec CommandSpec
	if err := decodeTable(table, &spec); err != nil {
		return CommandSpec{}, fmt.Errorf("command %q in game %q: %w: %w", name, c.ID, ErrValue, err)
	}

	if err := validateCommandSpec(&spec); err != nil {
		return CommandSpec{}, fmt.Errorf("command %q in game %q: %w", name, c.ID, err)
	}

	return spec, nil
}

func validateCommandSpec(spec *CommandSpec) error {
	if len(spec.Command) == 0 {
		return fmt.Errorf("key 'command': %w", ErrArrayEmpty)
	}
	if err := validate.Struct(spec); err != nil {
		return fmt.Errorf("%w: %w", ErrValue, err)
	}
	return nil
}

func decodeTable(table map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: out,
	})
	if err != nil {
		return err //nolint:wrapcheck
	}
	return decoder.Decode(table) //nolint:wrapcheck
}

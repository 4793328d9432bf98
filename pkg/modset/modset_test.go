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

package modset

import (
	"testing"

	"github.com/ModManagerProject/mod-manager/pkg/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modRoot = "/mods/game"

// loadConfig writes a config file with the given set tables and loads
// it back, creating a mod folder for every name in mods.
func loadConfig(t *testing.T, body string, mods ...string) (afero.Fs, *config.GameConfig) {
	t.Helper()

	fsys := afero.NewMemMapFs()
	content := "path = \"/games/game\"\nmod_root_path = \"" + modRoot + "\"\n" + body
	require.NoError(t, afero.WriteFile(fsys,
		config.GameConfigPath("game"), []byte(content), 0o640))

	for _, mod := range mods {
		require.NoError(t, fsys.MkdirAll(modRoot+"/"+mod, 0o750))
	}

	cfg, err := config.LoadGameConfig(fsys, "game", nil)
	require.NoError(t, err)
	return fsys, cfg
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("nested_sets_splice_in_order", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["s"]
mods = ["a", "n"]
["n"]
mods = ["b", "c"]
`, "a", "b", "c")

		set, err := Resolve(fsys, "s", cfg, modRoot)
		require.NoError(t, err)

		assert.Equal(t, []string{
			modRoot + "/a",
			modRoot + "/b",
			modRoot + "/c",
		}, set.LowerDirs())
	})

	t.Run("duplicates_keep_first_occurrence", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["s"]
mods = ["n", "a", "b"]
["n"]
mods = ["a", "c"]
`, "a", "b", "c")

		set, err := Resolve(fsys, "s", cfg, modRoot)
		require.NoError(t, err)

		assert.Equal(t, []string{
			modRoot + "/a",
			modRoot + "/c",
			modRoot + "/b",
		}, set.LowerDirs())
	})

	t.Run("direct_cycle_fails", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["A"]
mods = ["B"]
["B"]
mods = ["A"]
`)

		_, err := Resolve(fsys, "A", cfg, modRoot)
		require.ErrorIs(t, err, config.ErrRecursion)
	})

	t.Run("self_reference_fails", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["s"]
mods = ["s"]
`)

		_, err := Resolve(fsys, "s", cfg, modRoot)
		require.ErrorIs(t, err, config.ErrRecursion)
	})

	t.Run("diamond_is_not_a_cycle", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["top"]
mods = ["left", "right"]
["left"]
mods = ["shared"]
["right"]
mods = ["shared"]
["shared"]
mods = ["a"]
`, "a")

		set, err := Resolve(fsys, "top", cfg, modRoot)
		require.NoError(t, err)
		assert.Equal(t, []string{modRoot + "/a"}, set.LowerDirs())
	})

	t.Run("missing_mod_folder_fails", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["s"]
mods = ["missing"]
`)

		_, err := Resolve(fsys, "s", cfg, modRoot)
		require.ErrorIs(t, err, config.ErrFolderMissing)
	})

	t.Run("missing_set_fails", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, ``)

		_, err := Resolve(fsys, "ghost", cfg, modRoot)
		require.ErrorIs(t, err, config.ErrKeyMissing)
	})

	t.Run("empty_mods_fails", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["s"]
mods = []
`)

		_, err := Resolve(fsys, "s", cfg, modRoot)
		require.ErrorIs(t, err, config.ErrArrayEmpty)
	})
}

func TestDerivedFlags(t *testing.T) {
	t.Parallel()

	t.Run("writable_propagates_upward", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["top"]
mods = ["inner", "a"]
["inner"]
mods = ["b"]
writable = true
`, "a", "b")

		set, err := Resolve(fsys, "top", cfg, modRoot)
		require.NoError(t, err)
		assert.True(t, set.Writable())
	})

	t.Run("run_pre_command_propagates_upward", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["top"]
mods = ["inner"]
["inner"]
mods = ["a"]
run_pre_command = true
`, "a")

		set, err := Resolve(fsys, "top", cfg, modRoot)
		require.NoError(t, err)
		assert.True(t, set.ShouldRunPreCommands())
	})

	t.Run("flags_default_to_false", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["s"]
mods = ["a"]
`, "a")

		set, err := Resolve(fsys, "s", cfg, modRoot)
		require.NoError(t, err)
		assert.False(t, set.Writable())
		assert.False(t, set.ShouldRunPreCommands())
	})
}

func TestCommands(t *testing.T) {
	t.Parallel()

	t.Run("collects_nested_first_dedup_by_id", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["top"]
mods = ["inner"]
command = "outer-cmd"
["inner"]
mods = ["a"]
command = "inner-cmd"
["outer-cmd"]
command = ["echo", "outer"]
["inner-cmd"]
command = ["echo", "inner"]
`, "a")

		set, err := Resolve(fsys, "top", cfg, modRoot)
		require.NoError(t, err)

		cmds := set.Commands()
		require.Len(t, cmds, 2)
		assert.Equal(t, "inner-cmd", cmds[0].ID)
		assert.Equal(t, "outer-cmd", cmds[1].ID)
	})

	t.Run("same_command_collected_once", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["top"]
mods = ["inner"]
command = "shared"
["inner"]
mods = ["a"]
command = "shared"
["shared"]
command = ["echo", "hi"]
`, "a")

		set, err := Resolve(fsys, "top", cfg, modRoot)
		require.NoError(t, err)
		assert.Len(t, set.Commands(), 1)
	})

	t.Run("unknown_command_reference_fails", func(t *testing.T) {
		t.Parallel()

		fsys, cfg := loadConfig(t, `
["s"]
mods = ["a"]
command = "ghost"
`, "a")

		_, err := Resolve(fsys, "s", cfg, modRoot)
		require.ErrorIs(t, err, config.ErrKeyMissing)
	})
}

func TestEnvironment(t *testing.T) {
	t.Parallel()

	fsys, cfg := loadConfig(t, `
["top"]
mods = ["inner"]
[top.environment]
SHARED = "outer"
ONLY_OUTER = "yes"
["inner"]
mods = ["a"]
[inner.environment]
SHARED = "inner"
ONLY_INNER = "yes"
`, "a")

	set, err := Resolve(fsys, "top", cfg, modRoot)
	require.NoError(t, err)

	env := set.Environment()
	assert.Equal(t, "inner", env["SHARED"])
	assert.Equal(t, "yes", env["ONLY_OUTER"])
	assert.Equal(t, "yes", env["ONLY_INNER"])
}

func TestContains(t *testing.T) {
	t.Parallel()

	fsys, cfg := loadConfig(t, `
["top"]
mods = ["inner", "a"]
["inner"]
mods = ["b"]
`, "a", "b")

	set, err := Resolve(fsys, "top", cfg, modRoot)
	require.NoError(t, err)

	assert.True(t, set.Contains("a"))
	assert.True(t, set.Contains("b"))
	assert.True(t, set.Contains("inner"))
	assert.False(t, set.Contains("c"))
}

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

package overlay_test

import (
	"context"
	"testing"

	"github.com/ModManagerProject/mod-manager/pkg/overlay"
	"github.com/ModManagerProject/mod-manager/pkg/testing/fakes"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gamePath  = "/games/g"
	movedPath = "/games/g_mod-manager"
)

func newOverlay(t *testing.T) (*overlay.Overlay, afero.Fs, *fakes.Helper) {
	t.Helper()

	fsys := afero.NewMemMapFs()
	helper := fakes.NewHelper(fsys)
	clk := clockwork.NewFakeClock()
	fakes.AutoAdvance(t, clk)

	ov := overlay.New("g", gamePath, movedPath, overlay.Deps{
		Fs:     fsys,
		Helper: helper,
		Prober: helper,
		Exec:   fakes.NewExecutor(),
		Clock:  clk,
	})
	return ov, fsys, helper
}

func addFile(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte("data"), 0o640))
}

func TestStateClassification(t *testing.T) {
	t.Parallel()

	t.Run("normal_when_only_original_populated", func(t *testing.T) {
		t.Parallel()
		ov, fsys, _ := newOverlay(t)
		addFile(t, fsys, gamePath+"/game.bin")

		state, err := ov.State()
		require.NoError(t, err)
		assert.Equal(t, overlay.StateNormal, state)
	})

	t.Run("normal_when_moved_exists_empty", func(t *testing.T) {
		t.Parallel()
		ov, fsys, _ := newOverlay(t)
		addFile(t, fsys, gamePath+"/game.bin")
		require.NoError(t, fsys.MkdirAll(movedPath, 0o755))

		state, err := ov.State()
		require.NoError(t, err)
		assert.Equal(t, overlay.StateNormal, state)
	})

	t.Run("moved_when_original_absent", func(t *testing.T) {
		t.Parallel()
		ov, fsys, _ := newOverlay(t)
		addFile(t, fsys, movedPath+"/game.bin")

		state, err := ov.State()
		require.NoError(t, err)
		assert.Equal(t, overlay.StateMoved, state)
	})

	t.Run("moved_with_empty_original_removes_it", func(t *testing.T) {
		t.Parallel()
		ov, fsys, _ := newOverlay(t)
		require.NoError(t, fsys.MkdirAll(gamePath, 0o755))
		addFile(t, fsys, movedPath+"/game.bin")

		state, err := ov.State()
		require.NoError(t, err)
		assert.Equal(t, overlay.StateMoved, state)

		exists, err := afero.DirExists(fsys, gamePath)
		require.NoError(t, err)
		assert.False(t, exists, "leftover empty mountpoint dir should be cleaned up")
	})

	t.Run("mounted_when_probe_positive_and_moved_populated", func(t *testing.T) {
		t.Parallel()
		ov, fsys, helper := newOverlay(t)
		require.NoError(t, fsys.MkdirAll(gamePath, 0o755))
		addFile(t, fsys, movedPath+"/game.bin")
		require.NoError(t, helper.Mount(context.Background(), "g", "opts", gamePath))

		state, err := ov.State()
		require.NoError(t, err)
		assert.Equal(t, overlay.StateMounted, state)
	})

	t.Run("invalid_combinations", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name  string
			setup func(t *testing.T, fsys afero.Fs, helper *fakes.Helper)
		}{
			{"both_absent", func(*testing.T, afero.Fs, *fakes.Helper) {}},
			{"original_absent_moved_empty", func(t *testing.T, fsys afero.Fs, _ *fakes.Helper) {
				require.NoError(t, fsys.MkdirAll(movedPath, 0o755))
			}},
			{"mounted_but_moved_absent", func(t *testing.T, fsys afero.Fs, helper *fakes.Helper) {
				require.NoError(t, fsys.MkdirAll(gamePath, 0o755))
				require.NoError(t, helper.Mount(context.Background(), "g", "opts", gamePath))
			}},
			{"mounted_but_moved_empty", func(t *testing.T, fsys afero.Fs, helper *fakes.Helper) {
				require.NoError(t, fsys.MkdirAll(gamePath, 0o755))
				require.NoError(t, fsys.MkdirAll(movedPath, 0o755))
				require.NoError(t, helper.Mount(context.Background(), "g", "opts", gamePath))
			}},
			{"both_empty", func(t *testing.T, fsys afero.Fs, _ *fakes.Helper) {
				require.NoError(t, fsys.MkdirAll(gamePath, 0o755))
				require.NoError(t, fsys.MkdirAll(movedPath, 0o755))
			}},
			{"original_empty_moved_absent", func(t *testing.T, fsys afero.Fs, _ *fakes.Helper) {
				require.NoError(t, fsys.MkdirAll(gamePath, 0o755))
			}},
			{"both_non_empty", func(t *testing.T, fsys afero.Fs, _ *fakes.Helper) {
				addFile(t, fsys, gamePath+"/game.bin")
				addFile(t, fsys, movedPath+"/game.bin")
			}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				ov, fsys, helper := newOverlay(t)
				tc.setup(t, fsys, helper)

				state, err := ov.State()
				assert.Equal(t, overlay.StateInvalid, state)
				require.ErrorIs(t, err, overlay.ErrInvalidState)
			})
		}
	})
}

func TestMount(t *testing.T) {
	t.Parallel()

	t.Run("passes_options_and_verifies", func(t *testing.T) {
		t.Parallel()
		ov, fsys, helper := newOverlay(t)
		require.NoError(t, fsys.MkdirAll(gamePath, 0o755))

		err := ov.Mount(context.Background(), "x-gvfs-hide,lowerdir=/a:/b")
		require.NoError(t, err)

		require.Len(t, helper.MountCalls, 1)
		call := helper.MountCalls[0]
		assert.Equal(t, "g", call.OverlayID)
		assert.Equal(t, "x-gvfs-hide,lowerdir=/a:/b", call.Options)
		assert.Equal(t, gamePath, call.Target)
	})

	t.Run("helper_failure_is_invalid_state", func(t *testing.T) {
		t.Parallel()
		ov, _, helper := newOverlay(t)
		helper.MountErr = assert.AnError

		err := ov.Mount(context.Background(), "opts")
		require.ErrorIs(t, err, overlay.ErrInvalidState)
	})
}

func TestUnmount(t *testing.T) {
	t.Parallel()

	t.Run("unmounts_via_helper", func(t *testing.T) {
		t.Parallel()
		ov, fsys, helper := newOverlay(t)
		require.NoError(t, fsys.MkdirAll(gamePath, 0o755))
		require.NoError(t, helper.Mount(context.Background(), "g", "opts", gamePath))

		require.NoError(t, ov.Unmount(context.Background()))
		assert.Empty(t, helper.MountedTargets())
	})

	t.Run("refuses_while_in_use", func(t *testing.T) {
		t.Parallel()
		fsys := afero.NewMemMapFs()
		helper := fakes.NewHelper(fsys)
		clk := clockwork.NewFakeClock()
		fakes.AutoAdvance(t, clk)
		exec := fakes.NewExecutor()
		exec.Codes["lsof"] = []int{0}

		ov := overlay.New("g", gamePath, movedPath, overlay.Deps{
			Fs: fsys, Helper: helper, Prober: helper, Exec: exec, Clock: clk,
		})

		err := ov.Unmount(context.Background())
		require.ErrorIs(t, err, overlay.ErrInUse)
	})

	t.Run("helper_failure_is_unmount_error", func(t *testing.T) {
		t.Parallel()
		ov, _, helper := newOverlay(t)
		helper.UnmountErr = assert.AnError

		err := ov.Unmount(context.Background())
		require.ErrorIs(t, err, overlay.ErrUnmount)
	})
}

func TestEscapeMountOption(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"/plain/path", "/plain/path"},
		{"/with, comma", `/with\, comma`},
		{"/with:colon", `/with\:colon`},
		{`/with\backslash`, `/with\\backslash`},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, overlay.EscapeMountOption(tc.in))
	}
}

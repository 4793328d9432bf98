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

package overlay

import (
	"context"
	"testing"

	"github.com/ModManagerProject/mod-manager/pkg/testing/fakes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPkexecHelper(t *testing.T) {
	t.Parallel()

	t.Run("mount_invokes_elevated_helper", func(t *testing.T) {
		t.Parallel()

		exec := &fakes.Executor{}
		h := &PkexecHelper{Exec: exec}

		err := h.Mount(context.Background(), "g", "lowerdir=/a:/b", "/games/g")
		require.NoError(t, err)

		require.Len(t, exec.Calls, 1)
		assert.Equal(t, []string{
			"pkexec", HelperBin, "mount", "g", "lowerdir=/a:/b", "/games/g",
		}, exec.Calls[0])
	})

	t.Run("umount_invokes_elevated_helper", func(t *testing.T) {
		t.Parallel()

		exec := &fakes.Executor{}
		h := &PkexecHelper{Exec: exec}

		require.NoError(t, h.Unmount(context.Background(), "g"))
		require.Len(t, exec.Calls, 1)
		assert.Equal(t, []string{"pkexec", HelperBin, "umount", "g"}, exec.Calls[0])
	})

	t.Run("non_zero_exit_is_error", func(t *testing.T) {
		t.Parallel()

		exec := &fakes.Executor{DefaultCode: 1}
		h := &PkexecHelper{Exec: exec}

		require.Error(t, h.Mount(context.Background(), "g", "opts", "/g"))
		require.Error(t, h.Unmount(context.Background(), "g"))
	})

	t.Run("cleanworkdir_exit_codes_name_the_reason", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			contains string
			code     int
		}{
			{"still mounted", cleanExitMounted},
			{"preconditions", cleanExitPrecondition},
			{"removing", cleanExitRemoveFailed},
			{"code 9", 9},
		}

		for _, tc := range cases {
			exec := &fakes.Executor{DefaultCode: tc.code}
			h := &PkexecHelper{Exec: exec}

			err := h.CleanWorkDir(context.Background(), "g", "/cache/g/workdir")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		}
	})

	t.Run("cleanworkdir_success", func(t *testing.T) {
		t.Parallel()

		h := &PkexecHelper{Exec: &fakes.Executor{}}
		require.NoError(t, h.CleanWorkDir(context.Background(), "g", "/cache/g/workdir"))
	})
}

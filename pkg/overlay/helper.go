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
	"fmt"

	"github.com/ModManagerProject/mod-manager/pkg/helpers"
)

// HelperBin is the root-only helper executable. It is the single
// trusted edge of the program; everything else runs unprivileged.
const HelperBin = "mod-manager-overlayfs-helper"

const elevationBin = "pkexec"

// Exit codes of the cleanworkdir helper operation. The helper enforces
// its own preconditions and reports which one failed.
const (
	cleanExitMounted      = 2
	cleanExitPrecondition = 3
	cleanExitRemoveFailed = 4
)

// Helper is the privileged mount helper contract, keyed by a stable
// overlay identifier (the game ID).
type Helper interface {
	// Mount performs an overlay mount at target using the given option
	// string, which carries lowerdir= and optionally upperdir=,workdir=.
	Mount(ctx context.Context, overlayID, options, target string) error

	// Unmount unmounts the overlay by name.
	Unmount(ctx context.Context, overlayID string) error

	// CleanWorkDir recursively removes the index and work entries of an
	// unmounted overlay's workdir. The helper verifies the overlay is
	// not mounted, the directory is named workdir, its parent basename
	// equals overlayID and it holds exactly those two entries.
	CleanWorkDir(ctx context.Context, overlayID, workdir string) error
}

// PkexecHelper invokes the helper binary through pkexec. Production
// implementation.
type PkexecHelper struct {
	Exec helpers.CommandExecutor
}

// NewPkexecHelper returns a helper backed by the real executor.
func NewPkexecHelper() *PkexecHelper {
	return &PkexecHelper{Exec: &helpers.RealCommandExecutor{}}
}

// Mount invokes the helper's mount operation.
func (h *PkexecHelper) Mount(ctx context.Context, overlayID, options, target string) error {
	code, err := h.Exec.Run(ctx, elevationBin, HelperBin, "mount", overlayID, options, target)
	if err != nil {
		return fmt.Errorf("running mount helper: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("mount helper exited with code %d", code)
	}
	return nil
}

// Unmount invokes the helper's umount operation.
func (h *PkexecHelper) Unmount(ctx context.Context, overlayID string) error {
	code, err := h.Exec.Run(ctx, elevationBin, HelperBin, "umount", overlayID)
	if err != nil {
		return fmt.Errorf("running umount helper: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("umount helper exited with code %d", code)
	}
	return nil
}

// CleanWorkDir invokes the helper's cleanworkdir operation.
func (h *PkexecHelper) CleanWorkDir(ctx context.Context, overlayID, workdir string) error {
	code, err := h.Exec.Run(ctx, elevationBin, HelperBin, "cleanworkdir", overlayID, workdir)
	if err != nil {
		return fmt.Errorf("running cleanworkdir helper: %w", err)
	}
	switch code {
	case 0:
		return nil
	case cleanExitMounted:
		return fmt.Errorf("cleanworkdir refused: overlay %q is still mounted", overlayID)
	case cleanExitPrecondition:
		return fmt.Errorf("cleanworkdir refused: %q violates workdir preconditions", workdir)
	case cleanExitRemoveFailed:
		return fmt.Errorf("cleanworkdir failed removing entries under %q", workdir)
	default:
		return fmt.Errorf("cleanworkdir helper exited with code %d", code)
	}
}

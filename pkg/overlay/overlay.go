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

// Package overlay owns the on-disk state of one game directory: the
// classification of the current layout, the privileged mount helper
// boundary and the mountpoint probe. The state is never cached; every
// call re-reads the filesystem so crashed runs are recovered by
// classification alone.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ModManagerProject/mod-manager/pkg/helpers"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// State classifies the observable on-disk layout of a game directory
// and its moved-aside sibling.
type State int

const (
	// StateUnknown means classification itself failed.
	StateUnknown State = iota
	// StateNormal: game files are in place, nothing moved or mounted.
	StateNormal
	// StateMounted: an overlay is mounted at the game path and the
	// original files live in the moved-aside sibling.
	StateMounted
	// StateMoved: original files live in the moved-aside sibling and no
	// overlay is mounted. Left behind by a crash between move and mount.
	StateMoved
	// StateInvalid: the layout matches no recoverable combination.
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateMounted:
		return "mounted"
	case StateMoved:
		return "moved"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// settleDelay gives the kernel time to finalize an unmount before the
// moved-aside directory is renamed back. Empirical; part of the
// contract.
const settleDelay = 2 * time.Second

// cwdDelay is waited after leaving the mountpoint as working directory
// so the unmount doesn't race our own chdir.
const cwdDelay = 1 * time.Second

// Deps carries the injectable collaborators of an Overlay. Zero fields
// are filled with production defaults.
type Deps struct {
	Fs     afero.Fs
	Helper Helper
	Prober MountProber
	Exec   helpers.CommandExecutor
	Clock  clockwork.Clock
}

// FillDefaults replaces nil collaborators with production defaults.
func (d *Deps) FillDefaults() {
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.Helper == nil {
		d.Helper = NewPkexecHelper()
	}
	if d.Prober == nil {
		d.Prober = defaultProber()
	}
	if d.Exec == nil {
		d.Exec = &helpers.RealCommandExecutor{}
	}
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
}

// Overlay tracks one game's overlay identity: the original path, the
// moved-aside sibling and the overlay ID used with the helper.
type Overlay struct {
	deps      Deps
	id        string
	path      string
	movedPath string
	cwd       string
}

// New builds an Overlay for a game. The working directory at call time
// is restored after operations that have to leave the mountpoint.
func New(id, path, movedPath string, deps Deps) *Overlay {
	deps.FillDefaults()
	cwd, err := os.Getwd()
	if err != nil {
		// Fall back to / — it always exists and is outside any game dir.
		cwd = "/"
	}
	return &Overlay{
		id:        id,
		path:      path,
		movedPath: movedPath,
		deps:      deps,
		cwd:       cwd,
	}
}

// Path returns the original game directory.
func (o *Overlay) Path() string { return o.path }

// MovedPath returns the moved-aside sibling.
func (o *Overlay) MovedPath() string { return o.movedPath }

// State classifies the current on-disk layout. The only side effect is
// removing a leftover empty game directory when the files have been
// moved aside but nothing is mounted.
func (o *Overlay) State() (State, error) {
	if !o.isDir(o.path) {
		switch {
		case !o.isDir(o.movedPath):
			return StateInvalid, fmt.Errorf(
				"%w for %q: %q and %q both absent", ErrInvalidState, o.id, o.path, o.movedPath)
		case o.isEmpty(o.movedPath):
			return StateInvalid, fmt.Errorf(
				"%w for %q: %q absent and %q empty", ErrInvalidState, o.id, o.path, o.movedPath)
		default:
			return StateMoved, nil
		}
	}

	mounted, err := o.deps.Prober.IsMountpoint(o.path)
	if err != nil {
		return StateUnknown, fmt.Errorf("probing mountpoint %q: %w", o.path, err)
	}

	if mounted {
		switch {
		case !o.isDir(o.movedPath):
			return StateInvalid, fmt.Errorf(
				"%w for %q: %q mounted but %q absent", ErrInvalidState, o.id, o.path, o.movedPath)
		case o.isEmpty(o.movedPath):
			return StateInvalid, fmt.Errorf(
				"%w for %q: %q mounted but %q empty", ErrInvalidState, o.id, o.path, o.movedPath)
		default:
			return StateMounted, nil
		}
	}

	if o.isEmpty(o.path) {
		switch {
		case !o.isDir(o.movedPath):
			return StateInvalid, fmt.Errorf(
				"%w for %q: %q empty and %q absent", ErrInvalidState, o.id, o.path, o.movedPath)
		case o.isEmpty(o.movedPath):
			return StateInvalid, fmt.Errorf(
				"%w for %q: %q and %q both empty", ErrInvalidState, o.id, o.path, o.movedPath)
		default:
			// Leftover mountpoint dir from an interrupted activation.
			if err := o.deps.Fs.Remove(o.path); err != nil {
				return StateUnknown, fmt.Errorf("removing empty dir %q: %w", o.path, err)
			}
			return StateMoved, nil
		}
	}

	if o.isDir(o.movedPath) && !o.isEmpty(o.movedPath) {
		return StateInvalid, fmt.Errorf(
			"%w for %q: %q and %q both non-empty", ErrInvalidState, o.id, o.path, o.movedPath)
	}

	return StateNormal, nil
}

// Mount asks the helper to mount the overlay at the game path with the
// given option string, then verifies the mount took effect.
func (o *Overlay) Mount(ctx context.Context, options string) error {
	// The process must not hold the target open as working directory.
	o.leaveMountpoint()
	defer o.restoreCwd()

	if err := o.deps.Helper.Mount(ctx, o.id, options, o.path); err != nil {
		return fmt.Errorf("%w: mounting %q: %w", ErrInvalidState, o.id, err)
	}

	mounted, err := o.deps.Prober.IsMountpoint(o.path)
	if err != nil {
		return fmt.Errorf("probing mountpoint %q: %w", o.path, err)
	}
	if !mounted {
		return fmt.Errorf("%w: helper reported success but %q is not a mountpoint",
			ErrInvalidState, o.path)
	}

	return nil
}

// Unmount refuses when programs still use the overlay, asks the helper
// to unmount, and waits for the kernel to settle.
func (o *Overlay) Unmount(ctx context.Context) error {
	o.leaveMountpoint()
	defer o.restoreCwd()
	o.deps.Clock.Sleep(cwdDelay)

	if o.inUse(ctx) {
		return fmt.Errorf("%w: %q has open files", ErrInUse, o.path)
	}

	if err := o.deps.Helper.Unmount(ctx, o.id); err != nil {
		return fmt.Errorf("%w for %q: %w", ErrUnmount, o.id, err)
	}

	o.deps.Clock.Sleep(settleDelay)
	return nil
}

// CleanWorkDir delegates workdir cleanup to the helper.
func (o *Overlay) CleanWorkDir(ctx context.Context, workdir string) error {
	if err := o.deps.Helper.CleanWorkDir(ctx, o.id, workdir); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return nil
}

// inUse reports whether any process holds files open below the game
// path. lsof exits zero exactly when it found open files.
func (o *Overlay) inUse(ctx context.Context) bool {
	code, err := o.deps.Exec.Run(ctx, "lsof", "+f", "--", o.path)
	if err != nil {
		log.Warn().Err(err).Str("game", o.id).
			Msg("could not check for programs using the overlay, continuing")
		return false
	}
	return code == 0
}

func (o *Overlay) leaveMountpoint() {
	if err := os.Chdir("/"); err != nil {
		log.Warn().Err(err).Msg("failed to leave mountpoint working directory")
	}
}

func (o *Overlay) restoreCwd() {
	if err := os.Chdir(o.cwd); err != nil {
		log.Debug().Err(err).Str("cwd", o.cwd).Msg("could not restore working directory")
	}
}

func (o *Overlay) isDir(path string) bool {
	info, err := o.deps.Fs.Stat(path)
	return err == nil && info.IsDir()
}

func (o *Overlay) isEmpty(path string) bool {
	empty, err := afero.IsEmpty(o.deps.Fs, path)
	return err == nil && empty
}

// EscapeMountOption escapes the separator characters of the overlay
// option ABI in a path.
func EscapeMountOption(path string) string {
	r := strings.NewReplacer(`\`, `\\`, ",", `\,`, ":", `\:`)
	return r.Replace(path)
}

// IsInvalidState reports whether err is (or wraps) a state
// classification failure.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

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

// Package game drives the per-game activation state machine: moving
// the pristine game directory aside, composing and mounting the
// overlay, running configured commands and restoring the original
// layout on deactivation.
package game

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ModManagerProject/mod-manager/pkg/config"
	"github.com/ModManagerProject/mod-manager/pkg/helpers"
	"github.com/ModManagerProject/mod-manager/pkg/modset"
	"github.com/ModManagerProject/mod-manager/pkg/overlay"
	"github.com/rs/zerolog/log"
)

// mountOptsPrefix hides the overlay from file managers. Part of the
// helper ABI.
const mountOptsPrefix = "x-gvfs-hide,comment=x-gvfs-hide"

// wrapGrace is waited after a wrapped command returns so its children
// can let go of the mount before deactivation.
const wrapGrace = 2 * time.Second

// Game binds one game config to its resolved mod tree and overlay
// state machine. All state is rebuilt from disk on every invocation.
type Game struct {
	ID string

	cfg       *config.GameConfig
	paths     config.GamePaths
	tree      *modset.ModSet
	ov        *overlay.Overlay
	deps      overlay.Deps
	activeSet string

	stdin  io.Reader
	stdout io.Writer
}

// FromConfigFile loads the game's config file and resolves its active
// mod set. setOverride replaces the configured active set when non-nil;
// pointing at an empty string disables all layering.
func FromConfigFile(id string, setOverride *string, deps overlay.Deps) (*Game, error) {
	deps.FillDefaults()

	main, err := config.LoadMainConfig(deps.Fs)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadGameConfig(deps.Fs, id, main)
	if err != nil {
		return nil, err
	}

	return FromConfig(cfg, setOverride, deps)
}

// FromConfig builds a Game from an already loaded config.
func FromConfig(cfg *config.GameConfig, setOverride *string, deps overlay.Deps) (*Game, error) {
	deps.FillDefaults()

	activeSet := cfg.Active
	if setOverride != nil {
		activeSet = *setOverride
	}

	if err := deps.Fs.MkdirAll(cfg.ModRootPath, 0o750); err != nil {
		return nil, fmt.Errorf("creating mod root for game %q: %w", cfg.ID, err)
	}

	var tree *modset.ModSet
	if activeSet != "" {
		var err error
		tree, err = modset.Resolve(deps.Fs, activeSet, cfg, cfg.ModRootPath)
		if err != nil {
			return nil, err
		}
	}

	paths := config.NewGamePaths(cfg.ID, cfg.Path, cfg.ModRootPath)

	return &Game{
		ID:        cfg.ID,
		cfg:       cfg,
		paths:     paths,
		tree:      tree,
		activeSet: activeSet,
		deps:      deps,
		ov:        overlay.New(cfg.ID, paths.Path, paths.MovedPath, deps),
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}, nil
}

// SetIO replaces the interactive streams. Used by the setup flow tests.
func (g *Game) SetIO(stdin io.Reader, stdout io.Writer) {
	g.stdin = stdin
	g.stdout = stdout
}

// Paths exposes the derived per-game paths.
func (g *Game) Paths() config.GamePaths { return g.paths }

// ActiveSet returns the effective set name, empty when layering is off.
func (g *Game) ActiveSet() string { return g.activeSet }

// Environment returns the merged environment of the resolved tree for
// callers wrapping a command.
func (g *Game) Environment() map[string]string {
	if g.tree == nil {
		return map[string]string{}
	}
	return g.tree.Environment()
}

// Activate mounts the overlay in place of the game directory. A game
// already mounted is deactivated first so a changed set takes effect;
// a game found moved aside (crashed activation) is recovered by
// mounting on top of the existing moved directory.
func (g *Game) Activate(ctx context.Context, writable, isSetup bool) error {
	state, err := g.ov.State()
	if state == overlay.StateUnknown || state == overlay.StateInvalid {
		return fmt.Errorf("activating game %q: %w", g.ID, err)
	}

	if state == overlay.StateMounted {
		if err := g.Deactivate(ctx); err != nil {
			return fmt.Errorf("remounting game %q: %w", g.ID, err)
		}
		state, err = g.ov.State()
		if err != nil {
			return fmt.Errorf("activating game %q: %w", g.ID, err)
		}
	}

	if state == overlay.StateNormal {
		if err := g.deps.Fs.Rename(g.paths.Path, g.paths.MovedPath); err != nil {
			return fmt.Errorf("moving game dir for %q aside: %w", g.ID, err)
		}
	}

	if state, err = g.ov.State(); state != overlay.StateMoved {
		if err == nil {
			err = fmt.Errorf("%w: expected moved layout, got %s", overlay.ErrInvalidState, state)
		}
		return fmt.Errorf("activating game %q: %w", g.ID, err)
	}

	if err := g.deps.Fs.MkdirAll(g.paths.Path, 0o755); err != nil {
		return fmt.Errorf("creating mountpoint for game %q: %w", g.ID, err)
	}

	options, err := g.mountOptions(ctx, writable, isSetup)
	if err != nil {
		return err
	}

	if err := g.ov.Mount(ctx, options); err != nil {
		return fmt.Errorf("mounting game %q: %w", g.ID, err)
	}
	log.Info().Str("game", g.ID).Str("set", g.activeSet).Msg("overlay mounted")

	var treeCommands []*helpers.ExternalCommand
	if g.tree != nil {
		treeCommands = g.tree.Commands()
	}
	if g.shouldRunPreCommands() || len(treeCommands) > 0 {
		g.runPreCommands(treeCommands)
	}

	return nil
}

// mountOptions composes the helper option string and prepares any
// upper/work/dummy directories it references.
func (g *Game) mountOptions(ctx context.Context, writable, isSetup bool) (string, error) {
	var lowers []string
	if g.tree != nil {
		lowers = g.tree.LowerDirs()
	}
	// The moved-aside original is always the lowest-priority layer.
	lowers = append(lowers, g.paths.MovedPath)

	escaped := make([]string, 0, len(lowers)+1)
	for _, dir := range lowers {
		escaped = append(escaped, overlay.EscapeMountOption(dir))
	}

	effectiveWritable := writable || g.cfg.Writable || isSetup ||
		(g.tree != nil && g.tree.Writable())

	var writableOpts string
	switch {
	case effectiveWritable:
		upper := g.paths.UpperDir(g.activeSet, isSetup)
		dirs := []string{g.paths.CacheDir, upper, g.paths.WorkDir()}
		dirs = append(dirs, g.paths.WorkSubDirs()...)
		for _, dir := range dirs {
			if err := g.deps.Fs.MkdirAll(dir, 0o750); err != nil {
				return "", fmt.Errorf("creating %q for game %q: %w", dir, g.ID, err)
			}
		}

		if err := g.ov.CleanWorkDir(ctx, g.paths.WorkDir()); err != nil {
			return "", fmt.Errorf("cleaning workdir for game %q: %w", g.ID, err)
		}

		writableOpts = ",upperdir=" + overlay.EscapeMountOption(upper) +
			",workdir=" + overlay.EscapeMountOption(g.paths.WorkDir())
	case g.tree == nil:
		// Immutable mount without a set: overlayfs needs a second lower
		// layer, so an empty dummy is appended below the original.
		if err := g.deps.Fs.MkdirAll(g.paths.DummyDir(), 0o750); err != nil {
			return "", fmt.Errorf("creating dummy dir for game %q: %w", g.ID, err)
		}
		escaped = append(escaped, overlay.EscapeMountOption(g.paths.DummyDir()))
	}

	return mountOptsPrefix + ",lowerdir=" + strings.Join(escaped, ":") + writableOpts, nil
}

// Deactivate terminates recorded background children, unmounts the
// overlay and moves the original game directory back into place. It is
// a no-op on a game already in its normal layout.
func (g *Game) Deactivate(ctx context.Context) error {
	g.terminateChildren()

	state, err := g.ov.State()
	switch state {
	case overlay.StateNormal:
		return nil
	case overlay.StateMounted:
		if err := g.ov.Unmount(ctx); err != nil {
			return fmt.Errorf("deactivating game %q: %w", g.ID, err)
		}
	case overlay.StateMoved:
		// Crash recovery: nothing mounted, just restore the layout.
	case overlay.StateUnknown, overlay.StateInvalid:
		return fmt.Errorf("deactivating game %q: %w", g.ID, err)
	}

	if err := g.deps.Fs.Remove(g.paths.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing empty game dir %q: %w", g.paths.Path, err)
	}

	if err := g.deps.Fs.Rename(g.paths.MovedPath, g.paths.Path); err != nil {
		return fmt.Errorf("moving game files for %q back: %w", g.ID, err)
	}

	log.Info().Str("game", g.ID).Msg("overlay deactivated")
	return nil
}

// Wrap activates the overlay, runs the command with the tree's
// environment applied, and always attempts deactivation afterwards.
func (g *Game) Wrap(ctx context.Context, cmd *helpers.ExternalCommand, writable bool) error {
	if err := g.Activate(ctx, writable, false); err != nil {
		return err
	}

	cmd.MergeEnvironment(g.Environment())
	if _, err := cmd.Run(); err != nil {
		log.Error().Err(err).Str("game", g.ID).Msg("wrapped command failed")
	}

	// Give the command's children time to exit before unmounting.
	g.deps.Clock.Sleep(wrapGrace)

	return g.Deactivate(ctx)
}

// Setup activates a writable overlay with a dedicated upper dir, waits
// for the user to apply changes to the game folder, then turns the
// collected upper dir into a new mod under the mod root.
func (g *Game) Setup(ctx context.Context, newModID string) error {
	newModPath := g.paths.ModDir(newModID)
	if info, err := g.deps.Fs.Stat(newModPath); err == nil && info.IsDir() {
		return fmt.Errorf("mod %q already exists at %q: %w",
			newModID, newModPath, config.ErrValue)
	}

	if err := g.Activate(ctx, true, true); err != nil {
		return err
	}

	reader := bufio.NewReader(g.stdin)
	fmt.Fprintf(g.stdout,
		"Make the required changes to the game folder: %q\n"+
			"E.g. installing an addon or placing mod files into the folder structure.\n"+
			"Press Enter here when done setting up.\n", g.paths.Path)
	if _, err := reader.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
		log.Warn().Err(err).Msg("reading stdin failed")
	}

	for {
		err := g.Deactivate(ctx)
		if err == nil {
			break
		}
		if !errors.Is(err, overlay.ErrInUse) {
			return err
		}

		fmt.Fprintln(g.stdout,
			"The overlay is currently in use. Please close the open programs and press Enter again.")
		if _, err := reader.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			log.Warn().Err(err).Msg("reading stdin failed")
		}
	}

	if err := g.deps.Fs.Rename(g.paths.SetupUpperDir(), newModPath); err != nil {
		return fmt.Errorf("moving collected changes to %q: %w", newModPath, err)
	}

	fmt.Fprintf(g.stdout,
		"Your mod files are in %q. To apply the mod, add %q into a mod set for %q.\n",
		newModPath, newModID, g.ID)
	return nil
}

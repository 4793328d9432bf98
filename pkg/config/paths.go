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
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

const (
	// AppName is used as the subdirectory name under every XDG base dir
	// and as the suffix of the moved-aside game directory.
	AppName = "mod-manager"

	// MainCfgFile is the reserved name of the tool-wide config file. It
	// is never treated as a game config.
	MainCfgFile = "config.toml"

	// LogFile is the rotated log file name under the state dir.
	LogFile = "core.log"

	movedSuffix = "_" + AppName

	// WorkDirName is the overlay work directory below the per-game cache
	// dir. The privileged helper refuses any other basename.
	WorkDirName = "workdir"

	workIndexName = "index"
	workWorkName  = "work"

	// DummyDirName is the empty lower layer used when mounting without
	// any mod set. OverlayFS needs at least two lower dirs.
	DummyDirName = AppName + "_empty_dummy"

	setupUpperName   = "persistent_setup"
	modlessUpperName = "persistent_modless"
	persistentSuffix = "_persistent"
)

// ConfigDir returns the directory holding all per-game config files.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// GameConfigPath returns the config file path for a game ID, which may
// not exist yet.
func GameConfigPath(id string) string {
	return filepath.Join(ConfigDir(), id+".toml")
}

// DataDir returns the default root under which per-game mod roots live.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// LogDir returns the directory for log files.
func LogDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// ListGameIDs enumerates the IDs of all game config files, skipping the
// reserved main config file.
func ListGameIDs(fsys afero.Fs) ([]string, error) {
	entries, err := afero.ReadDir(fsys, ConfigDir())
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".toml") || name == MainCfgFile {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".toml"))
	}
	return ids, nil
}

// GamePaths holds every filesystem location derived for one game. All
// fields are absolute; none are configured directly except Path and
// ModRoot.
type GamePaths struct {
	// Path is the original game directory.
	Path string
	// MovedPath is the sibling the game directory is renamed to while an
	// overlay occupies Path.
	MovedPath string
	// ModRoot is the directory mod folders are looked up under.
	ModRoot string
	// CacheDir holds upper dirs, the workdir and the dummy lower dir.
	CacheDir string
	// RuntimeDir holds one marker file per running pre-command child.
	RuntimeDir string
}

// NewGamePaths derives all per-game paths from the game ID, its
// configured directory and mod root.
func NewGamePaths(id, gamePath, modRoot string) GamePaths {
	return GamePaths{
		Path:       gamePath,
		MovedPath:  gamePath + movedSuffix,
		ModRoot:    modRoot,
		CacheDir:   filepath.Join(xdg.CacheHome, AppName, id),
		RuntimeDir: filepath.Join(xdg.RuntimeDir, AppName, id),
	}
}

// WorkDir returns the overlay work directory.
func (p GamePaths) WorkDir() string {
	return filepath.Join(p.CacheDir, WorkDirName)
}

// WorkSubDirs returns the two mandated workdir subdirectories.
func (p GamePaths) WorkSubDirs() []string {
	return []string{
		filepath.Join(p.WorkDir(), workIndexName),
		filepath.Join(p.WorkDir(), workWorkName),
	}
}

// DummyDir returns the empty helper lower dir for modless mounts.
func (p GamePaths) DummyDir() string {
	return filepath.Join(p.CacheDir, DummyDirName)
}

// UpperDir returns the persistent upper directory for a writable mount.
// Setup mounts always get their own upper dir so collected changes can
// be moved out afterwards.
func (p GamePaths) UpperDir(setName string, isSetup bool) string {
	switch {
	case isSetup:
		return filepath.Join(p.CacheDir, setupUpperName)
	case setName != "":
		return filepath.Join(p.CacheDir, setName+persistentSuffix)
	default:
		return filepath.Join(p.CacheDir, modlessUpperName)
	}
}

// SetupUpperDir returns the upper directory used during the setup flow.
func (p GamePaths) SetupUpperDir() string {
	return p.UpperDir("", true)
}

// ModDir returns the directory a leaf mod must live in.
func (p GamePaths) ModDir(mod string) string {
	return filepath.Join(p.ModRoot, mod)
}

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

// Package modset resolves named mod sets from a game config into an
// ordered tree of mod folders and nested sets. Declaration order
// defines overlay priority: earlier members win.
package modset

import (
	"fmt"
	"path/filepath"

	"github.com/ModManagerProject/mod-manager/pkg/config"
	"github.com/ModManagerProject/mod-manager/pkg/helpers"
	"github.com/spf13/afero"
)

// ModSet is one resolved set table: its members in declaration order,
// its own flags and optional attached command. Derived properties fold
// over the subtree; the resolver guarantees the tree is acyclic.
type ModSet struct {
	Name    string
	members []member
	command *helpers.ExternalCommand
	env     map[string]string

	writable       bool
	runPreCommands bool
}

// member is either a leaf mod folder (set == nil) or a nested set.
type member struct {
	set  *ModSet
	name string
	path string
}

// Resolve builds the tree for the named set. Leaf mod folders are
// verified to exist under modRoot at resolution time.
func Resolve(fsys afero.Fs, name string, cfg *config.GameConfig, modRoot string) (*ModSet, error) {
	return resolve(fsys, name, cfg, modRoot, map[string]bool{name: true})
}

func resolve(
	fsys afero.Fs,
	name string,
	cfg *config.GameConfig,
	modRoot string,
	ancestors map[string]bool,
) (*ModSet, error) {
	spec, err := cfg.SetSpec(name)
	if err != nil {
		return nil, err
	}

	set := &ModSet{
		Name:           name,
		writable:       spec.Writable,
		runPreCommands: spec.RunPreCommand,
		env:            spec.Environment,
	}

	for _, modName := range spec.Mods {
		if !cfg.HasTable(modName) {
			modPath := filepath.Join(modRoot, modName)
			info, statErr := fsys.Stat(modPath)
			if statErr != nil || !info.IsDir() {
				return nil, fmt.Errorf("mod %q of set %q in game %q (%s): %w",
					modName, name, cfg.ID, modPath, config.ErrFolderMissing)
			}
			set.members = append(set.members, member{name: modName, path: modPath})
			continue
		}

		if ancestors[modName] {
			return nil, fmt.Errorf("set %q in game %q includes ancestor %q: %w",
				name, cfg.ID, modName, config.ErrRecursion)
		}

		ancestors[modName] = true
		nested, err := resolve(fsys, modName, cfg, modRoot, ancestors)
		if err != nil {
			return nil, fmt.Errorf("resolving set %q in game %q: %w", name, cfg.ID, err)
		}
		delete(ancestors, modName)

		set.members = append(set.members, member{name: modName, set: nested})
	}

	if spec.Command != "" {
		cmdSpec, err := cfg.CommandSpec(spec.Command)
		if err != nil {
			return nil, err
		}
		set.command = helpers.CommandFromSpec(spec.Command, &cmdSpec)
	}

	return set, nil
}

// Writable reports whether this set or any nested set asks for a
// writable mount.
func (s *ModSet) Writable() bool {
	if s.writable {
		return true
	}
	for _, m := range s.members {
		if m.set != nil && m.set.Writable() {
			return true
		}
	}
	return false
}

// ShouldRunPreCommands reports whether this set or any nested set
// enables the global pre-command list.
func (s *ModSet) ShouldRunPreCommands() bool {
	if s.runPreCommands {
		return true
	}
	for _, m := range s.members {
		if m.set != nil && m.set.ShouldRunPreCommands() {
			return true
		}
	}
	return false
}

// Commands returns every command attached in the subtree, nested sets
// first in declaration order, deduplicated by command ID.
func (s *ModSet) Commands() []*helpers.ExternalCommand {
	var list []*helpers.ExternalCommand
	seen := map[string]bool{}
	s.appendCommands(&list, seen)
	return list
}

func (s *ModSet) appendCommands(list *[]*helpers.ExternalCommand, seen map[string]bool) {
	for _, m := range s.members {
		if m.set != nil {
			m.set.appendCommands(list, seen)
		}
	}
	if s.command != nil && !seen[s.command.ID] {
		seen[s.command.ID] = true
		*list = append(*list, s.command)
	}
}

// Environment returns the merged environment of the subtree. Nested
// sets override the containing set's entries.
func (s *ModSet) Environment() map[string]string {
	merged := map[string]string{}
	for k, v := range s.env {
		merged[k] = v
	}
	for _, m := range s.members {
		if m.set == nil {
			continue
		}
		for k, v := range m.set.Environment() {
			merged[k] = v
		}
	}
	return merged
}

// LowerDirs returns the ordered overlay lower dirs of the subtree:
// leaves contribute their mod folder, nested sets are spliced in place.
// Duplicates keep their first (highest-priority) occurrence.
func (s *ModSet) LowerDirs() []string {
	var dirs []string
	seen := map[string]bool{}
	s.appendLowerDirs(&dirs, seen)
	return dirs
}

func (s *ModSet) appendLowerDirs(dirs *[]string, seen map[string]bool) {
	for _, m := range s.members {
		if m.set != nil {
			m.set.appendLowerDirs(dirs, seen)
			continue
		}
		if !seen[m.path] {
			seen[m.path] = true
			*dirs = append(*dirs, m.path)
		}
	}
}

// Contains reports whether the subtree references the named mod or set.
func (s *ModSet) Contains(name string) bool {
	for _, m := range s.members {
		if m.name == name {
			return true
		}
		if m.set != nil && m.set.Contains(name) {
			return true
		}
	}
	return false
}

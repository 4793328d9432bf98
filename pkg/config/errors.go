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

import "errors"

// Domain error values raised while reading game configuration. Callers
// match them with errors.Is; messages carry the game and key context.
var (
	// ErrKeyMissing is returned when a required key or referenced table
	// is absent from a game config file.
	ErrKeyMissing = errors.New("required config key missing")

	// ErrArrayEmpty is returned when a key that requires at least one
	// element (mods, command argv) holds an empty array.
	ErrArrayEmpty = errors.New("config array is empty")

	// ErrValue is returned when a key holds a value of the wrong type or
	// an otherwise unusable value.
	ErrValue = errors.New("invalid config value")

	// ErrFolderMissing is returned when a mod named by a set has no
	// directory under the mod root.
	ErrFolderMissing = errors.New("mod folder missing")

	// ErrRecursion is returned when a mod set transitively includes
	// itself.
	ErrRecursion = errors.New("mod set includes itself")
)

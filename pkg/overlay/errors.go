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

import "errors"

var (
	// ErrInvalidState is returned when the game and moved-aside
	// directories match no valid classification, or a helper call
	// failed at the privileged boundary.
	ErrInvalidState = errors.New("invalid overlay state")

	// ErrInUse is returned when unmounting is refused because programs
	// still hold files open below the mountpoint.
	ErrInUse = errors.New("overlay is in use")

	// ErrUnmount is returned when the unmount helper failed.
	ErrUnmount = errors.New("unmount failed")
)

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

package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/ModManagerProject/mod-manager/pkg/config"
	"github.com/ModManagerProject/mod-manager/pkg/overlay"
	"github.com/rs/zerolog/log"
)

// Load returns the games an action applies to. A non-empty id selects
// exactly that game; otherwise every config file is enumerated and
// games that fail to construct are downgraded to a warning and
// skipped. setOverride only applies when a single game is selected.
func Load(id string, setOverride *string, deps overlay.Deps) ([]*Game, error) {
	if id != "" {
		g, err := FromConfigFile(id, setOverride, deps)
		if err != nil {
			return nil, err
		}
		return []*Game{g}, nil
	}

	ids, err := config.ListGameIDs(deps.Fs)
	if err != nil {
		return nil, fmt.Errorf("listing game configs: %w", err)
	}

	games := make([]*Game, 0, len(ids))
	for _, gameID := range ids {
		g, err := FromConfigFile(gameID, nil, deps)
		if err != nil {
			log.Warn().Err(err).Str("game", gameID).
				Msg("skipping game, could not load config")
			continue
		}
		games = append(games, g)
	}
	return games, nil
}

// ActivateAll activates each game in turn with per-game error
// isolation: a failing game is deactivated again best-effort so its
// overlay isn't leaked, and the pass continues with the next game.
// All errors are surfaced joined.
func ActivateAll(ctx context.Context, games []*Game, writable bool) error {
	var errs []error
	for _, g := range games {
		err := g.Activate(ctx, writable, false)
		if err == nil {
			continue
		}

		log.Error().Err(err).Str("game", g.ID).Msg("activation failed")
		errs = append(errs, fmt.Errorf("activating game %q: %w", g.ID, err))

		if cleanupErr := g.Deactivate(ctx); cleanupErr != nil {
			log.Error().Err(cleanupErr).Str("game", g.ID).Msg("cleanup deactivation failed")
			errs = append(errs, fmt.Errorf("cleanup of game %q: %w", g.ID, cleanupErr))
		}
	}
	return errors.Join(errs...)
}

// DeactivateAll deactivates every game, continuing past failures and
// returning them joined.
func DeactivateAll(ctx context.Context, games []*Game) error {
	var errs []error
	for _, g := range games {
		if err := g.Deactivate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("deactivating game %q: %w", g.ID, err))
		}
	}
	return errors.Join(errs...)
}

// RunWithCleanup runs an action against a single game and attempts a
// best-effort deactivation when it fails, surfacing both errors.
func RunWithCleanup(ctx context.Context, g *Game, action func() error) error {
	err := action()
	if err == nil {
		return nil
	}

	if cleanupErr := g.Deactivate(ctx); cleanupErr != nil {
		log.Error().Err(cleanupErr).Str("game", g.ID).Msg("cleanup deactivation failed")
		return errors.Join(err, fmt.Errorf("cleanup of game %q: %w", g.ID, cleanupErr))
	}
	return err
}

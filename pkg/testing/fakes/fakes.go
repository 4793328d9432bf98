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

// Package fakes provides in-memory stand-ins for the privileged mount
// boundary so the activation state machine can be exercised on an
// afero.MemMapFs without real mounts or root.
package fakes

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

// MountCall records one helper mount invocation.
type MountCall struct {
	OverlayID string
	Options   string
	Target    string
}

// Helper simulates the privileged overlay helper against an afero
// filesystem. It records calls and tracks which overlays are mounted;
// combined with its IsMountpoint it drives the state machine the same
// way the real helper and probe do.
type Helper struct {
	Fs afero.Fs

	MountErr   error
	UnmountErr error
	CleanErr   error

	mu         sync.Mutex
	mounted    map[string]string
	MountCalls []MountCall
	CleanCalls []string
}

// NewHelper returns a helper bound to the given filesystem.
func NewHelper(fsys afero.Fs) *Helper {
	return &Helper{Fs: fsys, mounted: map[string]string{}}
}

// Mount implements overlay.Helper.
func (h *Helper) Mount(_ context.Context, overlayID, options, target string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.MountCalls = append(h.MountCalls, MountCall{overlayID, options, target})
	if h.MountErr != nil {
		return h.MountErr
	}
	h.mounted[overlayID] = target
	return nil
}

// Unmount implements overlay.Helper.
func (h *Helper) Unmount(_ context.Context, overlayID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.UnmountErr != nil {
		return h.UnmountErr
	}
	delete(h.mounted, overlayID)
	return nil
}

// CleanWorkDir implements overlay.Helper, enforcing the same
// preconditions as the real helper.
func (h *Helper) CleanWorkDir(_ context.Context, overlayID, workdir string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.CleanCalls = append(h.CleanCalls, workdir)
	if h.CleanErr != nil {
		return h.CleanErr
	}

	if _, stillMounted := h.mounted[overlayID]; stillMounted {
		return fmt.Errorf("overlay %q is still mounted", overlayID)
	}
	if filepath.Base(workdir) != "workdir" ||
		filepath.Base(filepath.Dir(workdir)) != overlayID {
		return fmt.Errorf("workdir %q violates naming preconditions", workdir)
	}

	entries, err := afero.ReadDir(h.Fs, workdir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Name() != "index" && entry.Name() != "work" {
			return fmt.Errorf("unexpected entry %q in workdir", entry.Name())
		}
	}
	if len(entries) == 1 {
		return fmt.Errorf("workdir %q must hold both index and work", workdir)
	}
	for _, entry := range entries {
		if err := h.Fs.RemoveAll(filepath.Join(workdir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// IsMountpoint implements overlay.MountProber using the helper's
// mount table.
func (h *Helper) IsMountpoint(path string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, target := range h.mounted {
		if target == path {
			return true, nil
		}
	}
	return false, nil
}

// MountedTargets returns the currently mounted targets.
func (h *Helper) MountedTargets() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	targets := make([]string, 0, len(h.mounted))
	for _, t := range h.mounted {
		targets = append(targets, t)
	}
	return targets
}

// LastMountOptions returns the option string of the most recent mount.
func (h *Helper) LastMountOptions() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.MountCalls) == 0 {
		return ""
	}
	return h.MountCalls[len(h.MountCalls)-1].Options
}

// Executor is a scripted helpers.CommandExecutor. Exit codes are
// popped per command name; missing entries yield DefaultCode.
type Executor struct {
	mu          sync.Mutex
	Codes       map[string][]int
	DefaultCode int
	Calls       [][]string
}

// NewExecutor returns an executor whose commands exit 1 by default,
// which reads as "nothing found" for probes like lsof.
func NewExecutor() *Executor {
	return &Executor{Codes: map[string][]int{}, DefaultCode: 1}
}

// Run implements helpers.CommandExecutor.
func (e *Executor) Run(_ context.Context, name string, args ...string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls = append(e.Calls, append([]string{name}, args...))
	if queue, ok := e.Codes[name]; ok && len(queue) > 0 {
		code := queue[0]
		e.Codes[name] = queue[1:]
		return code, nil
	}
	return e.DefaultCode, nil
}

// AutoAdvance keeps a fake clock moving so settling sleeps return
// without real waiting. Stops at test cleanup.
func AutoAdvance(t *testing.T, clk *clockwork.FakeClock) {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				clk.Advance(5 * time.Second)
			}
		}
	}()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// reloadDebounce coalesces the burst of events a single save produces.
const reloadDebounce = 50 * time.Millisecond

// Watch reloads the config at path whenever it is written or (re)created and
// hands the result to onChange. Decode and validation failures go to onErr,
// which may be nil, and the previous config stays in effect.
//
// The parent directory is watched rather than the file so that editors that
// save by rename are picked up. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config), onErr func(error)) error {
	if onErr == nil {
		onErr = func(error) {}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(reloadDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onErr(fmt.Errorf("config watcher: %w", err))

		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				onErr(err)
				continue
			}
			onChange(cfg)
		}
	}
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"

	"gowhiteboard/internal/config"
)

// ErrBackendUnavailable is returned for backends this build cannot provide.
var ErrBackendUnavailable = errors.New("storage: backend unavailable in this build")

// Open builds the configured backend wrapped in its quota. The prefs backend
// needs a running Fyne app and is opened by the UI instead.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	var s Store
	switch cfg.Backend {
	case config.BackendMemory:
		s = NewMemory()
	case config.BackendFile, config.BackendSQLite:
		path, err := cfg.ResolvedPath()
		if err != nil {
			return nil, err
		}
		if cfg.Backend == config.BackendFile {
			f, err := OpenFile(path)
			if err != nil {
				return nil, err
			}
			s = f
		} else {
			db, err := OpenSQLite(ctx, path)
			if err != nil {
				return nil, err
			}
			s = db
		}
	case config.BackendPrefs:
		return nil, fmt.Errorf("%w: %q", ErrBackendUnavailable, cfg.Backend)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	return WithQuota(s, cfg.QuotaBytes), nil
}

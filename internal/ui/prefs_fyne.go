//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"

	"gowhiteboard/internal/storage"
)

// prefsStore keeps values in the Fyne app preferences, which the driver
// persists per application id. An empty string reads as missing.
type prefsStore struct {
	mu     sync.Mutex
	p      fyne.Preferences
	closed bool
}

var _ storage.Store = (*prefsStore)(nil)

func newPrefsStore(p fyne.Preferences) *prefsStore { return &prefsStore{p: p} }

func (s *prefsStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, storage.ErrClosed
	}
	v := s.p.String(key)
	return v, v != "", nil
}

func (s *prefsStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.p.SetString(key, value)
	return nil
}

func (s *prefsStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.p.RemoveValue(key)
	return nil
}

func (s *prefsStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

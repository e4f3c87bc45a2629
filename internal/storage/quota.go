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
)

// ErrQuotaExceeded is returned when a write would exceed the store quota.
var ErrQuotaExceeded = errors.New("storage: quota exceeded")

// Quota rejects writes whose key plus value exceed MaxBytes, like a browser
// origin's storage quota. Reads and deletes pass through.
type Quota struct {
	Store
	MaxBytes int
}

// WithQuota wraps s. maxBytes <= 0 returns s unchanged.
func WithQuota(s Store, maxBytes int) Store {
	if maxBytes <= 0 {
		return s
	}
	return &Quota{Store: s, MaxBytes: maxBytes}
}

func (q *Quota) Set(ctx context.Context, key, value string) error {
	if n := len(key) + len(value); n > q.MaxBytes {
		return fmt.Errorf("%w: %d bytes > %d", ErrQuotaExceeded, n, q.MaxBytes)
	}
	return q.Store.Set(ctx, key, value)
}

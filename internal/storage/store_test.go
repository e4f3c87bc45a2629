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
	"strings"
	"testing"
)

// exerciseStore runs the contract every backend must satisfy.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "whiteboard.drawing", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "whiteboard.drawing", "v2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := s.Get(ctx, "whiteboard.drawing")
	if err != nil || !ok || v != "v2" {
		t.Fatalf("Get = %q ok=%v err=%v", v, ok, err)
	}
	if err := s.Set(ctx, "empty", ""); err != nil {
		t.Fatalf("Set empty: %v", err)
	}
	if v, ok, _ := s.Get(ctx, "empty"); !ok || v != "" {
		t.Fatalf("empty value must be stored, got %q ok=%v", v, ok)
	}
	if err := s.Delete(ctx, "empty"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "never-set"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "empty"); ok {
		t.Fatalf("deleted key still present")
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	exerciseStore(t, m)
	_ = m.Close()
	if err := m.Set(context.Background(), "k", "v"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Set after Close = %v, want ErrClosed", err)
	}
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemory().Set(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Set with cancelled ctx = %v", err)
	}
}

func TestQuotaRejectsOversizedWrites(t *testing.T) {
	inner := NewMemory()
	q := WithQuota(inner, 16)
	ctx := context.Background()
	if err := q.Set(ctx, "k", "small"); err != nil {
		t.Fatalf("small write: %v", err)
	}
	err := q.Set(ctx, "k", strings.Repeat("x", 32))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("want ErrQuotaExceeded, got %v", err)
	}
	if v, _, _ := q.Get(ctx, "k"); v != "small" {
		t.Fatalf("rejected write must not change the stored value, got %q", v)
	}
	if WithQuota(inner, 0) != Store(inner) {
		t.Fatalf("zero quota should return the store unchanged")
	}
}

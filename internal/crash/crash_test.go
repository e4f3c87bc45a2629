/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"strings"
	"testing"

	"gowhiteboard/internal/shape"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Go Whiteboard Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestWriteReportCreatesFileInTargetDir(t *testing.T) {
	dir := t.TempDir()
	path, err := writeReport(&Target{Dir: dir}, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if !strings.HasPrefix(path, dir) {
		t.Fatalf("expected crash report under %s, got %s", dir, path)
	}
}

func TestAutosaveWritesLoadableDrawing(t *testing.T) {
	want := []shape.Shape{
		&shape.Stroke{Points: []shape.Point{shape.P(1, 2, shape.Black), shape.P(3, 4, shape.Black)}},
		&shape.Rect{X: 10, Y: 10, Width: -5, Height: 6, Color: shape.White},
	}
	path, err := autosave(&Target{Dir: t.TempDir(), Snapshot: func() []shape.Shape { return want }})
	if err != nil {
		t.Fatalf("autosave: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := shape.Deserialize(b)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !shape.Equal(got, want) {
		t.Fatalf("autosave mismatch: %#v", got)
	}
}

func TestAutosaveSurvivesPanickingSnapshot(t *testing.T) {
	_, err := autosave(&Target{Dir: t.TempDir(), Snapshot: func() []shape.Shape { panic("again") }})
	if err == nil || !strings.Contains(err.Error(), "snapshot panicked") {
		t.Fatalf("err = %v", err)
	}
}

func TestAutosaveSkipsEmptyDrawing(t *testing.T) {
	if _, err := autosave(&Target{Dir: t.TempDir(), Snapshot: func() []shape.Shape { return nil }}); err == nil {
		t.Fatalf("expected error for empty drawing")
	}
}

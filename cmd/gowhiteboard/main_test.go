/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gowhiteboard/internal/config"
)

func testConfig(t *testing.T, backend string) config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Storage.Backend = backend
	cfg.Storage.Path = filepath.Join(dir, "board."+backend)
	return cfg
}

func runOut(t *testing.T, cfg config.AppConfig, args ...string) (int, string) {
	t.Helper()
	var buf bytes.Buffer
	code := run(cfg, args, &buf)
	return code, buf.String()
}

const legacyDrawing = `[
  {"points":[{"x":1,"y":1,"color":"black"},{"x":20,"y":5,"color":"black"}]},
  {"x":40,"y":40,"width":-10,"height":15,"color":"red"}
]`

func TestImportInfoExportClear(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			src := filepath.Join(t.TempDir(), "legacy.json")
			if err := os.WriteFile(src, []byte(legacyDrawing), 0o644); err != nil {
				t.Fatal(err)
			}

			if code, out := runOut(t, cfg, "import", src); code != 0 || !strings.Contains(out, "Imported 2 shapes") {
				t.Fatalf("import: %d %q", code, out)
			}
			code, out := runOut(t, cfg, "info")
			if code != 0 || !strings.Contains(out, "Shapes: 2 (1 strokes, 1 rectangles)") {
				t.Fatalf("info: %d %q", code, out)
			}
			if backend == config.BackendSQLite && !strings.Contains(out, "Schema: v") {
				t.Fatalf("sqlite info lacks schema version: %q", out)
			}

			png := filepath.Join(t.TempDir(), "out", "board.png")
			if code, out := runOut(t, cfg, "export", png); code != 0 {
				t.Fatalf("export: %d %q", code, out)
			}
			if st, err := os.Stat(png); err != nil || st.Size() == 0 {
				t.Fatalf("export file: %v", err)
			}

			if code, _ := runOut(t, cfg, "clear"); code != 0 {
				t.Fatalf("clear failed")
			}
			if _, out := runOut(t, cfg, "info"); !strings.Contains(out, "Drawing: empty") {
				t.Fatalf("info after clear: %q", out)
			}
		})
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	src := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(src, []byte(`{"format":"nope"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, out := runOut(t, cfg, "import", src); code != 1 || !strings.Contains(out, "Error:") {
		t.Fatalf("import garbage: %d %q", code, out)
	}
}

func TestImportOverQuotaFails(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	cfg.Storage.QuotaBytes = 16
	src := filepath.Join(t.TempDir(), "legacy.json")
	if err := os.WriteFile(src, []byte(legacyDrawing), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, out := runOut(t, cfg, "import", src); code != 1 || !strings.Contains(out, "quota") {
		t.Fatalf("import over quota: %d %q", code, out)
	}
}

func TestUsageAndArgs(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	if code, out := runOut(t, cfg); code != 0 || !strings.Contains(out, "Usage:") {
		t.Fatalf("no args: %d %q", code, out)
	}
	if code, _ := runOut(t, cfg, "bogus"); code != 2 {
		t.Fatalf("unknown command code = %d", code)
	}
	if code, _ := runOut(t, cfg, "export"); code != 2 {
		t.Fatalf("export without path code = %d", code)
	}
	if code, out := runOut(t, cfg, "version"); code != 0 || !strings.Contains(out, "Go Whiteboard") {
		t.Fatalf("version: %d %q", code, out)
	}
}

func TestPrefsBackendNeedsUI(t *testing.T) {
	cfg := testConfig(t, config.BackendPrefs)
	if code, out := runOut(t, cfg, "info"); code != 1 || !strings.Contains(out, "ui command") {
		t.Fatalf("prefs info: %d %q", code, out)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.Canvas.Width = 0
	if code, _ := runOut(t, cfg, "info"); code != 2 {
		t.Fatalf("invalid config code = %d", code)
	}
}

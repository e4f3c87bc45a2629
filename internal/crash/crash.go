/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report plus an autosave of the
// drawing, then exits.
package crash

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "gowhiteboard/internal/log"
	"gowhiteboard/internal/shape"
	"gowhiteboard/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

const stampLayout = "20060102-150405"

// Target tells Recover where to write and what to save. A nil Target or an
// empty Dir writes the report to the system temp dir and skips the autosave.
type Target struct {
	Dir string
	// Snapshot returns the committed shapes. It may be nil.
	Snapshot func() []shape.Shape
}

// Recover captures a panic, logs an error with stacktrace,
// writes an error report file, and attempts a crash-safe autosave
// of the drawing.
//
// Usage: defer crash.Recover(target)
func Recover(t *Target) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(t, r, stack)
		if err != nil {
			l.Error("crash report failed", slog.Any("err", err), slog.String("path", reportPath))
		}
		if t != nil && t.Dir != "" && t.Snapshot != nil {
			if path, err := autosave(t); err != nil {
				l.Error("autosave failed", slog.Any("err", err))
			} else {
				l.Info("autosave written", slog.String("path", path))
			}
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

func reportDir(t *Target) string {
	if t == nil || t.Dir == "" {
		return os.TempDir()
	}
	_ = os.MkdirAll(t.Dir, 0o755)
	return t.Dir
}

func writeReport(t *Target, panicVal any, stack []byte) (string, error) {
	path := filepath.Join(reportDir(t), fmt.Sprintf("crash-%s.log", time.Now().Format(stampLayout)))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Go Whiteboard Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "Session: %s\n", applog.Session())
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}

// autosave writes the drawing in the regular wire format so it can be
// brought back with the import command.
func autosave(t *Target) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("snapshot panicked: %v", r)
		}
	}()
	shapes := t.Snapshot()
	if len(shapes) == 0 {
		return "", errors.New("nothing to save")
	}
	data, err := shape.Serialize(shapes)
	if err != nil {
		return "", fmt.Errorf("serialize: %w", err)
	}
	path = filepath.Join(reportDir(t), fmt.Sprintf("autosave-%s.json", time.Now().Format(stampLayout)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return path, fmt.Errorf("write autosave: %w", err)
	}
	return path, nil
}

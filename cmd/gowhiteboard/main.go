/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gowhiteboard/internal/config"
	"gowhiteboard/internal/crash"
	"gowhiteboard/internal/export"
	applog "gowhiteboard/internal/log"
	"gowhiteboard/internal/shape"
	"gowhiteboard/internal/storage"
	"gowhiteboard/internal/ui"
	"gowhiteboard/internal/version"
)

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Go Whiteboard")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  gowhiteboard version|-v|--version   Show version")
	_, _ = fmt.Fprintln(w, "  gowhiteboard ui                     Launch desktop UI (build with -tags fyne)")
	_, _ = fmt.Fprintln(w, "  gowhiteboard info                   Summarize the saved drawing")
	_, _ = fmt.Fprintln(w, "  gowhiteboard export <out>           Export the saved drawing (.png .bmp .tiff .svg .pdf)")
	_, _ = fmt.Fprintln(w, "  gowhiteboard import <file>          Replace the saved drawing with a drawing file")
	_, _ = fmt.Fprintln(w, "  gowhiteboard clear                  Delete the saved drawing")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Config is read from GWB_CONFIG or the per-user config dir; GWB_* env vars override it.")
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}

	var crashDir string
	if dir, err := config.ConfigDir(); err == nil {
		crashDir = filepath.Join(dir, storage.BackupsDirName)
	}
	defer crash.Recover(&crash.Target{Dir: crashDir})

	if code := run(cfg, os.Args[1:], os.Stdout); code != 0 {
		os.Exit(code)
	}
}

// run executes one command and returns the process exit code.
func run(cfg config.AppConfig, args []string, out io.Writer) int {
	l := applog.WithComponent("cli")
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage(out)
		return 0
	}
	if err := cfg.Validate(); err != nil {
		_, _ = fmt.Fprintln(out, "Error: invalid config:", err)
		return 2
	}
	ctx := context.Background()

	switch args[0] {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(out, "Go Whiteboard")
		_, _ = fmt.Fprintln(out, version.String())
		return 0
	case "ui":
		if err := ui.Run(cfg); err != nil {
			_, _ = fmt.Fprintln(out, "Error:", err)
			return 1
		}
		return 0
	case "info":
		return withStore(ctx, cfg, out, func(s storage.Store) error {
			return info(ctx, cfg, s, out)
		})
	case "export":
		if len(args) < 2 {
			_, _ = fmt.Fprintln(out, "export requires <out>")
			usage(out)
			return 2
		}
		dst := args[1]
		return withStore(ctx, cfg, out, func(s storage.Store) error {
			shapes, _, err := loadShapes(ctx, cfg, s)
			if err != nil {
				return err
			}
			fn, err := export.ByExtension(dst)
			if err != nil {
				return err
			}
			bg, _ := shape.ParseHex(cfg.Canvas.Background)
			if err := fn(shapes, dst, export.Options{Background: bg, LineWidth: cfg.Canvas.LineWidth}); err != nil {
				return err
			}
			l.Info("exported", slog.String("path", dst), slog.Int("shapes", len(shapes)))
			_, _ = fmt.Fprintf(out, "Exported %d shapes to %s\n", len(shapes), dst)
			return nil
		})
	case "import":
		if len(args) < 2 {
			_, _ = fmt.Fprintln(out, "import requires <file>")
			usage(out)
			return 2
		}
		src := args[1]
		return withStore(ctx, cfg, out, func(s storage.Store) error {
			raw, err := os.ReadFile(src)
			if err != nil {
				return fmt.Errorf("read %s: %w", src, err)
			}
			shapes, err := shape.Deserialize(raw)
			if err != nil {
				return err
			}
			data, err := shape.Serialize(shapes)
			if err != nil {
				return err
			}
			if err := s.Set(ctx, cfg.Storage.Key, string(data)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Imported %d shapes\n", len(shapes))
			return nil
		})
	case "clear":
		return withStore(ctx, cfg, out, func(s storage.Store) error {
			if err := s.Delete(ctx, cfg.Storage.Key); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, "Cleared saved drawing")
			return nil
		})
	}

	usage(out)
	return 2
}

// withStore opens the configured store for one command and maps errors to
// exit codes.
func withStore(ctx context.Context, cfg config.AppConfig, out io.Writer, fn func(storage.Store) error) int {
	l := applog.WithComponent("cli")
	s, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		l.Error("open store failed", slog.Any("err", err))
		_, _ = fmt.Fprintln(out, "Error:", err)
		if errors.Is(err, storage.ErrBackendUnavailable) {
			_, _ = fmt.Fprintln(out, "The prefs backend is only reachable from the ui command.")
		}
		return 1
	}
	defer func() {
		if err := s.Close(); err != nil {
			l.Warn("close store", slog.Any("err", err))
		}
	}()
	if err := fn(s); err != nil {
		l.Error("command failed", slog.Any("err", err))
		_, _ = fmt.Fprintln(out, "Error:", err)
		return 1
	}
	return 0
}

func loadShapes(ctx context.Context, cfg config.AppConfig, s storage.Store) ([]shape.Shape, bool, error) {
	raw, ok, err := s.Get(ctx, cfg.Storage.Key)
	if err != nil || !ok {
		return nil, ok, err
	}
	shapes, err := shape.Deserialize([]byte(raw))
	if err != nil {
		return nil, true, err
	}
	return shapes, true, nil
}

func info(ctx context.Context, cfg config.AppConfig, s storage.Store, out io.Writer) error {
	path, _ := cfg.Storage.ResolvedPath()
	_, _ = fmt.Fprintf(out, "Backend: %s\n", cfg.Storage.Backend)
	if cfg.Storage.Backend != config.BackendMemory {
		_, _ = fmt.Fprintf(out, "Path: %s\n", path)
	}
	_, _ = fmt.Fprintf(out, "Key: %s\n", cfg.Storage.Key)
	inner := s
	if q, ok := s.(*storage.Quota); ok {
		inner = q.Store
	}
	if db, ok := inner.(*storage.SQLite); ok {
		if v, err := db.SchemaVersion(ctx); err == nil {
			_, _ = fmt.Fprintf(out, "Schema: v%d\n", v)
		}
	}

	shapes, ok, err := loadShapes(ctx, cfg, s)
	var perr *shape.ParseError
	switch {
	case errors.As(err, &perr):
		_, _ = fmt.Fprintf(out, "Drawing: unreadable (%v)\n", perr)
		return nil
	case err != nil:
		return err
	case !ok:
		_, _ = fmt.Fprintln(out, "Drawing: empty")
		return nil
	}
	strokes, rects := 0, 0
	for _, sh := range shapes {
		switch sh.Kind() {
		case shape.KindStroke:
			strokes++
		case shape.KindRect:
			rects++
		}
	}
	_, _ = fmt.Fprintf(out, "Shapes: %d (%d strokes, %d rectangles)\n", len(shapes), strokes, rects)
	if b, ok := shape.Bounds(shapes); ok {
		_, _ = fmt.Fprintf(out, "Bounds: %gx%g at (%g,%g)\n", b.W, b.H, b.X, b.Y)
	}
	return nil
}

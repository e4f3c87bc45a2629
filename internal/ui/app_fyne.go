//go:build fyne && cgo

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
	"fmt"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"gowhiteboard/internal/board"
	"gowhiteboard/internal/config"
	"gowhiteboard/internal/crash"
	"gowhiteboard/internal/export"
	applog "gowhiteboard/internal/log"
	"gowhiteboard/internal/render"
	"gowhiteboard/internal/shape"
	"gowhiteboard/internal/storage"
	"gowhiteboard/internal/version"
)

const appID = "io.github.gowhiteboard"

// Run starts the desktop whiteboard and blocks until the window closes.
func Run(cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("backend", cfg.Storage.Backend))

	fyneApp := app.NewWithID(appID)
	w := fyneApp.NewWindow("Go Whiteboard")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", cfg.Canvas.Width)
	winH := prefs.IntWithFallback("window.height", cfg.Canvas.Height)
	if winW < 400 {
		winW = 400
	}
	if winH < 300 {
		winH = 300
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	ctx := context.Background()
	store, err := openStore(ctx, cfg.Storage, prefs)
	if err != nil {
		// The board still works; it just forgets on exit.
		l.Warn("storage unavailable, using memory", slog.Any("err", err))
		store = storage.NewMemory()
	}

	fg, _ := shape.ParseHex(cfg.Canvas.Foreground)
	bg, _ := shape.ParseHex(cfg.Canvas.Background)
	status := widget.NewLabel("Ready")
	bw, err := NewBoardWidget(winW, winH, render.Style{LineWidth: cfg.Canvas.LineWidth}, store, board.Options{
		Foreground: fg,
		Background: bg,
		Key:        cfg.Storage.Key,
		Timeout:    cfg.Storage.Timeout(),
	})
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create board: %w", err)
	}
	bw.OnStatus = status.SetText
	ctrl := bw.Controller()

	var crashDir string
	if dir, err := config.ConfigDir(); err == nil {
		crashDir = filepath.Join(dir, storage.BackupsDirName)
	}
	defer crash.Recover(&crash.Target{Dir: crashDir, Snapshot: ctrl.Snapshot})

	if err := ctrl.Load(ctx); err != nil {
		l.Error("load failed", slog.Any("err", err))
		status.SetText("Could not read saved drawing; started with an empty board")
	} else if n := ctrl.Len(); n > 0 {
		status.SetText(fmt.Sprintf("Restored %d shapes", n))
	}

	modeLabel := widget.NewLabel(modeText(ctrl))
	refreshMode := func() { modeLabel.SetText(modeText(ctrl)) }

	colors := widget.NewSelect([]string{"black", "red", "green", "blue"}, func(name string) {
		if c, err := shape.ParseColor(name); err == nil {
			ctrl.SetColor(c)
		}
	})
	colors.SetSelected(colorName(ctrl.Color()))

	doExport := func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			fn, err := export.ByExtension(outPath)
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if err := fn(ctrl.Snapshot(), outPath, export.Options{Background: ctrl.Background(), LineWidth: cfg.Canvas.LineWidth}); err != nil {
				l.Error("export failed", slog.Any("err", err), slog.String("path", outPath))
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Exported to " + outPath)
		}, w)
		save.SetFileName("whiteboard.png")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".svg", ".pdf", ".bmp", ".tif", ".tiff"}))
		save.Show()
	}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			ctrl.SetMode(board.ModeLine)
			refreshMode()
		}),
		widget.NewToolbarAction(theme.ViewFullScreenIcon(), func() {
			ctrl.SetMode(board.ModeRect)
			refreshMode()
		}),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			ctrl.ToggleEraser()
			refreshMode()
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), ctrl.Undo),
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			dialog.ShowConfirm("Clear", "Remove every shape from the board?", func(ok bool) {
				if ok {
					ctrl.Clear()
					status.SetText("Board cleared")
				}
			}, w)
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), doExport),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.InfoIcon(), func() {
			dialog.ShowInformation("About", "Go Whiteboard "+version.String()+"\nStorage: "+cfg.Storage.Backend, w)
		}),
	)

	undo := func(fyne.Shortcut) { ctrl.Undo() }
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}, undo)
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierSuper}, undo)
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyE, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		ctrl.ToggleEraser()
		refreshMode()
	})

	top := container.NewBorder(nil, nil, nil, container.NewHBox(colors, modeLabel), toolbar)
	w.SetContent(container.NewBorder(top, status, nil, nil, bw))

	// Persist preferences on close
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if err := store.Close(); err != nil {
			l.Warn("close store", slog.Any("err", err))
		}
		w.Close()
	})

	w.ShowAndRun()
	return nil
}

// openStore resolves the configured backend. The prefs backend lives on the
// Fyne preferences and so is only available here.
func openStore(ctx context.Context, cfg config.StorageConfig, prefs fyne.Preferences) (storage.Store, error) {
	if cfg.Backend == config.BackendPrefs {
		return storage.WithQuota(newPrefsStore(prefs), cfg.QuotaBytes), nil
	}
	return storage.Open(ctx, cfg)
}

func modeText(c *board.Controller) string {
	if c.Eraser() {
		return c.Mode().String() + " (eraser)"
	}
	return c.Mode().String()
}

func colorName(c shape.Color) string {
	for _, name := range []string{"black", "red", "green", "blue"} {
		if pc, err := shape.ParseColor(name); err == nil && pc == c {
			return name
		}
	}
	return "black"
}

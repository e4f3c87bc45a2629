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
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"gowhiteboard/internal/board"
	"gowhiteboard/internal/render"
	"gowhiteboard/internal/storage"
	"gowhiteboard/internal/vector"
)

// BoardWidget shows the controller's raster and feeds it pointer events.
// Board coordinates are widget coordinates in device-independent units.
type BoardWidget struct {
	widget.BaseWidget
	ctrl   *board.Controller
	raster *render.Raster
	img    *canvas.Image

	// OnStatus receives short user-facing messages.
	OnStatus func(string)
	warned   bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

// NewBoardWidget builds the controller over a raster of the given size.
func NewBoardWidget(w, h int, style render.Style, store storage.Store, opts board.Options) (*BoardWidget, error) {
	r, err := render.NewRaster(w, h, style)
	if err != nil {
		return nil, err
	}
	b := &BoardWidget{raster: r}
	b.img = canvas.NewImageFromImage(r.Image())
	b.img.FillMode = canvas.ImageFillStretch
	b.img.ScaleMode = canvas.ImageScaleFastest

	next := opts.OnChange
	opts.OnChange = func() {
		b.repaint()
		if next != nil {
			next()
		}
	}
	ctrl, err := board.New(r, store, opts)
	if err != nil {
		return nil, err
	}
	b.ctrl = ctrl
	b.ExtendBaseWidget(b)
	return b, nil
}

// Controller exposes the underlying state machine for toolbar actions.
func (b *BoardWidget) Controller() *board.Controller { return b.ctrl }

// Image returns a copy of the displayed pixels.
func (b *BoardWidget) Image() image.Image { return b.raster.Image() }

func (b *BoardWidget) repaint() {
	b.img.Image = b.raster.Image()
	canvas.Refresh(b.img)
	if b.ctrl == nil {
		return
	}
	switch degraded := b.ctrl.Degraded(); {
	case degraded && !b.warned:
		b.warned = true
		b.status("Storage unavailable: changes are kept in memory only")
	case !degraded && b.warned:
		b.warned = false
		b.status("Storage available again")
	}
}

func (b *BoardWidget) status(msg string) {
	if b.OnStatus != nil {
		b.OnStatus(msg)
	}
}

func toBoard(p fyne.Position) vector.Pt {
	return vector.Pt{X: float64(p.X), Y: float64(p.Y)}
}

func (b *BoardWidget) inside(p fyne.Position) bool {
	sz := b.Size()
	return p.X >= 0 && p.Y >= 0 && p.X < sz.Width && p.Y < sz.Height
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.ctrl.PointerDown(toBoard(e.Position))
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.ctrl.PointerUp(toBoard(e.Position))
}

// Dragged extends the gesture. The driver keeps delivering drags after the
// pointer leaves the widget, which ends the gesture like a mouse-out.
func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if !b.inside(e.Position) {
		b.ctrl.PointerLeave()
		return
	}
	b.ctrl.PointerMove(toBoard(e.Position))
}

// DragEnd commits a gesture whose release happened off the widget.
func (b *BoardWidget) DragEnd() { b.ctrl.PointerLeave() }

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}
func (b *BoardWidget) MouseOut()                      { b.ctrl.PointerLeave() }

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return &boardRenderer{b: b, objects: []fyne.CanvasObject{b.img}}
}

type boardRenderer struct {
	b       *BoardWidget
	objects []fyne.CanvasObject
}

func (r *boardRenderer) Destroy()                     {}
func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *boardRenderer) MinSize() fyne.Size           { return fyne.NewSize(200, 150) }
func (r *boardRenderer) Refresh()                     { canvas.Refresh(r.b.img) }

// Layout resizes the surface to the widget; the controller replays the
// drawing onto the new pixels.
func (r *boardRenderer) Layout(size fyne.Size) {
	r.b.img.Resize(size)
	r.b.img.Move(fyne.NewPos(0, 0))
	r.b.ctrl.Resize(int(size.Width), int(size.Height))
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package board turns pointer and keyboard events into drawing mutations.
// It owns the drawing, the gesture in progress and the surface, and persists
// the drawing after every committed change.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	applog "gowhiteboard/internal/log"
	"gowhiteboard/internal/render"
	"gowhiteboard/internal/shape"
	"gowhiteboard/internal/storage"
	"gowhiteboard/internal/vector"
)

// ErrNoSurface is returned by New when there is nothing to draw on.
var ErrNoSurface = errors.New("board: no drawing surface")

// Mode selects what a drag produces.
type Mode uint8

const (
	ModeLine Mode = iota
	ModeRect
)

func (m Mode) String() string {
	if m == ModeRect {
		return "rect"
	}
	return "line"
}

// gesture is the state of one pointer-down .. pointer-up interaction.
type gesture struct {
	active bool
	anchor vector.Pt
	last   vector.Pt
	moved  bool
	mode   Mode
	eraser bool
}

// Options configure a Controller.
type Options struct {
	Foreground shape.Color
	Background shape.Color
	// Key is the store key holding the serialized drawing.
	Key string
	// Timeout bounds each store call. Zero means no deadline.
	Timeout time.Duration
	// OnChange runs after every visible change to the surface.
	OnChange func()
}

// Controller is the whiteboard state machine (Idle or Drawing). It is not
// safe for concurrent use; the UI delivers events from one goroutine.
type Controller struct {
	drawing *shape.Drawing
	surface render.Surface
	store   storage.Store
	opts    Options

	g      gesture
	mode   Mode
	eraser bool
	fg     shape.Color

	degraded bool
	log      *slog.Logger
}

// New builds a controller over surface and store. A nil store keeps the
// drawing in memory only.
func New(surface render.Surface, store storage.Store, opts Options) (*Controller, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	if w, h := surface.Size(); w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrNoSurface, w, h)
	}
	if opts.Foreground == (shape.Color{}) {
		opts.Foreground = shape.Black
	}
	if opts.Background == (shape.Color{}) {
		opts.Background = shape.White
	}
	if opts.Key == "" {
		opts.Key = "whiteboard.drawing"
	}
	c := &Controller{
		drawing: shape.New(),
		surface: surface,
		store:   store,
		opts:    opts,
		fg:      opts.Foreground,
		log:     applog.WithComponent("board"),
	}
	if store == nil {
		c.store = storage.NewMemory()
	}
	return c, nil
}

// Load restores the drawing from the store and repaints. A missing key or an
// unreadable value starts an empty board; the stored value is left alone
// until the next write. Only store read failures are returned.
func (c *Controller) Load(ctx context.Context) error {
	l := applog.WithOperation(c.log, "load").With(slog.String("key", c.opts.Key))
	c.g = gesture{}
	ctx, cancel := c.storeCtx(ctx)
	defer cancel()
	raw, ok, err := c.store.Get(ctx, c.opts.Key)
	if err != nil {
		c.drawing.Clear()
		c.surface.Clear(c.opts.Background)
		c.changed()
		return fmt.Errorf("load drawing: %w", err)
	}
	if !ok {
		c.drawing.Clear()
		c.surface.Clear(c.opts.Background)
		c.changed()
		l.Debug("no saved drawing")
		return nil
	}
	shapes, err := shape.Deserialize([]byte(raw))
	if err != nil {
		l.Warn("saved drawing unreadable, starting empty", slog.Any("err", err))
		c.drawing.Clear()
		c.surface.Clear(c.opts.Background)
		c.changed()
		return nil
	}
	c.drawing.ReplaceAll(shapes)
	c.redraw()
	l.Info("drawing restored", slog.Int("shapes", len(shapes)))
	return nil
}

// PointerDown starts a gesture at p. Strokes are committed and persisted
// immediately; rectangles begin as an unpersisted placeholder.
func (c *Controller) PointerDown(p vector.Pt) {
	if c.g.active {
		// a down without an up: close the previous gesture first
		c.finish(c.g.last)
	}
	c.g = gesture{active: true, anchor: p, last: p, mode: c.mode, eraser: c.eraser}
	switch c.g.mode {
	case ModeRect:
		c.drawing.BeginRect(p, c.fg)
	default:
		c.drawing.BeginStroke(shape.Point{X: p.X, Y: p.Y, Color: c.strokeColor()})
		c.persist()
	}
}

// PointerMove extends the active gesture. Without one it does nothing.
func (c *Controller) PointerMove(p vector.Pt) {
	if !c.g.active {
		return
	}
	prev := c.g.last
	c.g.last = p
	if !p.Eq(c.g.anchor) {
		c.g.moved = true
	}
	switch c.g.mode {
	case ModeRect:
		c.redrawCommitted()
		c.surface.RectOutline(vector.FromCorners(c.g.anchor, p), c.fg)
		c.changed()
	default:
		col := c.strokeColor()
		if !c.drawing.ExtendStroke(shape.Point{X: p.X, Y: p.Y, Color: col}) {
			return
		}
		c.surface.Segment(prev, p, col)
		c.changed()
		c.persist()
	}
}

// PointerUp ends the gesture at p.
func (c *Controller) PointerUp(p vector.Pt) {
	if !c.g.active {
		return
	}
	c.finish(p)
}

// PointerLeave ends the gesture at the last known position.
func (c *Controller) PointerLeave() {
	if !c.g.active {
		return
	}
	c.finish(c.g.last)
}

func (c *Controller) finish(p vector.Pt) {
	g := c.g
	c.g = gesture{}
	if g.mode != ModeRect {
		return
	}
	moved := g.moved || !p.Eq(g.anchor)
	if !moved {
		// zero-size placeholder, never persisted
		c.drawing.UndoLast()
		c.redraw()
		return
	}
	c.drawing.CommitRect(g.anchor, p, c.fg)
	c.redraw()
	c.persist()
}

// Undo removes the most recent shape. It is ignored while a gesture is in
// progress and on an empty board.
func (c *Controller) Undo() {
	if c.g.active {
		c.log.Debug("undo ignored during gesture")
		return
	}
	if _, ok := c.drawing.UndoLast(); !ok {
		return
	}
	c.redraw()
	c.persist()
}

// Clear empties the board.
func (c *Controller) Clear() {
	c.g = gesture{}
	c.drawing.Clear()
	c.redraw()
	c.persist()
}

// Replace swaps in shapes (import) and persists them.
func (c *Controller) Replace(shapes []shape.Shape) {
	c.g = gesture{}
	c.drawing.ReplaceAll(shape.CloneShapes(shapes))
	c.redraw()
	c.persist()
}

// Resize repaints at the new size. The gesture survives but a rectangle
// preview is not repainted until the next move.
func (c *Controller) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.surface.Resize(w, h)
	c.redrawCommitted()
	c.changed()
}

// SetEraser latches the eraser for the next gesture.
func (c *Controller) SetEraser(on bool) { c.eraser = on }

// ToggleEraser flips the eraser flag and returns the new value.
func (c *Controller) ToggleEraser() bool {
	c.eraser = !c.eraser
	return c.eraser
}

func (c *Controller) Eraser() bool { return c.eraser }

// SetMode selects line or rectangle for the next gesture.
func (c *Controller) SetMode(m Mode) { c.mode = m }

func (c *Controller) Mode() Mode { return c.mode }

// SetColor changes the pen colour for the next points and shapes.
func (c *Controller) SetColor(col shape.Color) { c.fg = col }

func (c *Controller) Color() shape.Color { return c.fg }

// Background is the surface colour, also used by the eraser.
func (c *Controller) Background() shape.Color { return c.opts.Background }

// Drawing reports whether a gesture is in progress.
func (c *Controller) Drawing() bool { return c.g.active }

// Len is the number of shapes, including one under construction.
func (c *Controller) Len() int { return c.drawing.Len() }

// Snapshot deep-copies the shapes, for export and crash autosave.
func (c *Controller) Snapshot() []shape.Shape { return c.drawing.Clone().Shapes() }

// Degraded reports whether the last store write failed.
func (c *Controller) Degraded() bool { return c.degraded }

// Surface returns the surface the controller paints on.
func (c *Controller) Surface() render.Surface { return c.surface }

func (c *Controller) strokeColor() shape.Color {
	if c.g.eraser {
		return c.opts.Background
	}
	return c.fg
}

// redraw replays the whole drawing and notifies observers.
func (c *Controller) redraw() {
	c.redrawCommitted()
	c.changed()
}

// redrawCommitted replays every shape except a rectangle placeholder of the
// active gesture.
func (c *Controller) redrawCommitted() {
	shapes := c.drawing.Shapes()
	if c.g.active && c.g.mode == ModeRect && len(shapes) > 0 {
		shapes = shapes[:len(shapes)-1]
	}
	render.Replay(c.surface, c.opts.Background, shapes)
}

func (c *Controller) changed() {
	if c.opts.OnChange != nil {
		c.opts.OnChange()
	}
}

// persist writes the committed drawing. A failure marks the controller
// degraded and the board keeps working in memory; every later mutation retries
// the write and a success clears the flag.
func (c *Controller) persist() {
	shapes := c.drawing.Shapes()
	if c.g.active && c.g.mode == ModeRect && len(shapes) > 0 {
		shapes = shapes[:len(shapes)-1]
	}
	data, err := shape.Serialize(shapes)
	if err == nil {
		ctx, cancel := c.storeCtx(context.Background())
		err = c.store.Set(ctx, c.opts.Key, string(data))
		cancel()
	}
	l := applog.WithOperation(c.log, "persist")
	if err != nil {
		if !c.degraded {
			attrs := []any{slog.String("key", c.opts.Key), slog.Any("err", err)}
			if errors.Is(err, storage.ErrQuotaExceeded) {
				attrs = append(attrs, slog.Bool("quota", true))
			}
			l.Warn("store write failed, continuing in memory only", attrs...)
		}
		c.degraded = true
		return
	}
	if c.degraded {
		l.Info("store writable again", slog.String("key", c.opts.Key))
		c.degraded = false
	}
}

func (c *Controller) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opts.Timeout)
}

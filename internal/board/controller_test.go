/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"gowhiteboard/internal/render"
	"gowhiteboard/internal/shape"
	"gowhiteboard/internal/storage"
	"gowhiteboard/internal/vector"
)

const testKey = "whiteboard.drawing"

func pt(x, y float64) vector.Pt { return vector.Pt{X: x, Y: y} }

func newTestController(t *testing.T, s render.Surface, st storage.Store) *Controller {
	t.Helper()
	c, err := New(s, st, Options{Key: testKey})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func stored(t *testing.T, st storage.Store) []shape.Shape {
	t.Helper()
	raw, ok, err := st.Get(context.Background(), testKey)
	if err != nil || !ok {
		t.Fatalf("stored drawing missing: ok=%v err=%v", ok, err)
	}
	shapes, err := shape.Deserialize([]byte(raw))
	if err != nil {
		t.Fatalf("stored drawing unreadable: %v", err)
	}
	return shapes
}

func drag(c *Controller, pts ...vector.Pt) {
	c.PointerDown(pts[0])
	for _, p := range pts[1:] {
		c.PointerMove(p)
	}
	c.PointerUp(pts[len(pts)-1])
}

func TestNewRequiresSurface(t *testing.T) {
	if _, err := New(nil, nil, Options{}); !errors.Is(err, ErrNoSurface) {
		t.Fatalf("nil surface: %v", err)
	}
	if _, err := New(render.NewRecorder(0, 10), nil, Options{}); !errors.Is(err, ErrNoSurface) {
		t.Fatalf("zero surface: %v", err)
	}
}

func TestStrokeDrawsIncrementallyAndPersistsEachPoint(t *testing.T) {
	rec := render.NewRecorder(200, 200)
	st := storage.NewMemory()
	c := newTestController(t, rec, st)

	c.PointerDown(pt(10, 10))
	if got := stored(t, st); len(got) != 1 || len(got[0].(*shape.Stroke).Points) != 1 {
		t.Fatalf("pointer-down must persist the one-point stroke, got %v", got)
	}
	c.PointerMove(pt(20, 15))
	c.PointerMove(pt(30, 30))
	if got := stored(t, st); len(got[0].(*shape.Stroke).Points) != 3 {
		t.Fatalf("each move must persist, stored %v", got)
	}

	ops := rec.Ops()
	if len(ops) != 2 || ops[0].Kind != render.OpSegment || ops[1].Kind != render.OpSegment {
		t.Fatalf("incremental drawing must only add segments, got %+v", ops)
	}
	if ops[1].A != pt(20, 15) || ops[1].B != pt(30, 30) {
		t.Fatalf("segment endpoints = %+v", ops[1])
	}

	c.PointerUp(pt(30, 30))
	if c.Drawing() {
		t.Fatalf("gesture still active after pointer-up")
	}
	if len(rec.Ops()) != 2 {
		t.Fatalf("stroke pointer-up must not repaint, ops=%+v", rec.Ops())
	}
}

func TestMoveWithoutDownIsNoOp(t *testing.T) {
	rec := render.NewRecorder(50, 50)
	st := storage.NewMemory()
	c := newTestController(t, rec, st)
	c.PointerMove(pt(1, 1))
	c.PointerUp(pt(1, 1))
	c.PointerLeave()
	if c.Len() != 0 || len(rec.Ops()) != 0 {
		t.Fatalf("events without a gesture must be ignored: len=%d ops=%+v", c.Len(), rec.Ops())
	}
	if _, ok, _ := st.Get(context.Background(), testKey); ok {
		t.Fatalf("nothing should be persisted")
	}
}

func TestRectangleSignHandling(t *testing.T) {
	rec := render.NewRecorder(200, 200)
	st := storage.NewMemory()
	c := newTestController(t, rec, st)
	c.SetMode(ModeRect)

	c.PointerDown(pt(100, 100))
	if _, ok, _ := st.Get(context.Background(), testKey); ok {
		t.Fatalf("rectangle placeholder must not be persisted")
	}
	c.PointerMove(pt(70, 80))
	c.PointerMove(pt(40, 60))
	// preview: replay of committed shapes then the outline
	painted := rec.Painted()
	if len(painted) != 1 || painted[0].Kind != render.OpRect || painted[0].Rect != vector.R(40, 60, 60, 40) {
		t.Fatalf("preview ops = %+v", painted)
	}
	c.PointerUp(pt(40, 60))

	got := stored(t, st)
	r, ok := got[0].(*shape.Rect)
	if len(got) != 1 || !ok {
		t.Fatalf("stored = %v", got)
	}
	if r.X != 100 || r.Y != 100 || r.Width != -60 || r.Height != -40 {
		t.Fatalf("committed rect = %+v", r)
	}
	if p := rec.Painted(); len(p) != 1 || p[0].Rect != vector.R(40, 60, 60, 40) {
		t.Fatalf("final paint = %+v", p)
	}
}

func TestRectangleWithoutMovementIsDiscarded(t *testing.T) {
	rec := render.NewRecorder(100, 100)
	c := newTestController(t, rec, storage.NewMemory())
	c.SetMode(ModeRect)
	c.PointerDown(pt(5, 5))
	c.PointerUp(pt(5, 5))
	if c.Len() != 0 {
		t.Fatalf("zero-size rectangle kept: %v", c.Snapshot())
	}
}

func TestRectangleCommitsOnLeave(t *testing.T) {
	st := storage.NewMemory()
	c := newTestController(t, render.NewRecorder(100, 100), st)
	c.SetMode(ModeRect)
	c.PointerDown(pt(10, 10))
	c.PointerMove(pt(30, 40))
	c.PointerLeave()
	got := stored(t, st)
	if r := got[0].(*shape.Rect); r.Width != 20 || r.Height != 30 {
		t.Fatalf("leave must commit at last point, got %+v", r)
	}
}

func TestEraserLatchedAtPointerDown(t *testing.T) {
	c := newTestController(t, render.NewRecorder(100, 100), storage.NewMemory())
	c.SetEraser(true)
	c.PointerDown(pt(1, 1))
	c.PointerMove(pt(2, 2))
	c.ToggleEraser()
	c.PointerMove(pt(3, 3))
	c.SetEraser(true)
	c.PointerMove(pt(4, 4))
	c.PointerUp(pt(4, 4))

	s := c.Snapshot()[0].(*shape.Stroke)
	for i, p := range s.Points {
		if p.Color != c.Background() {
			t.Fatalf("point %d colour %v, want background %v", i, p.Color, c.Background())
		}
	}

	c.SetEraser(false)
	drag(c, pt(5, 5), pt(6, 6))
	s2 := c.Snapshot()[1].(*shape.Stroke)
	if s2.Points[0].Color != shape.Black || s2.Points[1].Color != shape.Black {
		t.Fatalf("second stroke should use the pen colour: %+v", s2.Points)
	}
}

func TestUndoPopsRedrawsAndPersists(t *testing.T) {
	rec := render.NewRecorder(100, 100)
	st := storage.NewMemory()
	c := newTestController(t, rec, st)
	drag(c, pt(1, 1), pt(10, 10))
	c.SetMode(ModeRect)
	drag(c, pt(20, 20), pt(40, 40))

	rec.Reset()
	c.Undo()
	if c.Len() != 1 {
		t.Fatalf("len after undo = %d", c.Len())
	}
	ops := rec.Ops()
	if len(ops) != 2 || ops[0].Kind != render.OpClear || ops[1].Kind != render.OpSegment {
		t.Fatalf("undo must clear and replay, got %+v", ops)
	}
	if got := stored(t, st); len(got) != 1 {
		t.Fatalf("undo not persisted: %v", got)
	}

	c.Undo()
	c.Undo() // empty: no-op
	if c.Len() != 0 || len(stored(t, st)) != 0 {
		t.Fatalf("undo on empty board must be a no-op")
	}
}

func TestUndoIgnoredDuringGesture(t *testing.T) {
	c := newTestController(t, render.NewRecorder(100, 100), storage.NewMemory())
	drag(c, pt(1, 1), pt(2, 2))
	c.PointerDown(pt(5, 5))
	c.PointerMove(pt(6, 6))
	c.Undo()
	if c.Len() != 2 || !c.Drawing() {
		t.Fatalf("undo mid-gesture must be ignored: len=%d drawing=%v", c.Len(), c.Drawing())
	}
	c.PointerUp(pt(6, 6))
	c.Undo()
	if c.Len() != 1 {
		t.Fatalf("undo after gesture: len=%d", c.Len())
	}
}

func TestResizeReplaysWithoutTouchingGesture(t *testing.T) {
	rec := render.NewRecorder(100, 100)
	c := newTestController(t, rec, storage.NewMemory())
	drag(c, pt(1, 1), pt(5, 5))
	c.PointerDown(pt(10, 10))
	rec.Reset()
	c.Resize(300, 200)
	ops := rec.Ops()
	if len(ops) < 2 || ops[0].Kind != render.OpResize || ops[1].Kind != render.OpClear {
		t.Fatalf("resize ops = %+v", ops)
	}
	if w, h := rec.Size(); w != 300 || h != 200 {
		t.Fatalf("surface size = %dx%d", w, h)
	}
	if !c.Drawing() {
		t.Fatalf("resize must not end the gesture")
	}
	c.PointerMove(pt(12, 12))
	if s := c.Snapshot()[1].(*shape.Stroke); len(s.Points) != 2 {
		t.Fatalf("gesture did not continue after resize: %+v", s)
	}
}

func TestEmptyLoadOnlyClears(t *testing.T) {
	rec := render.NewRecorder(100, 100)
	c := newTestController(t, rec, storage.NewMemory())
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ops := rec.Ops()
	if len(ops) != 1 || ops[0].Kind != render.OpClear || c.Len() != 0 {
		t.Fatalf("empty load ops = %+v len=%d", ops, c.Len())
	}
}

func TestMalformedStoredStateStartsEmpty(t *testing.T) {
	st := storage.NewMemory()
	ctx := context.Background()
	_ = st.Set(ctx, testKey, "{definitely not a drawing")
	rec := render.NewRecorder(100, 100)
	c := newTestController(t, rec, st)
	if err := c.Load(ctx); err != nil {
		t.Fatalf("malformed state must not surface as an error: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty board")
	}
	if raw, _, _ := st.Get(ctx, testKey); raw != "{definitely not a drawing" {
		t.Fatalf("stored blob must stay untouched until the next write, got %q", raw)
	}
	drag(c, pt(1, 1), pt(2, 2))
	if got := stored(t, st); len(got) != 1 {
		t.Fatalf("next write should replace the blob, got %v", got)
	}
}

func TestPersistenceSurvivesReload(t *testing.T) {
	st := storage.NewMemory()
	r1, _ := render.NewRaster(120, 120, render.Style{LineWidth: 5})
	c1 := newTestController(t, r1, st)
	if err := c1.Load(context.Background()); err != nil {
		t.Fatalf("initial Load: %v", err)
	}
	drag(c1, pt(10, 10), pt(40, 20), pt(60, 80))
	c1.SetMode(ModeRect)
	drag(c1, pt(100, 100), pt(40, 60))
	c1.SetMode(ModeLine)
	c1.SetEraser(true)
	drag(c1, pt(30, 30), pt(90, 90))
	before := c1.Snapshot()

	r2, _ := render.NewRaster(120, 120, render.Style{LineWidth: 5})
	c2 := newTestController(t, r2, st)
	if err := c2.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !shape.Equal(before, c2.Snapshot()) {
		t.Fatalf("reloaded model differs:\n%v\n%v", before, c2.Snapshot())
	}
	if !bytes.Equal(r1.Image().Pix, r2.Image().Pix) {
		t.Fatalf("reloaded raster differs from the pre-reload raster")
	}
}

func TestIncrementalMatchesReplayPixels(t *testing.T) {
	inc, _ := render.NewRaster(100, 100, render.Style{LineWidth: 5})
	inc.Clear(shape.White)
	c := newTestController(t, inc, nil)
	c.SetColor(shape.Color{R: 0x20, G: 0x40, B: 0xc0, A: 0xff})
	drag(c, pt(5, 5), pt(30, 10), pt(50, 50), pt(20, 80))
	c.SetEraser(true)
	drag(c, pt(10, 40), pt(90, 40))

	rep, _ := render.NewRaster(100, 100, render.Style{LineWidth: 5})
	render.Replay(rep, c.Background(), c.Snapshot())
	if !bytes.Equal(inc.Image().Pix, rep.Image().Pix) {
		t.Fatalf("incremental drawing and replay differ")
	}
}

func TestClearAndReplace(t *testing.T) {
	st := storage.NewMemory()
	c := newTestController(t, render.NewRecorder(50, 50), st)
	drag(c, pt(1, 1), pt(2, 2))
	c.Clear()
	if c.Len() != 0 || len(stored(t, st)) != 0 {
		t.Fatalf("Clear must empty and persist")
	}
	in := []shape.Shape{&shape.Rect{X: 1, Y: 1, Width: 3, Height: 3, Color: shape.Black}}
	c.Replace(in)
	in[0].(*shape.Rect).Width = 99
	if got := stored(t, st); got[0].(*shape.Rect).Width != 3 {
		t.Fatalf("Replace must copy its input, stored %v", got)
	}
}

type failingStore struct {
	*storage.Memory
	err  error
	sets int
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	f.sets++
	if f.err != nil {
		return f.err
	}
	return f.Memory.Set(ctx, key, value)
}

func TestWriteFailureDegradesAndRecovers(t *testing.T) {
	fs := &failingStore{Memory: storage.NewMemory(), err: errors.New("disk unplugged")}
	c := newTestController(t, render.NewRecorder(50, 50), fs)
	drag(c, pt(1, 1), pt(2, 2), pt(3, 3))
	if !c.Degraded() {
		t.Fatalf("controller should report degraded mode")
	}
	if fs.sets < 2 {
		t.Fatalf("each mutation should retry the write, got %d attempts", fs.sets)
	}
	if c.Len() != 1 || len(c.Snapshot()[0].(*shape.Stroke).Points) != 3 {
		t.Fatalf("drawing must continue in memory")
	}

	fs.err = nil
	drag(c, pt(10, 10), pt(20, 20))
	if c.Degraded() {
		t.Fatalf("a successful write must clear degraded mode")
	}
	if got := stored(t, fs); !shape.Equal(got, c.Snapshot()) {
		t.Fatalf("store must hold the whole drawing after recovery, got %v", got)
	}
}

func TestQuotaWrapperDegradesUntilUndoShrinks(t *testing.T) {
	st := storage.WithQuota(storage.NewMemory(), 200)
	c := newTestController(t, render.NewRecorder(50, 50), st)
	for i := 0; i < 20 && !c.Degraded(); i++ {
		drag(c, pt(float64(i), 1), pt(float64(i), 2))
	}
	if !c.Degraded() {
		t.Fatalf("quota should eventually be exceeded")
	}
	c.Undo()
	if c.Degraded() {
		t.Fatalf("undo back under the quota must resume persistence")
	}
	if got := stored(t, st); !shape.Equal(got, c.Snapshot()) {
		t.Fatalf("stored drawing differs after undo: %v", got)
	}
}

func TestLoadReadErrorIsReturned(t *testing.T) {
	st := storage.NewMemory()
	_ = st.Close()
	c := newTestController(t, render.NewRecorder(10, 10), st)
	if err := c.Load(context.Background()); !errors.Is(err, storage.ErrClosed) {
		t.Fatalf("Load = %v, want ErrClosed", err)
	}
}

func TestOnChangeFires(t *testing.T) {
	n := 0
	c, err := New(render.NewRecorder(10, 10), nil, Options{OnChange: func() { n++ }})
	if err != nil {
		t.Fatal(err)
	}
	drag(c, pt(1, 1), pt(2, 2))
	c.Undo()
	c.Resize(20, 20)
	if n < 3 {
		t.Fatalf("OnChange fired %d times", n)
	}
	if ModeRect.String() != "rect" || ModeLine.String() != "line" {
		t.Fatalf("Mode.String()")
	}
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import "gowhiteboard/internal/vector"

// Drawing is the ordered shape list. Only the last shape is ever mutated,
// and only while a gesture is building it. Not safe for concurrent use.
type Drawing struct {
	shapes []Shape
}

// New returns a drawing holding the given shapes in order.
func New(shapes ...Shape) *Drawing {
	d := &Drawing{}
	d.ReplaceAll(shapes)
	return d
}

// BeginStroke appends a one-point stroke and returns it.
func (d *Drawing) BeginStroke(p Point) *Stroke {
	s := &Stroke{Points: []Point{p}}
	d.shapes = append(d.shapes, s)
	return s
}

// BeginRect appends a zero-size rectangle placeholder at anchor.
func (d *Drawing) BeginRect(anchor vector.Pt, c Color) *Rect {
	r := &Rect{X: anchor.X, Y: anchor.Y, Color: c}
	d.shapes = append(d.shapes, r)
	return r
}

// ExtendStroke appends p to the stroke under construction. It reports false
// and does nothing when the drawing is empty or the last shape is not a stroke.
func (d *Drawing) ExtendStroke(p Point) bool {
	s, ok := d.Last().(*Stroke)
	if !ok {
		return false
	}
	s.Points = append(s.Points, p)
	return true
}

// CommitRect fixes the final geometry of the rectangle placeholder. It reports
// false when the last shape is not a rectangle.
func (d *Drawing) CommitRect(anchor, far vector.Pt, c Color) bool {
	r, ok := d.Last().(*Rect)
	if !ok {
		return false
	}
	g := vector.FromCorners(anchor, far)
	*r = Rect{X: g.X, Y: g.Y, Width: g.W, Height: g.H, Color: c}
	return true
}

// UndoLast removes and returns the last shape. No-op on an empty drawing.
func (d *Drawing) UndoLast() (Shape, bool) {
	n := len(d.shapes)
	if n == 0 {
		return nil, false
	}
	last := d.shapes[n-1]
	d.shapes[n-1] = nil
	d.shapes = d.shapes[:n-1]
	return last, true
}

// ReplaceAll swaps the whole content. The slice is copied; shapes are not.
func (d *Drawing) ReplaceAll(shapes []Shape) {
	d.shapes = append([]Shape(nil), shapes...)
}

// Clear removes every shape.
func (d *Drawing) Clear() { d.shapes = nil }

func (d *Drawing) Len() int { return len(d.shapes) }

// Shapes returns the shapes in paint order. The slice is a copy; the shapes
// are shared, use Clone for a detached snapshot.
func (d *Drawing) Shapes() []Shape { return append([]Shape(nil), d.shapes...) }

// Last returns the most recently added shape or nil.
func (d *Drawing) Last() Shape {
	if len(d.shapes) == 0 {
		return nil
	}
	return d.shapes[len(d.shapes)-1]
}

// Clone deep-copies the drawing.
func (d *Drawing) Clone() *Drawing {
	return &Drawing{shapes: CloneShapes(d.shapes)}
}

// CloneShapes deep-copies a shape slice.
func CloneShapes(shapes []Shape) []Shape {
	if shapes == nil {
		return nil
	}
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.clone()
	}
	return out
}

// MarshalText implements encoding.TextMarshaler with the versioned wire format.
func (d *Drawing) MarshalText() ([]byte, error) { return Serialize(d.shapes) }

// UnmarshalText implements encoding.TextUnmarshaler. On error the drawing is unchanged.
func (d *Drawing) UnmarshalText(b []byte) error {
	shapes, err := Deserialize(b)
	if err != nil {
		return err
	}
	d.shapes = shapes
	return nil
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shape is the drawing model of the whiteboard: an ordered list of
// strokes and rectangles whose order is the paint order.
package shape

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gowhiteboard/internal/vector"
)

// Color is a non-premultiplied RGBA colour. It implements color.Color.
type Color struct{ R, G, B, A uint8 }

var (
	Black = Color{0, 0, 0, 0xff}
	White = Color{0xff, 0xff, 0xff, 0xff}
)

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Hex renders the colour as #rrggbbaa.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) String() string { return c.Hex() }

var named = map[string]Color{
	"black": Black,
	"white": White,
	"red":   {0xff, 0, 0, 0xff},
	"green": {0, 0x80, 0, 0xff},
	"blue":  {0, 0, 0xff, 0xff},
}

// ParseHex parses #rrggbb or #rrggbbaa (case-insensitive).
func ParseHex(s string) (Color, error) {
	t := strings.TrimSpace(s)
	h := strings.TrimPrefix(t, "#")
	if h == t || (len(h) != 6 && len(h) != 8) {
		return Color{}, fmt.Errorf("invalid colour %q: want #rrggbb or #rrggbbaa", s)
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// ParseColor accepts hex colours and the few CSS names older saves used.
func ParseColor(s string) (Color, error) {
	if c, ok := named[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return ParseHex(s)
}

// Kind tags the shape variants.
type Kind string

const (
	KindStroke Kind = "stroke"
	KindRect   Kind = "rect"
)

// Shape is either a *Stroke or a *Rect. The set is closed.
type Shape interface {
	Kind() Kind
	// Bounds is the covered region ignoring line width. ok is false for an
	// empty stroke.
	Bounds() (r vector.Rect, ok bool)
	clone() Shape
}

// Point is one sampled pointer position with the colour it was drawn in.
type Point struct {
	X, Y  float64
	Color Color
}

func P(x, y float64, c Color) Point { return Point{X: x, Y: y, Color: c} }

func (p Point) Pt() vector.Pt { return vector.Pt{X: p.X, Y: p.Y} }

// Stroke is a freehand polyline. Segment i (i>0) runs from point i-1 to
// point i and is painted in point i's colour.
type Stroke struct {
	Points []Point
}

func (*Stroke) Kind() Kind { return KindStroke }

func (s *Stroke) Bounds() (vector.Rect, bool) {
	pts := make([]vector.Pt, len(s.Points))
	for i, p := range s.Points {
		pts[i] = p.Pt()
	}
	path := vector.Polyline(pts)
	return path.Bounds()
}

func (s *Stroke) clone() Shape {
	return &Stroke{Points: append([]Point(nil), s.Points...)}
}

// Rect is an outlined rectangle anchored where the drag began. Width and
// Height are signed: negative values extend left or up.
type Rect struct {
	X, Y          float64
	Width, Height float64
	Color         Color
}

func (*Rect) Kind() Kind { return KindRect }

// Geometry returns the signed rectangle.
func (r *Rect) Geometry() vector.Rect { return vector.R(r.X, r.Y, r.Width, r.Height) }

func (r *Rect) Bounds() (vector.Rect, bool) { return r.Geometry().Normalize(), true }

func (r *Rect) clone() Shape {
	c := *r
	return &c
}

// Bounds is the union of all shape bounds.
func Bounds(shapes []Shape) (vector.Rect, bool) {
	var out vector.Rect
	found := false
	for _, s := range shapes {
		b, ok := s.Bounds()
		if !ok {
			continue
		}
		if !found {
			out, found = b, true
			continue
		}
		out = out.Union(b)
	}
	return out, found
}

// Equal reports whether a and b hold the same shapes in the same order.
func Equal(a, b []Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalShape(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalShape(a, b Shape) bool {
	switch x := a.(type) {
	case *Stroke:
		y, ok := b.(*Stroke)
		if !ok || len(x.Points) != len(y.Points) {
			return false
		}
		for i := range x.Points {
			if x.Points[i] != y.Points[i] {
				return false
			}
		}
		return true
	case *Rect:
		y, ok := b.(*Rect)
		return ok && *x == *y
	}
	return false
}

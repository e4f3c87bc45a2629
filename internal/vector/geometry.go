/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package vector holds the board's plane geometry. Coordinates are float64
// device-independent units with the origin at the top-left, y growing down.
package vector

import "math"

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

func (p Pt) Add(q Pt) Pt { return Pt{p.X + q.X, p.Y + q.Y} }
func (p Pt) Sub(q Pt) Pt { return Pt{p.X - q.X, p.Y - q.Y} }

// Eq reports exact equality.
func (p Pt) Eq(q Pt) bool { return p.X == q.X && p.Y == q.Y }

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Rect is an axis-aligned rectangle defined by an anchor corner and a signed
// size. Negative W or H extend left or up from the anchor.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// FromCorners builds the signed rect that starts at anchor and ends at far.
func FromCorners(anchor, far Pt) Rect {
	return Rect{X: anchor.X, Y: anchor.Y, W: far.X - anchor.X, H: far.Y - anchor.Y}
}

// Normalize returns the same region with a top-left anchor and non-negative size.
func (r Rect) Normalize() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

func (r Rect) Min() Pt {
	n := r.Normalize()
	return Pt{n.X, n.Y}
}

func (r Rect) Max() Pt {
	n := r.Normalize()
	return Pt{n.X + n.W, n.Y + n.H}
}

// Empty reports whether the rect covers no area.
func (r Rect) Empty() bool { return r.W == 0 || r.H == 0 }

func (r Rect) Contains(p Pt) bool {
	n := r.Normalize()
	return p.X >= n.X && p.Y >= n.Y && p.X <= n.X+n.W && p.Y <= n.Y+n.H
}

// Inset returns a normalized rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	n := r.Normalize()
	return Rect{X: n.X + dx, Y: n.Y + dy, W: n.W - 2*dx, H: n.H - 2*dy}
}

// Union returns the minimal normalized rect containing both.
func (r Rect) Union(o Rect) Rect {
	a, b := r.Normalize(), o.Normalize()
	minX := math.Min(a.X, b.X)
	minY := math.Min(a.Y, b.Y)
	maxX := math.Max(a.X+a.W, b.X+b.W)
	maxY := math.Max(a.Y+a.H, b.Y+b.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
// Exporters use it to map board coordinates onto a page.
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ApplyRect maps both corners; only valid for translate/scale transforms.
func (m Affine2D) ApplyRect(r Rect) Rect {
	return FromCorners(m.Apply(Pt{r.X, r.Y}), m.Apply(Pt{r.X + r.W, r.Y + r.H}))
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

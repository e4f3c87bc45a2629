/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render paints shapes onto a surface. Incremental drawing and full
// replay go through the same two primitives so their output is identical.
package render

import (
	"gowhiteboard/internal/shape"
	"gowhiteboard/internal/vector"
)

// Surface is a disposable projection of the drawing.
type Surface interface {
	Size() (w, h int)
	// Resize drops the current content. Callers replay afterwards.
	Resize(w, h int)
	Clear(bg shape.Color)
	// Segment strokes a straight line with round caps and joins.
	Segment(a, b vector.Pt, c shape.Color)
	// RectOutline strokes the normalized outline of r.
	RectOutline(r vector.Rect, c shape.Color)
}

// DrawShape paints one shape. Segment i of a stroke ends at point i and uses
// its colour, so a single-point stroke paints nothing.
func DrawShape(s Surface, sh shape.Shape) {
	switch v := sh.(type) {
	case *shape.Stroke:
		for i := 1; i < len(v.Points); i++ {
			s.Segment(v.Points[i-1].Pt(), v.Points[i].Pt(), v.Points[i].Color)
		}
	case *shape.Rect:
		s.RectOutline(v.Geometry(), v.Color)
	}
}

// Replay clears s to bg and paints shapes in order.
func Replay(s Surface, bg shape.Color, shapes []shape.Shape) {
	s.Clear(bg)
	for _, sh := range shapes {
		DrawShape(s, sh)
	}
}

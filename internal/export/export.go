/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes a drawing to image and document files. Raster formats
// replay through the same surface the board paints on, so an export matches
// the screen pixel for pixel.
package export

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gowhiteboard/internal/render"
	"gowhiteboard/internal/shape"
	"gowhiteboard/internal/vector"
)

// DefaultMargin pads fitted exports so round caps are not clipped.
const DefaultMargin = 10

// emptySize is used when fitting a drawing that has no shapes.
const emptySize = 256

// ErrUnknownFormat is returned by ByExtension for unsupported file types.
var ErrUnknownFormat = errors.New("export: unknown format")

// Options controls the output frame shared by all formats.
// Width and Height of 0 fit the content bounds plus Margin; otherwise board
// coordinates are used unchanged and anything outside is clipped.
type Options struct {
	Width      int
	Height     int
	Margin     float64
	LineWidth  float64
	Background shape.Color
}

// Func is the signature shared by every exporter.
type Func func(shapes []shape.Shape, path string, opt Options) error

// ByExtension picks the exporter for path's file extension.
func ByExtension(path string) (Func, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return ExportPNG, nil
	case ".bmp":
		return ExportBMP, nil
	case ".tif", ".tiff":
		return ExportTIFF, nil
	case ".svg":
		return ExportSVG, nil
	case ".pdf":
		return ExportPDF, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

func (o Options) background() shape.Color {
	if o.Background == (shape.Color{}) {
		return shape.White
	}
	return o.Background
}

func (o Options) lineWidth() float64 {
	if o.LineWidth <= 0 {
		return render.DefaultLineWidth
	}
	return o.LineWidth
}

// frame resolves the output size and the transform from board to output
// coordinates.
func (o Options) frame(shapes []shape.Shape) (int, int, vector.Affine2D) {
	if o.Width > 0 && o.Height > 0 {
		return o.Width, o.Height, vector.Identity
	}
	margin := o.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}
	b, ok := shape.Bounds(shapes)
	if !ok {
		return emptySize, emptySize, vector.Identity
	}
	w := int(math.Ceil(b.W + 2*margin))
	h := int(math.Ceil(b.H + 2*margin))
	return w, h, vector.Translate(margin-b.X, margin-b.Y)
}

// place maps shapes through m. Only translate and scale transforms are used,
// so rectangle signs survive.
func place(shapes []shape.Shape, m vector.Affine2D) []shape.Shape {
	if m == vector.Identity {
		return shapes
	}
	out := make([]shape.Shape, 0, len(shapes))
	for _, s := range shapes {
		switch v := s.(type) {
		case *shape.Stroke:
			pts := make([]shape.Point, len(v.Points))
			for i, p := range v.Points {
				q := m.Apply(p.Pt())
				pts[i] = shape.P(q.X, q.Y, p.Color)
			}
			out = append(out, &shape.Stroke{Points: pts})
		case *shape.Rect:
			q := m.Apply(vector.Pt{X: v.X, Y: v.Y})
			out = append(out, &shape.Rect{X: q.X, Y: q.Y, Width: v.Width * m.A, Height: v.Height * m.D, Color: v.Color})
		}
	}
	return out
}

// run is a stretch of stroke segments sharing one colour.
type run struct {
	color shape.Color
	pts   []vector.Pt
}

// strokeRuns splits a stroke into single-colour polylines. A segment takes
// the colour of its end point, matching the on-screen painter.
func strokeRuns(pts []shape.Point) []run {
	var out []run
	for i := 1; i < len(pts); i++ {
		c := pts[i].Color
		if len(out) == 0 || out[len(out)-1].color != c {
			out = append(out, run{color: c, pts: []vector.Pt{pts[i-1].Pt()}})
		}
		last := &out[len(out)-1]
		last.pts = append(last.pts, pts[i].Pt())
	}
	return out
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return nil
}

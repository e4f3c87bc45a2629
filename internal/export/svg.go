/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"gowhiteboard/internal/shape"
	"gowhiteboard/internal/vector"
)

// ExportSVG writes shapes as SVG 1.1. Strokes become polylines, one per run
// of equally coloured segments.
func ExportSVG(shapes []shape.Shape, path string, opt Options) error {
	buf, err := renderSVG(shapes, opt)
	if err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func renderSVG(shapes []shape.Shape, opt Options) ([]byte, error) {
	w, h, m := opt.frame(shapes)
	lw := opt.lineWidth()

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %d %d\">\n", w, h, w, h)
	wf("  <rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" %s/>\n", w, h, svgPaint("fill", opt.background()))
	wf("  <g fill=\"none\" stroke-width=\"%g\" stroke-linecap=\"round\" stroke-linejoin=\"round\">\n", lw)

	for _, s := range place(shapes, m) {
		switch v := s.(type) {
		case *shape.Stroke:
			for _, r := range strokeRuns(v.Points) {
				wf("    <polyline points=\"%s\" %s/>\n", svgPoints(r.pts), svgPaint("stroke", r.color))
			}
		case *shape.Rect:
			n := v.Geometry().Normalize()
			wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" %s/>\n", n.X, n.Y, n.W, n.H, svgPaint("stroke", v.Color))
		}
	}

	wf("  </g>\n")
	wf("</svg>\n")
	if werr != nil {
		return nil, fmt.Errorf("build svg: %w", werr)
	}
	return buf.Bytes(), nil
}

func svgColor(c shape.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// svgPaint renders a fill or stroke attribute, adding an opacity only for
// translucent colours.
func svgPaint(attr string, c shape.Color) string {
	out := fmt.Sprintf("%s=\"%s\"", attr, svgColor(c))
	if c.A != 255 {
		out += fmt.Sprintf(" %s-opacity=\"%s\"", attr, strconv.FormatFloat(vector.FloatRound(float64(c.A)/255, 3), 'f', -1, 64))
	}
	return out
}

func svgPoints(pts []vector.Pt) string {
	var b bytes.Buffer
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
	}
	return b.String()
}

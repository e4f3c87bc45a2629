/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"gowhiteboard/internal/shape"
	"gowhiteboard/internal/version"
)

// ExportPDF writes shapes to a single-page vector PDF. One board pixel maps
// to one point, so the page is sized like the fitted frame.
func ExportPDF(shapes []shape.Shape, path string, opt Options) error {
	w, h, m := opt.frame(shapes)
	pw, ph := float64(w), float64(h)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	pdf.SetTitle("Whiteboard", false)
	pdf.SetAuthor("Go Whiteboard", false)
	pdf.SetCreator("gowhiteboard "+version.String(), false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pw, Ht: ph})

	setFillColor(pdf, opt.background())
	pdf.Rect(0, 0, pw, ph, "F")

	pdf.SetLineWidth(opt.lineWidth())
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	for _, s := range place(shapes, m) {
		switch v := s.(type) {
		case *shape.Stroke:
			for _, r := range strokeRuns(v.Points) {
				setDrawColor(pdf, r.color)
				pdf.MoveTo(r.pts[0].X, r.pts[0].Y)
				for _, p := range r.pts[1:] {
					pdf.LineTo(p.X, p.Y)
				}
				pdf.DrawPath("D")
			}
		case *shape.Rect:
			n := v.Geometry().Normalize()
			setDrawColor(pdf, v.Color)
			pdf.Rect(n.X, n.Y, n.W, n.H, "D")
		}
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c shape.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c shape.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/fogleman/gg"

	"gowhiteboard/internal/shape"
	"gowhiteboard/internal/vector"
)

// ErrEmptySurface is returned when a raster would have no pixels.
var ErrEmptySurface = errors.New("render: surface has zero size")

// DefaultLineWidth matches the board's fixed pen width.
const DefaultLineWidth = 5

// Style holds the pen parameters shared by every primitive.
type Style struct {
	LineWidth float64
}

func (s Style) width() float64 {
	if s.LineWidth <= 0 {
		return DefaultLineWidth
	}
	return s.LineWidth
}

// Raster is an in-memory RGBA surface painted with gg.
type Raster struct {
	mu    sync.Mutex
	dc    *gg.Context
	style Style
}

// NewRaster allocates a w by h surface.
func NewRaster(w, h int, style Style) (*Raster, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptySurface, w, h)
	}
	r := &Raster{style: style}
	r.dc = r.newContext(w, h)
	return r, nil
}

func (r *Raster) newContext(w, h int) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.SetLineWidth(r.style.width())
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	return dc
}

func (r *Raster) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dc.Width(), r.dc.Height()
}

// Resize reallocates the backing image. Non-positive sizes are ignored.
func (r *Raster) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if w == r.dc.Width() && h == r.dc.Height() {
		return
	}
	r.dc = r.newContext(w, h)
}

func (r *Raster) Clear(bg shape.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dc.SetColor(bg)
	r.dc.Clear()
}

func (r *Raster) Segment(a, b vector.Pt, c shape.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dc.SetColor(c)
	r.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	r.dc.Stroke()
}

func (r *Raster) RectOutline(rect vector.Rect, c shape.Color) {
	n := rect.Normalize()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dc.SetColor(c)
	r.dc.DrawRectangle(n.X, n.Y, n.W, n.H)
	r.dc.Stroke()
}

// Image returns a copy of the current pixels.
func (r *Raster) Image() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.dc.Image()
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// SavePNG writes the current pixels to path.
func (r *Raster) SavePNG(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dc.SavePNG(path)
}

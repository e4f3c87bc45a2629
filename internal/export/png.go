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
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"gowhiteboard/internal/render"
	"gowhiteboard/internal/shape"
)

// Rasterize replays shapes onto a fresh raster framed by opt.
func Rasterize(shapes []shape.Shape, opt Options) (*image.RGBA, error) {
	w, h, m := opt.frame(shapes)
	r, err := render.NewRaster(w, h, render.Style{LineWidth: opt.lineWidth()})
	if err != nil {
		return nil, err
	}
	render.Replay(r, opt.background(), place(shapes, m))
	return r.Image(), nil
}

// ExportPNG writes shapes as a PNG image.
func ExportPNG(shapes []shape.Shape, path string, opt Options) error {
	return exportImage(shapes, path, opt, "png", png.Encode)
}

// ExportBMP writes shapes as an uncompressed BMP image.
func ExportBMP(shapes []shape.Shape, path string, opt Options) error {
	return exportImage(shapes, path, opt, "bmp", bmp.Encode)
}

// ExportTIFF writes shapes as a deflate-compressed TIFF image.
func ExportTIFF(shapes []shape.Shape, path string, opt Options) error {
	return exportImage(shapes, path, opt, "tiff", func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	})
}

func exportImage(shapes []shape.Shape, path string, opt Options, format string, enc func(io.Writer, image.Image) error) error {
	img, err := Rasterize(shapes, opt)
	if err != nil {
		return fmt.Errorf("rasterize: %w", err)
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", format, err)
	}
	if err := enc(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", format, err)
	}
	return nil
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// Wire format identifiers.
const (
	FormatName     = "gowhiteboard/drawing"
	CurrentVersion = 1
)

// ErrUnsupportedVersion marks a document written by a newer release.
var ErrUnsupportedVersion = errors.New("unsupported drawing format version")

// ParseError is returned for every input Deserialize refuses. Callers treat
// it as "start with an empty board".
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse drawing: " + e.Reason + ": " + e.Err.Error()
	}
	return "parse drawing: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

//go:embed schema.json
var schemaV1 []byte

//go:embed legacy.schema.json
var schemaLegacy []byte

var (
	schemaOnce             sync.Once
	v1Schema, legacySchema *gojsonschema.Schema
	schemaErr              error
)

func schemas() (*gojsonschema.Schema, *gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		v1Schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaV1))
		if schemaErr != nil {
			return
		}
		legacySchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaLegacy))
	})
	return v1Schema, legacySchema, schemaErr
}

// SchemaV1 exposes the embedded JSON Schema of the current wire format.
func SchemaV1() []byte { return append([]byte(nil), schemaV1...) }

type document struct {
	Format  string      `json:"format"`
	Version int         `json:"version"`
	Shapes  []wireShape `json:"shapes"`
}

type wireShape struct {
	Kind   Kind        `json:"kind"`
	Points []wirePoint `json:"points,omitempty"`
	X      *float64    `json:"x,omitempty"`
	Y      *float64    `json:"y,omitempty"`
	Width  *float64    `json:"width,omitempty"`
	Height *float64    `json:"height,omitempty"`
	Color  string      `json:"color,omitempty"`
}

type wirePoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// Serialize encodes shapes in paint order. The output is deterministic.
func Serialize(shapes []Shape) ([]byte, error) {
	doc := document{Format: FormatName, Version: CurrentVersion, Shapes: make([]wireShape, 0, len(shapes))}
	for i, s := range shapes {
		switch v := s.(type) {
		case *Stroke:
			if len(v.Points) == 0 {
				return nil, fmt.Errorf("serialize shape %d: stroke without points", i)
			}
			w := wireShape{Kind: KindStroke, Points: make([]wirePoint, len(v.Points))}
			for j, p := range v.Points {
				w.Points[j] = wirePoint{X: p.X, Y: p.Y, Color: p.Color.Hex()}
			}
			doc.Shapes = append(doc.Shapes, w)
		case *Rect:
			x, y, wd, ht := v.X, v.Y, v.Width, v.Height
			doc.Shapes = append(doc.Shapes, wireShape{
				Kind: KindRect, X: &x, Y: &y, Width: &wd, Height: &ht, Color: v.Color.Hex(),
			})
		default:
			return nil, fmt.Errorf("serialize shape %d: unknown shape %T", i, s)
		}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize drawing: %w", err)
	}
	return b, nil
}

// Deserialize decodes a document written by Serialize, or a legacy untagged
// array, which is migrated. Every failure is a *ParseError.
func Deserialize(data []byte) ([]Shape, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &ParseError{Reason: "empty input"}
	}
	v1, legacy, err := schemas()
	if err != nil {
		return nil, &ParseError{Reason: "load schema", Err: err}
	}
	if data[0] == '[' {
		return decodeLegacy(legacy, data)
	}

	var head struct {
		Format  string `json:"format"`
		Version int    `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, &ParseError{Reason: "malformed json", Err: err}
	}
	if head.Format != FormatName {
		return nil, &ParseError{Reason: fmt.Sprintf("unknown format %q", head.Format)}
	}
	if head.Version > CurrentVersion {
		return nil, &ParseError{Reason: fmt.Sprintf("version %d", head.Version), Err: ErrUnsupportedVersion}
	}
	if head.Version < 1 {
		return nil, &ParseError{Reason: "missing or invalid version"}
	}
	if err := validate(v1, data); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Reason: "malformed json", Err: err}
	}
	out := make([]Shape, 0, len(doc.Shapes))
	for i, w := range doc.Shapes {
		s, err := w.toShape()
		if err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("shape %d", i), Err: err}
		}
		out = append(out, s)
	}
	return out, nil
}

func (w wireShape) toShape() (Shape, error) {
	switch w.Kind {
	case KindStroke:
		if len(w.Points) == 0 {
			return nil, errors.New("stroke without points")
		}
		pts := make([]Point, len(w.Points))
		for i, p := range w.Points {
			c, err := ParseColor(p.Color)
			if err != nil {
				return nil, err
			}
			pts[i] = Point{X: p.X, Y: p.Y, Color: c}
		}
		return &Stroke{Points: pts}, nil
	case KindRect:
		if w.X == nil || w.Y == nil || w.Width == nil || w.Height == nil {
			return nil, errors.New("rect without geometry")
		}
		c, err := ParseColor(w.Color)
		if err != nil {
			return nil, err
		}
		return &Rect{X: *w.X, Y: *w.Y, Width: *w.Width, Height: *w.Height, Color: c}, nil
	}
	return nil, fmt.Errorf("unknown kind %q", w.Kind)
}

func validate(s *gojsonschema.Schema, data []byte) error {
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &ParseError{Reason: "malformed json", Err: err}
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return &ParseError{Reason: "schema: " + strings.Join(msgs, "; ")}
}

// legacyItem is one element of the untagged array format: a stroke carries
// points, a rectangle carries x/y/width/height/color, or an anchor point plus
// width/height.
type legacyItem struct {
	Points []wirePoint `json:"points"`
	X      *float64    `json:"x"`
	Y      *float64    `json:"y"`
	Width  *float64    `json:"width"`
	Height *float64    `json:"height"`
	Color  string      `json:"color"`
}

func decodeLegacy(s *gojsonschema.Schema, data []byte) ([]Shape, error) {
	if err := validate(s, data); err != nil {
		return nil, err
	}
	var items []legacyItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &ParseError{Reason: "malformed json", Err: err}
	}
	out := make([]Shape, 0, len(items))
	for i, it := range items {
		sh, err := it.migrate()
		if err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("legacy shape %d", i), Err: err}
		}
		out = append(out, sh)
	}
	return out, nil
}

func (it legacyItem) migrate() (Shape, error) {
	if it.Width == nil && it.Height == nil {
		return wireShape{Kind: KindStroke, Points: it.Points}.toShape()
	}
	w := wireShape{Kind: KindRect, X: it.X, Y: it.Y, Width: it.Width, Height: it.Height, Color: it.Color}
	if len(it.Points) > 0 {
		p := it.Points[0]
		w.X, w.Y = &p.X, &p.Y
		if w.Color == "" {
			w.Color = p.Color
		}
	}
	zero := 0.0
	if w.Width == nil {
		w.Width = &zero
	}
	if w.Height == nil {
		w.Height = &zero
	}
	return w.toShape()
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"

	"gowhiteboard/internal/shape"
	"gowhiteboard/internal/vector"
)

type OpKind uint8

const (
	OpResize OpKind = iota + 1
	OpClear
	OpSegment
	OpRect
)

func (k OpKind) String() string {
	switch k {
	case OpResize:
		return "resize"
	case OpClear:
		return "clear"
	case OpSegment:
		return "segment"
	case OpRect:
		return "rect"
	}
	return fmt.Sprintf("op(%d)", uint8(k))
}

// Op is one recorded surface call.
type Op struct {
	Kind  OpKind
	A, B  vector.Pt
	Rect  vector.Rect
	Color shape.Color
	W, H  int
}

// Recorder is a Surface that records calls instead of painting. The board
// tests compare its op streams.
type Recorder struct {
	w, h int
	ops  []Op
}

func NewRecorder(w, h int) *Recorder { return &Recorder{w: w, h: h} }

func (r *Recorder) Size() (int, int) { return r.w, r.h }

func (r *Recorder) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	r.w, r.h = w, h
	r.ops = append(r.ops, Op{Kind: OpResize, W: w, H: h})
}

func (r *Recorder) Clear(bg shape.Color) { r.ops = append(r.ops, Op{Kind: OpClear, Color: bg}) }

func (r *Recorder) Segment(a, b vector.Pt, c shape.Color) {
	r.ops = append(r.ops, Op{Kind: OpSegment, A: a, B: b, Color: c})
}

func (r *Recorder) RectOutline(rect vector.Rect, c shape.Color) {
	r.ops = append(r.ops, Op{Kind: OpRect, Rect: rect.Normalize(), Color: c})
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op { return append([]Op(nil), r.ops...) }

// Reset forgets recorded calls.
func (r *Recorder) Reset() { r.ops = nil }

// Painted returns the calls made since the last Clear, i.e. what is visible.
func (r *Recorder) Painted() []Op {
	start := 0
	for i, op := range r.ops {
		if op.Kind == OpClear || op.Kind == OpResize {
			start = i + 1
		}
	}
	return append([]Op(nil), r.ops[start:]...)
}

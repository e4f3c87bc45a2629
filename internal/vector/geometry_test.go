/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestFromCornersKeepsSignedExtent(t *testing.T) {
	r := FromCorners(Pt{100, 100}, Pt{40, 60})
	if r.X != 100 || r.Y != 100 || r.W != -60 || r.H != -40 {
		t.Fatalf("unexpected signed rect: %+v", r)
	}
	n := r.Normalize()
	if n != R(40, 60, 60, 40) {
		t.Fatalf("unexpected normalized rect: %+v", n)
	}
	if !r.Contains(Pt{50, 70}) || r.Contains(Pt{101, 70}) {
		t.Fatalf("Contains must use the normalized region")
	}
	if r.Min() != (Pt{40, 60}) || r.Max() != (Pt{100, 100}) {
		t.Fatalf("Min/Max: %+v %+v", r.Min(), r.Max())
	}
}

func TestUnionNormalizesInputs(t *testing.T) {
	u := R(0, 0, 10, 10).Union(R(30, 30, -10, -10))
	if u != R(0, 0, 30, 30) {
		t.Fatalf("unexpected union: %+v", u)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 {
		t.Fatalf("unexpected transform result: %+v", p)
	}
	r := m.ApplyRect(R(0, 0, 1, 1))
	if r != R(10, 5, 2, 3) {
		t.Fatalf("unexpected rect transform: %+v", r)
	}
}

func TestFloatRound(t *testing.T) {
	if got := FloatRound(1.23456, 2); got != 1.23 {
		t.Fatalf("FloatRound = %v", got)
	}
	if got := FloatRound(1.5, -1); got != 1.5 {
		t.Fatalf("negative places must be identity, got %v", got)
	}
}

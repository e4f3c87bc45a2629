/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestPathBounds(t *testing.T) {
	var p Path
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(0, 10)
	p.Close()

	b, ok := p.Bounds()
	if !ok || b.X != 0 || b.Y != 0 || b.W != 10 || b.H != 10 {
		t.Fatalf("unexpected bounds: %+v ok=%v", b, ok)
	}
}

func TestPolylineBoundsNegativeCoords(t *testing.T) {
	p := Polyline([]Pt{{-5, 3}, {7, -2}, {1, 1}})
	if len(p.Cmds) != 3 || p.Cmds[0].Op != MoveTo || p.Cmds[2].Op != LineTo {
		t.Fatalf("unexpected commands: %+v", p.Cmds)
	}
	b, ok := p.Bounds()
	if !ok || b != R(-5, -2, 12, 5) {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestEmptyPathHasNoBounds(t *testing.T) {
	var p Path
	if _, ok := p.Bounds(); ok {
		t.Fatalf("empty path must report ok=false")
	}
}

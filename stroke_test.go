// seehuhn.de/go/vectorize - trace raster images into vector paths
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package vectorize

import (
	"image"
	"image/color"
	"math"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

func squarePath(x0, y0, x1, y1 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: x0, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y1}).
		LineTo(vec.Vec2{X: x0, Y: y1}).
		Close()
}

// strokeArea returns the total coverage of the stroked path.
func strokeArea(r *Rasteriser, p *path.Data) float64 {
	total := 0.0
	r.Stroke(p, func(_, _ int, coverage []float32) {
		for _, c := range coverage {
			total += float64(c)
		}
	})
	return total
}

func TestStrokeJoins(t *testing.T) {
	// A square of side 10, stroked with width 2. The miter outline covers
	// 12x12 - 8x8 pixels; bevel joins cut half a pixel at each of the
	// four outer corners; round joins lie in between.
	square := squarePath(10, 10, 20, 20)

	tests := []struct {
		join     graphics.LineJoinStyle
		min, max float64
	}{
		{graphics.LineJoinMiter, 80 - 1e-3, 80 + 1e-3},
		{graphics.LineJoinBevel, 78 - 1e-3, 78 + 1e-3},
		{graphics.LineJoinRound, 78.5, 79.2},
	}
	for _, tt := range tests {
		r := NewRasteriser(rect.Rect{URx: 30, URy: 30})
		r.Width = 2
		r.Join = tt.join
		if got := strokeArea(r, square); got < tt.min || got > tt.max {
			t.Errorf("join %v: area %.3f outside [%.3f, %.3f]", tt.join, got, tt.min, tt.max)
		}
	}
}

func TestStrokeMiterLimit(t *testing.T) {
	square := squarePath(10, 10, 20, 20)

	// right angles need a miter limit of at least sqrt(2)
	r := NewRasteriser(rect.Rect{URx: 30, URy: 30})
	r.Width = 2
	r.MiterLimit = 1.4
	if got := strokeArea(r, square); math.Abs(got-78) > 1e-3 {
		t.Errorf("area %.3f, want bevelled 78", got)
	}
}

func TestStrokeOrientation(t *testing.T) {
	// the outline must not depend on the direction of the subpath
	cw := squarePath(10, 10, 20, 20)
	ccw := (&path.Data{}).
		MoveTo(vec.Vec2{X: 10, Y: 10}).
		LineTo(vec.Vec2{X: 10, Y: 20}).
		LineTo(vec.Vec2{X: 20, Y: 20}).
		LineTo(vec.Vec2{X: 20, Y: 10}).
		Close()

	r := NewRasteriser(rect.Rect{URx: 30, URy: 30})
	r.Width = 2
	a, b := strokeArea(r, cw), strokeArea(r, ccw)
	if math.Abs(a-b) > 1e-3 {
		t.Errorf("clockwise %.3f != counter-clockwise %.3f", a, b)
	}
}

func TestStrokeOpen(t *testing.T) {
	line := (&path.Data{}).
		MoveTo(vec.Vec2{X: 5, Y: 5}).
		LineTo(vec.Vec2{X: 15, Y: 5})

	r := NewRasteriser(rect.Rect{URx: 20, URy: 10})
	r.Width = 2
	if got := strokeArea(r, line); math.Abs(got-20) > 1e-3 {
		t.Errorf("area %.3f, want 20", got)
	}

	r.Width = 0
	if got := strokeArea(r, line); got != 0 {
		t.Errorf("zero width: area %.3f, want 0", got)
	}

	dot := (&path.Data{}).MoveTo(vec.Vec2{X: 5, Y: 5}).Close()
	r.Width = 2
	if got := strokeArea(r, dot); got != 0 {
		t.Errorf("zero length: area %.3f, want 0", got)
	}
}

func TestStrokeCurve(t *testing.T) {
	// a circle of radius 8, stroked with width 2, covers about the
	// annulus between radius 7 and 9
	const kappa = 0.5522847498
	c := vec.Vec2{X: 16, Y: 16}
	const rad = 8.0
	k := kappa * rad
	circle := (&path.Data{}).
		MoveTo(c.Add(vec.Vec2{X: rad})).
		CubeTo(c.Add(vec.Vec2{X: rad, Y: k}), c.Add(vec.Vec2{X: k, Y: rad}), c.Add(vec.Vec2{Y: rad})).
		CubeTo(c.Add(vec.Vec2{X: -k, Y: rad}), c.Add(vec.Vec2{X: -rad, Y: k}), c.Add(vec.Vec2{X: -rad})).
		CubeTo(c.Add(vec.Vec2{X: -rad, Y: -k}), c.Add(vec.Vec2{X: -k, Y: -rad}), c.Add(vec.Vec2{Y: -rad})).
		CubeTo(c.Add(vec.Vec2{X: k, Y: -rad}), c.Add(vec.Vec2{X: rad, Y: -k}), c.Add(vec.Vec2{X: rad})).
		Close()

	r := NewRasteriser(rect.Rect{URx: 32, URy: 32})
	r.Width = 2
	r.Join = graphics.LineJoinRound
	want := math.Pi * (9*9 - 7*7)
	if got := strokeArea(r, circle); math.Abs(got-want) > 0.02*want {
		t.Errorf("area %.2f, want %.2f", got, want)
	}
}

func TestDrawOutlines(t *testing.T) {
	doc := &Document{
		Width:  15,
		Height: 15,
		Paths: []Path{
			{Color: color.NRGBA{B: 255, A: 255}, Data: squarePath(5, 5, 10, 10)},
		},
	}
	dst := image.NewNRGBA(image.Rect(0, 0, 30, 30))
	red := color.NRGBA{R: 255, A: 255}
	DrawOutlines(dst, doc, matrix.Scale(2, 2), 2, red)

	// the boundary x=5 maps to pixel column 10, the line covers columns 9 and 10
	for _, x := range []int{9, 10} {
		if got := dst.NRGBAAt(x, 15); got != red {
			t.Errorf("pixel (%d,15) = %v, want %v", x, got, red)
		}
	}
	for _, pt := range []image.Point{{15, 15}, {8, 15}, {11, 15}, {0, 0}} {
		if got := dst.NRGBAAt(pt.X, pt.Y); got.A != 0 {
			t.Errorf("pixel %v = %v, want transparent", pt, got)
		}
	}
}

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

package testcases

import (
	"image"
	"math"

	"golang.org/x/image/colornames"
	"seehuhn.de/go/geom/path"
)

// kappa for cubic Bezier approximation of a quarter circle
const kappa = 0.5522847498307936

var shapeCases = []TestCase{
	{
		Name:   "disc",
		Width:  48,
		Height: 48,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.White)
			fillDisc(img, 24, 24, 18, colornames.Royalblue)
		},
		Colors:   2,
		Regions4: 2,
		Regions8: 2,
	},
	{
		Name:   "triangle",
		Width:  48,
		Height: 48,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.White)
			fillPath(img, triangle(6, 42, 24, 6, 42, 42), colornames.Seagreen, false)
		},
		Colors:   2,
		Regions4: 2,
		Regions8: 2,
	},
	{
		Name:   "star",
		Width:  64,
		Height: 64,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.Midnightblue)
			fillPath(img, fivePointStar(32, 32, 28), colornames.Gold, false)
		},
		Colors: 2,
	},
	{
		Name:   "rounded_rect",
		Width:  64,
		Height: 40,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.Whitesmoke)
			fillPath(img, roundedRect(4, 4, 60, 36, 10), colornames.Tomato, false)
		},
		Colors:   2,
		Regions4: 2,
		Regions8: 2,
	},
	{
		Name:   "circle_antialiased",
		Width:  64,
		Height: 64,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.White)
			fillPath(img, circle(32, 32, 25), colornames.Black, true)
		},
	},
	{
		Name:   "overlapping_discs",
		Width:  64,
		Height: 48,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.White)
			fillDisc(img, 22, 24, 16, colornames.Red)
			fillDisc(img, 42, 24, 16, colornames.Blue)
		},
		Colors:   3,
		Regions4: 3,
		Regions8: 3,
	},
}

// triangle builds a triangular path.
func triangle(x1, y1, x2, y2, x3, y3 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(pt(x1, y1)).
		LineTo(pt(x2, y2)).
		LineTo(pt(x3, y3)).
		Close()
}

// fivePointStar builds a five-pointed star with the given outer radius.
func fivePointStar(cx, cy, r float64) *path.Data {
	inner := r * 0.382
	p := &path.Data{}
	for i := range 10 {
		radius := r
		if i%2 == 1 {
			radius = inner
		}
		angle := -math.Pi/2 + float64(i)*math.Pi/5
		v := pt(cx+radius*math.Cos(angle), cy+radius*math.Sin(angle))
		if i == 0 {
			p = p.MoveTo(v)
		} else {
			p = p.LineTo(v)
		}
	}
	return p.Close()
}

// circle builds a circle from four cubic Bezier arcs.
func circle(cx, cy, r float64) *path.Data {
	k := kappa * r
	return (&path.Data{}).
		MoveTo(pt(cx+r, cy)).
		CubeTo(pt(cx+r, cy+k), pt(cx+k, cy+r), pt(cx, cy+r)).
		CubeTo(pt(cx-k, cy+r), pt(cx-r, cy+k), pt(cx-r, cy)).
		CubeTo(pt(cx-r, cy-k), pt(cx-k, cy-r), pt(cx, cy-r)).
		CubeTo(pt(cx+k, cy-r), pt(cx+r, cy-k), pt(cx+r, cy)).
		Close()
}

// roundedRect builds a rectangle with quarter-circle corners of radius r.
func roundedRect(x0, y0, x1, y1, r float64) *path.Data {
	k := kappa * r
	return (&path.Data{}).
		MoveTo(pt(x0+r, y0)).
		LineTo(pt(x1-r, y0)).
		CubeTo(pt(x1-r+k, y0), pt(x1, y0+r-k), pt(x1, y0+r)).
		LineTo(pt(x1, y1-r)).
		CubeTo(pt(x1, y1-r+k), pt(x1-r+k, y1), pt(x1-r, y1)).
		LineTo(pt(x0+r, y1)).
		CubeTo(pt(x0+r-k, y1), pt(x0, y1-r+k), pt(x0, y1-r)).
		LineTo(pt(x0, y0+r)).
		CubeTo(pt(x0, y0+r-k), pt(x0+r-k, y0), pt(x0+r, y0)).
		Close()
}

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
	"image/color"

	"golang.org/x/image/colornames"
)

var patternCases = []TestCase{
	{
		Name:     "checkerboard",
		Width:    32,
		Height:   32,
		Draw:     checkerboard(4, colornames.Black, colornames.White),
		Colors:   2,
		Regions4: 64,
		Regions8: 2,
	},
	{
		Name:     "checkerboard_pixels",
		Width:    8,
		Height:   8,
		Draw:     checkerboard(1, colornames.Crimson, colornames.Linen),
		Colors:   2,
		Regions4: 64,
		Regions8: 2,
	},
	{
		Name:   "stripes_horizontal",
		Width:  20,
		Height: 20,
		Draw: func(img *image.NRGBA) {
			for i := range 5 {
				c := colornames.Red
				if i%2 == 1 {
					c = colornames.White
				}
				fillRect(img, image.Rect(0, 4*i, 20, 4*i+4), c)
			}
		},
		Colors:   2,
		Regions4: 5,
		Regions8: 5,
	},
	{
		Name:   "stripes_vertical",
		Width:  18,
		Height: 12,
		Draw: func(img *image.NRGBA) {
			cols := []color.RGBA{colornames.Teal, colornames.Coral, colornames.Khaki}
			for i := range 6 {
				fillRect(img, image.Rect(3*i, 0, 3*i+3, 12), cols[i%3])
			}
		},
		Colors:   3,
		Regions4: 6,
		Regions8: 6,
	},
	{
		Name:   "diagonal_split",
		Width:  16,
		Height: 16,
		Draw: func(img *image.NRGBA) {
			for y := range 16 {
				for x := range 16 {
					c := colornames.Purple
					if x > y {
						c = colornames.Yellow
					}
					img.Set(x, y, c)
				}
			}
		},
		Colors:   2,
		Regions4: 2,
		Regions8: 2,
	},
	{
		Name:   "diagonal_line",
		Width:  16,
		Height: 16,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.White)
			for i := range 16 {
				img.Set(i, i, colornames.Black)
			}
		},
		Colors:   2,
		Regions4: 18,
		Regions8: 2,
	},
}

// checkerboard returns a function drawing a checkerboard with square
// cells of the given size.
func checkerboard(cell int, a, b color.Color) func(img *image.NRGBA) {
	return func(img *image.NRGBA) {
		r := img.Rect
		for y := r.Min.Y; y < r.Max.Y; y += cell {
			for x := r.Min.X; x < r.Max.X; x += cell {
				c := a
				if (x/cell+y/cell)%2 == 1 {
					c = b
				}
				fillRect(img, image.Rect(x, y, x+cell, y+cell).Intersect(r), c)
			}
		}
	}
}

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

	"golang.org/x/image/colornames"
)

var basicCases = []TestCase{
	{
		Name:   "solid",
		Width:  16,
		Height: 16,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.Steelblue)
		},
		Colors:   1,
		Regions4: 1,
		Regions8: 1,
	},
	{
		Name:   "single_pixel",
		Width:  1,
		Height: 1,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.Red)
		},
		Colors:   1,
		Regions4: 1,
		Regions8: 1,
	},
	{
		Name:   "halves",
		Width:  16,
		Height: 16,
		Draw: func(img *image.NRGBA) {
			fillRect(img, image.Rect(0, 0, 8, 16), colornames.Red)
			fillRect(img, image.Rect(8, 0, 16, 16), colornames.Blue)
		},
		Colors:   2,
		Regions4: 2,
		Regions8: 2,
	},
	{
		Name:   "frame",
		Width:  20,
		Height: 20,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.Black)
			fillRect(img, image.Rect(2, 2, 18, 18), colornames.White)
		},
		Colors:   2,
		Regions4: 2,
		Regions8: 2,
	},
	{
		Name:   "ring_hole",
		Width:  24,
		Height: 24,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.White)
			fillRect(img, image.Rect(4, 4, 20, 20), colornames.Black)
			fillRect(img, image.Rect(9, 9, 15, 15), colornames.White)
		},
		Colors:   2,
		Regions4: 3,
		Regions8: 3,
	},
	{
		Name:   "nested",
		Width:  24,
		Height: 24,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.Ivory)
			fillRect(img, image.Rect(3, 3, 21, 21), colornames.Navy)
			fillRect(img, image.Rect(8, 8, 16, 16), colornames.Gold)
		},
		Colors:   3,
		Regions4: 3,
		Regions8: 3,
	},
	{
		Name:   "two_holes",
		Width:  30,
		Height: 16,
		Draw: func(img *image.NRGBA) {
			fillRect(img, img.Rect, colornames.Darkgreen)
			fillRect(img, image.Rect(4, 4, 12, 12), colornames.White)
			fillRect(img, image.Rect(18, 4, 26, 12), colornames.White)
		},
		Colors:   2,
		Regions4: 3,
		Regions8: 3,
	},
	{
		Name:   "transparent",
		Width:  12,
		Height: 12,
		Draw: func(img *image.NRGBA) {
			// the background stays fully transparent
			fillRect(img, image.Rect(3, 3, 9, 9), colornames.Orange)
		},
		Colors:   2,
		Regions4: 2,
		Regions8: 2,
	},
}

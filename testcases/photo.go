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
	"math/rand/v2"

	"golang.org/x/image/colornames"
)

var photoCases = []TestCase{
	{
		Name:   "gradient",
		Width:  64,
		Height: 16,
		Draw: func(img *image.NRGBA) {
			for x := range 64 {
				v := uint8(x * 255 / 63)
				fillRect(img, image.Rect(x, 0, x+1, 16), color.NRGBA{R: v, G: v, B: v, A: 255})
			}
		},
		Colors:   64,
		Regions4: 64,
		Regions8: 64,
	},
	{
		Name:   "noise",
		Width:  32,
		Height: 32,
		Draw:   noise(1, 8),
	},
	{
		Name:   "alpha_gradient",
		Width:  32,
		Height: 8,
		Draw: func(img *image.NRGBA) {
			for x := range 32 {
				c := color.NRGBA{R: 200, G: 30, B: 30, A: uint8(x * 8)}
				fillRect(img, image.Rect(x, 0, x+1, 8), c)
			}
		},
		Colors:   32,
		Regions4: 32,
		Regions8: 32,
	},
}

var largeCases = []TestCase{
	{
		Name:   "scene",
		Width:  512,
		Height: 512,
		Draw: func(img *image.NRGBA) {
			for y := range 512 {
				c := color.NRGBA{R: 40, G: uint8(80 + y/4), B: 220, A: 255}
				fillRect(img, image.Rect(0, y, 512, y+1), c)
			}
			fillDisc(img, 380, 110, 60, colornames.Gold)
			fillRect(img, image.Rect(0, 400, 512, 512), colornames.Forestgreen)
			fillPath(img, triangle(60, 400, 180, 200, 300, 400), colornames.Slategray, true)
			fillPath(img, fivePointStar(120, 90, 40), colornames.White, false)
		},
	},
	{
		Name:   "noise",
		Width:  256,
		Height: 256,
		Draw:   noise(2, 16),
	},
}

// noise returns a function filling the image with pixels chosen at random
// from a fixed set of colours. The result only depends on seed.
func noise(seed uint64, colors int) func(img *image.NRGBA) {
	return func(img *image.NRGBA) {
		rng := rand.New(rand.NewPCG(seed, 0x5eed))
		palette := make([]color.NRGBA, colors)
		for i := range palette {
			palette[i] = color.NRGBA{
				R: uint8(rng.IntN(256)),
				G: uint8(rng.IntN(256)),
				B: uint8(rng.IntN(256)),
				A: 255,
			}
		}
		r := img.Rect
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetNRGBA(x, y, palette[rng.IntN(colors)])
			}
		}
	}
}

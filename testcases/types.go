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

// Package testcases provides synthetic raster images for testing and
// benchmarking the tracing pipeline.
package testcases

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// TestCase defines a single input image.
type TestCase struct {
	Name   string // lowercase a-z, 0-9 and _ only
	Width  int    // image width in pixels
	Height int    // image height in pixels

	// Draw paints the image onto a transparent canvas of the given size.
	Draw func(img *image.NRGBA)

	// Colors is the number of distinct colours, or 0 if unknown.
	Colors int

	// Regions4 and Regions8 give the number of connected same-colour
	// regions for 4- and 8-connectivity, or 0 if unknown.
	Regions4 int
	Regions8 int
}

// Image returns a freshly drawn copy of the test image.
func (tc TestCase) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, tc.Width, tc.Height))
	tc.Draw(img)
	return img
}

// fillRect paints the rectangle r with colour c.
func fillRect(img *image.NRGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// fillDisc paints all pixels whose centre lies inside the given circle.
func fillDisc(img *image.NRGBA, cx, cy, radius float64, c color.Color) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, c)
			}
		}
	}
}

// fillPath paints the interior of p (nonzero rule) with colour c.
// If antiAlias is false, pixels are painted when at least half covered,
// so that no intermediate colours appear.
func fillPath(img *image.NRGBA, p *path.Data, c color.Color, antiAlias bool) {
	b := img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			z.MoveTo(f32(p.Coords[k]))
			k++
		case path.CmdLineTo:
			z.LineTo(f32(p.Coords[k]))
			k++
		case path.CmdQuadTo:
			x1, y1 := f32(p.Coords[k])
			x2, y2 := f32(p.Coords[k+1])
			z.QuadTo(x1, y1, x2, y2)
			k += 2
		case path.CmdCubeTo:
			x1, y1 := f32(p.Coords[k])
			x2, y2 := f32(p.Coords[k+1])
			x3, y3 := f32(p.Coords[k+2])
			z.CubeTo(x1, y1, x2, y2, x3, y3)
			k += 3
		case path.CmdClose:
			z.ClosePath()
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	if !antiAlias {
		for i, a := range mask.Pix {
			if a >= 128 {
				mask.Pix[i] = 255
			} else {
				mask.Pix[i] = 0
			}
		}
	}
	draw.DrawMask(img, b, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

func f32(v vec.Vec2) (float32, float32) {
	return float32(v.X), float32(v.Y)
}

// pt is a helper to create a vec.Vec2 from x, y coordinates.
func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

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

	"golang.org/x/image/draw"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf/graphics"
)

// Render rasterises doc onto a transparent canvas, with every document
// pixel mapped to scale×scale output pixels. Paths are painted in
// document order using anti-aliased nonzero fills.
func Render(doc *Document, scale float64) *image.NRGBA {
	if !(scale > 0) {
		scale = 1
	}
	w := max(1, int(math.Ceil(float64(doc.Width)*scale)))
	h := max(1, int(math.Ceil(float64(doc.Height)*scale)))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	r := NewRasteriser(rect.Rect{URx: float64(w), URy: float64(h)})
	r.CTM = matrix.Scale(scale, scale)
	mask := image.NewAlpha(dst.Rect)
	for _, p := range doc.Paths {
		if p.Data == nil || p.Color.A == 0 {
			continue
		}
		paint(dst, mask, p.Color, func(emit func(y, xMin int, coverage []float32)) {
			r.FillNonZero(p.Data, emit)
		})
	}
	return dst
}

// DrawOutlines draws the boundaries of all paths of doc onto dst, using
// lines of the given width and colour. The matrix ctm maps document
// coordinates to pixels of dst; width is measured in pixels of dst.
func DrawOutlines(dst *image.NRGBA, doc *Document, ctm matrix.Matrix, width float64, c color.NRGBA) {
	b := dst.Bounds()
	r := NewRasteriser(rect.Rect{
		LLx: float64(b.Min.X), LLy: float64(b.Min.Y),
		URx: float64(b.Max.X), URy: float64(b.Max.Y),
	})
	r.CTM = ctm
	r.Join = graphics.LineJoinRound

	// convert the width to document units
	scale := math.Sqrt(math.Abs(ctm[0]*ctm[3] - ctm[1]*ctm[2]))
	if scale == 0 {
		return
	}
	r.Width = width / scale

	mask := image.NewAlpha(b)
	for _, p := range doc.Paths {
		if p.Data == nil {
			continue
		}
		paint(dst, mask, c, func(emit func(y, xMin int, coverage []float32)) {
			r.Stroke(p.Data, emit)
		})
	}
}

// paint composites colour c onto dst, using the coverage produced by
// render as the mask. The mask must be fully transparent on entry and is
// cleared again before paint returns.
func paint(dst *image.NRGBA, mask *image.Alpha, c color.NRGBA, render func(emit func(y, xMin int, coverage []float32))) {
	touched := image.Rectangle{}
	render(func(y, xMin int, coverage []float32) {
		row := mask.Pix[mask.PixOffset(xMin, y):]
		for i, v := range coverage {
			row[i] = uint8(v*255 + 0.5)
		}
		touched = touched.Union(image.Rect(xMin, y, xMin+len(coverage), y+1))
	})
	if touched.Empty() {
		return
	}
	draw.DrawMask(dst, touched, image.NewUniform(c), image.Point{}, mask, touched.Min, draw.Over)
	for y := touched.Min.Y; y < touched.Max.Y; y++ {
		clear(mask.Pix[mask.PixOffset(touched.Min.X, y):mask.PixOffset(touched.Max.X, y)])
	}
}

// Compare renders doc next to the source image for visual inspection.
// The source is enlarged by the same scale factor using nearest-neighbour
// sampling, so that individual pixels stay visible. Both halves are drawn
// on a white background.
func Compare(src *Image, doc *Document, scale float64) *image.NRGBA {
	if !(scale > 0) {
		scale = 1
	}
	rendered := Render(doc, scale)
	b := rendered.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, 2*b.Dx()+compareGap, b.Dy()))
	draw.Draw(out, out.Rect, image.NewUniform(color.White), image.Point{}, draw.Src)

	left := image.Rect(0, 0, b.Dx(), b.Dy())
	draw.NearestNeighbor.Scale(out, left, imageView{src}, image.Rect(0, 0, src.Width, src.Height), draw.Over, nil)

	right := b.Add(image.Pt(b.Dx()+compareGap, 0))
	draw.Draw(out, right, rendered, image.Point{}, draw.Over)
	return out
}

// CompareOutlined is like [Compare], but also draws the path boundaries
// over the traced half of the image, using lines of the given width in
// output pixels.
func CompareOutlined(src *Image, doc *Document, scale, width float64) *image.NRGBA {
	if !(scale > 0) {
		scale = 1
	}
	out := Compare(src, doc, scale)
	offset := float64((out.Rect.Dx() + compareGap) / 2)
	ctm := matrix.Matrix{scale, 0, 0, scale, offset, 0}
	DrawOutlines(out, doc, ctm, width, outlineColor)
	return out
}

// imageView adapts an [Image] to the [image.Image] interface.
type imageView struct {
	img *Image
}

func (v imageView) ColorModel() color.Model { return color.NRGBAModel }

func (v imageView) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.img.Width, v.img.Height)
}

func (v imageView) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= v.img.Width || y >= v.img.Height {
		return color.NRGBA{}
	}
	return v.img.At(x, y)
}

// compareGap is the width of the white separator in [Compare] output.
const compareGap = 8

var outlineColor = color.NRGBA{R: 255, G: 0, B: 200, A: 200}

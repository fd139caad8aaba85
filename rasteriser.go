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
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// edge is a non-horizontal line segment in device coordinates.
type edge struct {
	x0, y0 float64 // start point
	x1, y1 float64 // end point
	dxdy   float64 // (x1-x0)/(y1-y0)
}

func (e *edge) yMin() float64 { return min(e.y0, e.y1) }
func (e *edge) yMax() float64 { return max(e.y0, e.y1) }

// Rasteriser computes anti-aliased pixel coverage for filled paths.
// It is used to render previews of traced documents and to check traced
// outlines against their source pixels.
//
// Buffers are reused between calls. A Rasteriser is not safe for
// concurrent use.
type Rasteriser struct {
	// CTM maps path coordinates to device pixels. Must be non-singular.
	CTM matrix.Matrix

	// Clip is the device-space output rectangle.
	// Coordinates must be integer-aligned.
	Clip rect.Rect

	// Flatness is the curve flattening tolerance in device pixels. Must be > 0.
	Flatness float64

	// Width, Join and MiterLimit control [Rasteriser.Stroke].
	// Width is given in path coordinates.
	Width      float64
	Join       graphics.LineJoinStyle
	MiterLimit float64

	edges     []edge
	active    []int     // indices of edges crossing the current scanline
	cover     []float32 // signed vertical extent per pixel; reused as output
	area      []float32 // signed area right of the crossing, per pixel
	crossings []float64 // y values where an edge crosses pixel columns

	segs     []strokeSegment // flattened subpaths, for stroking
	subpaths []subpathRange
	reversed []strokeSegment
	outline  []vec.Vec2 // stroke outline polygons
	polygons []int      // start of each polygon in outline

	bboxEmpty bool
	bbox      rect.Rect // device-space bounding box of edges
}

// NewRasteriser returns a Rasteriser with the given clip rectangle, an
// identity transformation and the default flatness.
func NewRasteriser(clip rect.Rect) *Rasteriser {
	return &Rasteriser{
		CTM:        matrix.Identity,
		Clip:       clip,
		Flatness:   defaultFlatness,
		Width:      1,
		Join:       graphics.LineJoinMiter,
		MiterLimit: defaultMiterLimit,
	}
}

// FillNonZero fills the path using the nonzero winding rule. Coverage
// values in [0, 1] are passed to emit one scanline at a time; the slice is
// only valid during the call.
func (r *Rasteriser) FillNonZero(p *path.Data, emit func(y, xMin int, coverage []float32)) {
	r.fill(p, false, emit)
}

// FillEvenOdd is like [Rasteriser.FillNonZero] but uses the even-odd rule.
func (r *Rasteriser) FillEvenOdd(p *path.Data, emit func(y, xMin int, coverage []float32)) {
	r.fill(p, true, emit)
}

func (r *Rasteriser) fill(p *path.Data, evenOdd bool, emit func(y, xMin int, coverage []float32)) {
	r.collectEdges(p)
	r.scan(evenOdd, emit)
}

// scan converts the edge list into coverage values, one scanline at a time.
func (r *Rasteriser) scan(evenOdd bool, emit func(y, xMin int, coverage []float32)) {
	if len(r.edges) == 0 {
		return
	}

	xMin := max(int(math.Floor(r.bbox.LLx)), int(r.Clip.LLx))
	xMax := min(int(math.Floor(r.bbox.URx))+1, int(r.Clip.URx))
	yMin := max(int(math.Floor(r.bbox.LLy)), int(r.Clip.LLy))
	yMax := min(int(math.Floor(r.bbox.URy))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return
	}
	width := xMax - xMin

	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(a.yMin(), b.yMin())
	})
	r.active = r.active[:0]
	nextEdge := 0

	for y := yMin; y < yMax; y++ {
		top, bottom := float64(y), float64(y+1)

		for nextEdge < len(r.edges) && r.edges[nextEdge].yMin() < bottom {
			r.active = append(r.active, nextEdge)
			nextEdge++
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.active); {
			e := &r.edges[r.active[i]]
			if e.yMax() <= top {
				r.active[i] = r.active[len(r.active)-1]
				r.active = r.active[:len(r.active)-1]
				continue
			}
			if r.accumulate(e, y, xMin, xMax) {
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		integrate(r.cover, r.area, evenOdd)
		lo, hi := 0, width
		for lo < hi && r.cover[lo] == 0 {
			lo++
		}
		for hi > lo && r.cover[hi-1] == 0 {
			hi--
		}
		if lo < hi {
			emit(y, xMin+lo, r.cover[lo:hi])
		}
	}
}

// resetEdges clears the edge list and its bounding box.
func (r *Rasteriser) resetEdges() {
	r.edges = r.edges[:0]
	r.bboxEmpty = true
}

// collectEdges flattens the path into device-space edges.
func (r *Rasteriser) collectEdges(p *path.Data) {
	r.resetEdges()

	var current, start vec.Vec2
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			current = p.Coords[k]
			start = current
			k++
		case path.CmdLineTo:
			r.addEdge(current, p.Coords[k])
			current = p.Coords[k]
			k++
		case path.CmdQuadTo:
			r.flattenQuadratic(current, p.Coords[k], p.Coords[k+1], r.addEdge)
			current = p.Coords[k+1]
			k += 2
		case path.CmdCubeTo:
			r.flattenCubic(current, p.Coords[k], p.Coords[k+1], p.Coords[k+2], r.addEdge)
			current = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			if current != start {
				r.addEdge(current, start)
			}
			current = start
		}
	}
}

func (r *Rasteriser) toDevice(p vec.Vec2) vec.Vec2 {
	m := r.CTM
	return vec.Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// deviceLength returns the device-space length of the user-space vector v.
func (r *Rasteriser) deviceLength(v vec.Vec2) float64 {
	m := r.CTM
	return vec.Vec2{X: m[0]*v.X + m[2]*v.Y, Y: m[1]*v.X + m[3]*v.Y}.Length()
}

// flattenQuadratic approximates a quadratic Bézier by line segments,
// which are passed to add.
func (r *Rasteriser) flattenQuadratic(p0, p1, p2 vec.Vec2, add func(a, b vec.Vec2)) {
	dev := r.deviceLength(p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25))
	n := 1
	if dev > r.Flatness {
		n = int(math.Ceil(math.Sqrt(dev / r.Flatness)))
	}
	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		q := p0.Mul(s * s).Add(p1.Mul(2 * s * t)).Add(p2.Mul(t * t))
		add(prev, q)
		prev = q
	}
}

// flattenCubic approximates a cubic Bézier by line segments, which are
// passed to add. The number of segments follows Wang's formula.
func (r *Rasteriser) flattenCubic(p0, p1, p2, p3 vec.Vec2, add func(a, b vec.Vec2)) {
	dd := max(
		r.deviceLength(p0.Sub(p1.Mul(2)).Add(p2)),
		r.deviceLength(p1.Sub(p2.Mul(2)).Add(p3)),
	)
	n := 1
	if dd > 0 {
		n = max(1, int(math.Ceil(math.Sqrt(3*dd/(4*r.Flatness)))))
	}
	prev := p0
	for i := 1; i <= n; i++ {
		q := bezierPoint([4]vec.Vec2{p0, p1, p2, p3}, float64(i)/float64(n))
		add(prev, q)
		prev = q
	}
}

// addEdge transforms a user-space line segment to device space and adds it
// to the edge list.
func (r *Rasteriser) addEdge(from, to vec.Vec2) {
	a, b := r.toDevice(from), r.toDevice(to)
	dy := b.Y - a.Y
	if math.Abs(dy) < horizontalEdgeThreshold {
		return
	}
	r.edges = append(r.edges, edge{
		x0: a.X, y0: a.Y,
		x1: b.X, y1: b.Y,
		dxdy: (b.X - a.X) / dy,
	})

	box := rect.Rect{
		LLx: min(a.X, b.X), LLy: min(a.Y, b.Y),
		URx: max(a.X, b.X), URy: max(a.Y, b.Y),
	}
	if r.bboxEmpty {
		r.bbox = box
		r.bboxEmpty = false
	} else {
		r.bbox = rect.Rect{
			LLx: min(r.bbox.LLx, box.LLx), LLy: min(r.bbox.LLy, box.LLy),
			URx: max(r.bbox.URx, box.URx), URy: max(r.bbox.URy, box.URy),
		}
	}
}

// The coverage of scanline y is accumulated in two buffers, indexed by
// x - xMin. For every piece of an edge inside one pixel,
//
//	cover += sign * dy
//	area  += sign * dy * (1 - xFrac)
//
// where dy is the vertical extent of the piece and xFrac is the horizontal
// position of its midpoint within the pixel. Pieces left of the clip
// rectangle are folded into the first pixel. The running sum of cover plus
// the area of the current pixel gives the signed coverage.

// accumulate adds the contribution of e to scanline y and reports whether
// the edge intersects the scanline.
func (r *Rasteriser) accumulate(e *edge, y, xMin, xMax int) bool {
	top := max(float64(y), e.yMin())
	bottom := min(float64(y+1), e.yMax())
	if bottom <= top {
		return false
	}
	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xTop := e.x0 + e.dxdy*(top-e.y0)
	xBottom := e.x0 + e.dxdy*(bottom-e.y0)
	colLeft := int(math.Floor(min(xTop, xBottom)))
	colRight := int(math.Floor(max(xTop, xBottom)))

	if colLeft >= xMax {
		return true
	}

	// split the edge where it crosses pixel column boundaries
	r.crossings = append(r.crossings[:0], top, bottom)
	if colLeft != colRight {
		dydx := 1 / e.dxdy
		for x := max(colLeft+1, xMin); x <= min(colRight, xMax); x++ {
			if yx := e.y0 + dydx*(float64(x)-e.x0); yx > top && yx < bottom {
				r.crossings = append(r.crossings, yx)
			}
		}
		slices.Sort(r.crossings)
	}

	for i := range len(r.crossings) - 1 {
		y0, y1 := r.crossings[i], r.crossings[i+1]
		if y1 <= y0 {
			continue
		}
		c := sign * float32(y1-y0)
		xMid := e.x0 + e.dxdy*((y0+y1)/2-e.y0)
		col := int(math.Floor(xMid))
		switch {
		case col < xMin:
			r.cover[0] += c
			r.area[0] += c
		case col < xMax:
			idx := col - xMin
			r.cover[idx] += c
			r.area[idx] += c * float32(1-(xMid-float64(col)))
		}
	}
	return true
}

// integrate turns the accumulated cover and area values into coverage.
// The result is stored in cover.
func integrate(cover, area []float32, evenOdd bool) {
	var acc float32
	for i := range cover {
		raw := acc + area[i]
		acc += cover[i]
		if raw < 0 {
			raw = -raw
		}
		if evenOdd {
			raw -= 2 * float32(int(raw/2))
			if raw > 1 {
				raw = 2 - raw
			}
		} else if raw > 1 {
			raw = 1
		}
		cover[i] = raw
	}
}

// Default values and numerical tolerances for the rasteriser.
const (
	// defaultFlatness is the default curve flattening tolerance in device
	// pixels; 0.25 is below the threshold of visual perception.
	defaultFlatness = 0.25

	// horizontalEdgeThreshold is the minimal vertical extent of an edge
	// which contributes to coverage.
	horizontalEdgeThreshold = 1e-10

	// defaultMiterLimit is the PDF default miter limit.
	defaultMiterLimit = 10
)

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
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// strokeSegment is a flattened line segment in path coordinates.
type strokeSegment struct {
	A, B vec.Vec2 // endpoints
	T    vec.Vec2 // unit tangent, A to B
	N    vec.Vec2 // unit normal, T rotated by +90°
}

// reverse returns the segment traversed from B to A.
func (s strokeSegment) reverse() strokeSegment {
	return strokeSegment{A: s.B, B: s.A, T: s.T.Mul(-1), N: s.N.Mul(-1)}
}

// subpathRange locates one flattened subpath in Rasteriser.segs.
type subpathRange struct {
	start, end int
	closed     bool
}

// Stroke computes the coverage of a line of width r.Width drawn along p,
// using r.Join at corners and butt caps at the ends of open subpaths.
// Traced documents only contain closed subpaths, so this is mostly used to
// draw region boundaries. The emit callback is used as for
// [Rasteriser.FillNonZero].
func (r *Rasteriser) Stroke(p *path.Data, emit func(y, xMin int, coverage []float32)) {
	if !(r.Width > 0) {
		return
	}
	r.flattenSubpaths(p)

	r.outline = r.outline[:0]
	r.polygons = r.polygons[:0]
	d := r.Width / 2
	for _, sp := range r.subpaths {
		segs := r.segs[sp.start:sp.end]
		r.reversed = r.reversed[:0]
		for i := len(segs) - 1; i >= 0; i-- {
			r.reversed = append(r.reversed, segs[i].reverse())
		}

		// For a closed subpath, the two offset curves are separate
		// polygons of opposite orientation. For an open subpath, they
		// join into one polygon.
		r.polygons = append(r.polygons, len(r.outline))
		r.offsetSide(segs, sp.closed, d)
		if sp.closed {
			r.polygons = append(r.polygons, len(r.outline))
		}
		r.offsetSide(r.reversed, sp.closed, d)
	}

	r.resetEdges()
	for i, start := range r.polygons {
		end := len(r.outline)
		if i+1 < len(r.polygons) {
			end = r.polygons[i+1]
		}
		poly := r.outline[start:end]
		if len(poly) < 3 {
			continue
		}
		for j := 1; j < len(poly); j++ {
			r.addEdge(poly[j-1], poly[j])
		}
		r.addEdge(poly[len(poly)-1], poly[0])
	}
	r.scan(false, emit)
}

// flattenSubpaths converts p into line segments, grouped by subpath.
// Zero-length segments and subpaths are dropped.
func (r *Rasteriser) flattenSubpaths(p *path.Data) {
	r.segs = r.segs[:0]
	r.subpaths = r.subpaths[:0]

	var current, start vec.Vec2
	first := 0
	endSubpath := func(closed bool) {
		if len(r.segs) > first {
			r.subpaths = append(r.subpaths, subpathRange{first, len(r.segs), closed})
		}
		first = len(r.segs)
	}

	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			endSubpath(false)
			current = p.Coords[k]
			start = current
			k++
		case path.CmdLineTo:
			r.addStrokeSegment(current, p.Coords[k])
			current = p.Coords[k]
			k++
		case path.CmdQuadTo:
			r.flattenQuadratic(current, p.Coords[k], p.Coords[k+1], r.addStrokeSegment)
			current = p.Coords[k+1]
			k += 2
		case path.CmdCubeTo:
			r.flattenCubic(current, p.Coords[k], p.Coords[k+1], p.Coords[k+2], r.addStrokeSegment)
			current = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			r.addStrokeSegment(current, start)
			endSubpath(true)
			current = start
		}
	}
	endSubpath(false)
}

func (r *Rasteriser) addStrokeSegment(a, b vec.Vec2) {
	d := b.Sub(a)
	length := d.Length()
	if length < zeroLengthThreshold {
		return
	}
	t := d.Mul(1 / length)
	r.segs = append(r.segs, strokeSegment{A: a, B: b, T: t, N: vec.Vec2{X: -t.Y, Y: t.X}})
}

// offsetSide appends the offset curve at distance d on the +N side of segs
// to the outline, with joins on the outer side of each corner. For closed
// subpaths this includes the corner between the last and the first
// segment.
func (r *Rasteriser) offsetSide(segs []strokeSegment, closed bool, d float64) {
	if !closed {
		r.outline = append(r.outline, segs[0].A.Add(segs[0].N.Mul(d)))
	}
	for i := range segs {
		seg := &segs[i]
		var next *strokeSegment
		switch {
		case i+1 < len(segs):
			next = &segs[i+1]
		case closed:
			next = &segs[0]
		default:
			r.outline = append(r.outline, seg.B.Add(seg.N.Mul(d)))
			return
		}

		sinTheta := seg.T.X*next.T.Y - seg.T.Y*next.T.X
		switch {
		case math.Abs(sinTheta) < collinearityThreshold && seg.T.Dot(next.T) > 0:
			r.outline = append(r.outline, seg.B.Add(seg.N.Mul(d)))
		case sinTheta > 0:
			// the +N side is the inside of the turn
			r.addInnerCorner(seg.B, seg.N, next.N, d)
		default:
			r.outline = append(r.outline, seg.B.Add(seg.N.Mul(d)))
			r.addJoin(seg.B, seg.T, next.T, d)
			r.outline = append(r.outline, seg.B.Add(next.N.Mul(d)))
		}
	}
}

// addInnerCorner adds the point where the offset lines on the inside of a
// corner at P meet. N1 and N2 are the normals before and after the corner.
func (r *Rasteriser) addInnerCorner(P, N1, N2 vec.Vec2, d float64) {
	bisector := N1.Add(N2)
	cosHalf := bisector.Length() / 2
	if cosHalf < 1e-9 {
		r.outline = append(r.outline, P.Add(N1.Mul(d)), P.Add(N2.Mul(d)))
		return
	}
	r.outline = append(r.outline, P.Add(bisector.Mul(d/(2*cosHalf*cosHalf))))
}

// addJoin adds the outer join at P, where the tangent turns from T1 to T2.
// The offset points before and after the corner are added by the caller.
func (r *Rasteriser) addJoin(P, T1, T2 vec.Vec2, d float64) {
	cosTheta := T1.Dot(T2)
	sinTheta := T1.X*T2.Y - T1.Y*T2.X
	if cosTheta < cuspCosineThreshold {
		return // path doubles back; a bevel is the best we can do
	}

	N1 := vec.Vec2{X: -T1.Y, Y: T1.X}
	N2 := vec.Vec2{X: -T2.Y, Y: T2.X}

	switch r.Join {
	case graphics.LineJoinMiter:
		// The miter length relative to the line width is 1/cos(θ/2).
		cosHalf := math.Sqrt((1 + cosTheta) / 2)
		if cosHalf > 0 && 1/cosHalf <= r.MiterLimit+1e-10 {
			bisector := N1.Add(N2)
			if l := bisector.Length(); l > zeroLengthThreshold {
				r.outline = append(r.outline, P.Add(bisector.Mul(d/(l*cosHalf))))
			}
		}

	case graphics.LineJoinRound:
		angle := math.Acos(max(-1, min(1, cosTheta)))
		if sinTheta < 0 {
			angle = -angle
		}
		r.addArc(P, d, N1, angle)
	}
}

// addArc appends the interior points of a circular arc around center,
// starting in direction startDir and sweeping by the given angle
// (positive is counter-clockwise in a y-up coordinate system).
func (r *Rasteriser) addArc(center vec.Vec2, radius float64, startDir vec.Vec2, sweep float64) {
	devRadius := max(
		r.deviceLength(vec.Vec2{X: radius}),
		r.deviceLength(vec.Vec2{Y: radius}),
	)
	if devRadius <= r.Flatness {
		return
	}

	// A chord spanning angle θ deviates from the arc by radius*(1-cos(θ/2)).
	step := 2 * math.Acos(1-r.Flatness/devRadius)
	n := max(1, int(math.Ceil(math.Abs(sweep)/step)))
	for i := 1; i < n; i++ {
		sin, cos := math.Sincos(sweep * float64(i) / float64(n))
		dir := vec.Vec2{
			X: startDir.X*cos - startDir.Y*sin,
			Y: startDir.X*sin + startDir.Y*cos,
		}
		r.outline = append(r.outline, center.Add(dir.Mul(radius)))
	}
}

// Numerical tolerances for stroking.
const (
	// zeroLengthThreshold is the length below which a segment has no
	// well-defined direction.
	zeroLengthThreshold = 1e-10

	// collinearityThreshold is the |sin θ| below which two consecutive
	// segments count as collinear.
	collinearityThreshold = 1e-9

	// cuspCosineThreshold is the cos θ below which a corner counts as a
	// reversal of direction.
	cuspCosineThreshold = -0.9999
)

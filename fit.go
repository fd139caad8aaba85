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
)

// Fitter converts pixel outlines into smooth paths made of straight lines
// and cubic Bézier curves.
//
// Every vertex of the source ring lies within Tolerance of the fitted
// path, and the curve segments stay within Tolerance of the source
// polyline at the sampled parameter values.
type Fitter struct {
	// Tolerance is the maximal allowed deviation in pixels. Must be > 0.
	Tolerance float64

	// CornerThreshold is the turning angle in degrees above which a vertex
	// of the simplified outline is kept as a sharp corner.
	CornerThreshold float64

	// MaxIterations limits the number of reparameterisation rounds tried
	// before a curve segment is subdivided.
	MaxIterations int
}

// NewFitter returns a Fitter with the given tolerance and default values
// for the other parameters.
func NewFitter(tolerance float64) *Fitter {
	return &Fitter{
		Tolerance:       tolerance,
		CornerThreshold: defaultCornerThreshold,
		MaxIterations:   defaultMaxIterations,
	}
}

// segment is one piece of a fitted ring: a line from P[0] to P[3], or a
// cubic Bézier curve with control points P[1] and P[2].
type segment struct {
	P     [4]vec.Vec2
	Curve bool
}

// FitPolygon fits all rings of a polygon and returns them as one path,
// with one closed subpath per ring.
func (f *Fitter) FitPolygon(p Polygon) *path.Data {
	data := &path.Data{}
	data = f.appendRing(data, p.Outer)
	for _, h := range p.Holes {
		data = f.appendRing(data, h)
	}
	return data
}

func (f *Fitter) appendRing(data *path.Data, ring Ring) *path.Data {
	segs := f.FitRing(ring)
	if len(segs) == 0 {
		return data
	}
	data = data.MoveTo(segs[0].P[0])
	if last := segs[len(segs)-1]; !last.Curve {
		segs = segs[:len(segs)-1] // drawn by Close
	}
	for _, s := range segs {
		if s.Curve {
			data = data.CubeTo(s.P[1], s.P[2], s.P[3])
		} else {
			data = data.LineTo(s.P[3])
		}
	}
	return data.Close()
}

// FitRing fits a closed ring. The returned segments form a closed chain:
// each segment starts where the previous one ends, and the last segment
// ends at the start of the first.
func (f *Fitter) FitRing(ring Ring) []segment {
	n := len(ring)
	if n < 3 {
		return nil
	}
	pts := make([]vec.Vec2, n)
	for i, p := range ring {
		pts[i] = vec.Vec2{X: float64(p.X), Y: float64(p.Y)}
	}
	at := func(i int) vec.Vec2 { return pts[i%n] }

	kept := simplifyClosed(pts, f.Tolerance)
	m := len(kept)
	keptPt := func(k int) vec.Vec2 { return pts[kept[((k%m)+m)%m]] }

	// find the corners of the simplified outline
	isCorner := make([]bool, m)
	var corners []int
	cosLimit := math.Cos(f.CornerThreshold * math.Pi / 180)
	for k := range m {
		a := keptPt(k).Sub(keptPt(k - 1))
		b := keptPt(k + 1).Sub(keptPt(k))
		la, lb := a.Length(), b.Length()
		if la == 0 || lb == 0 {
			continue
		}
		if a.Dot(b)/(la*lb) < cosLimit {
			isCorner[k] = true
			corners = append(corners, k)
		}
	}

	// Smooth outlines are cut at the kept vertices farthest apart, so that
	// every run is an open curve.
	if len(corners) == 0 {
		corners = []int{0}
	}
	if len(corners) == 1 {
		c := corners[0]
		far, dMax := -1, -1.0
		for k := range m {
			if d := keptPt(k).Sub(keptPt(c)).Length(); k != c && d > dMax {
				far, dMax = k, d
			}
		}
		if far < c {
			corners = []int{far, c}
		} else {
			corners = append(corners, far)
		}
	}

	tangent := func(k int, forward bool) vec.Vec2 {
		var t vec.Vec2
		switch {
		case !isCorner[((k%m)+m)%m]:
			t = keptPt(k + 1).Sub(keptPt(k - 1))
		case forward:
			t = keptPt(k + 1).Sub(keptPt(k))
		default:
			t = keptPt(k).Sub(keptPt(k - 1))
		}
		t = unit(t)
		if !forward {
			t = t.Mul(-1)
		}
		return t
	}

	var segs []segment
	for j, c := range corners {
		next := corners[(j+1)%len(corners)]
		first, last := kept[c], kept[next]
		endK := next
		if j == len(corners)-1 {
			last += n
			endK += m
		}
		run := make([]vec.Vec2, 0, last-first+1)
		for i := first; i <= last; i++ {
			run = append(run, at(i))
		}
		segs = f.fitRun(segs, run, tangent(c, true), tangent(endK, false))
	}
	return segs
}

// fitRun appends segments approximating the open polyline pts. The tangent
// t1 points from pts[0] into the run, t2 points from the last point back
// into the run.
func (f *Fitter) fitRun(segs []segment, pts []vec.Vec2, t1, t2 vec.Vec2) []segment {
	last := len(pts) - 1
	line := segment{P: [4]vec.Vec2{pts[0], pts[0], pts[last], pts[last]}}
	if last == 1 {
		return append(segs, line)
	}

	straight := true
	for _, p := range pts[1:last] {
		if segmentDist(p, pts[0], pts[last]) > f.Tolerance {
			straight = false
			break
		}
	}
	if straight {
		return append(segs, line)
	}

	u := chordLengthParams(pts)
	bez := generateBezier(pts, u, t1, t2)
	maxErr, split := maxBezierError(pts, u, bez)
	if maxErr <= f.Tolerance && f.hugsPolyline(bez, pts) {
		return append(segs, segment{P: bez, Curve: true})
	}
	if maxErr <= reparameterizeFactor*f.Tolerance {
		for range f.MaxIterations {
			u = reparameterize(pts, u, bez)
			bez = generateBezier(pts, u, t1, t2)
			maxErr, split = maxBezierError(pts, u, bez)
			if maxErr <= f.Tolerance && f.hugsPolyline(bez, pts) {
				return append(segs, segment{P: bez, Curve: true})
			}
		}
	}

	split = max(1, min(split, last-1))
	tc := unit(pts[split+1].Sub(pts[split-1]))
	if tc == (vec.Vec2{}) {
		tc = unit(pts[split].Sub(pts[split-1]))
	}
	segs = f.fitRun(segs, pts[:split+1], t1, tc.Mul(-1))
	return f.fitRun(segs, pts[split:], tc, t2)
}

// hugsPolyline reports whether sampled points of the curve stay within
// tolerance of the polyline pts.
func (f *Fitter) hugsPolyline(bez [4]vec.Vec2, pts []vec.Vec2) bool {
	for k := 1; k < hugSamples; k++ {
		q := bezierPoint(bez, float64(k)/hugSamples)
		best := math.Inf(1)
		for i := range len(pts) - 1 {
			best = min(best, segmentDist(q, pts[i], pts[i+1]))
		}
		if best > f.Tolerance {
			return false
		}
	}
	return true
}

// simplifyClosed runs the Douglas-Peucker algorithm on a closed ring and
// returns the indices of the kept vertices in increasing order. The ring is
// first split at vertex 0 and the vertex farthest from it; each half is
// split at least once, so at least three vertices are kept.
func simplifyClosed(pts []vec.Vec2, tol float64) []int {
	n := len(pts)
	at := func(i int) vec.Vec2 { return pts[i%n] }

	far, dMax := 0, -1.0
	for i, p := range pts {
		if d := p.Sub(pts[0]).Length(); d > dMax {
			far, dMax = i, d
		}
	}

	keep := make([]bool, n)
	keep[0] = true
	keep[far] = true

	type span struct {
		a, b  int // b may equal n, meaning vertex 0
		force bool
	}
	stack := []span{{0, far, true}, {far, n, true}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.b-s.a < 2 {
			continue
		}
		best, dBest := -1, -1.0
		for i := s.a + 1; i < s.b; i++ {
			if d := segmentDist(at(i), at(s.a), at(s.b)); d > dBest {
				best, dBest = i, d
			}
		}
		if dBest > tol || s.force {
			keep[best%n] = true
			stack = append(stack, span{s.a, best, false}, span{best, s.b, false})
		}
	}

	var idx []int
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	return idx
}

// chordLengthParams assigns parameter values proportional to the distance
// along the polyline.
func chordLengthParams(pts []vec.Vec2) []float64 {
	u := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		u[i] = u[i-1] + pts[i].Sub(pts[i-1]).Length()
	}
	total := u[len(u)-1]
	for i := range u {
		u[i] /= total
	}
	return u
}

// generateBezier finds the least-squares cubic through the end points of
// pts with the given end tangents.
func generateBezier(pts []vec.Vec2, u []float64, t1, t2 vec.Vec2) [4]vec.Vec2 {
	p0, p3 := pts[0], pts[len(pts)-1]

	var c00, c01, c11, x0, x1 float64
	for i, p := range pts {
		b0, b1, b2, b3 := bernstein(u[i])
		a1 := t1.Mul(b1)
		a2 := t2.Mul(b2)
		c00 += a1.Dot(a1)
		c01 += a1.Dot(a2)
		c11 += a2.Dot(a2)
		tmp := p.Sub(p0.Mul(b0 + b1)).Sub(p3.Mul(b2 + b3))
		x0 += a1.Dot(tmp)
		x1 += a2.Dot(tmp)
	}

	chord := p3.Sub(p0).Length()
	var polyLen float64
	for i := 1; i < len(pts); i++ {
		polyLen += pts[i].Sub(pts[i-1]).Length()
	}

	alpha1, alpha2 := chord/3, chord/3
	if det := c00*c11 - c01*c01; math.Abs(det) > 1e-12 {
		a1 := (x0*c11 - x1*c01) / det
		a2 := (c00*x1 - c01*x0) / det
		eps := 1e-6 * chord
		if a1 > eps && a2 > eps && a1 < polyLen && a2 < polyLen {
			alpha1, alpha2 = a1, a2
		}
	}
	return [4]vec.Vec2{p0, p0.Add(t1.Mul(alpha1)), p3.Add(t2.Mul(alpha2)), p3}
}

// maxBezierError returns the largest distance between pts[i] and the curve
// point at parameter u[i], together with the index where it occurs.
func maxBezierError(pts []vec.Vec2, u []float64, bez [4]vec.Vec2) (float64, int) {
	maxErr, split := 0.0, len(pts)/2
	for i := 1; i < len(pts)-1; i++ {
		if d := bezierPoint(bez, u[i]).Sub(pts[i]).Length(); d > maxErr {
			maxErr, split = d, i
		}
	}
	return maxErr, split
}

// reparameterize improves the parameter values by one Newton step on the
// distance between each point and the curve.
func reparameterize(pts []vec.Vec2, u []float64, bez [4]vec.Vec2) []float64 {
	res := make([]float64, len(u))
	for i, p := range pts {
		t := u[i]
		d := bezierPoint(bez, t).Sub(p)
		d1 := bezierDeriv(bez, t)
		d2 := bezierDeriv2(bez, t)
		den := d1.Dot(d1) + d.Dot(d2)
		if math.Abs(den) > 1e-12 {
			t -= d.Dot(d1) / den
		}
		res[i] = min(1, max(0, t))
	}
	return res
}

func bernstein(t float64) (b0, b1, b2, b3 float64) {
	s := 1 - t
	return s * s * s, 3 * s * s * t, 3 * s * t * t, t * t * t
}

func bezierPoint(b [4]vec.Vec2, t float64) vec.Vec2 {
	b0, b1, b2, b3 := bernstein(t)
	return b[0].Mul(b0).Add(b[1].Mul(b1)).Add(b[2].Mul(b2)).Add(b[3].Mul(b3))
}

func bezierDeriv(b [4]vec.Vec2, t float64) vec.Vec2 {
	s := 1 - t
	return b[1].Sub(b[0]).Mul(3 * s * s).
		Add(b[2].Sub(b[1]).Mul(6 * s * t)).
		Add(b[3].Sub(b[2]).Mul(3 * t * t))
}

func bezierDeriv2(b [4]vec.Vec2, t float64) vec.Vec2 {
	s := 1 - t
	return b[2].Sub(b[1].Mul(2)).Add(b[0]).Mul(6 * s).
		Add(b[3].Sub(b[2].Mul(2)).Add(b[1]).Mul(6 * t))
}

// segmentDist returns the distance between p and the line segment a-b.
func segmentDist(p, a, b vec.Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := min(1, max(0, p.Sub(a).Dot(ab)/l2))
	return p.Sub(a.Add(ab.Mul(t))).Length()
}

// unit returns v scaled to length 1, or the zero vector if v is zero.
func unit(v vec.Vec2) vec.Vec2 {
	l := v.Length()
	if l == 0 {
		return vec.Vec2{}
	}
	return v.Mul(1 / l)
}

// Default values and constants for curve fitting.
const (
	// defaultCornerThreshold is the default minimal turning angle, in
	// degrees, of a corner.
	defaultCornerThreshold = 60.0

	// defaultMaxIterations is the default number of reparameterisation
	// rounds before a curve is split.
	defaultMaxIterations = 4

	// reparameterizeFactor bounds the error, relative to the tolerance, for
	// which reparameterisation is tried instead of an immediate split.
	reparameterizeFactor = 4.0

	// hugSamples is the number of intervals used when checking that a curve
	// stays close to its polyline.
	hugSamples = 32
)

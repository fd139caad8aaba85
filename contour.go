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

import "image"

// Ring is a closed boundary loop on the pixel-corner lattice. Only the
// vertices where the boundary changes direction are stored; the closing
// edge from the last vertex back to the first is implied.
type Ring []image.Point

// Area returns the signed area enclosed by the ring. Rings which run
// clockwise on screen (y pointing down) have positive area.
func (r Ring) Area() int {
	var sum int
	for i, p := range r {
		q := r[(i+1)%len(r)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// Polygon is the outline of one region: the outer boundary together with
// the boundaries of all holes.
type Polygon struct {
	Outer Ring   // clockwise
	Holes []Ring // counter-clockwise
}

// Area returns the number of pixels enclosed by the polygon.
func (p Polygon) Area() int {
	a := p.Outer.Area()
	for _, h := range p.Holes {
		a += h.Area()
	}
	return a
}

// directions of travel along pixel edges, in clockwise order on screen
const (
	dirEast = iota
	dirSouth
	dirWest
	dirNorth
)

var dirStep = [4]image.Point{
	dirEast:  {1, 0},
	dirSouth: {0, 1},
	dirWest:  {-1, 0},
	dirNorth: {0, -1},
}

// TraceRegion extracts the outline of a region by following the pixel
// edges which separate it from the rest of the image. The region is kept
// on the right-hand side of every walk, so the outer ring runs clockwise and
// hole rings run counter-clockwise.
//
// Rings start at the top-left corner of the topmost-leftmost pixel whose
// top edge has not been visited yet; the first ring found is the outer
// boundary. Diagonal pinch points are joined for 8-connected regions and
// separated for 4-connected ones.
func TraceRegion(seg *Segmentation, region int) Polygon {
	reg := seg.Regions[region]
	t := &contourTracer{
		seg:     seg,
		id:      int32(region),
		bounds:  reg.Bounds,
		visited: make([]uint8, reg.Bounds.Dx()*reg.Bounds.Dy()),
		joinAll: seg.Connectivity == Connect8,
	}

	var poly Polygon
	b := reg.Bounds
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !t.inside(x, y) || t.inside(x, y-1) || t.seen(x, y, dirEast) {
				continue
			}
			ring := t.follow(image.Point{X: x, Y: y})
			if poly.Outer == nil {
				poly.Outer = ring
			} else {
				poly.Holes = append(poly.Holes, ring)
			}
		}
	}
	return poly
}

type contourTracer struct {
	seg     *Segmentation
	id      int32
	bounds  image.Rectangle
	visited []uint8 // one bit per direction and pixel, see mark
	joinAll bool    // join diagonal neighbours (8-connectivity)
}

func (t *contourTracer) inside(x, y int) bool {
	if x < 0 || y < 0 || x >= t.seg.Width || y >= t.seg.Height {
		return false
	}
	return t.seg.IDs[y*t.seg.Width+x] == t.id
}

// edgePixel returns the pixel on the right of the edge leaving v in
// direction d. The edge is one of the sides of this pixel.
func edgePixel(v image.Point, d int) image.Point {
	switch d {
	case dirEast:
		return v
	case dirSouth:
		return image.Point{X: v.X - 1, Y: v.Y}
	case dirWest:
		return image.Point{X: v.X - 1, Y: v.Y - 1}
	default:
		return image.Point{X: v.X, Y: v.Y - 1}
	}
}

func (t *contourTracer) seen(x, y, d int) bool {
	i := (y-t.bounds.Min.Y)*t.bounds.Dx() + (x - t.bounds.Min.X)
	return t.visited[i]&(1<<d) != 0
}

func (t *contourTracer) mark(v image.Point, d int) {
	p := edgePixel(v, d)
	i := (p.Y-t.bounds.Min.Y)*t.bounds.Dx() + (p.X - t.bounds.Min.X)
	t.visited[i] |= 1 << d
}

// next chooses the direction in which the boundary continues after
// arriving at vertex v while travelling in direction d.
func (t *contourTracer) next(v image.Point, d int) int {
	// pixels just ahead of v, on the right and on the left of the walk
	var r, l image.Point
	switch d {
	case dirEast:
		r, l = image.Point{X: v.X, Y: v.Y}, image.Point{X: v.X, Y: v.Y - 1}
	case dirSouth:
		r, l = image.Point{X: v.X - 1, Y: v.Y}, image.Point{X: v.X, Y: v.Y}
	case dirWest:
		r, l = image.Point{X: v.X - 1, Y: v.Y - 1}, image.Point{X: v.X - 1, Y: v.Y}
	default:
		r, l = image.Point{X: v.X, Y: v.Y - 1}, image.Point{X: v.X - 1, Y: v.Y - 1}
	}
	inR, inL := t.inside(r.X, r.Y), t.inside(l.X, l.Y)

	switch {
	case inL && (inR || t.joinAll):
		return (d + 3) % 4 // turn left
	case inR:
		return d
	default:
		return (d + 1) % 4 // turn right
	}
}

// follow walks one closed boundary, starting eastwards along the top edge
// of the pixel at start.
func (t *contourTracer) follow(start image.Point) Ring {
	ring := Ring{start}
	v, d := start, dirEast
	for {
		t.mark(v, d)
		v = v.Add(dirStep[d])
		nd := t.next(v, d)
		if v == start && nd == dirEast {
			break
		}
		if nd != d {
			ring = append(ring, v)
		}
		d = nd
	}
	return ring
}

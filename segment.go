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
	"container/heap"
	"fmt"
	"image"
	"image/color"
)

// Connectivity selects which neighbouring pixels belong to the same region.
type Connectivity int

// Supported pixel connectivities.
const (
	Connect4 Connectivity = 4 // edge neighbours only
	Connect8 Connectivity = 8 // edge and corner neighbours
)

// Region is a maximal connected set of pixels which share one palette index.
type Region struct {
	Label  uint8           // palette index
	Color  color.NRGBA     // palette colour
	Count  int             // number of pixels
	Bounds image.Rectangle // bounding box in pixel coordinates
}

// Segmentation is the decomposition of a labeled grid into regions.
type Segmentation struct {
	Width        int
	Height       int
	Connectivity Connectivity

	// Regions are listed in discovery order, i.e. ordered by the row-major
	// position of their first pixel.
	Regions []Region

	// IDs holds the region index of every pixel, in row-major order.
	IDs []int32
}

// RegionAt returns the index of the region containing pixel (x, y),
// or -1 if the pixel lies outside the image.
func (s *Segmentation) RegionAt(x, y int) int {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return -1
	}
	return int(s.IDs[y*s.Width+x])
}

// Segment groups the pixels of q into connected regions. Regions with
// fewer than minPixels pixels are merged into the neighbouring region they
// share the longest boundary with, so that every pixel stays covered.
func Segment(q *Quantized, conn Connectivity, minPixels int) (*Segmentation, error) {
	if q == nil || q.Width*q.Height == 0 {
		return nil, fmt.Errorf("%w: empty labeled grid", ErrInvalidInput)
	}
	if conn != Connect4 && conn != Connect8 {
		return nil, fmt.Errorf("%w: connectivity must be 4 or 8, got %d", ErrConfig, conn)
	}
	if minPixels < 0 {
		return nil, fmt.Errorf("%w: negative minimum region size %d", ErrConfig, minPixels)
	}

	w, h := q.Width, q.Height
	ids := labelComponents(q, conn)

	numRegions := 0
	for _, id := range ids {
		numRegions = max(numRegions, int(id)+1)
	}
	labels := make([]uint8, numRegions)
	sizes := make([]int, numRegions)
	for i, id := range ids {
		labels[id] = q.Labels[i]
		sizes[id]++
	}

	if minPixels > 1 && numRegions > 1 {
		mergeSmallRegions(ids, w, h, sizes, minPixels)
	}

	seg := &Segmentation{
		Width:        w,
		Height:       h,
		Connectivity: conn,
		IDs:          ids,
	}
	renumber := make([]int32, numRegions)
	for i := range renumber {
		renumber[i] = -1
	}
	for i, id := range ids {
		r := renumber[id]
		x, y := i%w, i/w
		if r < 0 {
			r = int32(len(seg.Regions))
			renumber[id] = r
			seg.Regions = append(seg.Regions, Region{
				Label:  labels[id],
				Color:  q.Palette[labels[id]],
				Bounds: image.Rect(x, y, x+1, y+1),
			})
		}
		ids[i] = r

		reg := &seg.Regions[r]
		reg.Count++
		reg.Bounds = reg.Bounds.Union(image.Rect(x, y, x+1, y+1))
	}
	return seg, nil
}

// labelComponents assigns a component index to every pixel. Components are
// numbered in the row-major order of their first pixel.
func labelComponents(q *Quantized, conn Connectivity) []int32 {
	w, h := q.Width, q.Height
	parent := make([]int32, w*h)

	for y := range h {
		for x := range w {
			i := int32(y*w + x)
			parent[i] = i
			label := q.Labels[i]
			if x > 0 && q.Labels[i-1] == label {
				union(parent, i, i-1)
			}
			if y == 0 {
				continue
			}
			up := i - int32(w)
			if q.Labels[up] == label {
				union(parent, i, up)
			}
			if conn == Connect8 {
				if x > 0 && q.Labels[up-1] == label {
					union(parent, i, up-1)
				}
				if x+1 < w && q.Labels[up+1] == label {
					union(parent, i, up+1)
				}
			}
		}
	}

	// The root of every set is its smallest pixel index, which is the
	// first pixel of the component in row-major order.
	ids := make([]int32, w*h)
	var next int32
	for i := range parent {
		r := find(parent, int32(i))
		if r == int32(i) {
			ids[i] = next
			next++
		} else {
			ids[i] = ids[r]
		}
	}
	return ids
}

// find returns the root of i, halving the path on the way.
func find(parent []int32, i int32) int32 {
	for parent[i] != i {
		parent[i] = parent[parent[i]]
		i = parent[i]
	}
	return i
}

// union joins the sets of a and b, keeping the smaller index as the root.
func union(parent []int32, a, b int32) {
	ra, rb := find(parent, a), find(parent, b)
	switch {
	case ra < rb:
		parent[rb] = ra
	case rb < ra:
		parent[ra] = rb
	}
}

// mergeSmallRegions merges every region below minPixels into a neighbour,
// smallest regions first. On return, ids refers to the surviving regions
// (still using the original numbering) and sizes is no longer meaningful.
func mergeSmallRegions(ids []int32, w, h int, sizes []int, minPixels int) {
	n := len(sizes)

	// shared boundary length between pairs of adjacent regions
	type pair struct{ a, b int32 }
	shared := make(map[pair]int)
	for y := range h {
		for x := range w {
			i := y*w + x
			id := ids[i]
			if x+1 < w {
				if other := ids[i+1]; other != id {
					shared[pair{min(id, other), max(id, other)}]++
				}
			}
			if y+1 < h {
				if other := ids[i+w]; other != id {
					shared[pair{min(id, other), max(id, other)}]++
				}
			}
		}
	}
	type neighbour struct {
		id    int32
		edges int
	}
	adj := make([][]neighbour, n)
	for p, edges := range shared {
		adj[p.a] = append(adj[p.a], neighbour{p.b, edges})
		adj[p.b] = append(adj[p.b], neighbour{p.a, edges})
	}

	parent := make([]int32, n)
	members := make([][]int32, n)
	for i := range parent {
		parent[i] = int32(i)
		members[i] = []int32{int32(i)}
	}

	queue := &regionQueue{}
	for id, size := range sizes {
		if size < minPixels {
			heap.Push(queue, regionSize{id: int32(id), size: size})
		}
	}

	edgeCount := make(map[int32]int)
	for queue.Len() > 0 {
		item := heap.Pop(queue).(regionSize)
		r := item.id
		if parent[r] != r || sizes[r] != item.size || sizes[r] >= minPixels {
			continue // stale entry
		}

		// Sum the boundary shared with every neighbouring merged region.
		clear(edgeCount)
		for _, m := range members[r] {
			for _, nb := range adj[m] {
				if t := find(parent, nb.id); t != r {
					edgeCount[t] += nb.edges
				}
			}
		}
		target := int32(-1)
		for t, edges := range edgeCount {
			if target < 0 {
				target = t
				continue
			}
			best := edgeCount[target]
			if edges > best ||
				edges == best && sizes[t] > sizes[target] ||
				edges == best && sizes[t] == sizes[target] && t < target {
				target = t
			}
		}
		if target < 0 {
			continue // the region has no neighbours
		}

		parent[r] = target
		sizes[target] += sizes[r]
		members[target] = append(members[target], members[r]...)
		members[r] = nil
		if sizes[target] < minPixels {
			heap.Push(queue, regionSize{id: target, size: sizes[target]})
		}
	}

	for i, id := range ids {
		ids[i] = find(parent, id)
	}
}

type regionSize struct {
	id   int32
	size int
}

// regionQueue is a min-heap of regions, ordered by size and then by index.
type regionQueue []regionSize

func (q regionQueue) Len() int { return len(q) }
func (q regionQueue) Less(i, j int) bool {
	if c := cmp.Compare(q[i].size, q[j].size); c != 0 {
		return c < 0
	}
	return q[i].id < q[j].id
}
func (q regionQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *regionQueue) Push(x any)   { *q = append(*q, x.(regionSize)) }
func (q *regionQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

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
	"fmt"
	"image/color"
	"slices"
)

// Quantized is the result of colour quantization: a palette together with
// a labeled grid assigning one palette index to every pixel.
type Quantized struct {
	Width  int
	Height int

	// Palette holds the representative colours, most frequent first.
	Palette []color.NRGBA

	// Population[i] is the number of pixels mapped to Palette[i].
	Population []int

	// Labels holds one palette index per pixel, in row-major order.
	Labels []uint8
}

// Label returns the palette index of the pixel at (x, y).
func (q *Quantized) Label(x, y int) uint8 {
	return q.Labels[y*q.Width+x]
}

// histEntry is one distinct colour of the source image.
type histEntry struct {
	c [4]uint8 // R, G, B, A
	n int      // number of pixels with this colour
}

func (e histEntry) key() uint32 {
	return uint32(e.c[0])<<24 | uint32(e.c[1])<<16 | uint32(e.c[2])<<8 | uint32(e.c[3])
}

// colorBox is a median-cut box, covering entries[lo:hi] of the histogram.
type colorBox struct {
	lo, hi     int
	population int
	widest     int // channel with the largest range
	spread     int // range of the widest channel
}

// Quantize reduces the colours of img to at most maxColors palette entries
// using median cut. Boxes whose widest channel range is at most threshold
// are not split any further, so the palette may be smaller than maxColors.
func Quantize(img *Image, maxColors, threshold int) (*Quantized, error) {
	if img == nil || img.NumPixels() == 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrInvalidInput)
	}
	if maxColors < 1 || maxColors > MaxPaletteSize {
		return nil, fmt.Errorf("%w: palette size %d outside [1, %d]", ErrConfig, maxColors, MaxPaletteSize)
	}
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("%w: colour threshold %d outside [0, 255]", ErrConfig, threshold)
	}

	entries, index := buildHistogram(img)

	boxes := []colorBox{newColorBox(entries, 0, len(entries))}
	for len(boxes) < maxColors {
		best := -1
		for i, b := range boxes {
			if b.hi-b.lo < 2 || b.spread <= threshold {
				continue
			}
			if best < 0 || b.spread > boxes[best].spread ||
				b.spread == boxes[best].spread && b.population > boxes[best].population {
				best = i
			}
		}
		if best < 0 {
			break
		}
		left, right := splitBox(entries, boxes[best])
		boxes[best] = left
		boxes = append(boxes, right)
	}

	type cluster struct {
		c   color.NRGBA
		key uint32
		box colorBox
	}
	clusters := make([]cluster, len(boxes))
	for i, b := range boxes {
		c := boxMean(entries, b)
		clusters[i] = cluster{
			c:   c,
			key: histEntry{c: [4]uint8{c.R, c.G, c.B, c.A}}.key(),
			box: b,
		}
	}
	slices.SortStableFunc(clusters, func(a, b cluster) int {
		if c := cmp.Compare(b.box.population, a.box.population); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})

	q := &Quantized{
		Width:      img.Width,
		Height:     img.Height,
		Palette:    make([]color.NRGBA, len(clusters)),
		Population: make([]int, len(clusters)),
		Labels:     make([]uint8, img.NumPixels()),
	}
	entryLabel := make([]uint8, len(entries))
	for label, cl := range clusters {
		q.Palette[label] = cl.c
		q.Population[label] = cl.box.population
		for j := cl.box.lo; j < cl.box.hi; j++ {
			entryLabel[j] = uint8(label)
		}
	}

	// The histogram was permuted by the box splits; refresh the lookup.
	for j, e := range entries {
		index[e.key()] = j
	}
	for i := range q.Labels {
		c := img.pixel(i)
		q.Labels[i] = entryLabel[index[colorKey(c)]]
	}
	return q, nil
}

// buildHistogram collects the distinct colours of img, sorted by colour
// value, together with a map from colour key to histogram index.
func buildHistogram(img *Image) ([]histEntry, map[uint32]int) {
	counts := make(map[uint32]int)
	for i := range img.NumPixels() {
		counts[colorKey(img.pixel(i))]++
	}

	entries := make([]histEntry, 0, len(counts))
	for k, n := range counts {
		entries = append(entries, histEntry{
			c: [4]uint8{uint8(k >> 24), uint8(k >> 16), uint8(k >> 8), uint8(k)},
			n: n,
		})
	}
	slices.SortFunc(entries, func(a, b histEntry) int {
		return cmp.Compare(a.key(), b.key())
	})

	index := make(map[uint32]int, len(entries))
	for j, e := range entries {
		index[e.key()] = j
	}
	return entries, index
}

func colorKey(c color.NRGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// newColorBox computes the statistics of the box covering entries[lo:hi].
func newColorBox(entries []histEntry, lo, hi int) colorBox {
	b := colorBox{lo: lo, hi: hi}
	var cMin, cMax [4]uint8
	for ch := range 4 {
		cMin[ch] = 255
	}
	for _, e := range entries[lo:hi] {
		b.population += e.n
		for ch := range 4 {
			cMin[ch] = min(cMin[ch], e.c[ch])
			cMax[ch] = max(cMax[ch], e.c[ch])
		}
	}
	for ch := range 4 {
		if r := int(cMax[ch]) - int(cMin[ch]); r > b.spread {
			b.spread = r
			b.widest = ch
		}
	}
	return b
}

// splitBox cuts b at the population-weighted median of its widest channel.
// The entries covered by b are reordered in place.
func splitBox(entries []histEntry, b colorBox) (colorBox, colorBox) {
	part := entries[b.lo:b.hi]
	ch := b.widest
	slices.SortStableFunc(part, func(x, y histEntry) int {
		if c := cmp.Compare(x.c[ch], y.c[ch]); c != 0 {
			return c
		}
		return cmp.Compare(x.key(), y.key())
	})

	cut := len(part) - 1
	acc := 0
	for j, e := range part[:len(part)-1] {
		acc += e.n
		if 2*acc >= b.population {
			cut = j + 1
			break
		}
	}

	return newColorBox(entries, b.lo, b.lo+cut), newColorBox(entries, b.lo+cut, b.hi)
}

// boxMean returns the population-weighted mean colour of a box.
func boxMean(entries []histEntry, b colorBox) color.NRGBA {
	var sum [4]int
	for _, e := range entries[b.lo:b.hi] {
		for ch := range 4 {
			sum[ch] += int(e.c[ch]) * e.n
		}
	}
	half := b.population / 2
	return color.NRGBA{
		R: uint8((sum[0] + half) / b.population),
		G: uint8((sum[1] + half) / b.population),
		B: uint8((sum[2] + half) / b.population),
		A: uint8((sum[3] + half) / b.population),
	}
}

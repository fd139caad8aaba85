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
	"image/color"

	"seehuhn.de/go/geom/path"
)

// Document is the result of tracing an image. Coordinates are in pixel
// units, with the origin at the top-left corner of the image and the
// y-axis pointing down.
type Document struct {
	Width  int
	Height int

	// Palette is the quantized palette, most frequent colour first.
	Palette []color.NRGBA

	// Paths holds one filled path per region, in region discovery order.
	// Later paths are painted on top of earlier ones.
	Paths []Path
}

// Path is the fitted outline of one region.
type Path struct {
	Region int         // region index
	Color  color.NRGBA // fill colour
	Area   int         // number of pixels in the region
	Holes  int         // number of inner rings

	// Data holds one closed subpath for the outer boundary, followed by
	// one closed subpath per hole. The path is filled using the nonzero
	// winding rule; holes run in the opposite direction.
	Data *path.Data
}

// Stats summarises the size of a document.
type Stats struct {
	PaletteSize int
	Paths       int
	Holes       int
	Lines       int
	Curves      int
}

// Stats counts the paths and segments of the document.
func (d *Document) Stats() Stats {
	s := Stats{
		PaletteSize: len(d.Palette),
		Paths:       len(d.Paths),
	}
	for _, p := range d.Paths {
		s.Holes += p.Holes
		if p.Data == nil {
			continue
		}
		for _, cmd := range p.Data.Cmds {
			switch cmd {
			case path.CmdLineTo:
				s.Lines++
			case path.CmdCubeTo:
				s.Curves++
			}
		}
	}
	return s
}

// Area returns the total number of pixels covered by the paths of the
// document. For every document returned by [Trace], this equals the number
// of pixels of the image.
func (d *Document) Area() int {
	total := 0
	for _, p := range d.Paths {
		total += p.Area
	}
	return total
}

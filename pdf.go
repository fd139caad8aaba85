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
	"io"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics/color"
)

// WritePDF writes doc as a single-page PDF file. One pixel corresponds to
// one PDF unit. Fully transparent paths are omitted and partial
// transparency is ignored.
func WritePDF(w io.Writer, doc *Document) error {
	paper := &pdf.Rectangle{
		URx: float64(doc.Width),
		URy: float64(doc.Height),
	}
	page, err := document.WriteSinglePage(w, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	// PDF origin is bottom-left, document coordinates start top-left
	page.Transform(matrix.Matrix{1, 0, 0, -1, 0, float64(doc.Height)})

	for _, p := range doc.Paths {
		if p.Data == nil || len(p.Data.Cmds) == 0 || p.Color.A == 0 {
			continue
		}
		page.SetFillColor(color.DeviceRGB{
			float64(p.Color.R) / 255,
			float64(p.Color.G) / 255,
			float64(p.Color.B) / 255,
		})
		for cmd, pts := range p.Data.Iter().ToCubic() {
			switch cmd {
			case path.CmdMoveTo:
				page.MoveTo(pts[0].X, pts[0].Y)
			case path.CmdLineTo:
				page.LineTo(pts[0].X, pts[0].Y)
			case path.CmdCubeTo:
				page.CurveTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
			case path.CmdClose:
				page.ClosePath()
			}
		}
		page.Fill()
	}

	return page.Close()
}

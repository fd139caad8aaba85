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
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// WriteSVG writes doc as an SVG document. Coordinates are rounded to the
// given number of decimal places. The output only depends on doc and
// precision.
func WriteSVG(w io.Writer, doc *Document, precision int) error {
	if precision < 0 || precision > maxPrecision {
		return fmt.Errorf("%w: precision %d outside [0, %d]", ErrConfig, precision, maxPrecision)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		doc.Width, doc.Height, doc.Width, doc.Height)
	for _, p := range doc.Paths {
		if p.Data == nil || len(p.Data.Cmds) == 0 {
			continue
		}
		bw.WriteString(`<path d="`)
		bw.WriteString(SVGPathData(p.Data, precision))
		fmt.Fprintf(bw, `" fill="%s"`, hexColor(p.Color))
		if p.Color.A < 255 {
			bw.WriteString(` fill-opacity="`)
			bw.WriteString(formatNumber(float64(p.Color.A)/255, 3))
			bw.WriteString(`"`)
		}
		bw.WriteString("/>\n")
	}
	bw.WriteString("</svg>\n")
	return bw.Flush()
}

// SVGPathData returns the SVG path data string for p, using absolute
// commands. Coordinates are rounded to the given number of decimal places.
func SVGPathData(p *path.Data, precision int) string {
	b := &strings.Builder{}
	pt := func(v vec.Vec2) {
		b.WriteString(formatNumber(v.X, precision))
		b.WriteByte(' ')
		b.WriteString(formatNumber(v.Y, precision))
	}

	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			b.WriteByte('M')
			pt(p.Coords[k])
			k++
		case path.CmdLineTo:
			b.WriteByte('L')
			pt(p.Coords[k])
			k++
		case path.CmdQuadTo:
			b.WriteByte('Q')
			pt(p.Coords[k])
			b.WriteByte(' ')
			pt(p.Coords[k+1])
			k += 2
		case path.CmdCubeTo:
			b.WriteByte('C')
			pt(p.Coords[k])
			b.WriteByte(' ')
			pt(p.Coords[k+1])
			b.WriteByte(' ')
			pt(p.Coords[k+2])
			k += 3
		case path.CmdClose:
			b.WriteByte('Z')
		}
	}
	return b.String()
}

// formatNumber formats x with at most prec decimal places, without
// trailing zeros.
func formatNumber(x float64, prec int) string {
	s := strconv.FormatFloat(x, 'f', prec, 64)
	if strings.IndexByte(s, '.') >= 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

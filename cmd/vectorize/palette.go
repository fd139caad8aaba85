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

package main

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"seehuhn.de/go/vectorize"
)

var paletteCmd = &cobra.Command{
	Use:   "palette <image>",
	Short: "Print the quantized colour palette of an image",
	Long: `Print the palette which tracing would use for the image, most frequent
colour first, together with the number of pixels of each colour.
Colour swatches are shown when stdout is a terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: runPalette,
}

func init() {
	rootCmd.AddCommand(paletteCmd)
}

func runPalette(cmd *cobra.Command, args []string) error {
	img, err := loadImage(cmd, args[0])
	if err != nil {
		return err
	}
	q, err := vectorize.Quantize(img, cfg.Trace.MaxPaletteSize, cfg.Trace.ColorThreshold)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printPalette(out, q, isTerminal(out))
	return nil
}

func printPalette(w io.Writer, q *vectorize.Quantized, swatches bool) {
	total := q.Width * q.Height
	for i, c := range q.Palette {
		hex := hexColor(c)
		if swatches {
			swatch := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("    ")
			fmt.Fprint(w, swatch, " ")
		}
		share := 100 * float64(q.Population[i]) / float64(total)
		fmt.Fprintf(w, "%3d  %s  alpha %3d  %8d px  %5.1f%%\n",
			i, hex, c.A, q.Population[i], share)
	}
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

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

// Command genpdf traces all test images and writes the results as PDF
// files, for visual inspection in a PDF viewer.
package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/vectorize"
	"seehuhn.de/go/vectorize/testcases"
)

const outDir = "testdata/traced"

func main() {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		panic(err)
	}

	opts := vectorize.DefaultOptions()
	opts.MinRegionPixels = 0

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			if err := generatePDF(tc, opts, filepath.Join(outDir, name+".pdf")); err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
		}
	}
}

func generatePDF(tc testcases.TestCase, opts vectorize.Options, pdfPath string) error {
	img, err := vectorize.FromImage(tc.Image())
	if err != nil {
		return err
	}
	doc, err := vectorize.Trace(context.Background(), img, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(pdfPath)
	if err != nil {
		return err
	}
	if err := vectorize.WritePDF(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

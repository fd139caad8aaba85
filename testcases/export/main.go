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

// Command export writes all test images as PNG files, together with a
// JSON index listing the expected colour and region counts.
package main

import (
	"encoding/json"
	"image/png"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/vectorize/testcases"
)

const outDir = "testdata/fixtures"

func main() {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		panic(err)
	}

	var out struct {
		TestCases []jsonTestCase `json:"testcases"`
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			if err := writePNG(filepath.Join(outDir, name+".png"), tc); err != nil {
				panic(err)
			}
			out.TestCases = append(out.TestCases, jsonTestCase{
				Name:     name,
				File:     name + ".png",
				Width:    tc.Width,
				Height:   tc.Height,
				Colors:   tc.Colors,
				Regions4: tc.Regions4,
				Regions8: tc.Regions8,
			})
		}
	}

	f, err := os.Create(filepath.Join(outDir, "testcases.json"))
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}

type jsonTestCase struct {
	Name     string `json:"name"`
	File     string `json:"file"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Colors   int    `json:"colors,omitempty"`
	Regions4 int    `json:"regions4,omitempty"`
	Regions8 int    `json:"regions8,omitempty"`
}

func writePNG(fname string, tc testcases.TestCase) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := png.Encode(f, tc.Image()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

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
	"errors"
	"maps"
	"slices"
	"testing"

	"seehuhn.de/go/vectorize/testcases"
)

// testImage converts a test case into an [Image].
func testImage(t testing.TB, tc testcases.TestCase) *Image {
	t.Helper()
	img, err := FromImage(tc.Image())
	if err != nil {
		t.Fatal(err)
	}
	return img
}

// allCases calls fn for every test case, as a subtest.
func allCases(t *testing.T, fn func(t *testing.T, tc testcases.TestCase)) {
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			t.Run(category+"_"+tc.Name, func(t *testing.T) {
				fn(t, tc)
			})
		}
	}
}

func TestQuantizeLossless(t *testing.T) {
	allCases(t, func(t *testing.T, tc testcases.TestCase) {
		if tc.Colors == 0 || tc.Colors > 16 {
			t.Skip("colour count unknown or too large")
		}
		img := testImage(t, tc)
		q, err := Quantize(img, 16, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(q.Palette) != tc.Colors {
			t.Errorf("got %d palette entries, want %d", len(q.Palette), tc.Colors)
		}
		for y := range img.Height {
			for x := range img.Width {
				if got, want := q.Palette[q.Label(x, y)], img.At(x, y); got != want {
					t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
				}
			}
		}
	})
}

func TestQuantizePaletteBound(t *testing.T) {
	allCases(t, func(t *testing.T, tc testcases.TestCase) {
		img := testImage(t, tc)
		for _, maxColors := range []int{1, 2, 3, 5, 8} {
			q, err := Quantize(img, maxColors, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(q.Palette) > maxColors {
				t.Errorf("maxColors=%d: got %d palette entries", maxColors, len(q.Palette))
			}

			total := 0
			for i, n := range q.Population {
				total += n
				if i > 0 && n > q.Population[i-1] {
					t.Errorf("maxColors=%d: palette not ordered by population", maxColors)
				}
			}
			if total != img.NumPixels() {
				t.Errorf("maxColors=%d: population sums to %d, want %d",
					maxColors, total, img.NumPixels())
			}

			counts := make([]int, len(q.Palette))
			for _, l := range q.Labels {
				counts[l]++
			}
			if !slices.Equal(counts, q.Population) {
				t.Errorf("maxColors=%d: label counts %v, population %v",
					maxColors, counts, q.Population)
			}
		}
	})
}

func TestQuantizeThreshold(t *testing.T) {
	img := testImage(t, testcases.All["photo"][0]) // gradient

	q, err := Quantize(img, 16, 255)
	if err != nil {
		t.Fatal(err)
	}
	if len(q.Palette) != 1 {
		t.Errorf("threshold 255: got %d colours, want 1", len(q.Palette))
	}

	coarse, err := Quantize(img, 64, 40)
	if err != nil {
		t.Fatal(err)
	}
	fine, err := Quantize(img, 64, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(coarse.Palette) >= len(fine.Palette) {
		t.Errorf("threshold 40 gave %d colours, threshold 0 gave %d",
			len(coarse.Palette), len(fine.Palette))
	}
}

func TestQuantizeDeterministic(t *testing.T) {
	img := testImage(t, testcases.Large[1])
	a, err := Quantize(img, 7, 0)
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		b, err := Quantize(img, 7, 0)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(a.Palette, b.Palette) || !slices.Equal(a.Labels, b.Labels) {
			t.Fatal("results differ between runs")
		}
	}
}

func TestQuantizeErrors(t *testing.T) {
	img := testImage(t, testcases.All["basic"][0])

	if _, err := Quantize(nil, 16, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil image: got %v, want ErrInvalidInput", err)
	}
	if _, err := Quantize(&Image{}, 16, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty image: got %v, want ErrInvalidInput", err)
	}
	for _, maxColors := range []int{0, -1, MaxPaletteSize + 1} {
		if _, err := Quantize(img, maxColors, 0); !errors.Is(err, ErrConfig) {
			t.Errorf("maxColors=%d: got %v, want ErrConfig", maxColors, err)
		}
	}
	for _, threshold := range []int{-1, 256} {
		if _, err := Quantize(img, 16, threshold); !errors.Is(err, ErrConfig) {
			t.Errorf("threshold=%d: got %v, want ErrConfig", threshold, err)
		}
	}
}

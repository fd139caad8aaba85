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
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"

	"seehuhn.de/go/vectorize/testcases"
)

func traceCase(t testing.TB, tc testcases.TestCase, opts Options) *Document {
	t.Helper()
	doc, err := Trace(context.Background(), testImage(t, tc), opts)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestTraceCoverage(t *testing.T) {
	allCases(t, func(t *testing.T, tc testcases.TestCase) {
		for _, conn := range []Connectivity{Connect4, Connect8} {
			opts := DefaultOptions()
			opts.Connectivity = conn
			doc := traceCase(t, tc, opts)
			if a := doc.Area(); a != tc.Width*tc.Height {
				t.Errorf("conn=%d: paths cover %d pixels, want %d", conn, a, tc.Width*tc.Height)
			}
			if doc.Width != tc.Width || doc.Height != tc.Height {
				t.Errorf("conn=%d: document size %dx%d, want %dx%d",
					conn, doc.Width, doc.Height, tc.Width, tc.Height)
			}
			for i, p := range doc.Paths {
				if p.Region != i {
					t.Errorf("path %d belongs to region %d", i, p.Region)
				}
				if p.Data == nil || len(p.Data.Cmds) == 0 {
					t.Errorf("path %d is empty", i)
				}
			}
		}
	})
}

func TestTraceDeterministic(t *testing.T) {
	for _, tc := range slices.Concat(testcases.All["shape"], testcases.Large) {
		t.Run(tc.Name, func(t *testing.T) {
			var outputs [][]byte
			for _, workers := range []int{1, 3, 8} {
				opts := DefaultOptions()
				opts.Workers = workers
				doc := traceCase(t, tc, opts)
				buf := &bytes.Buffer{}
				if err := WriteSVG(buf, doc, opts.Precision); err != nil {
					t.Fatal(err)
				}
				outputs = append(outputs, buf.Bytes())
			}
			for i := 1; i < len(outputs); i++ {
				if !bytes.Equal(outputs[0], outputs[i]) {
					t.Fatalf("run %d differs from run 0", i)
				}
			}
		})
	}
}

func TestTraceSingleColor(t *testing.T) {
	tc := testcases.All["basic"][0] // solid 16x16
	doc := traceCase(t, tc, DefaultOptions())
	if len(doc.Paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(doc.Paths))
	}
	if got, want := SVGPathData(doc.Paths[0].Data, 2), "M0 0L16 0L16 16L0 16Z"; got != want {
		t.Errorf("got path %q, want %q", got, want)
	}
	if doc.Paths[0].Area != 256 {
		t.Errorf("got area %d, want 256", doc.Paths[0].Area)
	}
}

func TestTraceCheckerboard(t *testing.T) {
	tc := testcases.All["pattern"][0]
	opts := DefaultOptions()
	opts.Connectivity = Connect4
	opts.MinRegionPixels = 0
	doc := traceCase(t, tc, opts)
	if len(doc.Paths) != 64 {
		t.Errorf("got %d paths, want 64", len(doc.Paths))
	}

	opts.Connectivity = Connect8
	doc = traceCase(t, tc, opts)
	if len(doc.Paths) != 2 {
		t.Errorf("8-connected: got %d paths, want 2", len(doc.Paths))
	}
}

func TestTracePaletteBound(t *testing.T) {
	for _, maxColors := range []int{1, 2, 4, 16} {
		opts := DefaultOptions()
		opts.MaxPaletteSize = maxColors
		doc := traceCase(t, testcases.Large[1], opts)
		if len(doc.Palette) > maxColors {
			t.Errorf("max=%d: got %d palette entries", maxColors, len(doc.Palette))
		}
		colors := make(map[[4]uint8]bool)
		for _, p := range doc.Paths {
			colors[[4]uint8{p.Color.R, p.Color.G, p.Color.B, p.Color.A}] = true
		}
		if len(colors) > maxColors {
			t.Errorf("max=%d: paths use %d colours", maxColors, len(colors))
		}
	}
}

func TestTraceCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	img := testImage(t, testcases.All["pattern"][0])
	_, err := Trace(ctx, img, DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestTraceErrors(t *testing.T) {
	if _, err := Trace(context.Background(), nil, DefaultOptions()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil image: got %v, want ErrInvalidInput", err)
	}

	img := testImage(t, testcases.All["basic"][0])
	opts := DefaultOptions()
	opts.Connectivity = 5
	if _, err := Trace(context.Background(), img, opts); !errors.Is(err, ErrConfig) {
		t.Errorf("bad options: got %v, want ErrConfig", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Options)
		ok     bool
	}{
		{"defaults", func(*Options) {}, true},
		{"palette_max", func(o *Options) { o.MaxPaletteSize = MaxPaletteSize }, true},
		{"palette_zero", func(o *Options) { o.MaxPaletteSize = 0 }, false},
		{"palette_large", func(o *Options) { o.MaxPaletteSize = MaxPaletteSize + 1 }, false},
		{"threshold", func(o *Options) { o.ColorThreshold = 300 }, false},
		{"min_region", func(o *Options) { o.MinRegionPixels = -1 }, false},
		{"tolerance_zero", func(o *Options) { o.CurveFitTolerance = 0 }, false},
		{"corner", func(o *Options) { o.CornerThreshold = 200 }, false},
		{"connectivity_4", func(o *Options) { o.Connectivity = Connect4 }, true},
		{"connectivity_6", func(o *Options) { o.Connectivity = 6 }, false},
		{"workers", func(o *Options) { o.Workers = -2 }, false},
		{"precision", func(o *Options) { o.Precision = 20 }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			opts := DefaultOptions()
			c.modify(&opts)
			err := opts.Validate()
			if c.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !c.ok && !errors.Is(err, ErrConfig) {
				t.Errorf("got %v, want ErrConfig", err)
			}
		})
	}
}

func TestStats(t *testing.T) {
	opts := DefaultOptions()
	opts.MinRegionPixels = 0
	doc := traceCase(t, testcases.All["basic"][4], opts) // ring_hole
	s := doc.Stats()
	if s.Paths != 3 || s.Holes != 2 || s.PaletteSize != 2 {
		t.Errorf("got %+v", s)
	}
	if s.Curves != 0 {
		t.Errorf("axis-aligned outlines produced %d curves", s.Curves)
	}
}

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

// Package vectorize traces raster images into vector paths.
//
// Tracing runs in four stages. [Quantize] reduces the colours of an image
// to a small palette, [Segment] groups equally labeled pixels into
// connected regions, [TraceRegion] follows the pixel boundary of each
// region, and a [Fitter] replaces the boundary polygons by smooth paths
// made of lines and cubic Bézier curves. [Trace] runs the complete
// pipeline and returns a [Document], which can be written as SVG or PDF,
// or rendered back into a raster image for inspection.
package vectorize

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Errors reported by the tracing engine. Returned errors wrap one of these
// and can be tested with [errors.Is].
var (
	// ErrInvalidInput indicates an empty or corrupt image.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates that no decoder is available for the
	// image data.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrConfig indicates an out-of-range tuning parameter.
	ErrConfig = errors.New("invalid configuration")
)

// MaxPaletteSize is the largest supported palette. Palette indices are
// stored as bytes.
const MaxPaletteSize = 256

// Options holds the tuning parameters of the tracing pipeline.
// The zero value is not valid; start from [DefaultOptions].
type Options struct {
	// MaxPaletteSize is the maximal number of colours after quantization.
	MaxPaletteSize int `toml:"max_palette_size" json:"max_palette_size"`

	// ColorThreshold stops quantization once no colour box has a channel
	// range above this value (0-255). Zero disables the threshold.
	ColorThreshold int `toml:"color_threshold" json:"color_threshold"`

	// MinRegionPixels is the minimal region size. Smaller regions are
	// merged into a neighbour. Values 0 and 1 disable merging.
	MinRegionPixels int `toml:"min_region_pixels" json:"min_region_pixels"`

	// CurveFitTolerance is the maximal deviation of the fitted paths from
	// the pixel outlines, in pixels.
	CurveFitTolerance float64 `toml:"curve_fit_tolerance" json:"curve_fit_tolerance"`

	// CornerThreshold is the turning angle in degrees above which an
	// outline vertex is kept as a sharp corner.
	CornerThreshold float64 `toml:"corner_threshold" json:"corner_threshold"`

	// Connectivity is either 4 or 8.
	Connectivity Connectivity `toml:"connectivity" json:"connectivity"`

	// Workers limits the number of regions traced concurrently.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int `toml:"workers" json:"workers"`

	// Precision is the number of decimal places used when writing
	// coordinates.
	Precision int `toml:"precision" json:"precision"`
}

// DefaultOptions returns the default tuning parameters.
func DefaultOptions() Options {
	return Options{
		MaxPaletteSize:    defaultPaletteSize,
		ColorThreshold:    0,
		MinRegionPixels:   defaultMinRegionPixels,
		CurveFitTolerance: defaultTolerance,
		CornerThreshold:   defaultCornerThreshold,
		Connectivity:      Connect8,
		Workers:           0,
		Precision:         defaultPrecision,
	}
}

// Validate checks that all parameters are in range.
// The returned error wraps [ErrConfig].
func (o Options) Validate() error {
	switch {
	case o.MaxPaletteSize < 1 || o.MaxPaletteSize > MaxPaletteSize:
		return fmt.Errorf("%w: max_palette_size %d outside [1, %d]",
			ErrConfig, o.MaxPaletteSize, MaxPaletteSize)
	case o.ColorThreshold < 0 || o.ColorThreshold > 255:
		return fmt.Errorf("%w: color_threshold %d outside [0, 255]",
			ErrConfig, o.ColorThreshold)
	case o.MinRegionPixels < 0:
		return fmt.Errorf("%w: min_region_pixels %d is negative",
			ErrConfig, o.MinRegionPixels)
	case !(o.CurveFitTolerance > 0) || o.CurveFitTolerance > maxTolerance:
		return fmt.Errorf("%w: curve_fit_tolerance %g outside (0, %g]",
			ErrConfig, o.CurveFitTolerance, float64(maxTolerance))
	case !(o.CornerThreshold >= 0 && o.CornerThreshold <= 180):
		return fmt.Errorf("%w: corner_threshold %g outside [0, 180]",
			ErrConfig, o.CornerThreshold)
	case o.Connectivity != Connect4 && o.Connectivity != Connect8:
		return fmt.Errorf("%w: connectivity must be 4 or 8, got %d",
			ErrConfig, o.Connectivity)
	case o.Workers < 0:
		return fmt.Errorf("%w: workers %d is negative", ErrConfig, o.Workers)
	case o.Precision < 0 || o.Precision > maxPrecision:
		return fmt.Errorf("%w: precision %d outside [0, %d]",
			ErrConfig, o.Precision, maxPrecision)
	}
	return nil
}

func (o Options) fitter() *Fitter {
	return &Fitter{
		Tolerance:       o.CurveFitTolerance,
		CornerThreshold: o.CornerThreshold,
		MaxIterations:   defaultMaxIterations,
	}
}

// Trace converts img into a vector document.
//
// Regions are traced concurrently, using up to opts.Workers goroutines.
// The paths of the result are ordered by region discovery order, so the
// output does not depend on scheduling. Cancellation of ctx is checked
// between regions; in this case the context error is returned.
func Trace(ctx context.Context, img *Image, opts Options) (*Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if img == nil || img.NumPixels() == 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrInvalidInput)
	}

	q, err := Quantize(img, opts.MaxPaletteSize, opts.ColorThreshold)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seg, err := Segment(q, opts.Connectivity, opts.MinRegionPixels)
	if err != nil {
		return nil, err
	}

	paths, err := tracePaths(ctx, seg, opts)
	if err != nil {
		return nil, err
	}

	return &Document{
		Width:   img.Width,
		Height:  img.Height,
		Palette: q.Palette,
		Paths:   paths,
	}, nil
}

// tracePaths extracts and fits the outline of every region of seg.
func tracePaths(ctx context.Context, seg *Segmentation, opts Options) ([]Path, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	paths := make([]Path, len(seg.Regions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range seg.Regions {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			region := &seg.Regions[i]
			poly := TraceRegion(seg, i)
			paths[i] = Path{
				Region: i,
				Color:  region.Color,
				Area:   region.Count,
				Holes:  len(poly.Holes),
				Data:   opts.fitter().FitPolygon(poly),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

// Default values and limits for the tuning parameters.
const (
	defaultPaletteSize     = 16
	defaultMinRegionPixels = 4
	defaultTolerance       = 1.0
	defaultPrecision       = 2

	maxTolerance = 1000
	maxPrecision = 8
)

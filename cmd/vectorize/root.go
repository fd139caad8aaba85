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
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/spf13/cobra"

	"seehuhn.de/go/vectorize"
	"seehuhn.de/go/vectorize/internal/config"
	"seehuhn.de/go/vectorize/internal/logger"
)

// cfg holds the configuration file settings, with command line overrides
// applied. It is set before any command runs.
var cfg *config.Config

var (
	configPath string
	verbose    bool

	flagPalette   int
	flagThreshold int
	flagMinRegion int
	flagTolerance float64
	flagCorner    float64
	flagConnect   int
	flagWorkers   int
	flagPrecision int
	flagOutput    string
	flagFormat    string
	flagPreview   string
	flagPrevScale float64
	flagOutlines  float64
)

var rootCmd = &cobra.Command{
	Use:   "vectorize [flags] <image>",
	Short: "Trace a raster image into vector paths",
	Long: `Trace a raster image (PNG, JPEG, GIF, BMP, TIFF or WebP) into vector paths.

The colours of the image are reduced to a small palette, connected regions
of equal colour are outlined, and the outlines are smoothed into lines and
cubic Bézier curves. The result is printed to stdout as SVG unless
--output is given. Use "-" to read the image from stdin.

Settings are read from ~/.vectorize/config.toml if present; command line
flags take precedence.`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: setup,
	RunE:              runTrace,
	SilenceUsage:      true,
}

func init() {
	def := vectorize.DefaultOptions()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "configuration file (default ~/.vectorize/config.toml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "print progress information to stderr")
	pf.IntVar(&flagPalette, "palette", def.MaxPaletteSize, "maximal number of colours (1-256)")
	pf.IntVar(&flagThreshold, "color-threshold", def.ColorThreshold, "stop colour reduction below this channel range (0-255)")
	pf.IntVar(&flagMinRegion, "min-region", def.MinRegionPixels, "merge regions with fewer pixels into a neighbour")
	pf.Float64Var(&flagTolerance, "tolerance", def.CurveFitTolerance, "maximal deviation from the pixel outlines, in pixels")
	pf.Float64Var(&flagCorner, "corner", def.CornerThreshold, "turning angle in degrees above which corners stay sharp")
	pf.IntVar(&flagConnect, "connectivity", int(def.Connectivity), "pixel connectivity, 4 or 8")
	pf.IntVar(&flagWorkers, "workers", def.Workers, "number of regions traced concurrently (0 = all CPUs)")
	pf.IntVar(&flagPrecision, "precision", def.Precision, "decimal places of SVG coordinates")

	f := rootCmd.Flags()
	f.StringVarP(&flagOutput, "output", "o", "", "output file (default stdout)")
	f.StringVar(&flagFormat, "format", "svg", "output format, svg or pdf")
	f.StringVar(&flagPreview, "preview", "", "write a PNG comparing the input with the traced result")
	f.Float64Var(&flagPrevScale, "preview-scale", 1, "magnification of the preview image")
	f.Float64Var(&flagOutlines, "preview-outlines", 0, "draw path boundaries of this width on the preview (0 = off)")
}

// setup enables logging, loads the configuration file and applies the
// command line overrides.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			logger.Warn("no home directory, using default settings: %v", err)
		}
		path = p
	}

	cfg = config.Default()
	if path != "" {
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = c
		logger.Debug("configuration: %s", path)
	}

	flags := cmd.Flags()
	if flags.Changed("palette") {
		cfg.Trace.MaxPaletteSize = flagPalette
	}
	if flags.Changed("color-threshold") {
		cfg.Trace.ColorThreshold = flagThreshold
	}
	if flags.Changed("min-region") {
		cfg.Trace.MinRegionPixels = flagMinRegion
	}
	if flags.Changed("tolerance") {
		cfg.Trace.CurveFitTolerance = flagTolerance
	}
	if flags.Changed("corner") {
		cfg.Trace.CornerThreshold = flagCorner
	}
	if flags.Changed("connectivity") {
		cfg.Trace.Connectivity = vectorize.Connectivity(flagConnect)
	}
	if flags.Changed("workers") {
		cfg.Trace.Workers = flagWorkers
	}
	if flags.Changed("precision") {
		cfg.Trace.Precision = flagPrecision
	}
	return cfg.Validate()
}

// loadImage decodes the image file name, or stdin if name is "-".
func loadImage(cmd *cobra.Command, name string) (*vectorize.Image, error) {
	var r io.Reader
	if name == "-" {
		r = cmd.InOrStdin()
	} else {
		fd, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer fd.Close()
		r = fd
	}

	done := logger.Timed("decode")
	img, err := vectorize.Decode(bufio.NewReader(r))
	done()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	logger.Info("%s: %dx%d pixels, %s", name, img.Width, img.Height, img.Format)
	return img, nil
}

func runTrace(cmd *cobra.Command, args []string) error {
	if flagFormat != "svg" && flagFormat != "pdf" {
		return fmt.Errorf("%w: unknown format %q", vectorize.ErrConfig, flagFormat)
	}

	img, err := loadImage(cmd, args[0])
	if err != nil {
		return err
	}

	logger.Section("trace")
	done := logger.Timed("trace")
	doc, err := vectorize.Trace(cmd.Context(), img, cfg.Trace)
	done()
	if err != nil {
		return err
	}
	stats := doc.Stats()
	logger.Info("%d colours, %d paths, %d holes, %d lines, %d curves",
		stats.PaletteSize, stats.Paths, stats.Holes, stats.Lines, stats.Curves)

	if err := writeOutput(cmd, doc); err != nil {
		return err
	}

	if flagPreview != "" {
		if err := writePreview(img, doc); err != nil {
			return err
		}
		logger.Info("preview written to %s", flagPreview)
	}
	return nil
}

func writeOutput(cmd *cobra.Command, doc *vectorize.Document) (err error) {
	var w io.Writer = cmd.OutOrStdout()
	if flagOutput != "" {
		fd, createErr := os.Create(flagOutput)
		if createErr != nil {
			return createErr
		}
		defer func() {
			err = errors.Join(err, fd.Close())
		}()
		w = fd
	}

	switch flagFormat {
	case "pdf":
		return vectorize.WritePDF(w, doc)
	default:
		return vectorize.WriteSVG(w, doc, cfg.Trace.Precision)
	}
}

func writePreview(img *vectorize.Image, doc *vectorize.Document) error {
	fd, err := os.Create(flagPreview)
	if err != nil {
		return err
	}
	var preview *image.NRGBA
	if flagOutlines > 0 {
		preview = vectorize.CompareOutlined(img, doc, flagPrevScale, flagOutlines)
	} else {
		preview = vectorize.Compare(img, doc, flagPrevScale)
	}
	err = png.Encode(fd, preview)
	return errors.Join(err, fd.Close())
}

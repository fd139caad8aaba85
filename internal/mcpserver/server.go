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

// Package mcpserver exposes the tracing pipeline as a Model Context
// Protocol tool.
package mcpserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"seehuhn.de/go/vectorize"
	"seehuhn.de/go/vectorize/internal/config"
	"seehuhn.de/go/vectorize/internal/logger"
	"seehuhn.de/go/vectorize/internal/payload"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server of the vectorize command.
type Server struct {
	cfg    *config.Config
	server *mcp.Server
}

// NewServer creates a new MCP server. The tracing defaults and size
// limits are taken from cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	impl := &mcp.Implementation{
		Name:    "vectorize",
		Version: Version,
	}
	s := &Server{
		cfg:    cfg,
		server: mcp.NewServer(impl, nil),
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "vectorize",
		Description: "Trace a raster image (PNG, JPEG, GIF, BMP, TIFF or WebP) into an SVG document",
	}, s.handleVectorize)
	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr.
// When ctx is cancelled, open connections get shutdownTimeout to finish.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.httpHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Info("mcp: listening on %s", addr)
	err := httpServer.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}

func (s *Server) httpHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

const shutdownTimeout = 5 * time.Second

// VectorizeInput is the input schema for the vectorize tool.
// Options which are omitted keep their configured values.
type VectorizeInput struct {
	Image string `json:"image" jsonschema:"the image, as base64 or as a data URL"`

	MaxPaletteSize    *int     `json:"max_palette_size,omitempty" jsonschema:"maximal number of colours (1-256, default 16)"`
	ColorThreshold    *int     `json:"color_threshold,omitempty" jsonschema:"stop colour reduction below this channel range (0-255)"`
	MinRegionPixels   *int     `json:"min_region_pixels,omitempty" jsonschema:"regions smaller than this are merged into a neighbour (default 4)"`
	CurveFitTolerance *float64 `json:"curve_fit_tolerance,omitempty" jsonschema:"maximal deviation from the pixel outlines in pixels (default 1)"`
	CornerThreshold   *float64 `json:"corner_threshold,omitempty" jsonschema:"turning angle in degrees above which corners stay sharp (default 60)"`
	Connectivity      *int     `json:"connectivity,omitempty" jsonschema:"pixel connectivity, 4 or 8 (default 8)"`
	Workers           *int     `json:"workers,omitempty" jsonschema:"number of regions traced in parallel (0 = number of CPUs)"`
	Precision         *int     `json:"precision,omitempty" jsonschema:"decimal places of SVG coordinates (0-8, default 2)"`
}

// VectorizeOutput is the output schema for the vectorize tool.
type VectorizeOutput struct {
	SVG         string `json:"svg"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	PaletteSize int    `json:"palette_size"`
	Paths       int    `json:"paths"`
	Lines       int    `json:"lines"`
	Curves      int    `json:"curves"`
}

// options applies the fields of input which are present to opts.
func (in *VectorizeInput) options(opts vectorize.Options) vectorize.Options {
	set := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	set(&opts.MaxPaletteSize, in.MaxPaletteSize)
	set(&opts.ColorThreshold, in.ColorThreshold)
	set(&opts.MinRegionPixels, in.MinRegionPixels)
	set(&opts.Workers, in.Workers)
	set(&opts.Precision, in.Precision)
	if in.CurveFitTolerance != nil {
		opts.CurveFitTolerance = *in.CurveFitTolerance
	}
	if in.CornerThreshold != nil {
		opts.CornerThreshold = *in.CornerThreshold
	}
	if in.Connectivity != nil {
		opts.Connectivity = vectorize.Connectivity(*in.Connectivity)
	}
	return opts
}

// handleVectorize handles the vectorize tool invocation.
func (s *Server) handleVectorize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input VectorizeInput,
) (*mcp.CallToolResult, VectorizeOutput, error) {
	opts := input.options(s.cfg.Trace)
	if err := opts.Validate(); err != nil {
		return nil, VectorizeOutput{}, err
	}

	data, err := payload.Decode(input.Image)
	if err != nil {
		return nil, VectorizeOutput{}, err
	}
	if err := payload.CheckSize(data, s.cfg.Server.MaxPixels); err != nil {
		return nil, VectorizeOutput{}, err
	}
	img, err := vectorize.DecodeBytes(data)
	if err != nil {
		return nil, VectorizeOutput{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Server.TimeoutSeconds)*time.Second)
	defer cancel()
	doc, err := vectorize.Trace(ctx, img, opts)
	if err != nil {
		return nil, VectorizeOutput{}, err
	}

	buf := &bytes.Buffer{}
	if err := vectorize.WriteSVG(buf, doc, opts.Precision); err != nil {
		return nil, VectorizeOutput{}, err
	}

	stats := doc.Stats()
	logger.Debug("mcp: traced %dx%d image into %d paths", doc.Width, doc.Height, stats.Paths)
	return nil, VectorizeOutput{
		SVG:         buf.String(),
		Width:       doc.Width,
		Height:      doc.Height,
		PaletteSize: stats.PaletteSize,
		Paths:       stats.Paths,
		Lines:       stats.Lines,
		Curves:      stats.Curves,
	}, nil
}

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

package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seehuhn.de/go/vectorize"
	"seehuhn.de/go/vectorize/internal/config"
)

// ringPNG returns a 12x12 white image with a black 6x6 square in the
// centre.
func ringPNG(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 12, 12))
	for y := range 12 {
		for x := range 12 {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if x >= 3 && x < 9 && y >= 3 && y < 9 {
				c = color.NRGBA{A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestNewServer(t *testing.T) {
	t.Run("valid config creates server", func(t *testing.T) {
		server, err := NewServer(config.Default())
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("invalid config returns error", func(t *testing.T) {
		cfg := config.Default()
		cfg.Trace.Precision = -1
		server, err := NewServer(cfg)
		assert.ErrorIs(t, err, vectorize.ErrConfig)
		assert.Nil(t, server)
	})
}

func TestServer_handleVectorize(t *testing.T) {
	ctx := context.Background()
	server, err := NewServer(config.Default())
	require.NoError(t, err)

	t.Run("traces image", func(t *testing.T) {
		input := VectorizeInput{Image: ringPNG(t)}
		_, output, err := server.handleVectorize(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 12, output.Width)
		assert.Equal(t, 12, output.Height)
		assert.Equal(t, 2, output.PaletteSize)
		assert.Equal(t, 2, output.Paths)
		assert.Zero(t, output.Curves)
		assert.True(t, strings.HasPrefix(output.SVG, "<svg "))
		assert.Contains(t, output.SVG, `fill="#000000"`)
	})

	t.Run("accepts data url and options", func(t *testing.T) {
		input := VectorizeInput{
			Image:          "data:image/png;base64," + ringPNG(t),
			MaxPaletteSize: ptr(1),
		}
		_, output, err := server.handleVectorize(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.PaletteSize)
		assert.Equal(t, 1, output.Paths)
	})

	t.Run("returns error on invalid options", func(t *testing.T) {
		input := VectorizeInput{Image: ringPNG(t), Connectivity: ptr(6)}
		_, _, err := server.handleVectorize(ctx, nil, input)
		assert.ErrorIs(t, err, vectorize.ErrConfig)
	})

	t.Run("returns error on missing image", func(t *testing.T) {
		_, _, err := server.handleVectorize(ctx, nil, VectorizeInput{})
		assert.ErrorIs(t, err, vectorize.ErrInvalidInput)
	})

	t.Run("returns error on unknown format", func(t *testing.T) {
		input := VectorizeInput{Image: base64.StdEncoding.EncodeToString([]byte("GIF? no"))}
		_, _, err := server.handleVectorize(ctx, nil, input)
		assert.ErrorIs(t, err, vectorize.ErrUnsupportedFormat)
	})
}

func ptr[T any](v T) *T {
	return &v
}

func TestVectorizeInput_options(t *testing.T) {
	def := vectorize.DefaultOptions()

	in := VectorizeInput{}
	assert.Equal(t, def, in.options(def))

	in = VectorizeInput{CurveFitTolerance: ptr(0.25), Connectivity: ptr(4)}
	opts := in.options(def)
	assert.Equal(t, 0.25, opts.CurveFitTolerance)
	assert.Equal(t, vectorize.Connect4, opts.Connectivity)
	assert.Equal(t, def.MaxPaletteSize, opts.MaxPaletteSize)

	// explicit zeros override non-zero configured values
	base := def
	base.MinRegionPixels = 20
	base.ColorThreshold = 30
	base.Workers = 3
	in = VectorizeInput{
		MinRegionPixels: ptr(0),
		ColorThreshold:  ptr(0),
		Workers:         ptr(0),
		Precision:       ptr(0),
	}
	opts = in.options(base)
	assert.Zero(t, opts.MinRegionPixels)
	assert.Zero(t, opts.ColorThreshold)
	assert.Zero(t, opts.Workers)
	assert.Zero(t, opts.Precision)
	assert.Equal(t, base.MaxPaletteSize, opts.MaxPaletteSize)
}

func TestServer_handleVectorizePrecision(t *testing.T) {
	server, err := NewServer(config.Default())
	require.NoError(t, err)

	input := VectorizeInput{Image: ringPNG(t), Precision: ptr(5)}
	_, output, err := server.handleVectorize(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, 2, output.Paths)

	input.Precision = ptr(9)
	_, _, err = server.handleVectorize(context.Background(), nil, input)
	assert.ErrorIs(t, err, vectorize.ErrConfig)
}

func TestServer_RunHTTP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	server, err := NewServer(config.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- server.RunHTTP(ctx, addr) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_RunHTTPAddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	server, err := NewServer(config.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.Error(t, server.RunHTTP(ctx, ln.Addr().String()))
}

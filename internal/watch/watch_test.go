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

package watch

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seehuhn.de/go/vectorize"
)

func writePNG(t *testing.T, name string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			c := color.NRGBA{G: 128, A: 255}
			if x < 4 {
				c = color.NRGBA{R: 200, G: 200, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(name, buf.Bytes(), 0644))
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.png", true},
		{"/tmp/dir/photo.JPG", true},
		{"scan.tiff", true},
		{"x.webp", true},
		{"a.svg", false},
		{"a.png.tmp", false},
		{".hidden.png", false},
		{"README", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsImage(tt.name), tt.name)
	}
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "/a/b/photo.png.svg", OutputPath("/a/b/photo.png"))
	assert.Equal(t, "x.y.jpeg.svg", OutputPath("x.y.jpeg"))
	assert.NotEqual(t, OutputPath("a.png"), OutputPath("a.jpg"))
	assert.False(t, IsImage(OutputPath("a.png")))
}

func TestWatcher_handleEvent(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		dir      bool
		create   bool
		op       fsnotify.Op
		expected bool
	}{
		{"create image", "a.png", false, true, fsnotify.Create, true},
		{"write image", "a.png", false, true, fsnotify.Write, true},
		{"remove image", "a.png", false, false, fsnotify.Remove, false},
		{"rename image", "a.png", false, false, fsnotify.Rename, false},
		{"chmod image", "a.png", false, true, fsnotify.Chmod, false},
		{"create svg", "a.svg", false, true, fsnotify.Create, false},
		{"hidden image", ".a.png", false, true, fsnotify.Create, false},
		{"directory named like an image", "d.png", true, false, fsnotify.Create, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			name := filepath.Join(dir, tt.file)
			if tt.dir {
				require.NoError(t, os.Mkdir(name, 0755))
			} else if tt.create {
				require.NoError(t, os.WriteFile(name, []byte("data"), 0644))
			}

			w := New(dir, vectorize.DefaultOptions())
			got := w.handleEvent(fsnotify.Event{Name: name, Op: tt.op})
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestWatcher_TraceFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "halves.png")
	writePNG(t, src)

	w := New(dir, vectorize.DefaultOptions())
	dst, err := w.TraceFile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "halves.png.svg"), dst)

	svg, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(svg), "<svg "))
	assert.Equal(t, 2, strings.Count(string(svg), "<path "))

	_, err = os.Stat(dst + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWatcher_TraceFileErrors(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, vectorize.DefaultOptions())

	_, err := w.TraceFile(context.Background(), filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0644))
	_, err = w.TraceFile(context.Background(), bad)
	assert.ErrorIs(t, err, vectorize.ErrUnsupportedFormat)

	big := filepath.Join(dir, "big.png")
	writePNG(t, big)
	w.MaxPixels = 10
	_, err = w.TraceFile(context.Background(), big)
	assert.ErrorIs(t, err, vectorize.ErrInvalidInput)
}

func TestWatcher_TraceFileTimeout(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "slow.png")
	writePNG(t, src)

	w := New(dir, vectorize.DefaultOptions())
	w.Timeout = time.Nanosecond
	_, err := w.TraceFile(context.Background(), src)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoFileExists(t, OutputPath(src))

	w.Timeout = time.Minute
	dst, err := w.TraceFile(context.Background(), src)
	require.NoError(t, err)
	assert.FileExists(t, dst)
}

func TestWatcher_SameBaseName(t *testing.T) {
	dir := t.TempDir()
	pngFile := filepath.Join(dir, "a.png")
	gifFile := filepath.Join(dir, "a.gif")
	writePNG(t, pngFile)
	writePNG(t, gifFile)

	w := New(dir, vectorize.DefaultOptions())
	dst1, err := w.TraceFile(context.Background(), pngFile)
	require.NoError(t, err)
	dst2, err := w.TraceFile(context.Background(), gifFile)
	require.NoError(t, err)

	assert.NotEqual(t, dst1, dst2)
	assert.FileExists(t, dst1)
	assert.FileExists(t, dst2)
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "existing.png"))

	var mu sync.Mutex
	traced := map[string]error{}

	w := New(dir, vectorize.DefaultOptions())
	w.Settle = 50 * time.Millisecond
	w.Done = func(src, _ string, err error) {
		mu.Lock()
		defer mu.Unlock()
		traced[filepath.Base(src)] = err
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	has := func(name string) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			_, ok := traced[name]
			return ok
		}
	}
	require.Eventually(t, has("existing.png"), 5*time.Second, 10*time.Millisecond)

	writePNG(t, filepath.Join(dir, "new.png"))
	require.Eventually(t, has("new.png"), 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)

	mu.Lock()
	defer mu.Unlock()
	assert.NoError(t, traced["existing.png"])
	assert.NoError(t, traced["new.png"])
	assert.FileExists(t, filepath.Join(dir, "existing.png.svg"))
	assert.FileExists(t, filepath.Join(dir, "new.png.svg"))
	assert.NotContains(t, traced, "existing.png.svg")
}

func TestWatcher_RunInvalid(t *testing.T) {
	opts := vectorize.DefaultOptions()
	opts.MaxPaletteSize = 0
	err := New(t.TempDir(), opts).Run(context.Background())
	assert.ErrorIs(t, err, vectorize.ErrConfig)

	err = New(filepath.Join(t.TempDir(), "missing"), vectorize.DefaultOptions()).Run(context.Background())
	assert.Error(t, err)
}

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
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seehuhn.de/go/vectorize"
	"seehuhn.de/go/vectorize/internal/config"
)

// execute runs the command line with the given arguments, starting from
// default flag values and an empty configuration file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			f.Value.Set(f.DefValue) //nolint:errcheck
			f.Changed = false
		})
	}
	var resetAll func(c *cobra.Command)
	resetAll = func(c *cobra.Command) {
		reset(c.PersistentFlags())
		reset(c.Flags())
		for _, sub := range c.Commands() {
			resetAll(sub)
		}
	}
	resetAll(rootCmd)

	cfgFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgFile, nil, 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(append([]string{"--config", cfgFile}, args...))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// writeImage writes a 10x10 PNG, red on the left and white on the right.
func writeImage(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := range 10 {
		for x := range 10 {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if x < 4 {
				c = color.NRGBA{R: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	name := filepath.Join(t.TempDir(), "input.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(name, buf.Bytes(), 0644))
	return name
}

func TestRootCmd_TraceToStdout(t *testing.T) {
	out, err := execute(t, writeImage(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<svg "))
	assert.Contains(t, out, `width="10" height="10" viewBox="0 0 10 10"`)
	assert.Contains(t, out, `fill="#ff0000"`)
	assert.Contains(t, out, `fill="#ffffff"`)
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestRootCmd_Flags(t *testing.T) {
	out, err := execute(t, "--palette", "1", writeImage(t))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "<path "))

	_, err = execute(t, "--palette", "0", writeImage(t))
	assert.ErrorIs(t, err, vectorize.ErrConfig)

	_, err = execute(t, "--connectivity", "5", writeImage(t))
	assert.ErrorIs(t, err, vectorize.ErrConfig)

	_, err = execute(t, "--format", "eps", writeImage(t))
	assert.ErrorIs(t, err, vectorize.ErrConfig)
}

func TestRootCmd_OutputFiles(t *testing.T) {
	dir := t.TempDir()
	pdfFile := filepath.Join(dir, "out.pdf")
	previewFile := filepath.Join(dir, "preview.png")

	out, err := execute(t, "--format", "pdf", "-o", pdfFile,
		"--preview", previewFile, "--preview-scale", "2", "--preview-outlines", "1", writeImage(t))
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(pdfFile)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	fd, err := os.Open(previewFile)
	require.NoError(t, err)
	defer fd.Close()
	preview, err := png.Decode(fd)
	require.NoError(t, err)
	assert.Equal(t, 20, preview.Bounds().Dy())
	assert.Greater(t, preview.Bounds().Dx(), 40)
}

func TestRootCmd_Errors(t *testing.T) {
	_, err := execute(t)
	assert.Error(t, err, "missing image argument")

	_, err = execute(t, filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	_, err = execute(t, bad)
	assert.ErrorIs(t, err, vectorize.ErrUnsupportedFormat)
}

func TestRootCmd_ConfigFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("[trace]\nmax_palette_size = 1\n"), 0600))

	// the explicit --config given here overrides the one added by execute
	out, err := execute(t, "--config", cfgFile, writeImage(t))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "<path "))

	// flags take precedence over the file
	out, err = execute(t, "--config", cfgFile, "--palette", "4", writeImage(t))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "<path "))
}

func TestPaletteCmd(t *testing.T) {
	out, err := execute(t, "palette", writeImage(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "#ffffff")
	assert.Contains(t, lines[0], "60 px")
	assert.Contains(t, lines[1], "#ff0000")
	assert.Contains(t, lines[1], "40.0%")
	assert.NotContains(t, out, "\x1b[", "no colour codes when not a terminal")
}

func TestVersionCmd(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "vectorize version test-version-1.0.0")
}

func TestSubcommands(t *testing.T) {
	names := map[string]*cobra.Command{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = c
	}
	for _, want := range []string{"palette", "serve", "mcp", "watch", "config", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestConfigInit(t *testing.T) {
	_, err := execute(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	out, err := execute(t, "--palette", "3", "config", "init", "--force")
	require.NoError(t, err)
	path := strings.TrimPrefix(strings.TrimSpace(out), "wrote ")

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Trace.MaxPaletteSize)
	assert.Equal(t, config.Default().Server, loaded.Server)
}

func TestConfigShow(t *testing.T) {
	out, err := execute(t, "--tolerance", "0.5", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[trace]")
	assert.Contains(t, out, "[server]")
	assert.Contains(t, out, "curve_fit_tolerance = 0.5")
}

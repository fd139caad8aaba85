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
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Format identifies the pixel layout of an [Image].
type Format uint8

// Supported pixel formats.
const (
	RGB8  Format = iota + 1 // 3 bytes per pixel, opaque
	RGBA8                   // 4 bytes per pixel, non-premultiplied alpha
)

// BytesPerPixel returns the number of bytes used to store one pixel.
func (f Format) BytesPerPixel() int {
	switch f {
	case RGB8:
		return 3
	case RGBA8:
		return 4
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case RGB8:
		return "RGB8"
	case RGBA8:
		return "RGBA8"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// Image is an immutable raster image.
// Pixels are stored in row-major order without padding.
type Image struct {
	Width  int
	Height int
	Format Format
	Pix    []byte
}

// NewImage wraps pix as an image of the given size and format.
// The caller must not modify pix afterwards.
func NewImage(width, height int, format Format, pix []byte) (*Image, error) {
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("%w: unknown pixel format %s", ErrInvalidInput, format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels (%dx%d)", ErrInvalidInput, width, height)
	}
	if len(pix) < width*height*bpp {
		return nil, fmt.Errorf("%w: pixel buffer holds %d bytes, need %d",
			ErrInvalidInput, len(pix), width*height*bpp)
	}
	return &Image{
		Width:  width,
		Height: height,
		Format: format,
		Pix:    pix[:width*height*bpp],
	}, nil
}

// FromImage converts a decoded image into an [Image].
// Opaque sources are stored as RGB8, all others as RGBA8.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels (%dx%d)", ErrInvalidInput, w, h)
	}

	format := RGBA8
	if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
		format = RGB8
	}
	bpp := format.BytesPerPixel()

	pix := make([]byte, w*h*bpp)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			pix[i] = c.R
			pix[i+1] = c.G
			pix[i+2] = c.B
			if format == RGBA8 {
				pix[i+3] = c.A
			}
			i += bpp
		}
	}
	return &Image{Width: w, Height: h, Format: format, Pix: pix}, nil
}

// Decode reads an encoded image (PNG, JPEG, GIF, BMP, TIFF or WebP).
func Decode(r io.Reader) (*Image, error) {
	src, _, err := image.Decode(r)
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	} else if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", ErrInvalidInput, err)
	}
	return FromImage(src)
}

// DecodeBytes is like [Decode] but reads from a byte slice.
func DecodeBytes(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrInvalidInput)
	}
	return Decode(bytes.NewReader(data))
}

// NumPixels returns the number of pixels in the image.
func (img *Image) NumPixels() int {
	return img.Width * img.Height
}

// At returns the colour of the pixel at (x, y).
func (img *Image) At(x, y int) color.NRGBA {
	return img.pixel(y*img.Width + x)
}

// pixel returns the colour of the i-th pixel in row-major order.
func (img *Image) pixel(i int) color.NRGBA {
	switch img.Format {
	case RGB8:
		p := img.Pix[3*i : 3*i+3]
		return color.NRGBA{R: p[0], G: p[1], B: p[2], A: 0xFF}
	default:
		p := img.Pix[4*i : 4*i+4]
		return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	}
}

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

// Package payload decodes images which are transmitted as text, either as
// a data URL or as bare base64.
package payload

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"seehuhn.de/go/vectorize"
)

// Decode extracts the image bytes from s. Both "data:image/png;base64,..."
// URLs and bare base64 (padded or not) are accepted.
// Errors wrap [vectorize.ErrInvalidInput].
func Decode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, data, found := strings.Cut(rest, ",")
		if !found {
			return nil, fmt.Errorf("%w: malformed data URL", vectorize.ErrInvalidInput)
		}
		if !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("%w: data URL is not base64 encoded", vectorize.ErrInvalidInput)
		}
		s = data
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty image data", vectorize.ErrInvalidInput)
	}

	enc := base64.StdEncoding
	if !strings.HasSuffix(s, "=") && len(s)%4 != 0 {
		enc = base64.RawStdEncoding
	}
	data, err := enc.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", vectorize.ErrInvalidInput, err)
	}
	return data, nil
}

// CheckSize reads the image header of data and verifies that the image
// has at most maxPixels pixels. Data without a recognised header passes,
// so that the decoder can report the actual problem.
func CheckSize(data []byte, maxPixels int) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	if cfg.Width > 0 && cfg.Height > maxPixels/cfg.Width {
		return fmt.Errorf("%w: image size %dx%d exceeds %d pixels",
			vectorize.ErrInvalidInput, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}

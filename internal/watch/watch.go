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

// Package watch traces image files as they appear in a directory.
// For every new or changed image "name.ext" the SVG output is written
// to "name.ext.svg" next to it.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"seehuhn.de/go/vectorize"
	"seehuhn.de/go/vectorize/internal/logger"
	"seehuhn.de/go/vectorize/internal/payload"
)

// Watcher traces images in a single directory.
type Watcher struct {
	Dir       string
	Options   vectorize.Options
	MaxPixels int

	// Timeout bounds the time spent tracing one file.
	// Zero means no limit.
	Timeout time.Duration

	// Settle is the time a file must remain unchanged before it is traced.
	// Zero means 250ms.
	Settle time.Duration

	// Done, if set, is called after each traced file.
	Done func(src, dst string, err error)
}

// New creates a watcher for dir.
func New(dir string, opts vectorize.Options) *Watcher {
	return &Watcher{
		Dir:       dir,
		Options:   opts,
		MaxPixels: defaultMaxPixels,
	}
}

// Run watches the directory until ctx is cancelled. Images which already
// exist when Run starts are traced if their SVG is missing or older than
// the image.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Options.Validate(); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.Dir, err)
	}
	logger.Info("watching %s", w.Dir)

	if err := w.traceStale(ctx); err != nil {
		return err
	}

	settle := w.Settle
	if settle <= 0 {
		settle = defaultSettle
	}
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(ev) {
				pending[ev.Name] = time.Now()
			} else if ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
				delete(pending, ev.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case now := <-ticker.C:
			for name, t := range pending {
				if now.Sub(t) < settle {
					continue
				}
				delete(pending, name)
				w.trace(ctx, name)
			}
		}
	}
}

// handleEvent reports whether ev requires the named file to be traced.
func (w *Watcher) handleEvent(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return false
	}
	if !IsImage(ev.Name) {
		return false
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return true
}

// traceStale traces all images in the directory without up-to-date output.
func (w *Watcher) traceStale(ctx context.Context) error {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return nil
		}
		if !e.Type().IsRegular() || !IsImage(e.Name()) {
			continue
		}
		src := filepath.Join(w.Dir, e.Name())
		srcInfo, err := e.Info()
		if err != nil {
			continue
		}
		dstInfo, err := os.Stat(OutputPath(src))
		if err == nil && !dstInfo.ModTime().Before(srcInfo.ModTime()) {
			continue
		}
		w.trace(ctx, src)
	}
	return nil
}

func (w *Watcher) trace(ctx context.Context, src string) {
	dst, err := w.TraceFile(ctx, src)
	if err != nil {
		logger.Warn("%s: %v", src, err)
	} else {
		logger.Info("%s -> %s", src, dst)
	}
	if w.Done != nil {
		w.Done(src, dst, err)
	}
}

// TraceFile traces the image file src and writes the SVG output next to
// it. The name of the output file is returned.
func (w *Watcher) TraceFile(ctx context.Context, src string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	if w.MaxPixels > 0 {
		if err := payload.CheckSize(data, w.MaxPixels); err != nil {
			return "", err
		}
	}
	img, err := vectorize.DecodeBytes(data)
	if err != nil {
		return "", err
	}
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}
	doc, err := vectorize.Trace(ctx, img, w.Options)
	if err != nil {
		return "", err
	}

	buf := &bytes.Buffer{}
	if err := vectorize.WriteSVG(buf, doc, w.Options.Precision); err != nil {
		return "", err
	}

	dst := OutputPath(src)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return dst, nil
}

// IsImage reports whether name has the extension of a supported image
// format. Hidden files are never images.
func IsImage(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}

// OutputPath returns the name of the SVG file for the image src.
// The image extension is kept, so that "a.png" and "a.jpg" in the same
// directory do not share an output file.
func OutputPath(src string) string {
	return src + ".svg"
}

const (
	defaultSettle    = 250 * time.Millisecond
	defaultMaxPixels = 25_000_000
)

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

// Package cache stores traced SVG documents in an SQLite database, keyed by
// the image data and the tracing options.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"seehuhn.de/go/vectorize"
	"seehuhn.de/go/vectorize/internal/logger"
)

// Cache is a persistent map from (image, options) to SVG output.
// It is safe for concurrent use.
type Cache struct {
	db   *sql.DB
	path string
}

// Open opens the cache database at path, creating it if necessary.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			key TEXT PRIMARY KEY,
			svg TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating results table: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// Key returns the cache key for tracing the encoded image data with opts.
// Options which do not change the output, like the number of workers, are
// ignored.
func Key(data []byte, opts vectorize.Options) string {
	opts.Workers = 0
	optJSON, _ := json.Marshal(opts) // cannot fail for this struct

	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write(optJSON)
	return hex.EncodeToString(h.Sum(nil))
}

// Get looks up key. The boolean result reports whether an entry was found.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	var svg string
	err := c.db.QueryRowContext(ctx,
		"SELECT svg FROM results WHERE key = ?", key).Scan(&svg)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("reading cache entry: %w", err)
	}
	return svg, true, nil
}

// Put stores svg under key, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, key, svg string) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO results (key, svg, created_at) VALUES (?, ?, ?)",
		key, svg, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results").Scan(&n)
	return n, err
}

// Prune removes all entries older than maxAge and returns their number.
func (c *Cache) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := c.db.ExecContext(ctx, "DELETE FROM results WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}

// Expire removes entries older than maxAge, once immediately and then
// every interval, until ctx is cancelled.
func (c *Cache) Expire(ctx context.Context, maxAge, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		c.expireOnce(ctx, maxAge)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Cache) expireOnce(ctx context.Context, maxAge time.Duration) {
	n, err := c.Prune(ctx, maxAge)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("cache: %v", err)
		}
		return
	}
	left, err := c.Len(ctx)
	if err != nil {
		return
	}
	if n > 0 {
		logger.Info("cache: removed %d expired entries, %d left", n, left)
	} else {
		logger.Debug("cache: %d entries", left)
	}
}

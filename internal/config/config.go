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

// Package config loads the settings of the vectorize command from a TOML
// file. Values given on the command line override the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"seehuhn.de/go/vectorize"
)

// Config holds all settings.
type Config struct {
	Trace  vectorize.Options `toml:"trace"`
	Server Server            `toml:"server"`
}

// Server holds the settings of the HTTP API.
type Server struct {
	// Addr is the listen address, e.g. "localhost:8080".
	Addr string `toml:"addr"`

	// RequestsPerSecond and Burst configure the token bucket rate limiter.
	// A rate of zero disables rate limiting.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`

	// MaxBodyBytes limits the size of request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`

	// MaxPixels limits the size of decoded images.
	MaxPixels int `toml:"max_pixels"`

	// TimeoutSeconds bounds the time spent tracing one image.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// CachePath is the location of the SQLite result cache.
	// An empty path disables caching.
	CachePath string `toml:"cache_path"`

	// CacheMaxAgeHours is the time after which cached results are
	// removed. Zero keeps results forever.
	CacheMaxAgeHours int `toml:"cache_max_age_hours"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Trace: vectorize.DefaultOptions(),
		Server: Server{
			Addr:              "localhost:8080",
			RequestsPerSecond: 5,
			Burst:             10,
			MaxBodyBytes:      20 << 20,
			MaxPixels:         25_000_000,
			TimeoutSeconds:    60,
			CacheMaxAgeHours:  24 * 30,
		},
	}
}

// DefaultPath returns the location of the configuration file,
// ~/.vectorize/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".vectorize", "config.toml"), nil
}

// Load reads the configuration file at path. Settings missing from the
// file keep their default values. If the file does not exist, the defaults
// are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return nil, err
	}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", vectorize.ErrConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks all settings. Errors wrap [vectorize.ErrConfig].
func (c *Config) Validate() error {
	if err := c.Trace.Validate(); err != nil {
		return err
	}
	s := &c.Server
	switch {
	case s.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", vectorize.ErrConfig)
	case s.RequestsPerSecond < 0:
		return fmt.Errorf("%w: server.requests_per_second %g is negative",
			vectorize.ErrConfig, s.RequestsPerSecond)
	case s.RequestsPerSecond > 0 && s.Burst < 1:
		return fmt.Errorf("%w: server.burst must be positive", vectorize.ErrConfig)
	case s.MaxBodyBytes < 1:
		return fmt.Errorf("%w: server.max_body_bytes must be positive", vectorize.ErrConfig)
	case s.MaxPixels < 1:
		return fmt.Errorf("%w: server.max_pixels must be positive", vectorize.ErrConfig)
	case s.TimeoutSeconds < 1:
		return fmt.Errorf("%w: server.timeout_seconds must be positive", vectorize.ErrConfig)
	case s.CacheMaxAgeHours < 0:
		return fmt.Errorf("%w: server.cache_max_age_hours is negative", vectorize.ErrConfig)
	}
	return nil
}

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
	"fmt"

	"github.com/spf13/cobra"

	"seehuhn.de/go/vectorize/internal/cache"
	"seehuhn.de/go/vectorize/internal/logger"
	"seehuhn.de/go/vectorize/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server which traces images on request.

  POST /api/vectorize   {"image": "data:image/png;base64,...", "options": {...}}
                        answers {"svg": "..."}
  GET  /healthz         answers {"status": "ok"}

The listen address, rate limits and the result cache are configured in the
[server] section of the configuration file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().String("cache", "", "SQLite result cache (overrides server.cache_path)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if path, _ := cmd.Flags().GetString("cache"); path != "" {
		cfg.Server.CachePath = path
	}

	var c *cache.Cache
	if cfg.Server.CachePath != "" {
		var err error
		c, err = cache.Open(cfg.Server.CachePath)
		if err != nil {
			return err
		}
		defer c.Close()
		logger.Info("result cache: %s", c.Path())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "listening on http://%s\n", cfg.Server.Addr)
	return server.New(cfg, c).Run(cmd.Context())
}

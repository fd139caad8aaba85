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
	"time"

	"github.com/spf13/cobra"

	"seehuhn.de/go/vectorize/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Trace images as they appear in a directory",
	Long: `Watch a directory and trace every new or changed image into an SVG file
next to it. Existing images without up-to-date SVG files are traced on
start-up. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	w := watch.New(args[0], cfg.Trace)
	w.MaxPixels = cfg.Server.MaxPixels
	w.Timeout = time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	w.Done = func(src, dst string, err error) {
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", src, err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", src, dst)
	}
	return w.Run(cmd.Context())
}

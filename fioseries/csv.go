// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fioseries

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes the points of groups to w, one row per point, with a
// header row.
func WriteCSV(w io.Writer, groups []*Group) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"metric", "unit", "rw_mode", "iodepth", "block_size", "value", "runs"})
	for _, g := range groups {
		for _, s := range g.Series {
			for _, p := range s.Points {
				cw.Write([]string{
					g.Metric,
					g.Unit,
					s.Mode,
					strconv.Itoa(s.IODepth),
					blockLabel(p),
					strconv.FormatFloat(p.Value, 'f', -1, 64),
					strconv.Itoa(p.Runs),
				})
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

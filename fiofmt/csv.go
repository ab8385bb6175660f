// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiofmt

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"block_size", "rw_mode", "iodepth", "latency_us", "throughput", "throughput_unit"}

// WriteCSV writes recs to w as CSV with a header row. Absent
// measurements are written as empty cells.
func WriteCSV(w io.Writer, recs []*Record) error {
	cw := csv.NewWriter(w)
	cw.Write(csvHeader)
	for _, r := range recs {
		cw.Write([]string{
			r.BlockSize,
			r.Mode,
			strconv.Itoa(r.IODepth),
			csvValue(r.LatencyUS),
			csvValue(r.Throughput),
			string(r.ThroughputUnit),
		})
	}
	cw.Flush()
	return cw.Error()
}

func csvValue(m Measure) string {
	if !m.Valid {
		return ""
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

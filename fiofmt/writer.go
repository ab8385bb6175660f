// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiofmt

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// A Writer writes Records in the Go benchmark format, so fio results
// can be compared with benchstat. Each Record becomes one benchmark
// line named after its parameters, such as
//
//	BenchmarkFio/rw=randread/bs=4k/iodepth=32 1 5000 ns/op 12000 iops
//
// Latency is written in ns/op. Throughput is written in "iops" or
// "MB/s".
type Writer struct {
	w     io.Writer
	buf   bytes.Buffer
	first bool
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, first: true}
}

// Write writes rec to w. Before the first Record, it writes unit
// metadata declaring that higher iops are better.
func (w *Writer) Write(rec *Record) error {
	if w.first {
		w.buf.WriteString("Unit iops better=higher\n\n")
		w.first = false
	}
	fmt.Fprintf(&w.buf, "BenchmarkFio/rw=%s/bs=%s/iodepth=%d 1", rec.Mode, rec.BlockSize, rec.IODepth)
	if rec.LatencyUS.Valid {
		w.value(rec.LatencyUS.Value*1000, "ns/op")
	}
	if rec.Throughput.Valid {
		unit := "MB/s"
		if rec.ThroughputUnit == UnitIOPS {
			unit = "iops"
		}
		w.value(rec.Throughput.Value, unit)
	}
	w.buf.WriteByte('\n')

	_, err := w.w.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

func (w *Writer) value(v float64, unit string) {
	w.buf.WriteByte(' ')
	w.buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	w.buf.WriteByte(' ')
	w.buf.WriteString(unit)
}

// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiofmt

import (
	"strings"
	"testing"
)

var testRecords = []*Record{
	{BlockSize: "4k", BlockBytes: 4096, Mode: "randread", Direction: Read, IODepth: 32, LatencyUS: Some(5), Throughput: Some(12000), ThroughputUnit: UnitIOPS},
	{BlockSize: "128k", BlockBytes: 128 << 10, Mode: "randrw", Direction: Mixed, IODepth: 4, Throughput: Some(75.5), ThroughputUnit: UnitMBps},
}

func TestWriteCSV(t *testing.T) {
	var buf strings.Builder
	if err := WriteCSV(&buf, testRecords); err != nil {
		t.Fatal(err)
	}
	want := `block_size,rw_mode,iodepth,latency_us,throughput,throughput_unit
4k,randread,32,5,12000,IOPS
128k,randrw,4,,75.5,MB/s
`
	if got := buf.String(); got != want {
		t.Errorf("want:\n%sgot:\n%s", want, got)
	}
}

func TestWriter(t *testing.T) {
	var buf strings.Builder
	w := NewWriter(&buf)
	for _, r := range testRecords {
		if err := w.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	want := `Unit iops better=higher

BenchmarkFio/rw=randread/bs=4k/iodepth=32 1 5000 ns/op 12000 iops
BenchmarkFio/rw=randrw/bs=128k/iodepth=4 1 75.5 MB/s
`
	if got := buf.String(); got != want {
		t.Errorf("want:\n%sgot:\n%s", want, got)
	}
}

// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fioseries

import (
	"strings"
	"testing"
)

func TestWriteHTML(t *testing.T) {
	var buf strings.Builder
	r := &Report{
		Title:  "nvme0 <test>",
		Groups: Build(testRecords()),
		Images: []string{"png/latency_us.png"},
	}
	if err := WriteHTML(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>nvme0 &lt;test&gt;</title>",
		"<h2>Latency (µs)</h2>",
		"<h2>Throughput (MB/s)</h2>",
		"<td class='label'>randread iodepth=1<td>15.000<td>30.000<td>100.000<td>35.569",
		`<img src="png/latency_us.png">`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf strings.Builder
	if err := WriteCSV(&buf, Build(testRecords())[2:]); err != nil {
		t.Fatal(err)
	}
	want := `metric,unit,rw_mode,iodepth,block_size,value,runs
throughput,MB/s,randread,1,128k,50,1
`
	if got := buf.String(); got != want {
		t.Errorf("want:\n%sgot:\n%s", want, got)
	}
}

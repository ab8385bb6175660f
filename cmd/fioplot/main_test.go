// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/fioperf/fiofmt"
	"golang.org/x/fioperf/fiounit"
	"golang.org/x/fioperf/internal/diff"
	"golang.org/x/fioperf/storage/db"
)

func TestSummary(t *testing.T) {
	golden(t, "results", "results")
	// Skipped files are not reported with -q.
	golden(t, "quiet", "-q", "results")
	// Nothing usable: one unsupported mode and one malformed name.
	golden(t, "bad", "bad")
}

func golden(t *testing.T, name string, args ...string) {
	t.Helper()
	if err := os.Chdir("testdata"); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir("..")

	var got, gotErr bytes.Buffer
	t.Logf("fioplot %s", strings.Join(args, " "))
	if err := fioplot(context.Background(), &got, &gotErr, args); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	compare(t, name, "stdout", got.Bytes())
	compare(t, name, "stderr", gotErr.Bytes())
}

func compare(t *testing.T, name, sub string, got []byte) {
	t.Helper()

	wantPath := name + "." + sub
	want, err := os.ReadFile(wantPath)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	// A missing file is treated as empty.

	d := diff.Diff(want, got)
	if d == "" {
		return
	}
	t.Errorf("%s:\n%s", wantPath, d)

	gotPath := name + ".got-" + sub
	if err := os.WriteFile(gotPath, got, 0666); err != nil {
		t.Fatalf("error writing %s: %s", gotPath, err)
	}
}

func TestOutputs(t *testing.T) {
	dir := t.TempDir()
	out := func(name string) string { return filepath.Join(dir, name) }

	var stdout, stderr bytes.Buffer
	err := fioplot(context.Background(), &stdout, &stderr, []string{
		"-q",
		"-device", "NVMe",
		"-csv", out("records.csv"),
		"-series", out("series.csv"),
		"-bench", out("bench.txt"),
		"-png", out("png"),
		"-svg", out("svg"),
		"-html", out("report.html"),
		filepath.Join("testdata", "results"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected stderr:\n%s", stderr.String())
	}

	read := func(name string) string {
		t.Helper()
		data, err := os.ReadFile(out(name))
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}

	csv := read("records.csv")
	for _, line := range []string{
		"block_size,rw_mode,iodepth,latency_us,throughput,throughput_unit\n",
		"128k,randread,1,100,200,MB/s\n",
		"16k,randread,1,20,800,IOPS\n",
		"4k,randrw,8,40,400,IOPS\n",
	} {
		if !strings.Contains(csv, line) {
			t.Errorf("records.csv missing %q:\n%s", line, csv)
		}
	}
	if n := strings.Count(csv, "\n"); n != 6 {
		t.Errorf("records.csv has %d lines, want 6", n)
	}

	if s := read("series.csv"); !strings.Contains(s, "latency_us,us,randread,1,4k,10,1\n") {
		t.Errorf("series.csv missing latency point:\n%s", s)
	}
	if b := read("bench.txt"); !strings.Contains(b, "BenchmarkFio/rw=randread/bs=4k/iodepth=32 1 40000 ns/op 8000 iops\n") {
		t.Errorf("bench.txt missing benchmark line:\n%s", b)
	}

	for _, name := range []string{
		"png/latency_us.png",
		"png/throughput_IOPS.png",
		"png/throughput_MB-per-s.png",
		"svg/latency_us.svg",
	} {
		if _, err := os.Stat(out(name)); err != nil {
			t.Error(err)
		}
	}

	html := read("report.html")
	for _, s := range []string{"NVMe fio results", `src="png/latency_us.png"`, "randread iodepth=32"} {
		if !strings.Contains(html, s) {
			t.Errorf("report.html missing %q", s)
		}
	}
}

func TestStore(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "runs.db")
	for i := 0; i < 2; i++ {
		var stdout, stderr bytes.Buffer
		args := []string{"-q", "-driver", "sqlite3", "-dsn", dsn, "-label", "nvme0", filepath.Join("testdata", "results")}
		if err := fioplot(context.Background(), &stdout, &stderr, args); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout.String(), "\nstored run ") {
			t.Errorf("stdout does not report the stored run:\n%s", stdout.String())
		}
	}

	d, err := db.OpenSQL("sqlite3", dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	n, err := d.CountRuns()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("CountRuns() = %d, want 2", n)
	}
}

func TestDriverWithoutDSN(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := fioplot(context.Background(), &stdout, &stderr, []string{"-driver", "sqlite3", filepath.Join("testdata", "results")})
	if err == nil {
		t.Fatal("-driver without -dsn succeeded")
	}
}

func TestIOPSThreshold(t *testing.T) {
	for _, test := range []struct {
		threshold string
		bs        string
		want      fiofmt.Unit
	}{
		{"", "64k", fiofmt.UnitIOPS},
		{"", "128k", fiofmt.UnitMBps},
		{"", "1m", fiofmt.UnitIOPS},
		{"64k", "64k", fiofmt.UnitIOPS},
		{"64k", "1m", fiofmt.UnitMBps},
	} {
		o := options{policy: "average", iopsThreshold: test.threshold}
		n, err := o.normalizer()
		if err != nil {
			t.Fatal(err)
		}
		bs, err := fiounit.ParseBlockSize(test.bs)
		if err != nil {
			t.Fatal(err)
		}
		if got := n.ThroughputUnit(bs); got != test.want {
			t.Errorf("-iops-threshold %q: %s reported in %s, want %s", test.threshold, test.bs, got, test.want)
		}
	}

	o := options{policy: "average", iopsThreshold: "lots"}
	if _, err := o.normalizer(); err == nil {
		t.Errorf("-iops-threshold lots: want error")
	}
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig := func(text string) string {
		t.Helper()
		path := filepath.Join(dir, "fioplot.toml")
		if err := os.WriteFile(path, []byte(text), 0666); err != nil {
			t.Fatal(err)
		}
		return path
	}

	path := writeConfig(`
policy = "sum"
device = "NVMe"
quiet = true

[modes]
trimwrite = "write"
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	o := options{policy: "average", device: "SSD"}
	cfg.apply(&o, map[string]bool{"device": true})
	if o.policy != "sum" {
		t.Errorf("policy = %q, want sum", o.policy)
	}
	if o.device != "SSD" {
		t.Errorf("device = %q, want the flag value SSD", o.device)
	}
	if o.iopsThreshold != "" {
		t.Errorf("iops-threshold = %q, want unset", o.iopsThreshold)
	}
	if !o.quiet {
		t.Errorf("quiet not applied")
	}

	n, err := o.normalizer()
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range []string{"trimwrite", "randrw"} {
		if _, err := n.Modes.Resolve(m); err != nil {
			t.Errorf("mode %s: %v", m, err)
		}
	}

	if _, err := loadConfig(writeConfig("polcy = \"sum\"\n")); err == nil || !strings.Contains(err.Error(), "polcy") {
		t.Errorf("unknown key: err = %v, want error naming polcy", err)
	}
}

func TestWatch(t *testing.T) {
	defer func(d time.Duration) { debounce = d }(debounce)
	debounce = 10 * time.Millisecond

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan bool, 10)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, dir, func() error { runs <- true; return nil }, new(bytes.Buffer))
	}()

	wait := func(what string) {
		t.Helper()
		select {
		case <-runs:
		case <-time.After(10 * time.Second):
			t.Fatalf("timed out waiting for %s", what)
		}
	}
	wait("initial run")

	// Other files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0666); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a_read_4k_x_1.json"), []byte("{}"), 0666); err != nil {
		t.Fatal(err)
	}
	wait("rerun")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop")
	}
}

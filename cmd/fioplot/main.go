// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Fioplot summarizes and charts the JSON results of fio runs.
//
// Usage:
//
//	fioplot [flags] [dir | gs://bucket/prefix]
//
// Fioplot reads every result file in dir (default "fio_results").
// Result files are named
//
//	prefix_mode_bs_x_iodepth.json
//
// where mode is an fio rw mode (read, write, randread, randwrite, rw or
// randrw), bs is the block size (such as 4k) and iodepth is the queue
// depth. The other fields are ignored. Only the first job of each file
// is used. Files that cannot be used are reported on standard error and
// skipped.
//
// For each file, fioplot derives the mean latency in microseconds and a
// throughput. With the default -policy average, throughput is in IOPS
// when the number in the block size is at most 64 (so "4k", "64k" and
// "1m", but not "128k") and in MB/s otherwise, and the two directions
// of a mixed run are averaged. -iops-threshold instead reports IOPS
// for block sizes up to the given size in bytes. With -policy sum,
// throughput is always in MB/s and mixed runs report the sum of both
// directions.
//
// Fioplot prints a table per metric with one row per mode and iodepth
// and one column per block size. Repeated runs of the same parameters
// are averaged.
//
// The -png, -svg and -pdf flags write charts into the given
// directories. The -csv flag writes the normalized records, -series
// writes the averaged chart series, -bench writes the records in the Go
// benchmark format for use with benchstat, and -html writes a report
// embedding any PNG charts.
//
// The -driver and -dsn flags store the records as a new run in a
// sqlite3 or mysql database (use a "cloudsql" network in the mysql DSN
// to reach Cloud SQL). The -label flag labels the run.
//
// Flags may also be set in a TOML file named by -config. Flags given on
// the command line take precedence. The file may also map extra rw
// modes to a direction:
//
//	policy = "sum"
//	device = "NVMe"
//
//	[modes]
//	trimwrite = "write"
//
// With -watch, fioplot stays running and reprocesses a local dir
// whenever a result file changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"golang.org/x/fioperf/fiofmt"
	"golang.org/x/fioperf/fioseries"
	"golang.org/x/fioperf/fiounit"
	"golang.org/x/fioperf/internal/texttab"
	"golang.org/x/fioperf/storage/gcsfs"
)

func main() {
	log.SetPrefix("fioplot: ")
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fioplot(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// options are the settings of one invocation.
type options struct {
	dir           string
	policy        string
	iopsThreshold string
	device        string

	png, svg, pdf string
	csv           string
	series        string
	bench         string
	html          string

	driver, dsn, label string

	quiet bool
	watch bool

	modes map[string]string
}

func fioplot(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	flags := flag.NewFlagSet("fioplot", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: fioplot [flags] [dir | gs://bucket/prefix]\n")
		flags.PrintDefaults()
	}

	o := options{
		dir:    "fio_results",
		policy: "average",
		device: "SSD",
	}
	var configFile string
	flags.StringVar(&configFile, "config", "", "read flag defaults from TOML `file`")
	flags.StringVar(&o.policy, "policy", o.policy, "throughput `policy`: average or sum")
	flags.StringVar(&o.iopsThreshold, "iops-threshold", "", "with -policy average, report IOPS for block sizes up to `size` in bytes")
	flags.StringVar(&o.device, "device", o.device, "device `name` used in chart titles")
	flags.StringVar(&o.png, "png", "", "write PNG charts into `dir`")
	flags.StringVar(&o.svg, "svg", "", "write SVG charts into `dir`")
	flags.StringVar(&o.pdf, "pdf", "", "write PDF charts into `dir`")
	flags.StringVar(&o.csv, "csv", "", "write normalized records as CSV to `file`")
	flags.StringVar(&o.series, "series", "", "write averaged series as CSV to `file`")
	flags.StringVar(&o.bench, "bench", "", "write records in Go benchmark format to `file`")
	flags.StringVar(&o.html, "html", "", "write an HTML report to `file`")
	flags.StringVar(&o.driver, "driver", "", "store the run in a database using `driver` (sqlite3 or mysql)")
	flags.StringVar(&o.dsn, "dsn", "", "database `dsn` for -driver")
	flags.StringVar(&o.label, "label", "", "`label` of the stored run")
	flags.BoolVar(&o.quiet, "q", false, "do not report skipped files")
	flags.BoolVar(&o.watch, "watch", false, "reprocess dir whenever a result file changes")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if configFile != "" {
		cfg, err := loadConfig(configFile)
		if err != nil {
			return err
		}
		set := make(map[string]bool)
		flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
		cfg.apply(&o, set)
	}

	switch flags.NArg() {
	case 0:
	case 1:
		o.dir = flags.Arg(0)
	default:
		flags.Usage()
		return flag.ErrHelp
	}
	if (o.driver == "") != (o.dsn == "") {
		return errors.New("-driver and -dsn must be used together")
	}

	n, err := o.normalizer()
	if err != nil {
		return err
	}
	run := func() error { return o.run(ctx, n, stdout, stderr) }

	if o.watch {
		if gcsfs.IsURL(o.dir) {
			return errors.New("-watch needs a local directory")
		}
		return watch(ctx, o.dir, run, stderr)
	}
	return run()
}

// normalizer returns the Normalizer configured by o.
func (o *options) normalizer() (*fiofmt.Normalizer, error) {
	policy, err := fiofmt.ParsePolicy(o.policy)
	if err != nil {
		return nil, err
	}
	n := &fiofmt.Normalizer{Policy: policy}
	if o.iopsThreshold != "" {
		threshold, err := fiounit.ParseBlockSize(o.iopsThreshold)
		if err != nil {
			return nil, fmt.Errorf("-iops-threshold: %v", err)
		}
		n.IOPSThreshold = threshold.Bytes
	}

	if len(o.modes) > 0 {
		def := fiofmt.DefaultModes()
		modes := make(map[string]fiofmt.Direction)
		for _, m := range def.Modes() {
			modes[m], _ = def.Resolve(m)
		}
		for m, d := range o.modes {
			var dir fiofmt.Direction
			if err := dir.UnmarshalText([]byte(d)); err != nil {
				return nil, fmt.Errorf("mode %s: %v", m, err)
			}
			modes[m] = dir
		}
		n.Modes = fiofmt.NewModeTable(modes)
	}
	return n, nil
}

// read normalizes the result files of o.dir.
func (o *options) read(ctx context.Context, n *fiofmt.Normalizer, stderr io.Writer) ([]*fiofmt.Record, int, error) {
	files := &fiofmt.Files{Dir: o.dir, Normalizer: n}
	if gcsfs.IsURL(o.dir) {
		fsys, err := gcsfs.New(ctx, o.dir)
		if err != nil {
			return nil, 0, err
		}
		defer fsys.Close()
		files.FS, files.Dir = fsys, "."
	}
	if !o.quiet {
		files.Warn = func(format string, args ...interface{}) {
			fmt.Fprintf(stderr, format, args...)
		}
	}

	var recs []*fiofmt.Record
	for files.Scan() {
		recs = append(recs, files.Record())
	}
	if err := files.Err(); err != nil {
		return nil, 0, err
	}
	return recs, files.Skipped(), nil
}

// run processes o.dir once and writes every requested output.
func (o *options) run(ctx context.Context, n *fiofmt.Normalizer, stdout, stderr io.Writer) error {
	recs, skipped, err := o.read(ctx, n, stderr)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d records, %d skipped\n", len(recs), skipped)
	if len(recs) == 0 {
		fmt.Fprintf(stdout, "no valid data to plot\n")
		return nil
	}
	fmt.Fprintf(stdout, "\n")

	groups := fioseries.Build(recs)
	if err := summarize(stdout, groups); err != nil {
		return err
	}

	if o.csv != "" {
		if err := writeFile(o.csv, func(w io.Writer) error { return fiofmt.WriteCSV(w, recs) }); err != nil {
			return err
		}
	}
	if o.series != "" {
		if err := writeFile(o.series, func(w io.Writer) error { return fioseries.WriteCSV(w, groups) }); err != nil {
			return err
		}
	}
	if o.bench != "" {
		err := writeFile(o.bench, func(w io.Writer) error {
			bw := fiofmt.NewWriter(w)
			for _, r := range recs {
				if err := bw.Write(r); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	charts, err := fioseries.Chart(groups, fioseries.ChartOptions{
		PNGDir: o.png,
		SVGDir: o.svg,
		PDFDir: o.pdf,
		Device: o.device,
	})
	if err != nil {
		return err
	}

	if o.html != "" {
		report := &fioseries.Report{Title: o.device + " fio results", Groups: groups}
		for _, c := range charts {
			if filepath.Ext(c) != ".png" {
				continue
			}
			if rel, err := filepath.Rel(filepath.Dir(o.html), c); err == nil {
				report.Images = append(report.Images, filepath.ToSlash(rel))
			}
		}
		if err := writeFile(o.html, func(w io.Writer) error { return fioseries.WriteHTML(w, report) }); err != nil {
			return err
		}
	}

	if o.driver != "" {
		id, err := store(ctx, o.driver, o.dsn, o.label, recs)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nstored run %s\n", id)
	}
	return nil
}

// summarize prints one table per group.
func summarize(w io.Writer, groups []*fioseries.Group) error {
	for i, g := range groups {
		m := g.Matrix()
		if i > 0 {
			fmt.Fprintf(w, "\n")
		}
		fmt.Fprintf(w, "%s\n", m.Title)

		var tab texttab.Table
		for col := 1; col <= len(m.Columns)+1; col++ {
			tab.SetAlign(col, texttab.Right)
		}
		header := append([]string{""}, m.Columns...)
		tab.Row(append(header, "geomean")...).Rule()
		for _, r := range m.Rows {
			row := append([]string{r.Label}, r.Cells...)
			tab.Row(append(row, r.GeoMean)...)
		}
		if err := tab.Format(w); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(name string, write func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return f.Close()
}

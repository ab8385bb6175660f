// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fioseries

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// ChartOptions controls where and how Chart draws.
type ChartOptions struct {
	// PNGDir, SVGDir and PDFDir are the directories charts are
	// written to in each format. An empty directory disables that
	// format. Directories are created as needed.
	PNGDir, SVGDir, PDFDir string

	// Device, if set, prefixes chart titles, as in "SSD Latency".
	Device string

	// Width and Height default to 20cm by 12cm.
	Width, Height vg.Length

	// DPI is the PNG resolution. It defaults to 150.
	DPI int
}

// Chart draws one line chart per Group, with block size on the X axis
// and one line per Series. Latency is drawn on a log scale. It returns
// the names of the files it wrote. Chart writes nothing if groups is
// empty.
func Chart(groups []*Group, opts ChartOptions) ([]string, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	if opts.Width == 0 {
		opts.Width = 20 * vg.Centimeter
	}
	if opts.Height == 0 {
		opts.Height = 12 * vg.Centimeter
	}
	if opts.DPI == 0 {
		opts.DPI = 150
	}
	for _, dir := range []string{opts.PNGDir, opts.SVGDir, opts.PDFDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0777); err != nil {
			return nil, err
		}
	}

	var files []string
	for _, g := range groups {
		pl, err := newPlot(g, opts.Device)
		if err != nil {
			return files, err
		}
		if pl == nil {
			continue
		}
		name := chartName(g)

		do := func(dir, sfx string, can vg.CanvasWriterTo) error {
			if dir == "" {
				return nil
			}
			file := filepath.Join(dir, name) + "." + sfx
			pl.Draw(draw.New(can))
			f, err := os.Create(file)
			if err != nil {
				return err
			}
			if _, err := can.WriteTo(f); err != nil {
				f.Close()
				return fmt.Errorf("writing %s: %w", file, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			files = append(files, file)
			return nil
		}

		w, h := opts.Width, opts.Height
		if err := do(opts.PNGDir, "png", vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h),
			vgimg.UseDPI(opts.DPI), vgimg.UseBackgroundColor(color.White))}); err != nil {
			return files, err
		}
		if err := do(opts.SVGDir, "svg", vgsvg.New(w, h)); err != nil {
			return files, err
		}
		if err := do(opts.PDFDir, "pdf", vgpdf.New(w, h)); err != nil {
			return files, err
		}
	}
	return files, nil
}

// newPlot builds the chart for g. It returns nil if g has nothing
// drawable.
func newPlot(g *Group, device string) (*plot.Plot, error) {
	logY := g.Metric == Latency

	var lines []interface{}
	for _, s := range g.Series {
		xys := make(plotter.XYs, 0, len(s.Points))
		for _, p := range s.Points {
			if p.BlockBytes <= 0 || math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
				continue
			}
			if logY && p.Value <= 0 {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(p.BlockBytes), Y: p.Value})
		}
		if len(xys) == 0 {
			continue
		}
		lines = append(lines, s.Label(), xys)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	pl := plot.New()
	pl.Title.Text = strings.TrimSpace(device + " " + title(g))
	pl.X.Label.Text = "Block size"
	pl.Y.Label.Text = axisLabel(g)

	pl.X.Scale = plot.LogScale{}
	var ticks []plot.Tick
	for _, p := range g.BlockSizes() {
		if p.BlockBytes > 0 {
			ticks = append(ticks, plot.Tick{Value: float64(p.BlockBytes), Label: blockLabel(p)})
		}
	}
	pl.X.Tick.Marker = plot.ConstantTicks(ticks)
	if logY {
		pl.Y.Scale = plot.LogScale{}
		pl.Y.Tick.Marker = plot.LogTicks{}
	}

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	if err := plotutil.AddLinePoints(pl, lines...); err != nil {
		return nil, err
	}
	pl.Legend.Top = true

	// A log axis needs a non-empty positive range.
	widen(&pl.X)
	if logY {
		widen(&pl.Y)
	}
	return pl, nil
}

func widen(a *plot.Axis) {
	if a.Min == a.Max {
		a.Min /= 2
		a.Max *= 2
	}
}

func title(g *Group) string {
	switch g.Metric {
	case Latency:
		return "Latency under Different Conditions"
	case Throughput:
		return "Throughput under Different Conditions"
	}
	return g.Metric
}

func axisLabel(g *Group) string {
	switch g.Metric {
	case Latency:
		return "Latency (µs)"
	case Throughput:
		return "Throughput (" + g.Unit + ")"
	}
	return g.Metric + " (" + g.Unit + ")"
}

// chartName returns the base file name of g's chart.
func chartName(g *Group) string {
	name := g.Metric
	if g.Metric != Latency && g.Unit != "" {
		name += "_" + g.Unit
	}
	name = strings.ReplaceAll(name, "/", "-per-")
	return strings.ReplaceAll(name, " ", "_")
}

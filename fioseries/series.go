// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fioseries groups normalized fio records into chart series.
//
// A series is the set of measurements for one rw mode and iodepth,
// ordered by block size. Series are collected into Groups that share a
// metric and unit, and each Group becomes one chart.
package fioseries

import (
	"sort"
	"strconv"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"

	"golang.org/x/fioperf/fiofmt"
	"golang.org/x/fioperf/fiounit"
)

// Metric names.
const (
	Latency    = "latency_us"
	Throughput = "throughput"
)

// A Group is the set of Series of one metric measured in one unit.
type Group struct {
	Metric string
	Unit   string
	Series []*Series
}

// A Series is the measurements of one metric for one rw mode and
// iodepth, in increasing block size order.
type Series struct {
	Metric  string
	Unit    string
	Mode    string
	IODepth int
	Points  []Point
}

// Label returns the legend label of s.
func (s *Series) Label() string {
	return s.Mode + " iodepth=" + strconv.Itoa(s.IODepth)
}

// A Point is the mean of Runs measurements at one block size.
type Point struct {
	BlockBytes int64
	BlockSize  string
	Value      float64
	Runs       int
}

// Values returns the values of s's points.
func (s *Series) Values() []float64 {
	vs := make([]float64, len(s.Points))
	for i, p := range s.Points {
		vs[i] = p.Value
	}
	return vs
}

type groupKey struct {
	metric, unit string
}

// column accumulates one metric's observations before aggregation.
type column struct {
	modes  []string
	depths []int
	bytes  []int64
	values []float64
}

func (c *column) add(r *fiofmt.Record, v float64) {
	c.modes = append(c.modes, r.Mode)
	c.depths = append(c.depths, r.IODepth)
	c.bytes = append(c.bytes, r.BlockBytes)
	c.values = append(c.values, v)
}

// Build groups recs by metric and unit, then by rw mode and iodepth.
// Records repeating the same mode, iodepth and block size are averaged
// into one Point. Absent measurements are left out of their metric.
//
// Groups are ordered latency first, then throughput by unit. Within a
// Group, Series are ordered by mode and then iodepth. Build returns nil
// if recs has no measurements.
func Build(recs []*fiofmt.Record) []*Group {
	cols := make(map[groupKey]*column)
	tokens := make(map[int64]string)
	get := func(k groupKey) *column {
		c := cols[k]
		if c == nil {
			c = new(column)
			cols[k] = c
		}
		return c
	}
	for _, r := range recs {
		if _, ok := tokens[r.BlockBytes]; !ok {
			tokens[r.BlockBytes] = r.BlockSize
		}
		if r.LatencyUS.Valid {
			get(groupKey{Latency, "us"}).add(r, r.LatencyUS.Value)
		}
		if r.Throughput.Valid {
			get(groupKey{Throughput, string(r.ThroughputUnit)}).add(r, r.Throughput.Value)
		}
	}
	if len(cols) == 0 {
		return nil
	}

	keys := make([]groupKey, 0, len(cols))
	for k := range cols {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].metric != keys[j].metric {
			return keys[i].metric == Latency
		}
		return keys[i].unit < keys[j].unit
	})

	var groups []*Group
	for _, k := range keys {
		g := &Group{Metric: k.metric, Unit: k.unit}
		g.Series = aggregate(k, cols[k], tokens)
		groups = append(groups, g)
	}
	return groups
}

// aggregate averages c's values per (mode, iodepth, block size) and
// splits the result into Series.
func aggregate(k groupKey, c *column, tokens map[int64]string) []*Series {
	tab := new(table.Builder).
		Add("rw_mode", c.modes).
		Add("iodepth", c.depths).
		Add("block_bytes", c.bytes).
		Add("value", c.values).
		Done()

	g := ggstat.Agg("rw_mode", "iodepth", "block_bytes")(
		ggstat.AggMean("value"),
		ggstat.AggCount("runs"),
	).F(tab)
	g = table.SortBy(table.GroupBy(g, "rw_mode", "iodepth"), "block_bytes")

	var out []*Series
	for _, gid := range g.Tables() {
		t := g.Table(gid)
		s := &Series{
			Metric:  k.metric,
			Unit:    k.unit,
			Mode:    gid.Parent().Label().(string),
			IODepth: gid.Label().(int),
		}
		bytes := t.MustColumn("block_bytes").([]int64)
		means := t.MustColumn("mean value").([]float64)
		runs := t.MustColumn("runs").([]int)
		for i, b := range bytes {
			s.Points = append(s.Points, Point{
				BlockBytes: b,
				BlockSize:  tokens[b],
				Value:      means[i],
				Runs:       runs[i],
			})
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Mode != out[j].Mode {
			return out[i].Mode < out[j].Mode
		}
		return out[i].IODepth < out[j].IODepth
	})
	return out
}

// BlockSizes returns the distinct block sizes of all series in g, in
// increasing order.
func (g *Group) BlockSizes() []Point {
	seen := make(map[int64]bool)
	var bs []Point
	for _, s := range g.Series {
		for _, p := range s.Points {
			if !seen[p.BlockBytes] {
				seen[p.BlockBytes] = true
				bs = append(bs, Point{BlockBytes: p.BlockBytes, BlockSize: p.BlockSize})
			}
		}
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i].BlockBytes < bs[j].BlockBytes })
	return bs
}

func blockLabel(p Point) string {
	if p.BlockSize != "" {
		return p.BlockSize
	}
	return fiounit.FormatBytes(p.BlockBytes)
}

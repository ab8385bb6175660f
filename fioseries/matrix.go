// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fioseries

import (
	"math"

	"github.com/aclements/go-moremath/stats"

	"golang.org/x/fioperf/fiounit"
)

// A Matrix is a Group laid out as a table: one row per Series and one
// column per block size. Cells are formatted with a scale shared by the
// whole Group.
type Matrix struct {
	Title   string
	Columns []string // block sizes
	Rows    []MatrixRow
}

// A MatrixRow is one Series of a Matrix.
type MatrixRow struct {
	Label   string
	Cells   []string // "-" where the Series has no point
	GeoMean string
}

// Matrix lays out g as a Matrix.
func (g *Group) Matrix() *Matrix {
	m := &Matrix{Title: axisLabel(g)}
	cols := g.BlockSizes()
	index := make(map[int64]int, len(cols))
	for i, p := range cols {
		index[p.BlockBytes] = i
		m.Columns = append(m.Columns, blockLabel(p))
	}

	var all []float64
	for _, s := range g.Series {
		all = append(all, s.Values()...)
	}
	scaler := fiounit.CommonScale(all)

	for _, s := range g.Series {
		row := MatrixRow{Label: s.Label(), Cells: make([]string, len(cols))}
		for i := range row.Cells {
			row.Cells[i] = "-"
		}
		for _, p := range s.Points {
			row.Cells[index[p.BlockBytes]] = scaler.Format(p.Value)
		}
		if gm := s.GeoMean(); !math.IsNaN(gm) {
			row.GeoMean = scaler.Format(gm)
		} else {
			row.GeoMean = "-"
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

// GeoMean returns the geometric mean of s's positive values, or NaN if
// it has none.
func (s *Series) GeoMean() float64 {
	var xs []float64
	for _, p := range s.Points {
		if p.Value > 0 {
			xs = append(xs, p.Value)
		}
	}
	if len(xs) == 0 {
		return math.NaN()
	}
	return stats.GeoMean(xs)
}

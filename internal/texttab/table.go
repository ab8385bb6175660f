// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out fixed-width text tables.
package texttab

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Table accumulates rows of cells and lays them out in columns.
//
// Row and Rule return the Table so callers can chain them.
type Table struct {
	rows  [][]string
	rules []bool // rules[i] means a rule is drawn after rows[i]
	align []Align
}

// Align is the alignment of a column.
type Align int

const (
	Left Align = iota
	Right
)

// Gap separates adjacent columns.
const Gap = "  "

// SetAlign sets the alignment of column col. Columns are numbered
// starting at 0 and are left-aligned by default.
func (t *Table) SetAlign(col int, a Align) {
	for len(t.align) <= col {
		t.align = append(t.align, Left)
	}
	t.align[col] = a
}

// Row adds a row of cells to t.
func (t *Table) Row(cells ...string) *Table {
	t.rows = append(t.rows, cells)
	t.rules = append(t.rules, false)
	return t
}

// Rule draws a horizontal rule under the last row of t.
func (t *Table) Rule() *Table {
	if len(t.rules) > 0 {
		t.rules[len(t.rules)-1] = true
	}
	return t
}

func (t *Table) alignment(col int) Align {
	if col < len(t.align) {
		return t.align[col]
	}
	return Left
}

// Format lays out table t and writes it to w. Lines carry no trailing
// spaces.
func (t *Table) Format(w io.Writer) error {
	var ws []int
	for _, row := range t.rows {
		for i, cell := range row {
			if i == len(ws) {
				ws = append(ws, 0)
			}
			if n := utf8.RuneCountInString(cell); n > ws[i] {
				ws[i] = n
			}
		}
	}
	total := 0
	for i, n := range ws {
		if i > 0 {
			total += len(Gap)
		}
		total += n
	}

	var buf strings.Builder
	for r, row := range t.rows {
		var line strings.Builder
		for i, cell := range row {
			if i > 0 {
				line.WriteString(Gap)
			}
			pad := strings.Repeat(" ", ws[i]-utf8.RuneCountInString(cell))
			if t.alignment(i) == Right {
				line.WriteString(pad)
				line.WriteString(cell)
			} else {
				line.WriteString(cell)
				line.WriteString(pad)
			}
		}
		buf.WriteString(strings.TrimRight(line.String(), " "))
		buf.WriteByte('\n')
		if t.rules[r] {
			buf.WriteString(strings.Repeat("-", total))
			buf.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

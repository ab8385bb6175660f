// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiofmt

import (
	"fmt"
	"sort"
)

// A Direction is the canonical I/O direction of an fio rw mode.
type Direction int

const (
	Read Direction = 1 + iota
	Write
	Mixed // both reads and writes are reported
)

func (d Direction) String() string {
	switch d {
	case Read:
		return "read"
	case Write:
		return "write"
	case Mixed:
		return "mixed"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// MarshalText encodes d as its name.
func (d Direction) MarshalText() ([]byte, error) {
	switch d {
	case Read, Write, Mixed:
		return []byte(d.String()), nil
	}
	return nil, fmt.Errorf("bad Direction %d", int(d))
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "read":
		*d = Read
	case "write":
		*d = Write
	case "mixed":
		*d = Mixed
	default:
		return fmt.Errorf("unknown direction %q", text)
	}
	return nil
}

// A ModeTable maps raw fio rw modes to their Direction. A ModeTable
// is immutable once constructed, so it can be shared freely.
//
// The zero ModeTable resolves nothing.
type ModeTable struct {
	m map[string]Direction
}

// NewModeTable returns a ModeTable with the given entries. The map is
// copied.
func NewModeTable(modes map[string]Direction) ModeTable {
	m := make(map[string]Direction, len(modes))
	for k, v := range modes {
		m[k] = v
	}
	return ModeTable{m}
}

// DefaultModes returns the table of fio rw modes understood by
// default.
func DefaultModes() ModeTable {
	return NewModeTable(map[string]Direction{
		"randread":  Read,
		"randwrite": Write,
		"read":      Read,
		"write":     Write,
		"rw":        Mixed,
		"randrw":    Mixed,
	})
}

// Resolve returns the Direction of raw mode. If raw is not in the
// table, it returns a *ParseError of kind UnsupportedMode.
func (t ModeTable) Resolve(raw string) (Direction, error) {
	d, ok := t.m[raw]
	if !ok {
		return 0, parseErrorf("", UnsupportedMode, "%q", raw)
	}
	return d, nil
}

// Modes returns the raw modes in t in sorted order.
func (t ModeTable) Modes() []string {
	modes := make([]string, 0, len(t.m))
	for k := range t.m {
		modes = append(modes, k)
	}
	sort.Strings(modes)
	return modes
}

// IsZero reports whether t has no entries.
func (t ModeTable) IsZero() bool {
	return len(t.m) == 0
}

// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiofmt

import (
	"path"
	"strconv"
	"strings"

	"golang.org/x/fioperf/fiounit"
)

// Positions of the fields in a result file name.
const (
	nameFieldMode    = 1
	nameFieldBS      = 2
	nameFieldIODepth = 4
	nameFields       = 5

	resultExt = ".json"
)

// A Name is the set of benchmark parameters encoded in a result file
// name.
type Name struct {
	// Fields is every "_"-separated field of the base name, with
	// the extension left on the last field.
	Fields []string

	// Mode is the raw rw mode. It is not validated by ParseName;
	// see ModeTable.Resolve.
	Mode string

	BlockSize fiounit.BlockSize
	IODepth   int
}

// ParseName parses the benchmark parameters out of a result file
// name. Any directory part of name is ignored.
//
// The base name must have at least five "_"-separated fields. The
// mode is field 1, the block size field 2 and the I/O depth field 4,
// counting from 0. A ".json" suffix is stripped from the I/O depth.
// If name does not fit this pattern, ParseName returns a *ParseError
// of kind MalformedName.
func ParseName(name string) (Name, error) {
	base := path.Base(name)
	fields := strings.Split(base, "_")
	if len(fields) < nameFields {
		return Name{}, parseErrorf(name, MalformedName, "need at least %d %q-separated fields, have %d", nameFields, "_", len(fields))
	}

	bs, err := fiounit.ParseBlockSize(fields[nameFieldBS])
	if err != nil {
		return Name{}, &ParseError{File: name, Kind: MalformedName, Err: err}
	}

	depthField := strings.TrimSuffix(fields[nameFieldIODepth], resultExt)
	depth, err := strconv.Atoi(depthField)
	if err != nil || depth < 0 {
		return Name{}, parseErrorf(name, MalformedName, "bad iodepth %q", depthField)
	}

	return Name{
		Fields:    fields,
		Mode:      fields[nameFieldMode],
		BlockSize: bs,
		IODepth:   depth,
	}, nil
}

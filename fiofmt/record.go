// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fiofmt reads fio JSON result files and normalizes each one
// into a Record.
//
// The benchmark parameters of a run are encoded in the result file's
// name, as in
//
//	fio_randread_4k_numjobs1_32.json
//
// where the second field is the fio rw mode, the third the block size
// and the fifth the I/O depth. The measurements come from the first
// job in the file body. A Normalizer combines the two into a Record,
// and Files iterates over a directory of result files, skipping (and
// reporting) files that cannot be normalized.
//
// Records are designed to be consumed by packages fioseries and
// storage/db.
package fiofmt

import (
	"encoding/json"
	"strconv"
)

// A Measure is a measurement that may be absent.
type Measure struct {
	Value float64
	Valid bool // Valid is false if the measurement is absent
}

// Some returns a present Measure with value v.
func Some(v float64) Measure {
	return Measure{v, true}
}

// String formats m, using "-" for an absent measurement.
func (m Measure) String() string {
	if !m.Valid {
		return "-"
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// MarshalJSON encodes m as a number, or null if m is absent.
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON decodes a number or null.
func (m *Measure) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*m = Measure{}
	} else {
		*m = Some(*v)
	}
	return nil
}

// A Unit is the unit of a Record's throughput.
type Unit string

const (
	UnitIOPS Unit = "IOPS"
	UnitMBps Unit = "MB/s"
)

// A Record is the normalized result of a single fio result file.
type Record struct {
	// File is the name of the result file, relative to the
	// directory it was read from.
	File string `json:"file"`

	// BlockSize is the block size token from the file name, such
	// as "4k". BlockBytes is the same size in bytes.
	BlockSize  string `json:"block_size"`
	BlockBytes int64  `json:"block_bytes"`

	// Mode is the raw fio rw mode from the file name, such as
	// "randread". Direction is its canonical direction.
	Mode      string    `json:"rw_mode"`
	Direction Direction `json:"direction"`

	// IODepth is the configured number of in-flight I/Os.
	IODepth int `json:"iodepth"`

	// LatencyUS is the mean total latency in microseconds.
	LatencyUS Measure `json:"latency_us"`

	// Throughput is in ThroughputUnit, which depends on the
	// Normalizer's Policy and the block size.
	Throughput     Measure `json:"throughput"`
	ThroughputUnit Unit    `json:"throughput_unit"`
}

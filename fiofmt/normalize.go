// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiofmt

import (
	"fmt"
	"io"
	"io/fs"

	"golang.org/x/fioperf/fiounit"
)

// A Policy selects how throughput is derived and how the two
// directions of a mixed run are combined. A deployment should pick
// one Policy and use it for every run it compares.
type Policy int

const (
	// PolicyAverage reports throughput in IOPS for small block
	// sizes and in MB/s for the others (see
	// Normalizer.ThroughputUnit). Mixed runs report the average of
	// the read and write throughput.
	PolicyAverage Policy = iota

	// PolicySum always reports throughput in MB/s. Mixed runs
	// report the sum of the read and write bandwidth.
	PolicySum
)

func (p Policy) String() string {
	switch p {
	case PolicyAverage:
		return "average"
	case PolicySum:
		return "sum"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses a Policy name as returned by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "average", "avg":
		return PolicyAverage, nil
	case "sum":
		return PolicySum, nil
	}
	return 0, fmt.Errorf("unknown policy %q (want average or sum)", s)
}

// DefaultIOPSLimit is the largest block size number, with the unit
// suffix stripped, for which PolicyAverage reports throughput in IOPS.
// "4k" and "64k" are reported in IOPS, "128k" in MB/s.
const DefaultIOPSLimit = 64

// A Normalizer turns fio result files into Records.
//
// The zero Normalizer uses DefaultModes, PolicyAverage and
// DefaultIOPSLimit. A Normalizer holds no state between files.
type Normalizer struct {
	// Modes resolves raw rw modes. If it has no entries,
	// DefaultModes is used.
	Modes ModeTable

	Policy Policy

	// IOPSLimit replaces DefaultIOPSLimit if non-zero.
	IOPSLimit uint64

	// IOPSThreshold, if non-zero, makes PolicyAverage compare
	// block sizes in bytes instead: sizes up to IOPSThreshold
	// bytes are reported in IOPS and IOPSLimit is ignored.
	IOPSThreshold int64
}

var defaultModes = DefaultModes()

func (n *Normalizer) modes() ModeTable {
	if n.Modes.IsZero() {
		return defaultModes
	}
	return n.Modes
}

// ThroughputUnit returns the unit n reports throughput in for block
// size bs.
//
// Under PolicyAverage, throughput is in IOPS when the number in the
// block size token is at most the IOPS limit, regardless of its unit
// suffix: "1m" and "2m" are reported in IOPS. Set IOPSThreshold to
// compare sizes in bytes.
func (n *Normalizer) ThroughputUnit(bs fiounit.BlockSize) Unit {
	if n.Policy == PolicySum {
		return UnitMBps
	}
	if n.IOPSThreshold > 0 {
		if bs.Bytes <= n.IOPSThreshold {
			return UnitIOPS
		}
		return UnitMBps
	}
	limit := n.IOPSLimit
	if limit == 0 {
		limit = DefaultIOPSLimit
	}
	if bs.Value <= limit {
		return UnitIOPS
	}
	return UnitMBps
}

// throughput returns the throughput of one direction in unit.
func throughput(s *Stats, unit Unit) (float64, bool) {
	if unit == UnitIOPS {
		return s.IOPS()
	}
	bw, ok := s.BandwidthKiB()
	return bw / 1024, ok
}

func latencyUS(s *Stats) (float64, bool) {
	ns, ok := s.MeanLatencyNS()
	return ns / 1000, ok
}

// Extract derives the mean latency in microseconds and the throughput
// of job, which ran in direction dir with block size bs. Either
// measure may be absent.
//
// For a Mixed job, latency is the average of the read and write mean
// latencies, where an absent direction counts as zero; it is absent
// if neither direction reports a positive latency, so two zero
// latencies give an absent latency rather than 0. Throughput is
// averaged or summed over the directions depending on n.Policy, again
// counting an absent direction as zero.
func (n *Normalizer) Extract(job *Job, dir Direction, bs fiounit.BlockSize) (lat, tput Measure, unit Unit) {
	unit = n.ThroughputUnit(bs)

	if dir != Mixed {
		s := job.Stats(dir)
		if v, ok := latencyUS(s); ok {
			lat = Some(v)
		}
		if v, ok := throughput(s, unit); ok {
			tput = Some(v)
		}
		return
	}

	lr, _ := latencyUS(job.Read)
	lw, _ := latencyUS(job.Write)
	if lr > 0 || lw > 0 {
		lat = Some((lr + lw) / 2)
	}

	tr, rok := throughput(job.Read, unit)
	tw, wok := throughput(job.Write, unit)
	if rok || wok {
		if n.Policy == PolicySum {
			tput = Some(tr + tw)
		} else {
			tput = Some((tr + tw) / 2)
		}
	}
	return
}

// Normalize builds the Record for the result file called name whose
// body is read from r. It returns a *ParseError if the file must be
// skipped.
func (n *Normalizer) Normalize(name string, r io.Reader) (*Record, error) {
	nm, dir, err := n.parse(name)
	if err != nil {
		return nil, err
	}
	job, err := ReadJob(r)
	if err != nil {
		return nil, &ParseError{File: name, Kind: MalformedBody, Err: err}
	}
	return n.record(name, nm, dir, job)
}

// NormalizeFile is like Normalize, but reads the body of name from
// fsys. The file is only opened once its name has been validated, and
// is closed before NormalizeFile returns.
func (n *Normalizer) NormalizeFile(fsys fs.FS, name string) (*Record, error) {
	nm, dir, err := n.parse(name)
	if err != nil {
		return nil, err
	}
	job, err := readJobFile(fsys, name)
	if err != nil {
		return nil, &ParseError{File: name, Kind: MalformedBody, Err: err}
	}
	return n.record(name, nm, dir, job)
}

func readJobFile(fsys fs.FS, name string) (*Job, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJob(f)
}

func (n *Normalizer) parse(name string) (Name, Direction, error) {
	nm, err := ParseName(name)
	if err != nil {
		return Name{}, 0, err
	}
	dir, err := n.modes().Resolve(nm.Mode)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = name
		}
		return Name{}, 0, err
	}
	return nm, dir, nil
}

func (n *Normalizer) record(file string, nm Name, dir Direction, job *Job) (*Record, error) {
	lat, tput, unit := n.Extract(job, dir, nm.BlockSize)
	if !lat.Valid && !tput.Valid {
		return nil, parseErrorf(file, MissingMetrics, "no %s latency or throughput", dir)
	}
	return &Record{
		File:           file,
		BlockSize:      nm.BlockSize.Token,
		BlockBytes:     nm.BlockSize.Bytes,
		Mode:           nm.Mode,
		Direction:      dir,
		IODepth:        nm.IODepth,
		LatencyUS:      lat,
		Throughput:     tput,
		ThroughputUnit: unit,
	}, nil
}

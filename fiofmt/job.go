// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiofmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// An Output is the body of an fio JSON result file
// (fio --output-format=json). Only the fields used for normalization
// are decoded.
type Output struct {
	Version string `json:"fio version"`
	Jobs    []Job  `json:"jobs"`
}

// A Job is the result of one fio job. Which directions are present
// depends on how fio was run.
type Job struct {
	Name  string `json:"jobname"`
	Read  *Stats `json:"read"`
	Write *Stats `json:"write"`
}

// Stats returns the statistics for direction d, which must be Read or
// Write. It returns nil if the direction is absent.
func (j *Job) Stats(d Direction) *Stats {
	switch d {
	case Read:
		return j.Read
	case Write:
		return j.Write
	}
	return nil
}

// Stats are the statistics for one direction of a job. Every field is
// optional; use the accessor methods, which are safe to call on a nil
// *Stats.
type Stats struct {
	RawIOPS *float64 `json:"iops"`
	RawBW   *float64 `json:"bw"` // KiB/s
	LatNS   *Latency `json:"lat_ns"`
}

// A Latency summarizes a latency distribution in nanoseconds.
type Latency struct {
	Min  *float64 `json:"min"`
	Max  *float64 `json:"max"`
	Mean *float64 `json:"mean"`
}

// IOPS returns the I/O operations per second and whether it was
// reported.
func (s *Stats) IOPS() (float64, bool) {
	if s == nil || s.RawIOPS == nil {
		return 0, false
	}
	return *s.RawIOPS, true
}

// BandwidthKiB returns the bandwidth in KiB/s and whether it was
// reported.
func (s *Stats) BandwidthKiB() (float64, bool) {
	if s == nil || s.RawBW == nil {
		return 0, false
	}
	return *s.RawBW, true
}

// MeanLatencyNS returns the mean total latency in nanoseconds and
// whether it was reported.
func (s *Stats) MeanLatencyNS() (float64, bool) {
	if s == nil || s.LatNS == nil || s.LatNS.Mean == nil {
		return 0, false
	}
	return *s.LatNS.Mean, true
}

var errNoJobs = errors.New("no jobs")

// ReadJob decodes an fio JSON result from r and returns its first job.
//
// fio writes warnings to the same stream as its JSON output, so any
// text before the first '{' is skipped.
func ReadJob(r io.Reader) (*Job, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(data, '{'); i > 0 {
		data = data[i:]
	}
	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if len(out.Jobs) == 0 {
		return nil, errNoJobs
	}
	return &out.Jobs[0], nil
}

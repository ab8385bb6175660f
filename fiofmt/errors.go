// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiofmt

import "fmt"

// A Kind classifies why a result file could not be normalized.
//
// A Kind is itself an error, so callers can test a returned error
// with errors.Is(err, fiofmt.MissingMetrics).
type Kind int

const (
	// MalformedName indicates the file name does not follow the
	// positional field convention.
	MalformedName Kind = 1 + iota
	// UnsupportedMode indicates the rw mode in the file name is
	// not in the mode table.
	UnsupportedMode
	// MalformedBody indicates the file could not be read or is
	// not a fio JSON result with at least one job.
	MalformedBody
	// MissingMetrics indicates neither a latency nor a throughput
	// could be derived from the file body.
	MissingMetrics
)

func (k Kind) String() string {
	switch k {
	case MalformedName:
		return "malformed name"
	case UnsupportedMode:
		return "unsupported mode"
	case MalformedBody:
		return "malformed body"
	case MissingMetrics:
		return "missing metrics"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Error() string {
	return k.String()
}

// A ParseError records why a single result file was skipped. Parse
// errors are never fatal to a directory scan.
type ParseError struct {
	File string
	Kind Kind
	Msg  string
	Err  error // underlying error, if any
}

func (e *ParseError) Error() string {
	s := e.Kind.String()
	if e.File != "" {
		s = e.File + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is e's Kind.
func (e *ParseError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func parseErrorf(file string, kind Kind, format string, args ...interface{}) *ParseError {
	return &ParseError{File: file, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

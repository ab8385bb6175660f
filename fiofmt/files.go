// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiofmt

import (
	"io/fs"
	"os"
	"path"
	"strings"
)

// A Files reads Records from the fio result files in a directory.
//
// Only regular entries whose names end in ".json" are read, in the
// lexical order returned by fs.ReadDir. Files that cannot be
// normalized are skipped: Warn is called with the reason and Skipped
// counts them. Only a failure to list the directory stops the scan.
type Files struct {
	// FS is the file system to read from. If nil, Dir is a path
	// in the host file system.
	FS fs.FS

	// Dir is the directory within FS to read. If empty, it is
	// ".".
	Dir string

	// Normalizer converts each file. If nil, the zero Normalizer
	// is used.
	Normalizer *Normalizer

	// Warn, if non-nil, is called with a diagnostic for every
	// skipped file.
	Warn func(format string, args ...interface{})

	// names is the sequence of remaining inputs, or nil if this
	// Files has not started yet.
	names []string
	fsys  fs.FS
	dir   string
	n     *Normalizer

	rec     *Record
	skipped int
	err     error
}

func (f *Files) init() {
	f.names = []string{}
	f.fsys, f.dir = f.FS, f.Dir
	if f.dir == "" {
		f.dir = "."
	}
	if f.fsys == nil {
		f.fsys = os.DirFS(f.dir)
		f.dir = "."
	}
	f.n = f.Normalizer
	if f.n == nil {
		f.n = new(Normalizer)
	}

	ents, err := fs.ReadDir(f.fsys, f.dir)
	if err != nil {
		f.err = err
		return
	}
	for _, ent := range ents {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), resultExt) {
			continue
		}
		f.names = append(f.names, ent.Name())
	}
}

// Scan advances to the next Record and reports whether one was read.
// The caller should use the Record method to get it. When Scan
// returns false, the caller should use Err to check for a directory
// error.
func (f *Files) Scan() bool {
	if f.names == nil && f.err == nil {
		f.init()
	}
	f.rec = nil
	for f.err == nil && len(f.names) > 0 {
		name := f.names[0]
		f.names = f.names[1:]

		rec, err := f.n.NormalizeFile(f.fsys, path.Join(f.dir, name))
		if err != nil {
			f.skipped++
			if f.Warn != nil {
				f.Warn("skipping %v\n", err)
			}
			continue
		}
		rec.File = name
		f.rec = rec
		return true
	}
	return false
}

// Record returns the Record that was just read by Scan.
func (f *Files) Record() *Record {
	return f.rec
}

// Skipped returns the number of files skipped so far.
func (f *Files) Skipped() int {
	return f.skipped
}

// Err returns the error that stopped Scan, if any. Skipped files are
// not errors.
func (f *Files) Err() error {
	return f.err
}

// ReadDir normalizes every result file in directory dir of the host
// file system. It returns the Records in directory order and the
// number of skipped files. warn may be nil.
//
// An empty result is not an error.
func ReadDir(dir string, n *Normalizer, warn func(format string, args ...interface{})) (recs []*Record, skipped int, err error) {
	files := Files{Dir: dir, Normalizer: n, Warn: warn}
	for files.Scan() {
		recs = append(recs, files.Record())
	}
	return recs, files.Skipped(), files.Err()
}

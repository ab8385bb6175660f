// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiofmt

import (
	"errors"
	"testing"
)

func TestParseName(t *testing.T) {
	check := func(name, mode, bs string, bytes int64, depth int) {
		t.Helper()
		nm, err := ParseName(name)
		if err != nil {
			t.Errorf("ParseName(%q): unexpected error %s", name, err)
			return
		}
		if nm.Mode != mode || nm.BlockSize.Token != bs || nm.BlockSize.Bytes != bytes || nm.IODepth != depth {
			t.Errorf("ParseName(%q) = mode %q bs %q (%d bytes) depth %d, want %q %q (%d) %d",
				name, nm.Mode, nm.BlockSize.Token, nm.BlockSize.Bytes, nm.IODepth, mode, bs, bytes, depth)
		}
	}
	check("fio_randread_4k_numjobs1_32.json", "randread", "4k", 4096, 32)
	check("results/fio_rw_128k_x_1.json", "rw", "128k", 128<<10, 1)
	check("fio_write_1m_x_0.json", "write", "1m", 1<<20, 0)
	// Extra fields after the I/O depth are allowed.
	check("fio_read_4k_x_16_run2.json", "read", "4k", 4096, 16)
	// The mode is not validated here.
	check("fio_trim_4k_x_1.json", "trim", "4k", 4096, 1)
}

func TestParseNameMalformed(t *testing.T) {
	for _, name := range []string{
		"fio.json",
		"fio_read_4k_32.json",
		"a_b_c_d",
		"fio_read_4k_x_deep.json",
		"fio_read_4k_x_-1.json",
		"fio_read_big_x_1.json",
		"fio_read_4q_x_1.json",
	} {
		_, err := ParseName(name)
		if err == nil {
			t.Errorf("ParseName(%q): want error", name)
			continue
		}
		if !errors.Is(err, MalformedName) {
			t.Errorf("ParseName(%q): got %v, want %s", name, err, MalformedName)
		}
		var pe *ParseError
		if !errors.As(err, &pe) || pe.File != name {
			t.Errorf("ParseName(%q): error %v does not name the file", name, err)
		}
	}
}

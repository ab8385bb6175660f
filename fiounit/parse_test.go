// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiounit

import "testing"

func TestParseBlockSize(t *testing.T) {
	check := func(tok string, val uint64, bytes int64) {
		t.Helper()
		got, err := ParseBlockSize(tok)
		if err != nil {
			t.Errorf("ParseBlockSize(%q): unexpected error %s", tok, err)
			return
		}
		if got.Token != tok || got.Value != val || got.Bytes != bytes {
			t.Errorf("ParseBlockSize(%q) = %+v, want value %d bytes %d", tok, got, val, bytes)
		}
	}
	check("4k", 4, 4096)
	check("128k", 128, 128<<10)
	check("4K", 4, 4096)
	check("4KiB", 4, 4096)
	check("4kb", 4, 4096)
	check("1m", 1, 1<<20)
	check("1MiB", 1, 1<<20)
	check("2g", 2, 2<<30)
	check("512", 512, 512)
	check("512b", 512, 512)

	bad := func(tok string) {
		t.Helper()
		if got, err := ParseBlockSize(tok); err == nil {
			t.Errorf("ParseBlockSize(%q) = %+v, want error", tok, got)
		}
	}
	bad("")
	bad("k")
	bad("4x")
	bad("4kk")
	bad("-4k")
	bad("99999999999999999999k")
}

func TestKiB(t *testing.T) {
	bs, err := ParseBlockSize("1m")
	if err != nil {
		t.Fatal(err)
	}
	if got := bs.KiB(); got != 1024 {
		t.Errorf("1m.KiB() = %v, want 1024", got)
	}
}

func TestFormatBytes(t *testing.T) {
	for _, test := range []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{512, "512"},
		{4096, "4k"},
		{1536, "1.5k"},
		{128 << 10, "128k"},
		{1 << 20, "1m"},
		{3 << 30, "3g"},
	} {
		if got := FormatBytes(test.n); got != test.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", test.n, got, test.want)
		}
	}
}

// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fiounit parses fio size tokens and formats numbers in the
// units fio reports.
package fiounit

import (
	"fmt"
	"strconv"
	"strings"
)

// A BlockSize is an I/O transfer size as written in a benchmark
// configuration, such as "4k" or "1m".
type BlockSize struct {
	// Token is the size exactly as written.
	Token string

	// Value is the numeric portion of Token with the unit suffix
	// stripped. For "128k" this is 128.
	Value uint64

	// Bytes is the size in bytes. Suffixes are powers of 1024, as
	// fio interprets them by default.
	Bytes int64
}

// KiB returns the block size in kibibytes.
func (b BlockSize) KiB() float64 {
	return float64(b.Bytes) / 1024
}

func (b BlockSize) String() string {
	return b.Token
}

var suffixes = map[string]int64{
	"":  1,
	"k": 1 << 10,
	"m": 1 << 20,
	"g": 1 << 30,
	"t": 1 << 40,
}

// ParseBlockSize parses a size token such as "4k", "128K", "1MiB" or
// "512". Suffixes are case-insensitive and may carry a trailing "i",
// "b" or "ib".
func ParseBlockSize(tok string) (BlockSize, error) {
	s := strings.ToLower(tok)
	end := 0
	for end < len(s) && '0' <= s[end] && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return BlockSize{}, fmt.Errorf("block size %q: missing number", tok)
	}
	val, err := strconv.ParseUint(s[:end], 10, 63)
	if err != nil {
		return BlockSize{}, fmt.Errorf("block size %q: %v", tok, err)
	}

	unit := s[end:]
	if len(unit) > 1 {
		unit = strings.TrimSuffix(unit, "b")
		unit = strings.TrimSuffix(unit, "i")
	}
	if unit == "b" {
		unit = ""
	}
	mult, ok := suffixes[unit]
	if !ok {
		return BlockSize{}, fmt.Errorf("block size %q: unknown unit %q", tok, s[end:])
	}
	bytes := int64(val) * mult
	if bytes/mult != int64(val) {
		return BlockSize{}, fmt.Errorf("block size %q: overflows", tok)
	}
	return BlockSize{Token: tok, Value: val, Bytes: bytes}, nil
}

// FormatBytes formats a byte count using the largest binary suffix
// not larger than n, in the lower-case style fio uses. For example,
// 4096 formats as "4k" and 1536 as "1.5k".
func FormatBytes(n int64) string {
	for _, p := range []string{"t", "g", "m", "k"} {
		mult := suffixes[p]
		if n >= mult {
			if n%mult == 0 {
				return strconv.FormatInt(n/mult, 10) + p
			}
			return strconv.FormatFloat(float64(n)/float64(mult), 'f', -1, 64) + p
		}
	}
	return strconv.FormatInt(n, 10)
}

// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"golang.org/x/fioperf/fiofmt"
	. "golang.org/x/fioperf/storage/db"
	"golang.org/x/fioperf/storage/db/dbtest"
)

var testRecords = []*fiofmt.Record{
	{
		File: "job_randread_4k_x_32.json", BlockSize: "4k", BlockBytes: 4096, Mode: "randread",
		Direction: fiofmt.Read, IODepth: 32,
		LatencyUS: fiofmt.Some(5), Throughput: fiofmt.Some(12000), ThroughputUnit: fiofmt.UnitIOPS,
	},
	{
		File: "job_randrw_128k_x_4.json", BlockSize: "128k", BlockBytes: 128 << 10, Mode: "randrw",
		Direction: fiofmt.Mixed, IODepth: 4,
		Throughput: fiofmt.Some(75.5), ThroughputUnit: fiofmt.UnitMBps,
	},
	{
		File: "job_write_1m_x_1.json", BlockSize: "1m", BlockBytes: 1 << 20, Mode: "write",
		Direction: fiofmt.Write, IODepth: 1,
		LatencyUS: fiofmt.Some(0.25), ThroughputUnit: fiofmt.UnitMBps,
	},
}

func TestParseRunID(t *testing.T) {
	for _, test := range []struct {
		id   string
		day  string
		seq  int64
		fail bool
	}{
		{id: "19700101.1", day: "19700101", seq: 1},
		{id: "20240229.12", day: "20240229", seq: 12},
		{id: "20240230.1", fail: true},
		{id: "19700101.0", fail: true},
		{id: "19700101", fail: true},
		{id: "1970010.1", fail: true},
		{id: "19700101.x", fail: true},
	} {
		day, seq, err := ParseRunID(test.id)
		if test.fail {
			if err == nil {
				t.Errorf("ParseRunID(%q) = %s, %d, want error", test.id, day, seq)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRunID(%q): %v", test.id, err)
			continue
		}
		if day != test.day || seq != test.seq {
			t.Errorf("ParseRunID(%q) = %s, %d, want %s, %d", test.id, day, seq, test.day, test.seq)
		}
	}
}

// TestRunIDs verifies that NewRun generates the correct sequence of run IDs.
func TestRunIDs(t *testing.T) {
	ctx := context.Background()

	db := dbtest.NewDB(t)

	defer SetNow(time.Time{})

	tests := []struct {
		sec int64
		id  string
	}{
		{0, "19700101.1"},
		{0, "19700101.2"},
		{86400, "19700102.1"},
		{86400, "19700102.2"},
		{86400, "19700102.3"},
	}
	for _, test := range tests {
		SetNow(time.Unix(test.sec, 0))
		r, err := db.NewRun(ctx, "")
		if err != nil {
			t.Fatalf("NewRun: %v", err)
		}
		if err := r.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if r.ID != test.id {
			t.Fatalf("r.ID = %q, want %q", r.ID, test.id)
		}
	}

	n, err := db.CountRuns()
	if err != nil {
		t.Fatal(err)
	}
	if n != len(tests) {
		t.Errorf("CountRuns() = %d, want %d", n, len(tests))
	}
}

// TestRecords verifies that stored records read back unchanged,
// including absent measurements.
func TestRecords(t *testing.T) {
	SetNow(time.Unix(86400, 0))
	defer SetNow(time.Time{})
	db := dbtest.NewDB(t)

	ctx := context.Background()
	r, err := db.NewRun(ctx, "nvme0")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	for _, rec := range testRecords {
		if err := r.InsertRecord(rec); err != nil {
			t.Fatalf("InsertRecord: %v", err)
		}
	}
	if err := r.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	info, got, err := db.Records(ctx, r.ID)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	want := &RunInfo{ID: "19700102.1", Label: "nvme0", Created: time.Unix(86400, 0)}
	if !reflect.DeepEqual(info, want) {
		t.Errorf("run info = %+v, want %+v", info, want)
	}
	if !reflect.DeepEqual(got, testRecords) {
		for i := range got {
			t.Logf("record %d: %+v", i, got[i])
		}
		t.Errorf("records do not round trip")
	}

	// Check absent values are stored as SQL NULL.
	var nulls int
	if err := DBSQL(db).QueryRow("SELECT COUNT(*) FROM Records WHERE LatencyUS IS NULL OR Throughput IS NULL").Scan(&nulls); err != nil {
		t.Fatal(err)
	}
	if nulls != 2 {
		t.Errorf("%d rows with NULL measurements, want 2", nulls)
	}
}

func TestAbort(t *testing.T) {
	db := dbtest.NewDB(t)

	ctx := context.Background()
	r, err := db.NewRun(ctx, "")
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	if err := r.InsertRecord(testRecords[0]); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if err := r.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}

	if n, err := db.CountRuns(); err != nil || n != 0 {
		t.Errorf("CountRuns() = %d, %v, want 0", n, err)
	}
	if _, _, err := db.Records(ctx, r.ID); err != ErrNotFound {
		t.Errorf("Records(%s) error = %v, want ErrNotFound", r.ID, err)
	}
}

// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest provides empty run databases for tests.
//
// Tests use an in-memory sqlite3 database unless -mysql or -cloudsql
// names a server, in which case every test gets its own scratch
// database on that server.
package dbtest

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"testing"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"
	"golang.org/x/fioperf/storage/db"
	_ "golang.org/x/fioperf/storage/db/sqlite3"
)

var (
	mysqlDSN = flag.String("mysql", "", "run storage tests on the MySQL server at this DSN `prefix`, such as root:@tcp(localhost:3306)/")
	cloudSQL = flag.String("cloudsql", "", "run storage tests on the Cloud SQL `instance` project:region:name")
)

// NewDB returns an empty database for t. The database is closed, and
// any scratch database dropped, when t finishes.
func NewDB(t testing.TB) *db.DB {
	t.Helper()

	driver, dsn := "sqlite3", ":memory:"
	switch {
	case *cloudSQL != "":
		driver, dsn = "mysql", scratchDB(t, fmt.Sprintf("root:@cloudsql(%s)/", *cloudSQL))
	case *mysqlDSN != "":
		driver, dsn = "mysql", scratchDB(t, *mysqlDSN)
	}

	d, err := db.OpenSQL(driver, dsn)
	if err != nil {
		t.Fatalf("opening %s database: %v", driver, err)
	}
	t.Cleanup(func() { d.Close() })

	runs, err := d.CountRuns()
	if err != nil {
		t.Fatal(err)
	}
	if runs != 0 {
		t.Fatalf("new database has %d runs", runs)
	}
	return d
}

// scratchDB creates a database on the MySQL server at prefix and
// returns its DSN. The database is dropped when t finishes.
func scratchDB(t testing.TB, prefix string) string {
	t.Helper()

	var suffix [6]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		t.Fatal(err)
	}
	name := "fioperf_test_" + hex.EncodeToString(suffix[:])

	server, err := sql.Open("mysql", prefix)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := server.Exec("CREATE DATABASE `" + name + "`"); err != nil {
		server.Close()
		t.Fatalf("creating scratch database: %v", err)
	}
	t.Logf("scratch database %s", name)

	t.Cleanup(func() {
		if _, err := server.Exec("DROP DATABASE `" + name + "`"); err != nil {
			t.Errorf("dropping scratch database: %v", err)
		}
		server.Close()
	})
	return prefix + name
}

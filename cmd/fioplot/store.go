// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"

	"golang.org/x/fioperf/fiofmt"
	"golang.org/x/fioperf/storage/db"
	_ "golang.org/x/fioperf/storage/db/sqlite3"
)

// store saves recs as a new run and returns its ID.
func store(ctx context.Context, driver, dsn, label string, recs []*fiofmt.Record) (string, error) {
	d, err := db.OpenSQL(driver, dsn)
	if err != nil {
		return "", fmt.Errorf("open database: %v", err)
	}
	defer d.Close()

	run, err := d.NewRun(ctx, label)
	if err != nil {
		return "", err
	}
	for _, r := range recs {
		if err := run.InsertRecord(r); err != nil {
			run.Abort()
			return "", err
		}
	}
	if err := run.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// Copyright 2016 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores normalized fio runs in a SQL database.
package db

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"golang.org/x/fioperf/fiofmt"
	"golang.org/x/net/context"
)

// DB is a high-level interface to a database of fio runs. It's safe
// for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	countDay     *sql.Stmt
	insertRun    *sql.Stmt
	insertRecord *sql.Stmt
	lookupRun    *sql.Stmt
	countRuns    *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to configure its connections.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Day VARCHAR(8) NOT NULL,
	Seq BIGINT UNSIGNED NOT NULL,
	Label VARCHAR(255),
	Created BIGINT,
	UNIQUE (Day, Seq)
);
CREATE TABLE IF NOT EXISTS Records (
	RunID BIGINT UNSIGNED,
	RecordID BIGINT UNSIGNED,
	File VARCHAR(1024),
	BlockSize VARCHAR(32),
	BlockBytes BIGINT,
	Mode VARCHAR(32),
	Direction VARCHAR(8),
	IODepth INT,
	LatencyUS DOUBLE,
	Throughput DOUBLE,
	ThroughputUnit VARCHAR(16),
	PRIMARY KEY (RunID, RecordID),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	prepare := func(q string) *sql.Stmt {
		if err != nil {
			return nil
		}
		var stmt *sql.Stmt
		stmt, err = db.sql.Prepare(q)
		return stmt
	}
	db.countDay = prepare("SELECT COUNT(*) FROM Runs WHERE Day = ?")
	db.insertRun = prepare("INSERT INTO Runs(Day, Seq, Label, Created) VALUES (?, ?, ?, ?)")
	db.insertRecord = prepare("INSERT INTO Records(RunID, RecordID, File, BlockSize, BlockBytes, Mode, Direction, IODepth, LatencyUS, Throughput, ThroughputUnit) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	db.lookupRun = prepare("SELECT RunID, Label, Created FROM Runs WHERE Day = ? AND Seq = ?")
	db.countRuns = prepare("SELECT COUNT(*) FROM Runs")
	return err
}

// now is a hook for testing
var now = time.Now

// A Run is a set of records normalized together. Records added to a
// Run become visible when it is committed.
type Run struct {
	// ID is the public identifier of the run, of the form
	// YYYYMMDD.N where N counts the runs created that day,
	// starting at 1.
	ID string

	Label string

	// id is the numeric primary key of the run.
	id int64
	// recordid is the index of the next record to insert.
	recordid int64
	// db is the underlying database that this run is going to.
	db *DB
	// tx is the transaction used by the run.
	tx *sql.Tx
}

// NewRun starts a new run with the given label. The caller must call
// Commit or Abort on the returned Run.
//
// On sqlite3 the database allows a single connection, so other
// queries on db block until the run is committed or aborted.
func (db *DB) NewRun(ctx context.Context, label string) (*Run, error) {
	day := now().UTC().Format("20060102")

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	var seq int64
	if err := tx.Stmt(db.countDay).QueryRow(day).Scan(&seq); err != nil {
		tx.Rollback()
		return nil, err
	}
	seq++

	res, err := tx.Stmt(db.insertRun).Exec(day, seq, label, now().Unix())
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	return &Run{
		ID:    day + "." + strconv.FormatInt(seq, 10),
		Label: label,
		id:    id,
		db:    db,
		tx:    tx,
	}, nil
}

// InsertRecord inserts a single record in the run.
func (r *Run) InsertRecord(rec *fiofmt.Record) error {
	dir, err := rec.Direction.MarshalText()
	if err != nil {
		return err
	}
	if _, err := r.tx.Stmt(r.db.insertRecord).Exec(
		r.id, r.recordid,
		rec.File, rec.BlockSize, rec.BlockBytes, rec.Mode, string(dir), rec.IODepth,
		nullFloat(rec.LatencyUS), nullFloat(rec.Throughput), string(rec.ThroughputUnit),
	); err != nil {
		return err
	}
	r.recordid++
	return nil
}

func nullFloat(m fiofmt.Measure) sql.NullFloat64 {
	return sql.NullFloat64{Float64: m.Value, Valid: m.Valid}
}

// Commit finishes processing the run.
func (r *Run) Commit() error {
	return r.tx.Commit()
}

// Abort cleans up resources associated with the run.
// It does not attempt to clean up partial database state.
func (r *Run) Abort() error {
	return r.tx.Rollback()
}

// parseRunID splits a public run ID into its day and sequence number.
func parseRunID(id string) (day string, seq int64, err error) {
	i := strings.IndexByte(id, '.')
	if i != 8 {
		return "", 0, fmt.Errorf("invalid run ID %q", id)
	}
	day = id[:i]
	if _, err := time.Parse("20060102", day); err != nil {
		return "", 0, fmt.Errorf("invalid run ID %q", id)
	}
	seq, err = strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil || seq < 1 {
		return "", 0, fmt.Errorf("invalid run ID %q", id)
	}
	return day, seq, nil
}

// ErrNotFound is returned by Records when the run does not exist.
var ErrNotFound = errors.New("run not found")

// A RunInfo describes a committed run.
type RunInfo struct {
	ID      string
	Label   string
	Created time.Time
}

// Records returns the run with the given ID and its records in
// insertion order.
func (db *DB) Records(ctx context.Context, runID string) (*RunInfo, []*fiofmt.Record, error) {
	day, seq, err := parseRunID(runID)
	if err != nil {
		return nil, nil, err
	}

	var (
		id      int64
		label   sql.NullString
		created sql.NullInt64
	)
	err = db.lookupRun.QueryRowContext(ctx, day, seq).Scan(&id, &label, &created)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	} else if err != nil {
		return nil, nil, err
	}
	info := &RunInfo{ID: runID, Label: label.String, Created: time.Unix(created.Int64, 0)}

	rows, err := db.sql.QueryContext(ctx, "SELECT File, BlockSize, BlockBytes, Mode, Direction, IODepth, LatencyUS, Throughput, ThroughputUnit FROM Records WHERE RunID = ? ORDER BY RecordID", id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var recs []*fiofmt.Record
	for rows.Next() {
		var (
			rec     fiofmt.Record
			dir     string
			lat, tp sql.NullFloat64
			unit    string
		)
		if err := rows.Scan(&rec.File, &rec.BlockSize, &rec.BlockBytes, &rec.Mode, &dir, &rec.IODepth, &lat, &tp, &unit); err != nil {
			return nil, nil, err
		}
		if err := rec.Direction.UnmarshalText([]byte(dir)); err != nil {
			return nil, nil, fmt.Errorf("run %s: %v", runID, err)
		}
		rec.LatencyUS = fiofmt.Measure{Value: lat.Float64, Valid: lat.Valid}
		rec.Throughput = fiofmt.Measure{Value: tp.Float64, Valid: tp.Valid}
		rec.ThroughputUnit = fiofmt.Unit(unit)
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return info, recs, nil
}

// CountRuns returns the number of committed runs in the database.
func (db *DB) CountRuns() (int, error) {
	var n int
	err := db.countRuns.QueryRow().Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.countDay, db.insertRun, db.insertRecord, db.lookupRun, db.countRuns} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}

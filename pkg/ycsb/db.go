// Copyright 2018 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package ycsb

import (
	"context"
	"fmt"

	"github.com/magiconair/properties"
)

// DBCreator creates a database layer.
type DBCreator interface {
	Create(p *properties.Properties) (DB, error)
}

// DB is the layer to access the database to be benchmarked.
//
// Operational failures are reported through the returned Status and never
// panic; implementations keep richer diagnostics to themselves.
type DB interface {
	// Close closes the database layer.
	Close() error

	// InitThread initializes the state associated to the goroutine worker.
	// The returned context will be passed to the following usage. An error
	// means the worker cannot talk to the database at all and must stop.
	InitThread(ctx context.Context, threadID int, threadCount int) (context.Context, error)

	// CleanupThread cleans up the state when the worker finished.
	CleanupThread(ctx context.Context)

	// Read reads a record from the database.
	// table: The name of the table.
	// key: The record key of the record to read.
	// fields: The list of fields to read. How an empty list is interpreted is
	// up to the database layer.
	Read(ctx context.Context, table string, key string, fields []string) (Status, Record)

	// Scan scans records from the database.
	// table: The name of the table.
	// startKey: The first record key to read.
	// count: The number of records to read.
	// fields: The list of fields to read, nil|empty for reading all.
	Scan(ctx context.Context, table string, startKey string, count int, fields []string) (Status, []Record)

	// Update updates a record in the database. Any field/value pairs will be written into the
	// database or overwritten the existing values with the same field name.
	Update(ctx context.Context, table string, key string, values Record) Status

	// Insert inserts a record in the database. Any field/value pairs will be written into the
	// database.
	Insert(ctx context.Context, table string, key string, values Record) Status

	// Delete deletes a record from the database.
	Delete(ctx context.Context, table string, key string) Status
}

// TransactionalDB is the interface for the DB that can group operations into
// a transaction identified by an anchor key. At most one transaction may be
// open per worker.
type TransactionalDB interface {
	DB

	// StartTransaction opens a transaction context associated with key.
	StartTransaction(ctx context.Context, key string) Status

	// Commit commits the transaction opened with key.
	Commit(ctx context.Context, key string) Status

	// Abort rolls back the transaction opened with key.
	Abort(ctx context.Context, key string) Status
}

var dbCreators = map[string]DBCreator{}

// RegisterDBCreator registers a creator for the database
func RegisterDBCreator(name string, creator DBCreator) {
	_, ok := dbCreators[name]
	if ok {
		panic(fmt.Sprintf("duplicate register database %s", name))
	}

	dbCreators[name] = creator
}

// GetDBCreator gets the DBCreator for the database
func GetDBCreator(name string) DBCreator {
	return dbCreators[name]
}

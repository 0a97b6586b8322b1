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

package client

import (
	"context"
	"time"

	"github.com/mydb-bench/go-ycsb/pkg/measurement"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
)

// DbWrapper stores the pointer to a implementation of ycsb.DB and measures
// every operation it forwards.
type DbWrapper struct {
	DB ycsb.DB
}

// TxnDbWrapper is a DbWrapper around a database with transactions.
type TxnDbWrapper struct {
	DbWrapper
	TxnDB ycsb.TransactionalDB
}

// NewDbWrapper wraps db. The result implements ycsb.TransactionalDB exactly
// when db does.
func NewDbWrapper(db ycsb.DB) ycsb.DB {
	if tdb, ok := db.(ycsb.TransactionalDB); ok {
		return TxnDbWrapper{DbWrapper: DbWrapper{DB: db}, TxnDB: tdb}
	}
	return DbWrapper{DB: db}
}

func measure(start time.Time, op string, st ycsb.Status) {
	lan := time.Now().Sub(start)
	if !st.IsOK() {
		measurement.Measure(op+"_"+st.String(), start, lan)
		return
	}

	measurement.Measure(op, start, lan)
}

func (db DbWrapper) Close() error {
	return db.DB.Close()
}

func (db DbWrapper) InitThread(ctx context.Context, threadID int, threadCount int) (context.Context, error) {
	return db.DB.InitThread(ctx, threadID, threadCount)
}

func (db DbWrapper) CleanupThread(ctx context.Context) {
	db.DB.CleanupThread(ctx)
}

func (db DbWrapper) Read(ctx context.Context, table string, key string, fields []string) (st ycsb.Status, _ ycsb.Record) {
	start := time.Now()
	defer func() {
		measure(start, "READ", st)
	}()

	return db.DB.Read(ctx, table, key, fields)
}

func (db DbWrapper) Scan(ctx context.Context, table string, startKey string, count int, fields []string) (st ycsb.Status, _ []ycsb.Record) {
	start := time.Now()
	defer func() {
		measure(start, "SCAN", st)
	}()

	return db.DB.Scan(ctx, table, startKey, count, fields)
}

func (db DbWrapper) Update(ctx context.Context, table string, key string, values ycsb.Record) (st ycsb.Status) {
	start := time.Now()
	defer func() {
		measure(start, "UPDATE", st)
	}()

	return db.DB.Update(ctx, table, key, values)
}

func (db DbWrapper) Insert(ctx context.Context, table string, key string, values ycsb.Record) (st ycsb.Status) {
	start := time.Now()
	defer func() {
		measure(start, "INSERT", st)
	}()

	return db.DB.Insert(ctx, table, key, values)
}

func (db DbWrapper) Delete(ctx context.Context, table string, key string) (st ycsb.Status) {
	start := time.Now()
	defer func() {
		measure(start, "DELETE", st)
	}()

	return db.DB.Delete(ctx, table, key)
}

func (db TxnDbWrapper) StartTransaction(ctx context.Context, key string) (st ycsb.Status) {
	start := time.Now()
	defer func() {
		measure(start, "START", st)
	}()

	return db.TxnDB.StartTransaction(ctx, key)
}

func (db TxnDbWrapper) Commit(ctx context.Context, key string) (st ycsb.Status) {
	start := time.Now()
	defer func() {
		measure(start, "COMMIT", st)
	}()

	return db.TxnDB.Commit(ctx, key)
}

func (db TxnDbWrapper) Abort(ctx context.Context, key string) (st ycsb.Status) {
	start := time.Now()
	defer func() {
		measure(start, "ABORT", st)
	}()

	return db.TxnDB.Abort(ctx, key)
}

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

/**
 * Copyright (c) 2010-2016 Yahoo! Inc., 2017 YCSB contributors All rights reserved.
 * <p>
 * Licensed under the Apache License, Version 2.0 (the "License"); you
 * may not use this file except in compliance with the License. You
 * may obtain a copy of the License at
 * <p>
 * http://www.apache.org/licenses/LICENSE-2.0
 * <p>
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
 * implied. See the License for the specific language governing
 * permissions and limitations under the License. See accompanying
 * LICENSE file.
 */

package basic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/magiconair/properties"
	"github.com/mydb-bench/go-ycsb/pkg/prop"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
)

const (
	simulateDelay         = "basicdb.simulatedelay"
	simulateDelayDefault  = int64(0)
	randomizeDelay        = "basicdb.randomizedelay"
	randomizeDelayDefault = true
)

type contextKey string

const stateKey = contextKey("basicDB")

type basicState struct {
	r *rand.Rand

	buf *bytes.Buffer
}

// BasicDB just prints out the requested operations, instead of doing them against a database.
// It accepts transactions so the transactional workload can be dry-run against it.
type basicDB struct {
	verbose        bool
	randomizeDelay bool
	toDelay        int64
	out            io.Writer
}

func (db *basicDB) delay(ctx context.Context, state *basicState) {
	if db.toDelay == 0 {
		return
	}

	r := state.r
	delayTime := time.Duration(db.toDelay) * time.Millisecond
	if db.randomizeDelay {
		delayTime = time.Duration(r.Int63n(db.toDelay)) * time.Millisecond
		if delayTime == 0 {
			return
		}
	}

	select {
	case <-time.After(delayTime):
	case <-ctx.Done():
	}
}

// begin delays like a real round trip and returns the buffer to print into,
// or nil when nothing should be printed.
func (db *basicDB) begin(ctx context.Context) *bytes.Buffer {
	state := ctx.Value(stateKey).(*basicState)

	db.delay(ctx, state)

	if !db.verbose {
		return nil
	}
	return state.buf
}

func (db *basicDB) flush(buf *bytes.Buffer) {
	buf.WriteByte('\n')
	db.out.Write(buf.Bytes())
	buf.Reset()
}

func (db *basicDB) InitThread(ctx context.Context, _ int, _ int) (context.Context, error) {
	state := new(basicState)
	state.r = rand.New(rand.NewSource(time.Now().UnixNano()))
	state.buf = new(bytes.Buffer)

	return context.WithValue(ctx, stateKey, state), nil
}

func (db *basicDB) CleanupThread(_ context.Context) {

}

func (db *basicDB) Close() error {
	return nil
}

func writeFields(buf *bytes.Buffer, fields []string) {
	buf.WriteString("[ ")
	if len(fields) > 0 {
		for _, f := range fields {
			buf.WriteString(f)
			buf.WriteByte(' ')
		}
	} else {
		buf.WriteString("<all fields> ")
	}
	buf.WriteByte(']')
}

func writeValues(buf *bytes.Buffer, values ycsb.Record) {
	buf.WriteString("[ ")
	for _, field := range values.Fields() {
		buf.WriteString(field)
		buf.WriteByte('=')
		buf.Write(values[field].Bytes())
		buf.WriteByte(' ')
	}
	buf.WriteByte(']')
}

func (db *basicDB) Read(ctx context.Context, table string, key string, fields []string) (ycsb.Status, ycsb.Record) {
	if buf := db.begin(ctx); buf != nil {
		fmt.Fprintf(buf, "READ %s %s ", table, key)
		writeFields(buf, fields)
		db.flush(buf)
	}
	return ycsb.OK, nil
}

func (db *basicDB) Scan(ctx context.Context, table string, startKey string, count int, fields []string) (ycsb.Status, []ycsb.Record) {
	if buf := db.begin(ctx); buf != nil {
		fmt.Fprintf(buf, "SCAN %s %s %d ", table, startKey, count)
		writeFields(buf, fields)
		db.flush(buf)
	}
	return ycsb.OK, nil
}

func (db *basicDB) Update(ctx context.Context, table string, key string, values ycsb.Record) ycsb.Status {
	if buf := db.begin(ctx); buf != nil {
		fmt.Fprintf(buf, "UPDATE %s %s ", table, key)
		writeValues(buf, values)
		db.flush(buf)
	}
	return ycsb.OK
}

func (db *basicDB) Insert(ctx context.Context, table string, key string, values ycsb.Record) ycsb.Status {
	if buf := db.begin(ctx); buf != nil {
		fmt.Fprintf(buf, "INSERT %s %s ", table, key)
		writeValues(buf, values)
		db.flush(buf)
	}
	return ycsb.OK
}

func (db *basicDB) Delete(ctx context.Context, table string, key string) ycsb.Status {
	if buf := db.begin(ctx); buf != nil {
		fmt.Fprintf(buf, "DELETE %s %s", table, key)
		db.flush(buf)
	}
	return ycsb.OK
}

func (db *basicDB) control(ctx context.Context, op string, key string) ycsb.Status {
	if buf := db.begin(ctx); buf != nil {
		fmt.Fprintf(buf, "%s %s", op, key)
		db.flush(buf)
	}
	return ycsb.OK
}

func (db *basicDB) StartTransaction(ctx context.Context, key string) ycsb.Status {
	return db.control(ctx, "START", key)
}

func (db *basicDB) Commit(ctx context.Context, key string) ycsb.Status {
	return db.control(ctx, "COMMIT", key)
}

func (db *basicDB) Abort(ctx context.Context, key string) ycsb.Status {
	return db.control(ctx, "ABORT", key)
}

type basicDBCreator struct{}

func (basicDBCreator) Create(p *properties.Properties) (ycsb.DB, error) {
	db := new(basicDB)

	db.verbose = p.GetBool(prop.Verbose, prop.VerboseDefault)
	db.randomizeDelay = p.GetBool(randomizeDelay, randomizeDelayDefault)
	db.toDelay = p.GetInt64(simulateDelay, simulateDelayDefault)
	db.out = os.Stdout

	return db, nil
}

func init() {
	ycsb.RegisterDBCreator("basic", basicDBCreator{})
}

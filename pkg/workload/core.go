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

package workload

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/magiconair/properties"
	"github.com/mydb-bench/go-ycsb/pkg/generator"
	"github.com/mydb-bench/go-ycsb/pkg/measurement"
	"github.com/mydb-bench/go-ycsb/pkg/prop"
	"github.com/mydb-bench/go-ycsb/pkg/util"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/ngaut/log"
	"github.com/pingcap/errors"
)

type contextKey string

const stateKey = contextKey("core")

type coreState struct {
	r *rand.Rand
	// fieldNames is a copy of core.fieldNames to be goroutine-local
	fieldNames []string
}

type operationType int64

const (
	read operationType = iota + 1
	update
	insert
	scan
	readModifyWrite
)

// Core is the core benchmark scenario. Represents a set of clients doing simple CRUD operations
// on text records.
type core struct {
	p *properties.Properties

	table      string
	fieldCount int64
	fieldNames []string

	fieldLengthGenerator ycsb.Generator
	readAllFields        bool
	writeAllFields       bool

	keySequence                  ycsb.Generator
	operationChooser             *generator.Discrete
	keyChooser                   ycsb.Generator
	fieldChooser                 ycsb.Generator
	transactionInsertKeySequence *generator.Counter
	scanLength                   ycsb.Generator
	orderedInserts               bool
	recordCount                  int64
	zeroPadding                  int64
	inserter                     *Inserter

	valuePool sync.Pool
}

func getFieldLengthGenerator(p *properties.Properties) (ycsb.Generator, error) {
	fieldLengthDistribution := p.GetString(prop.FieldLengthDistribution, prop.FieldLengthDistributionDefault)
	fieldLength := p.GetInt64(prop.FieldLength, prop.FieldLengthDefault)

	switch strings.ToLower(fieldLengthDistribution) {
	case "constant":
		return generator.NewConstant(fieldLength), nil
	case "uniform":
		return generator.NewUniform(1, fieldLength), nil
	case "zipfian":
		return generator.NewZipfianWithRange(1, fieldLength, generator.ZipfianConstant), nil
	default:
		return nil, errors.Errorf("unknown field length distribution %s", fieldLengthDistribution)
	}
}

func createOperationGenerator(p *properties.Properties) *generator.Discrete {
	readProportion := p.GetFloat64(prop.ReadProportion, prop.ReadProportionDefault)
	updateProportion := p.GetFloat64(prop.UpdateProportion, prop.UpdateProportionDefault)
	insertProportion := p.GetFloat64(prop.InsertProportion, prop.InsertProportionDefault)
	scanProportion := p.GetFloat64(prop.ScanProportion, prop.ScanProportionDefault)
	readModifyWriteProportion := p.GetFloat64(prop.ReadModifyWriteProportion, prop.ReadModifyWriteProportionDefault)

	operationChooser := generator.NewDiscrete()
	if readProportion > 0 {
		operationChooser.Add(readProportion, int64(read))
	}

	if updateProportion > 0 {
		operationChooser.Add(updateProportion, int64(update))
	}

	if insertProportion > 0 {
		operationChooser.Add(insertProportion, int64(insert))
	}

	if scanProportion > 0 {
		operationChooser.Add(scanProportion, int64(scan))
	}

	if readModifyWriteProportion > 0 {
		operationChooser.Add(readModifyWriteProportion, int64(readModifyWrite))
	}

	return operationChooser
}

// InitThread implements the Workload InitThread interface.
func (c *core) InitThread(ctx context.Context, threadID int, _ int) context.Context {
	r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(threadID)))
	fieldNames := make([]string, len(c.fieldNames))
	copy(fieldNames, c.fieldNames)
	state := &coreState{
		r:          r,
		fieldNames: fieldNames,
	}
	return context.WithValue(ctx, stateKey, state)
}

// CleanupThread implements the Workload CleanupThread interface.
func (c *core) CleanupThread(_ context.Context) {

}

// Close implements the Workload Close interface.
func (c *core) Close() error {
	return nil
}

func (c *core) buildKeyName(keyNum int64) string {
	if !c.orderedInserts {
		keyNum = util.Hash64(keyNum)
	}

	prefix := c.p.GetString(prop.KeyPrefix, prop.KeyPrefixDefault)
	return fmt.Sprintf("%s%0[3]*[2]d", prefix, keyNum, c.zeroPadding)
}

func (c *core) buildSingleValue(state *coreState) ycsb.Record {
	fieldKey := state.fieldNames[c.fieldChooser.Next(state.r)]
	return ycsb.Record{fieldKey: ycsb.TextValue(c.buildRandomValue(state))}
}

func (c *core) buildValues(state *coreState) ycsb.Record {
	values := make(ycsb.Record, c.fieldCount)
	for _, fieldKey := range state.fieldNames {
		values[fieldKey] = ycsb.TextValue(c.buildRandomValue(state))
	}
	return values
}

func (c *core) getValueBuffer(size int) []byte {
	buf := c.valuePool.Get().([]byte)
	if cap(buf) >= size {
		return buf[0:size]
	}

	return make([]byte, size)
}

func (c *core) putValues(values ycsb.Record) {
	for _, value := range values {
		c.valuePool.Put(value.Bytes())
	}
}

func (c *core) buildRandomValue(state *coreState) []byte {
	r := state.r
	buf := c.getValueBuffer(int(c.fieldLengthGenerator.Next(r)))
	util.RandBytes(r, buf)
	return buf
}

func (c *core) fields(state *coreState) []string {
	if c.readAllFields {
		return state.fieldNames
	}
	return []string{state.fieldNames[c.fieldChooser.Next(state.r)]}
}

func statusError(op string, key string, st ycsb.Status) error {
	if st.IsOK() {
		return nil
	}
	return errors.Errorf("%s %s: %s", op, key, st)
}

// DoInsert implements the Workload DoInsert interface.
func (c *core) DoInsert(ctx context.Context, db ycsb.DB) error {
	state := ctx.Value(stateKey).(*coreState)
	keyNum := c.keySequence.Next(state.r)
	dbKey := c.buildKeyName(keyNum)
	values := c.buildValues(state)
	defer c.putValues(values)

	return statusError("insert", dbKey, c.inserter.Insert(ctx, db, c.table, dbKey, values))
}

// DoTransaction implements the Workload DoTransaction interface.
func (c *core) DoTransaction(ctx context.Context, db ycsb.DB) error {
	state := ctx.Value(stateKey).(*coreState)
	r := state.r

	operation := operationType(c.operationChooser.Next(r))
	switch operation {
	case read:
		return c.doTransactionRead(ctx, db, state)
	case update:
		return c.doTransactionUpdate(ctx, db, state)
	case insert:
		return c.doTransactionInsert(ctx, db, state)
	case scan:
		return c.doTransactionScan(ctx, db, state)
	default:
		return c.doTransactionReadModifyWrite(ctx, db, state)
	}
}

func (c *core) nextKeyName(state *coreState) string {
	return c.buildKeyName(c.keyChooser.Next(state.r))
}

func (c *core) doTransactionRead(ctx context.Context, db ycsb.DB, state *coreState) error {
	keyName := c.nextKeyName(state)
	st, _ := db.Read(ctx, c.table, keyName, c.fields(state))
	return statusError("read", keyName, st)
}

func (c *core) doTransactionReadModifyWrite(ctx context.Context, db ycsb.DB, state *coreState) error {
	start := time.Now()
	defer func() {
		measurement.Measure("READ_MODIFY_WRITE", start, time.Now().Sub(start))
	}()

	keyName := c.nextKeyName(state)

	var values ycsb.Record
	if c.writeAllFields {
		values = c.buildValues(state)
	} else {
		values = c.buildSingleValue(state)
	}
	defer c.putValues(values)

	if st, _ := db.Read(ctx, c.table, keyName, c.fields(state)); !st.IsOK() {
		return statusError("read", keyName, st)
	}
	return statusError("update", keyName, db.Update(ctx, c.table, keyName, values))
}

func (c *core) doTransactionInsert(ctx context.Context, db ycsb.DB, state *coreState) error {
	keyNum := c.transactionInsertKeySequence.Next(state.r)
	dbKey := c.buildKeyName(keyNum)
	values := c.buildValues(state)
	defer c.putValues(values)

	return statusError("insert", dbKey, db.Insert(ctx, c.table, dbKey, values))
}

func (c *core) doTransactionScan(ctx context.Context, db ycsb.DB, state *coreState) error {
	startKeyName := c.nextKeyName(state)
	scanLen := c.scanLength.Next(state.r)

	st, _ := db.Scan(ctx, c.table, startKeyName, int(scanLen), c.fields(state))
	if st == ycsb.NotImplemented {
		log.Debugf("scan is not supported by %T", db)
		return nil
	}
	return statusError("scan", startKeyName, st)
}

func (c *core) doTransactionUpdate(ctx context.Context, db ycsb.DB, state *coreState) error {
	keyName := c.nextKeyName(state)

	var values ycsb.Record
	if c.writeAllFields {
		values = c.buildValues(state)
	} else {
		values = c.buildSingleValue(state)
	}
	defer c.putValues(values)

	return statusError("update", keyName, db.Update(ctx, c.table, keyName, values))
}

// CoreCreator creates the Core workload.
type coreCreator struct {
}

// Create implements the WorkloadCreator Create interface.
func (coreCreator) Create(p *properties.Properties) (ycsb.Workload, error) {
	c := new(core)
	c.p = p
	c.table = p.GetString(prop.TableName, prop.TableNameDefault)
	c.fieldCount = p.GetInt64(prop.FieldCount, prop.FieldCountDefault)
	if c.fieldCount <= 0 {
		return nil, errors.Errorf("%s must be positive", prop.FieldCount)
	}
	c.fieldNames = make([]string, c.fieldCount)
	for i := int64(0); i < c.fieldCount; i++ {
		c.fieldNames[i] = fmt.Sprintf("field%d", i)
	}
	var err error
	if c.fieldLengthGenerator, err = getFieldLengthGenerator(p); err != nil {
		return nil, err
	}
	c.recordCount = p.GetInt64(prop.RecordCount, prop.RecordCountDefault)
	if c.recordCount == 0 {
		c.recordCount = int64(math.MaxInt32)
	}

	kr, err := loadKeyRange(p, c.recordCount)
	if err != nil {
		return nil, err
	}
	c.zeroPadding = p.GetInt64(prop.ZeroPadding, prop.ZeroPaddingDefault)
	c.readAllFields = p.GetBool(prop.ReadAllFields, prop.ReadAllFieldsDefault)
	c.writeAllFields = p.GetBool(prop.WriteAllFields, prop.WriteAllFieldsDefault)
	c.orderedInserts = p.GetString(prop.InsertOrder, prop.InsertOrderDefault) != "hashed"

	c.keySequence = generator.NewCounter(kr.lower)
	c.operationChooser = createOperationGenerator(p)
	c.transactionInsertKeySequence = generator.NewCounter(c.recordCount)
	if c.keyChooser, err = newKeyChooser(p, kr); err != nil {
		return nil, err
	}
	log.Infof("Using request distribution '%s' a keyrange of [%d %d]",
		p.GetString(prop.RequestDistribution, prop.RequestDistributionDefault), kr.lower, kr.upper)

	c.fieldChooser = generator.NewUniform(0, c.fieldCount-1)
	c.scanLength = generator.NewUniform(1, p.GetInt64(prop.MaxScanLength, prop.MaxScanLengthDefault))

	retryLimit := p.GetInt64(prop.InsertionRetryLimit, prop.InsertionRetryLimitDefault)
	retryInterval := p.GetInt64(prop.InsertionRetryInterval, prop.InsertionRetryIntervalDefault)
	c.inserter = NewInserter(retryLimit, time.Duration(retryInterval)*time.Second)

	fieldLength := p.GetInt64(prop.FieldLength, prop.FieldLengthDefault)
	c.valuePool = sync.Pool{
		New: func() interface{} {
			return make([]byte, fieldLength)
		},
	}

	return c, nil
}

func init() {
	ycsb.RegisterWorkloadCreator("core", coreCreator{})
}

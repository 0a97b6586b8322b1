package workload

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/magiconair/properties"
	"github.com/mydb-bench/go-ycsb/pkg/generator"
	"github.com/mydb-bench/go-ycsb/pkg/measurement"
	"github.com/mydb-bench/go-ycsb/pkg/prop"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/ngaut/log"
	"github.com/pingcap/errors"
)

// properties
const (
	transactionalFieldName                = "transactional.fieldname"
	transactionalFieldNameDefault         = "balance"
	transactionalLegacyTransfer           = "transactional.legacy_transfer"
	transactionalMaxDelta                 = "transactional.max_delta"
	transactionalMaxDeltaDefault          = int64(1000)
	transactionalMaxInitialBalance        = "transactional.max_initial_balance"
	transactionalMaxInitialBalanceDefault = int64(1000 * 1000 * 1000)
)

const txnStateKey = contextKey("transactional")

type transactionalState struct {
	r *rand.Rand
}

// transactional moves money between accounts. The load phase creates one
// account per key with a random balance; every run phase operation is a
// transaction of transaction_batch_size transfers.
type transactional struct {
	table             string
	field             string
	maxInitialBalance int64

	keySequence ycsb.Generator
	keyChooser  ycsb.Generator
	inserter    *Inserter
	transfer    *transfer
}

func buildAccountKey(keyNum int64) string {
	return "account" + strconv.FormatInt(keyNum, 10)
}

// InitThread implements the Workload InitThread interface.
func (t *transactional) InitThread(ctx context.Context, threadID int, _ int) context.Context {
	state := &transactionalState{
		r: rand.New(rand.NewSource(time.Now().UnixNano() + int64(threadID))),
	}
	return context.WithValue(ctx, txnStateKey, state)
}

// CleanupThread implements the Workload CleanupThread interface.
func (t *transactional) CleanupThread(_ context.Context) {
}

// Close implements the Workload Close interface.
func (t *transactional) Close() error {
	return nil
}

// ValidateDB refuses databases without transactions.
func (t *transactional) ValidateDB(db ycsb.DB) error {
	if _, ok := db.(ycsb.TransactionalDB); !ok {
		return errors.Errorf("workload transactional needs a database with transactions, %T has none", db)
	}
	return nil
}

// DoInsert implements the Workload DoInsert interface.
func (t *transactional) DoInsert(ctx context.Context, db ycsb.DB) error {
	state := ctx.Value(txnStateKey).(*transactionalState)
	key := buildAccountKey(t.keySequence.Next(state.r))
	values := ycsb.Record{t.field: ycsb.NumericValue(state.r.Int63n(t.maxInitialBalance))}

	if st := t.inserter.Insert(ctx, db, t.table, key, values); !st.IsOK() {
		return errors.Errorf("insert %s failed: %s", key, st)
	}
	return nil
}

// DoTransaction implements the Workload DoTransaction interface. A finished
// attempt is a success whether it committed or aborted.
func (t *transactional) DoTransaction(ctx context.Context, db ycsb.DB) error {
	tdb, ok := db.(ycsb.TransactionalDB)
	if !ok {
		return t.ValidateDB(db)
	}
	state := ctx.Value(txnStateKey).(*transactionalState)

	start := time.Now()
	res := t.transfer.run(ctx, tdb, state.r)
	measurement.Measure("TRANSACTION", start, res.Latency)
	measurement.Measure("INTENDED_TRANSACTION", start.Add(res.Latency-res.IntendedLatency), res.IntendedLatency)
	return nil
}

type transactionalCreator struct{}

// Create implements the WorkloadCreator Create interface.
func (transactionalCreator) Create(p *properties.Properties) (ycsb.Workload, error) {
	t := &transactional{
		table:             p.GetString(prop.TableName, prop.TableNameDefault),
		field:             p.GetString(transactionalFieldName, transactionalFieldNameDefault),
		maxInitialBalance: p.GetInt64(transactionalMaxInitialBalance, transactionalMaxInitialBalanceDefault),
	}
	if t.maxInitialBalance <= 0 {
		return nil, errors.Errorf("%s must be positive", transactionalMaxInitialBalance)
	}

	recordCount := p.GetInt64(prop.RecordCount, prop.RecordCountDefault)
	if recordCount == 0 {
		recordCount = int64(math.MaxInt32)
	}
	kr, err := loadKeyRange(p, recordCount)
	if err != nil {
		return nil, err
	}
	t.keySequence = generator.NewCounter(kr.lower)
	if t.keyChooser, err = newKeyChooser(p, kr); err != nil {
		return nil, err
	}

	batchSize := p.GetInt(prop.TransactionBatchSize, int(prop.TransactionBatchSizeDefault))
	if batchSize < 0 {
		return nil, errors.Errorf("%s must not be negative", prop.TransactionBatchSize)
	}
	maxDelta := p.GetInt64(transactionalMaxDelta, transactionalMaxDeltaDefault)
	if maxDelta <= 0 {
		return nil, errors.Errorf("%s must be positive", transactionalMaxDelta)
	}
	t.transfer = &transfer{
		table:     t.table,
		field:     t.field,
		batchSize: batchSize,
		maxDelta:  maxDelta,
		legacy:    p.GetBool(transactionalLegacyTransfer, false),
		nextKey: func(r *rand.Rand) string {
			return buildAccountKey(t.keyChooser.Next(r))
		},
	}

	retryLimit := p.GetInt64(prop.InsertionRetryLimit, prop.InsertionRetryLimitDefault)
	retryInterval := p.GetInt64(prop.InsertionRetryInterval, prop.InsertionRetryIntervalDefault)
	t.inserter = NewInserter(retryLimit, time.Duration(retryInterval)*time.Second)

	log.Infof("Using request distribution '%s' a keyrange of [%d %d], %d transfers per transaction",
		p.GetString(prop.RequestDistribution, prop.RequestDistributionDefault), kr.lower, kr.upper, batchSize)
	if t.transfer.legacy {
		log.Warnf("%s is set, the second account of a transfer gets the first account's balance", transactionalLegacyTransfer)
	}
	return t, nil
}

func init() {
	ycsb.RegisterWorkloadCreator("transactional", transactionalCreator{})
}

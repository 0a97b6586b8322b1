package workload

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/mydb-bench/go-ycsb/pkg/measurement"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/ngaut/log"
)

// TxnState is the lifecycle of one transaction attempt.
type TxnState int

// Transaction states. Every attempt starts Idle and ends Committed or Aborted.
const (
	TxnIdle TxnState = iota
	TxnOpen
	TxnCommitted
	TxnAborted
)

func (s TxnState) String() string {
	switch s {
	case TxnIdle:
		return "idle"
	case TxnOpen:
		return "open"
	case TxnCommitted:
		return "committed"
	case TxnAborted:
		return "aborted"
	}
	return fmt.Sprintf("TxnState(%d)", int(s))
}

// TxnResult describes a finished transaction attempt.
type TxnResult struct {
	// Completed is true once the attempt reached commit or abort, whatever
	// the outcome.
	Completed bool
	Committed bool
	State     TxnState
	// Latency is measured from the actual start, IntendedLatency from the
	// time the worker's schedule wanted the attempt to start.
	Latency         time.Duration
	IntendedLatency time.Duration
}

var (
	txnCommitted = metrics.NewCounter(`transactional_transactions_total{outcome="commit"}`)
	txnAborted   = metrics.NewCounter(`transactional_transactions_total{outcome="abort"}`)
)

// transfer runs batches of balance transfers inside one transaction.
type transfer struct {
	table     string
	field     string
	batchSize int
	maxDelta  int64
	// legacy writes the record computed for the first account to the second
	// account too, like the reference workload does.
	legacy bool

	nextKey func(r *rand.Rand) string
}

// run performs one transaction attempt anchored at a freshly chosen key.
func (t *transfer) run(ctx context.Context, db ycsb.TransactionalDB, r *rand.Rand) TxnResult {
	start := time.Now()
	intended := measurement.IntendedStart(ctx, start)

	res := t.attempt(ctx, db, r)

	end := time.Now()
	res.Latency = end.Sub(start)
	res.IntendedLatency = end.Sub(intended)
	return res
}

func (t *transfer) attempt(ctx context.Context, db ycsb.TransactionalDB, r *rand.Rand) TxnResult {
	anchor := t.nextKey(r)
	state := TxnIdle

	ok := db.StartTransaction(ctx, anchor).IsOK()
	if ok {
		state = TxnOpen
		for i := 0; i < t.batchSize; i++ {
			if !t.step(ctx, db, r) {
				ok = false
			}
		}
	} else {
		log.Warnf("Transaction %s could not be started", anchor)
	}

	if ok {
		if st := db.Commit(ctx, anchor); !st.IsOK() {
			log.Warnf("Transaction %s failed to commit: %s", anchor, st)
			txnAborted.Inc()
			return TxnResult{Completed: true, State: TxnAborted}
		}
		txnCommitted.Inc()
		return TxnResult{Completed: true, Committed: true, State: TxnCommitted}
	}

	log.Warnf("Transaction %s is being rolled back (was %s)", anchor, state)
	if st := db.Abort(ctx, anchor); !st.IsOK() {
		log.Errorf("Error while rolling back transaction %s: %s", anchor, st)
	}
	txnAborted.Inc()
	return TxnResult{Completed: true, State: TxnAborted}
}

// step moves a random amount between two random accounts. It reports
// whether every read and write succeeded.
func (t *transfer) step(ctx context.Context, db ycsb.TransactionalDB, r *rand.Rand) bool {
	key1 := t.nextKey(r)
	key2 := t.nextKey(r)

	st1, balance1 := t.readBalance(ctx, db, key1)
	st2, balance2 := t.readBalance(ctx, db, key2)

	delta := r.Int63n(2*t.maxDelta) - t.maxDelta
	rec1 := ycsb.Record{t.field: ycsb.NumericValue(balance1 + delta)}
	rec2 := ycsb.Record{t.field: ycsb.NumericValue(balance2 - delta)}
	if t.legacy {
		rec2 = rec1
	}

	su1 := db.Update(ctx, t.table, key1, rec1)
	su2 := db.Update(ctx, t.table, key2, rec2)
	return st1.IsOK() && st2.IsOK() && su1.IsOK() && su2.IsOK()
}

// readBalance returns 0 when the read fails. A record without the balance
// field falls back to its numeric value, whatever the database named it.
func (t *transfer) readBalance(ctx context.Context, db ycsb.DB, key string) (ycsb.Status, int64) {
	st, rec := db.Read(ctx, t.table, key, nil)
	if !st.IsOK() {
		return st, 0
	}
	if v, ok := rec[t.field].Int64(); ok {
		return st, v
	}
	for _, value := range rec {
		if v, ok := value.Int64(); ok {
			return st, v
		}
	}
	return st, 0
}

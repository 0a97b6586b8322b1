package workload

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/ngaut/log"
	"github.com/pingcap/errors"
)

// Inserter writes records in the load phase, retrying failed inserts after a
// jittered pause of interval * [0.8, 1.2).
type Inserter struct {
	limit    int64
	interval time.Duration

	// timer drives the pauses, nil means a real timer.
	timer backoff.Timer
}

// NewInserter creates an Inserter making up to limit retries.
func NewInserter(limit int64, interval time.Duration) *Inserter {
	if limit < 0 {
		limit = 0
	}
	return &Inserter{limit: limit, interval: interval}
}

func (ins *Inserter) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = ins.interval
	b.MaxInterval = ins.interval
	b.RandomizationFactor = 0.2
	b.Multiplier = 1
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(ins.limit)), ctx)
}

// Insert inserts values under key and returns the status of the last
// attempt. Cancelling ctx ends the retries early.
func (ins *Inserter) Insert(ctx context.Context, db ycsb.DB, table string, key string, values ycsb.Record) ycsb.Status {
	var (
		st       ycsb.Status
		attempts int64
	)
	op := func() error {
		attempts++
		st = db.Insert(ctx, table, key, values)
		if st.IsOK() {
			return nil
		}
		return errors.Errorf("insert %s returned %s", key, st)
	}
	notify := func(err error, wait time.Duration) {
		log.Warnf("Retrying insertion of %s in %s, retry count: %d", key, wait, attempts)
	}

	err := backoff.RetryNotifyWithTimer(op, ins.backOff(ctx), notify, ins.timer)
	if err == nil {
		return st
	}
	if ctx.Err() != nil {
		log.Infof("Insertion of %s cancelled after %d attempts", key, attempts)
		return st
	}
	log.Errorf("Error inserting %s, not retrying any more. number of attempts: %d, insertion retry limit: %d",
		key, attempts, ins.limit)
	return st
}

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
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/magiconair/properties"
	"github.com/mydb-bench/go-ycsb/pkg/measurement"
	"github.com/mydb-bench/go-ycsb/pkg/prop"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/ngaut/log"
	"github.com/pingcap/errors"
)

type worker struct {
	p               *properties.Properties
	workDB          ycsb.DB
	workload        ycsb.Workload
	doTransactions  bool
	silence         bool
	opCount         int64
	targetOpsPerMs  float64
	threadID        int
	targetOpsTickNs int64
	opsDone         int64
}

func totalOpCount(p *properties.Properties) int64 {
	if p.GetBool(prop.DoTransactions, true) {
		return p.GetInt64(prop.OperationCount, 0)
	}
	if _, ok := p.Get(prop.InsertCount); ok {
		return p.GetInt64(prop.InsertCount, 0)
	}
	return p.GetInt64(prop.RecordCount, 0)
}

func newWorker(p *properties.Properties, threadID int, threadCount int, workload ycsb.Workload, db ycsb.DB) *worker {
	w := new(worker)
	w.p = p
	w.doTransactions = p.GetBool(prop.DoTransactions, true)
	w.silence = p.GetBool(prop.Silence, prop.SilenceDefault)
	w.threadID = threadID
	w.workload = workload
	w.workDB = db

	w.opCount = totalOpCount(p) / int64(threadCount)

	targetPerThreadPerms := float64(-1)
	if v := p.GetInt64(prop.Target, 0); v > 0 {
		targetPerThread := float64(v) / float64(threadCount)
		targetPerThreadPerms = targetPerThread / 1000.0
	}

	if targetPerThreadPerms > 0 {
		w.targetOpsPerMs = targetPerThreadPerms
		w.targetOpsTickNs = int64(1000000.0 / w.targetOpsPerMs)
	}

	return w
}

// intendedStart is when the schedule wants the next operation to begin.
func (w *worker) intendedStart(startTime time.Time) time.Time {
	return startTime.Add(time.Duration(w.opsDone * w.targetOpsTickNs))
}

func (w *worker) throttle(ctx context.Context, startTime time.Time) {
	if w.targetOpsPerMs <= 0 {
		return
	}

	d := w.intendedStart(startTime).Sub(time.Now())
	if d < 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (w *worker) run(ctx context.Context) {
	// spread the thread operation out so they don't all hit the DB at the same time
	if w.targetOpsPerMs > 0.0 && w.targetOpsPerMs <= 1.0 {
		time.Sleep(time.Duration(rand.Int63n(w.targetOpsTickNs)))
	}

	startTime := time.Now()

	for w.opCount == 0 || w.opsDone < w.opCount {
		opCtx := ctx
		if w.targetOpsPerMs > 0 {
			opCtx = measurement.WithIntendedStart(ctx, w.intendedStart(startTime))
		}

		var err error
		if w.doTransactions {
			err = w.workload.DoTransaction(opCtx, w.workDB)
		} else {
			err = w.workload.DoInsert(opCtx, w.workDB)
		}

		if err != nil && !w.silence {
			log.Warnf("operation err: %v", err)
		}

		if measurement.IsWarmUpFinished() {
			w.opsDone++
			w.throttle(ctx, startTime)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// Client is a struct which is used the run workload to a specific DB.
type Client struct {
	p        *properties.Properties
	workload ycsb.Workload
	db       ycsb.DB
}

// NewClient returns a client with the given workload and DB.
// The workload and db can't be nil.
func NewClient(p *properties.Properties, workload ycsb.Workload, db ycsb.DB) *Client {
	return &Client{p: p, workload: workload, db: db}
}

// Run runs the workload to the target DB, and blocks until all workers end.
// A worker whose database thread cannot be initialized stops alone, Run
// fails only when no worker could start.
func (c *Client) Run(ctx context.Context) error {
	threadCount := c.p.GetInt(prop.ThreadCount, int(prop.ThreadCountDefault))
	if threadCount <= 0 {
		return errors.Errorf("%s must be positive, got %d", prop.ThreadCount, threadCount)
	}
	if n := totalOpCount(c.p); n < int64(threadCount) {
		return errors.Errorf("totalOpCount(%s/%s/%s): %d should be bigger than threadCount: %d",
			prop.OperationCount, prop.InsertCount, prop.RecordCount, n, threadCount)
	}
	if v, ok := c.workload.(ycsb.DBValidator); ok {
		if err := v.ValidateDB(c.db); err != nil {
			return errors.Trace(err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(threadCount)
	measureCtx, measureCancel := context.WithCancel(ctx)
	measureCh := make(chan struct{}, 1)
	go func() {
		defer func() {
			measureCh <- struct{}{}
		}()
		// load stage no need to warm up
		if c.p.GetBool(prop.DoTransactions, true) {
			dur := c.p.GetInt64(prop.WarmUpTime, 0)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(dur) * time.Second):
			}
		}
		// finish warming up
		measurement.EnableWarmUp(false)

		dur := c.p.GetInt64(prop.LogInterval, prop.LogIntervalDefault)
		t := time.NewTicker(time.Duration(dur) * time.Second)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				measurement.Summary()
			case <-measureCtx.Done():
				return
			}
		}
	}()

	var failed int32
	for i := 0; i < threadCount; i++ {
		go func(threadID int) {
			defer wg.Done()

			w := newWorker(c.p, threadID, threadCount, c.workload, c.db)
			wctx := c.workload.InitThread(ctx, threadID, threadCount)
			ctx, err := c.db.InitThread(wctx, threadID, threadCount)
			if err != nil {
				log.Errorf("worker %d stopped: %v", threadID, err)
				atomic.AddInt32(&failed, 1)
				c.workload.CleanupThread(wctx)
				return
			}
			w.run(ctx)
			c.db.CleanupThread(ctx)
			c.workload.CleanupThread(ctx)
		}(i)
	}

	wg.Wait()
	measureCancel()
	<-measureCh

	if int(failed) == threadCount {
		return errors.Errorf("none of the %d workers could initialize the database", threadCount)
	}
	return nil
}

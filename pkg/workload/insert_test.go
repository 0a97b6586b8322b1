package workload

import (
	"context"
	"testing"
	"time"

	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTimer fires immediately and remembers every requested pause.
type fakeTimer struct {
	c      chan time.Time
	pauses []time.Duration
	onWait func()
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{c: make(chan time.Time, 1)}
}

func (t *fakeTimer) Start(d time.Duration) {
	t.pauses = append(t.pauses, d)
	if t.onWait != nil {
		t.onWait()
		return
	}
	t.c <- time.Now()
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time {
	return t.c
}

func assertPausesInRange(t *testing.T, pauses []time.Duration, interval time.Duration) {
	low := time.Duration(float64(interval)*0.8) - time.Nanosecond
	high := time.Duration(float64(interval)*1.2) + time.Nanosecond
	for _, p := range pauses {
		assert.True(t, p >= low && p <= high, "pause %s outside [%s, %s]", p, low, high)
	}
}

func TestInserterRetriesUntilSuccess(t *testing.T) {
	const interval = 3 * time.Second
	for k := 0; k <= 4; k++ {
		db := newFakeDB()
		for i := 1; i <= k; i++ {
			db.failures["insert"] = append(db.failures["insert"], i)
		}
		timer := newFakeTimer()
		ins := NewInserter(4, interval)
		ins.timer = timer

		st := ins.Insert(context.Background(), db, "usertable1", "account1", ycsb.Record{"balance": ycsb.NumericValue(9)})
		assert.Equal(t, ycsb.OK, st)
		assert.Equal(t, k+1, db.count("insert"))
		require.Len(t, timer.pauses, k)
		assertPausesInRange(t, timer.pauses, interval)
		assert.Equal(t, int64(9), db.balances["account1"])
	}
}

func TestInserterGivesUp(t *testing.T) {
	const interval = time.Second
	for _, limit := range []int64{0, 1, 5} {
		db := newFakeDB()
		db.failAll["insert"] = true
		timer := newFakeTimer()
		ins := NewInserter(limit, interval)
		ins.timer = timer

		st := ins.Insert(context.Background(), db, "usertable1", "account1", ycsb.Record{"balance": ycsb.NumericValue(1)})
		assert.Equal(t, ycsb.Error, st)
		assert.Equal(t, int(limit+1), db.count("insert"))
		assert.Len(t, timer.pauses, int(limit))
		assertPausesInRange(t, timer.pauses, interval)
	}
}

func TestInserterJitterSpread(t *testing.T) {
	const interval = 100 * time.Millisecond
	db := newFakeDB()
	db.failAll["insert"] = true
	timer := newFakeTimer()
	ins := NewInserter(200, interval)
	ins.timer = timer

	ins.Insert(context.Background(), db, "t", "k", ycsb.Record{"balance": ycsb.NumericValue(1)})
	require.Len(t, timer.pauses, 200)
	assertPausesInRange(t, timer.pauses, interval)

	distinct := make(map[time.Duration]struct{})
	for _, p := range timer.pauses {
		distinct[p] = struct{}{}
	}
	assert.True(t, len(distinct) > 1)
}

func TestInserterCancelledDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := newFakeDB()
	db.failAll["insert"] = true
	timer := newFakeTimer()
	timer.onWait = cancel
	ins := NewInserter(10, time.Hour)
	ins.timer = timer

	st := ins.Insert(ctx, db, "t", "k", ycsb.Record{"balance": ycsb.NumericValue(1)})
	assert.Equal(t, ycsb.Error, st)
	assert.Equal(t, 1, db.count("insert"))
}

func TestInserterRealTimer(t *testing.T) {
	db := newFakeDB()
	db.failures["insert"] = []int{1}
	ins := NewInserter(1, 10*time.Millisecond)

	start := time.Now()
	st := ins.Insert(context.Background(), db, "t", "k", ycsb.Record{"balance": ycsb.NumericValue(1)})
	assert.Equal(t, ycsb.OK, st)
	assert.True(t, time.Since(start) >= 8*time.Millisecond)
}

package client

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/magiconair/properties"
	"github.com/mydb-bench/go-ycsb/pkg/measurement"
	"github.com/mydb-bench/go-ycsb/pkg/prop"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

type threadKey struct{}

type countingWorkload struct {
	mu        sync.Mutex
	inserts   int
	txns      map[int]int
	intended  []time.Time
	cleanups  int
	rejectAll bool
}

func newCountingWorkload() *countingWorkload {
	return &countingWorkload{txns: make(map[int]int)}
}

func (w *countingWorkload) Close() error { return nil }

func (w *countingWorkload) InitThread(ctx context.Context, threadID int, _ int) context.Context {
	return context.WithValue(ctx, threadKey{}, threadID)
}

func (w *countingWorkload) CleanupThread(context.Context) {
	w.mu.Lock()
	w.cleanups++
	w.mu.Unlock()
}

func (w *countingWorkload) DoInsert(ctx context.Context, db ycsb.DB) error {
	w.mu.Lock()
	w.inserts++
	w.mu.Unlock()
	return nil
}

func (w *countingWorkload) DoTransaction(ctx context.Context, db ycsb.DB) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.txns[ctx.Value(threadKey{}).(int)]++
	w.intended = append(w.intended, measurement.IntendedStart(ctx, time.Time{}))
	return nil
}

func (w *countingWorkload) ValidateDB(db ycsb.DB) error {
	if w.rejectAll {
		return errors.New("database rejected")
	}
	return nil
}

type stubDB struct {
	failThreads map[int]bool
}

func (db *stubDB) Close() error { return nil }

func (db *stubDB) InitThread(ctx context.Context, threadID int, _ int) (context.Context, error) {
	if db.failThreads[threadID] {
		return ctx, errors.Errorf("thread %d cannot connect", threadID)
	}
	return ctx, nil
}

func (db *stubDB) CleanupThread(context.Context) {}

func (db *stubDB) Read(context.Context, string, string, []string) (ycsb.Status, ycsb.Record) {
	return ycsb.OK, nil
}

func (db *stubDB) Scan(context.Context, string, string, int, []string) (ycsb.Status, []ycsb.Record) {
	return ycsb.NotImplemented, nil
}

func (db *stubDB) Update(context.Context, string, string, ycsb.Record) ycsb.Status { return ycsb.OK }

func (db *stubDB) Insert(context.Context, string, string, ycsb.Record) ycsb.Status { return ycsb.OK }

func (db *stubDB) Delete(context.Context, string, string) ycsb.Status { return ycsb.OK }

func runProps(threads int, ops int) *properties.Properties {
	p := properties.NewProperties()
	p.Set(prop.ThreadCount, strconv.Itoa(threads))
	p.Set(prop.OperationCount, strconv.Itoa(ops))
	return p
}

func TestRunSplitsOperations(t *testing.T) {
	w := newCountingWorkload()
	c := NewClient(runProps(4, 40), w, &stubDB{})

	require.NoError(t, c.Run(context.Background()))
	require.Len(t, w.txns, 4)
	for id, n := range w.txns {
		require.Equal(t, 10, n, "thread %d", id)
	}
	require.Equal(t, 4, w.cleanups)
}

func TestRunLoadUsesInsertCount(t *testing.T) {
	p := runProps(2, 0)
	p.Set(prop.DoTransactions, "false")
	p.Set(prop.RecordCount, "100")
	p.Set(prop.InsertCount, "10")

	w := newCountingWorkload()
	require.NoError(t, NewClient(p, w, &stubDB{}).Run(context.Background()))
	require.Equal(t, 10, w.inserts)
	require.Empty(t, w.txns)
}

func TestRunStopsOnlyFailedWorker(t *testing.T) {
	w := newCountingWorkload()
	db := &stubDB{failThreads: map[int]bool{1: true}}

	require.NoError(t, NewClient(runProps(3, 30), w, db).Run(context.Background()))
	require.Equal(t, 10, w.txns[0])
	require.Zero(t, w.txns[1])
	require.Equal(t, 10, w.txns[2])
	require.Equal(t, 3, w.cleanups)
}

func TestRunFailsWhenNoWorkerStarts(t *testing.T) {
	w := newCountingWorkload()
	db := &stubDB{failThreads: map[int]bool{0: true, 1: true}}

	err := NewClient(runProps(2, 10), w, db).Run(context.Background())
	require.Error(t, err)
	require.Empty(t, w.txns)
}

func TestRunRefusesInvalidDatabase(t *testing.T) {
	w := newCountingWorkload()
	w.rejectAll = true

	err := NewClient(runProps(1, 10), w, &stubDB{}).Run(context.Background())
	require.Error(t, err)
	require.Empty(t, w.txns)
	require.Zero(t, w.cleanups)
}

func TestRunRejectsTooFewOperations(t *testing.T) {
	err := NewClient(runProps(4, 2), newCountingWorkload(), &stubDB{}).Run(context.Background())
	require.Error(t, err)
}

func TestRunThrottledSetsIntendedStart(t *testing.T) {
	p := runProps(1, 5)
	p.Set(prop.Target, "1000")

	w := newCountingWorkload()
	require.NoError(t, NewClient(p, w, &stubDB{}).Run(context.Background()))
	require.Len(t, w.intended, 5)
	for i := 1; i < len(w.intended); i++ {
		require.False(t, w.intended[i].IsZero())
		require.Equal(t, time.Millisecond, w.intended[i].Sub(w.intended[i-1]))
	}
}

func TestRunUnthrottledLeavesIntendedStartUnset(t *testing.T) {
	w := newCountingWorkload()
	require.NoError(t, NewClient(runProps(1, 3), w, &stubDB{}).Run(context.Background()))
	for _, ts := range w.intended {
		require.True(t, ts.IsZero())
	}
}

type txnStubDB struct {
	stubDB
	commits int
}

func (db *txnStubDB) StartTransaction(context.Context, string) ycsb.Status { return ycsb.OK }

func (db *txnStubDB) Commit(context.Context, string) ycsb.Status {
	db.commits++
	return ycsb.Error
}

func (db *txnStubDB) Abort(context.Context, string) ycsb.Status { return ycsb.OK }

func TestDbWrapperKeepsTransactions(t *testing.T) {
	_, ok := NewDbWrapper(&stubDB{}).(ycsb.TransactionalDB)
	require.False(t, ok)

	inner := &txnStubDB{}
	wrapped, ok := NewDbWrapper(inner).(ycsb.TransactionalDB)
	require.True(t, ok)
	require.Equal(t, ycsb.Error, wrapped.Commit(context.Background(), "account1"))
	require.Equal(t, 1, inner.commits)

	st, _ := wrapped.Scan(context.Background(), "t", "k", 1, nil)
	require.Equal(t, ycsb.NotImplemented, st)
}

package workload

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
)

// fakeDB keeps numeric balances in memory and counts calls per operation.
// failures[op] lists the 1-based call numbers of op that return Error.
type fakeDB struct {
	mu       sync.Mutex
	balances map[string]int64
	calls    map[string]int
	failures map[string][]int
	failAll  map[string]bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		balances: make(map[string]int64),
		calls:    make(map[string]int),
		failures: make(map[string][]int),
		failAll:  make(map[string]bool),
	}
}

func (db *fakeDB) count(op string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.calls[op]
}

func (db *fakeDB) call(op string) ycsb.Status {
	db.calls[op]++
	if db.failAll[op] {
		return ycsb.Error
	}
	for _, n := range db.failures[op] {
		if n == db.calls[op] {
			return ycsb.Error
		}
	}
	return ycsb.OK
}

func (db *fakeDB) keys() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	keys := make([]string, 0, len(db.balances))
	for k := range db.balances {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (db *fakeDB) Close() error {
	return nil
}

func (db *fakeDB) InitThread(ctx context.Context, _ int, _ int) (context.Context, error) {
	return ctx, nil
}

func (db *fakeDB) CleanupThread(_ context.Context) {
}

func (db *fakeDB) Read(_ context.Context, _ string, key string, _ []string) (ycsb.Status, ycsb.Record) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if st := db.call("read"); !st.IsOK() {
		return st, nil
	}
	return ycsb.OK, ycsb.Record{"balance": ycsb.NumericValue(db.balances[key])}
}

func (db *fakeDB) Scan(_ context.Context, _ string, _ string, _ int, _ []string) (ycsb.Status, []ycsb.Record) {
	return ycsb.NotImplemented, nil
}

func (db *fakeDB) write(op string, key string, values ycsb.Record) ycsb.Status {
	db.mu.Lock()
	defer db.mu.Unlock()
	if st := db.call(op); !st.IsOK() {
		return st
	}
	for _, v := range values {
		if n, ok := v.Int64(); ok {
			db.balances[key] = n
		} else if n, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			db.balances[key] = n
		} else {
			db.balances[key] = 0
		}
	}
	return ycsb.OK
}

func (db *fakeDB) Update(_ context.Context, _ string, key string, values ycsb.Record) ycsb.Status {
	return db.write("update", key, values)
}

func (db *fakeDB) Insert(_ context.Context, _ string, key string, values ycsb.Record) ycsb.Status {
	return db.write("insert", key, values)
}

func (db *fakeDB) Delete(_ context.Context, _ string, key string) ycsb.Status {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.balances, key)
	return db.call("delete")
}

func (db *fakeDB) control(op string) ycsb.Status {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.call(op)
}

func (db *fakeDB) StartTransaction(_ context.Context, _ string) ycsb.Status {
	return db.control("start")
}

func (db *fakeDB) Commit(_ context.Context, _ string) ycsb.Status {
	return db.control("commit")
}

func (db *fakeDB) Abort(_ context.Context, _ string) ycsb.Status {
	return db.control("abort")
}

// plainDB hides the transaction methods of a fakeDB.
type plainDB struct {
	ycsb.DB
}

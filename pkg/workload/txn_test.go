package workload

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/mydb-bench/go-ycsb/db/mydb"
	"github.com/mydb-bench/go-ycsb/db/mydb/mydbtest"
	"github.com/mydb-bench/go-ycsb/pkg/measurement"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cycleKeys hands out keys in order, starting over at the end.
func cycleKeys(keys ...string) func(r *rand.Rand) string {
	i := 0
	return func(_ *rand.Rand) string {
		k := keys[i%len(keys)]
		i++
		return k
	}
}

func newTestTransfer(batchSize int, legacy bool, keys ...string) *transfer {
	return &transfer{
		table:     "usertable1",
		field:     "balance",
		batchSize: batchSize,
		maxDelta:  1000,
		legacy:    legacy,
		nextKey:   cycleKeys(keys...),
	}
}

func TestTransferCommitsOnce(t *testing.T) {
	db := newFakeDB()
	tr := newTestTransfer(5, false, "account0", "account1", "account2")

	res := tr.run(context.Background(), db, rand.New(rand.NewSource(1)))
	assert.True(t, res.Completed)
	assert.True(t, res.Committed)
	assert.Equal(t, TxnCommitted, res.State)

	assert.Equal(t, 1, db.count("start"))
	assert.Equal(t, 10, db.count("read"))
	assert.Equal(t, 10, db.count("update"))
	assert.Equal(t, 1, db.count("commit"))
	assert.Equal(t, 0, db.count("abort"))
}

func TestTransferAbortsOnceOnAnyFailure(t *testing.T) {
	for _, op := range []string{"read", "update"} {
		db := newFakeDB()
		db.failures[op] = []int{3, 4, 7}
		tr := newTestTransfer(5, false, "account0", "account1", "account2")

		res := tr.run(context.Background(), db, rand.New(rand.NewSource(1)))
		assert.True(t, res.Completed, op)
		assert.False(t, res.Committed, op)
		assert.Equal(t, TxnAborted, res.State, op)

		// the batch still runs to the end
		assert.Equal(t, 10, db.count(op), op)
		assert.Equal(t, 0, db.count("commit"), op)
		assert.Equal(t, 1, db.count("abort"), op)
	}
}

func TestTransferStartFailure(t *testing.T) {
	db := newFakeDB()
	db.failAll["start"] = true
	tr := newTestTransfer(5, false, "account0", "account1", "account2")

	res := tr.run(context.Background(), db, rand.New(rand.NewSource(1)))
	assert.True(t, res.Completed)
	assert.Equal(t, TxnAborted, res.State)
	assert.Equal(t, 0, db.count("read"))
	assert.Equal(t, 0, db.count("update"))
	assert.Equal(t, 0, db.count("commit"))
	assert.Equal(t, 1, db.count("abort"))
}

func TestTransferFailedAbortIsNotEscalated(t *testing.T) {
	db := newFakeDB()
	db.failAll["update"] = true
	db.failAll["abort"] = true
	tr := newTestTransfer(2, false, "account0", "account1", "account2")

	res := tr.run(context.Background(), db, rand.New(rand.NewSource(1)))
	assert.True(t, res.Completed)
	assert.Equal(t, TxnAborted, res.State)
	assert.Equal(t, 1, db.count("abort"))
}

func TestTransferFailedCommit(t *testing.T) {
	db := newFakeDB()
	db.failAll["commit"] = true
	tr := newTestTransfer(1, false, "account0", "account1", "account2")

	res := tr.run(context.Background(), db, rand.New(rand.NewSource(1)))
	assert.True(t, res.Completed)
	assert.False(t, res.Committed)
	assert.Equal(t, 1, db.count("commit"))
	assert.Equal(t, 0, db.count("abort"))
}

func TestTransferCorrectedKeepsTotal(t *testing.T) {
	db := newFakeDB()
	db.balances["account1"] = 100
	db.balances["account2"] = 200
	tr := newTestTransfer(1, false, "anchor", "account1", "account2")

	res := tr.run(context.Background(), db, rand.New(rand.NewSource(7)))
	require.True(t, res.Committed)
	assert.Equal(t, int64(300), db.balances["account1"]+db.balances["account2"])
	delta := db.balances["account1"] - 100
	assert.True(t, delta >= -1000 && delta < 1000)
}

func TestTransferLegacyCopiesFirstRecord(t *testing.T) {
	db := newFakeDB()
	db.balances["account1"] = 100
	db.balances["account2"] = 200
	tr := newTestTransfer(1, true, "anchor", "account1", "account2")

	res := tr.run(context.Background(), db, rand.New(rand.NewSource(7)))
	require.True(t, res.Committed)
	// both accounts end up with the first account's new balance
	assert.Equal(t, db.balances["account1"], db.balances["account2"])
	delta := db.balances["account1"] - 100
	assert.True(t, delta >= -1000 && delta < 1000)
}

func TestTransferReadFailureUsesZeroBalance(t *testing.T) {
	db := newFakeDB()
	db.balances["account1"] = 5000
	db.balances["account2"] = 5000
	db.failures["read"] = []int{1}
	tr := newTestTransfer(1, false, "anchor", "account1", "account2")

	res := tr.run(context.Background(), db, rand.New(rand.NewSource(3)))
	assert.Equal(t, TxnAborted, res.State)
	// the first account was written from a balance of 0
	assert.True(t, db.balances["account1"] >= -1000 && db.balances["account1"] < 1000)
}

func TestTransferIntendedLatency(t *testing.T) {
	db := newFakeDB()
	tr := newTestTransfer(1, false, "account0", "account1")

	ctx := measurement.WithIntendedStart(context.Background(), time.Now().Add(-time.Second))
	res := tr.run(ctx, db, rand.New(rand.NewSource(1)))
	assert.True(t, res.IntendedLatency >= time.Second)
	assert.True(t, res.IntendedLatency > res.Latency)
}

// abortCounter counts the aborts the controller asks for, whether or not
// they reach the store.
type abortCounter struct {
	*mydb.Client
	aborts int
}

func (a *abortCounter) InitThread(ctx context.Context, _ int, _ int) (context.Context, error) {
	return ctx, nil
}

func (a *abortCounter) CleanupThread(_ context.Context) {
}

func (a *abortCounter) Abort(ctx context.Context, key string) ycsb.Status {
	a.aborts++
	return a.Client.Abort(ctx, key)
}

func TestTransportFailureAbortsOnce(t *testing.T) {
	for _, dropAfter := range []int{1, 2, 5, 12} {
		srv := mydbtest.NewServer()
		for _, k := range []string{"account0", "account1", "account2"} {
			srv.PutNumeric("usertable1", k, "balance", 1000)
		}
		cli, err := mydb.NewClient(srv.Pipe(), mydb.DefaultConfig())
		require.NoError(t, err)
		db := &abortCounter{Client: cli}

		srv.DropAfter(dropAfter)
		tr := newTestTransfer(5, false, "account0", "account1", "account2")
		res := tr.run(context.Background(), db, rand.New(rand.NewSource(1)))

		assert.True(t, res.Completed, "drop after %d", dropAfter)
		assert.Equal(t, TxnAborted, res.State, "drop after %d", dropAfter)
		assert.Equal(t, 1, db.aborts, "drop after %d", dropAfter)
		assert.Equal(t, 0, srv.Count(mydb.Commit), "drop after %d", dropAfter)
		assert.True(t, cli.Broken())

		cli.Close()
		srv.Close()
	}
}

func TestTransferAgainstStore(t *testing.T) {
	srv := mydbtest.NewServer()
	// the key source cycles, so the anchor account also takes part in transfers
	srv.PutNumeric("usertable1", "account0", "balance", 0)
	srv.PutNumeric("usertable1", "account1", "balance", 100)
	srv.PutNumeric("usertable1", "account2", "balance", 200)
	cli, err := mydb.NewClient(srv.Pipe(), mydb.DefaultConfig())
	require.NoError(t, err)
	defer srv.Close()
	defer cli.Close()
	db := &abortCounter{Client: cli}

	tr := newTestTransfer(3, false, "account0", "account1", "account2")
	res := tr.run(context.Background(), db, rand.New(rand.NewSource(11)))
	require.True(t, res.Committed)
	assert.Equal(t, 1, srv.Count(mydb.StartTransaction))
	assert.Equal(t, 1, srv.Count(mydb.Commit))
	assert.Equal(t, 6, srv.Count(mydb.UpdateNumeric))
	assert.Equal(t, 0, srv.Count(mydb.UpdateText))

	var total int64
	for _, k := range []string{"account0", "account1", "account2"} {
		b, ok := srv.Numeric("usertable1", k, "balance")
		require.True(t, ok, k)
		total += b
	}
	assert.Equal(t, int64(300), total)
	assert.Zero(t, db.aborts)
}

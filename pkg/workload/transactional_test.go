package workload

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/magiconair/properties"
	"github.com/mydb-bench/go-ycsb/db/mydb"
	"github.com/mydb-bench/go-ycsb/db/mydb/mydbtest"
	"github.com/mydb-bench/go-ycsb/pkg/prop"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransactional(t *testing.T, kv ...string) *transactional {
	p := properties.NewProperties()
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i], kv[i+1])
	}
	w, err := ycsb.GetWorkloadCreator("transactional").Create(p)
	require.NoError(t, err)
	return w.(*transactional)
}

func TestTransactionalDefaults(t *testing.T) {
	w := newTransactional(t)
	assert.Equal(t, "usertable1", w.table)
	assert.Equal(t, "balance", w.field)
	assert.Equal(t, 10, w.transfer.batchSize)
	assert.Equal(t, int64(1000), w.transfer.maxDelta)
	assert.False(t, w.transfer.legacy)
	assert.Equal(t, int64(0), w.inserter.limit)
	assert.Equal(t, "3s", w.inserter.interval.String())
}

func TestTransactionalConfigErrors(t *testing.T) {
	bad := [][]string{
		{prop.RequestDistribution, "latest"},
		{prop.RecordCount, "10", prop.InsertStart, "5", prop.InsertCount, "10"},
		{transactionalMaxDelta, "0"},
		{prop.TransactionBatchSize, "-1"},
	}
	for _, kv := range bad {
		p := properties.NewProperties()
		for i := 0; i+1 < len(kv); i += 2 {
			p.Set(kv[i], kv[i+1])
		}
		_, err := ycsb.GetWorkloadCreator("transactional").Create(p)
		assert.Error(t, err, "%v", kv)
	}
}

func TestTransactionalLoad(t *testing.T) {
	w := newTransactional(t, prop.RecordCount, "20", prop.InsertStart, "5", prop.InsertCount, "10")
	db := newFakeDB()
	ctx := w.InitThread(context.Background(), 0, 1)

	for i := 0; i < 10; i++ {
		require.NoError(t, w.DoInsert(ctx, db))
	}
	keys := db.keys()
	require.Len(t, keys, 10)
	for i := 5; i < 15; i++ {
		balance, ok := db.balances[fmt.Sprintf("account%d", i)]
		require.True(t, ok, "account%d", i)
		assert.True(t, balance >= 0 && balance < 1000*1000*1000)
	}
}

func TestTransactionalLoadReportsFailure(t *testing.T) {
	w := newTransactional(t, prop.RecordCount, "1")
	db := newFakeDB()
	db.failAll["insert"] = true
	ctx := w.InitThread(context.Background(), 0, 1)

	assert.Error(t, w.DoInsert(ctx, db))
	assert.Equal(t, 1, db.count("insert"))
}

func TestTransactionalKeysStayInLoadedRange(t *testing.T) {
	w := newTransactional(t, prop.RecordCount, "4", prop.TransactionBatchSize, "50")
	db := newFakeDB()
	ctx := w.InitThread(context.Background(), 0, 1)
	for i := 0; i < 4; i++ {
		require.NoError(t, w.DoInsert(ctx, db))
	}

	for i := 0; i < 20; i++ {
		require.NoError(t, w.DoTransaction(ctx, db))
	}
	assert.Equal(t, []string{"account0", "account1", "account2", "account3"}, db.keys())
	assert.Equal(t, 20, db.count("commit"))
}

func TestTransactionalAbortStillCompletes(t *testing.T) {
	w := newTransactional(t, prop.RecordCount, "4", prop.TransactionBatchSize, "2")
	db := newFakeDB()
	db.failAll["update"] = true
	ctx := w.InitThread(context.Background(), 0, 1)

	assert.NoError(t, w.DoTransaction(ctx, db))
	assert.Equal(t, 1, db.count("abort"))
	assert.Equal(t, 0, db.count("commit"))
}

func TestTransactionalNeedsTransactions(t *testing.T) {
	w := newTransactional(t, prop.RecordCount, "4")
	db := plainDB{newFakeDB()}
	ctx := w.InitThread(context.Background(), 0, 1)

	assert.Error(t, w.ValidateDB(db))
	assert.Error(t, w.DoTransaction(ctx, db))
	assert.NoError(t, w.ValidateDB(newFakeDB()))
}

func TestTransactionalAgainstMyDB(t *testing.T) {
	srv := mydbtest.NewServer()
	socket := filepath.Join(t.TempDir(), "mydb.sock")
	require.NoError(t, srv.Listen(socket))
	defer srv.Close()

	p := properties.NewProperties()
	p.Set("mydb.socket", socket)
	p.Set(prop.RecordCount, "8")
	p.Set(prop.TransactionBatchSize, "4")
	p.Set(prop.InsertionRetryLimit, "2")

	db, err := ycsb.GetDBCreator("mydb").Create(p)
	require.NoError(t, err)
	w, err := ycsb.GetWorkloadCreator("transactional").Create(p)
	require.NoError(t, err)

	ctx := w.InitThread(context.Background(), 0, 1)
	ctx, err = db.InitThread(ctx, 0, 1)
	require.NoError(t, err)
	defer db.CleanupThread(ctx)

	for i := 0; i < 8; i++ {
		require.NoError(t, w.DoInsert(ctx, db))
	}
	assert.Equal(t, 8, srv.Count(mydb.InsertNumeric))

	for i := 0; i < 5; i++ {
		require.NoError(t, w.DoTransaction(ctx, db))
	}
	assert.Equal(t, 5, srv.Count(mydb.StartTransaction))
	assert.Equal(t, 5, srv.Count(mydb.Commit)+srv.Count(mydb.Abort))
	for i := 0; i < 8; i++ {
		_, ok := srv.Numeric("usertable1", fmt.Sprintf("account%d", i), "balance")
		assert.True(t, ok)
	}
}

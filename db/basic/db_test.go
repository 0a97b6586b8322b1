package basic

import (
	"bytes"
	"context"
	"testing"

	"github.com/magiconair/properties"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, verbose bool) (*basicDB, context.Context, *bytes.Buffer) {
	p := properties.NewProperties()
	if verbose {
		p.Set("verbose", "true")
	}
	db, err := basicDBCreator{}.Create(p)
	require.NoError(t, err)

	out := new(bytes.Buffer)
	bdb := db.(*basicDB)
	bdb.out = out

	ctx, err := bdb.InitThread(context.Background(), 0, 1)
	require.NoError(t, err)
	return bdb, ctx, out
}

func TestBasicPrintsOperations(t *testing.T) {
	db, ctx, out := newTestDB(t, true)

	require.Equal(t, ycsb.OK, db.Insert(ctx, "t", "k1", ycsb.Record{
		"b": ycsb.NumericValue(7),
		"a": ycsb.TextValue([]byte("x")),
	}))
	st, row := db.Read(ctx, "t", "k1", nil)
	require.Equal(t, ycsb.OK, st)
	require.Nil(t, row)
	require.Equal(t, ycsb.OK, db.StartTransaction(ctx, "k1"))
	require.Equal(t, ycsb.OK, db.Commit(ctx, "k1"))
	require.Equal(t, ycsb.OK, db.Delete(ctx, "t", "k1"))

	require.Equal(t, "INSERT t k1 [ a=x b=7 ]\n"+
		"READ t k1 [ <all fields> ]\n"+
		"START k1\n"+
		"COMMIT k1\n"+
		"DELETE t k1\n", out.String())
}

func TestBasicQuiet(t *testing.T) {
	db, ctx, out := newTestDB(t, false)

	require.Equal(t, ycsb.OK, db.Update(ctx, "t", "k1", ycsb.Record{"a": ycsb.TextValue([]byte("x"))}))
	require.Equal(t, ycsb.OK, db.Abort(ctx, "k1"))
	require.Zero(t, out.Len())
}

func TestBasicIsTransactional(t *testing.T) {
	var db ycsb.DB = new(basicDB)
	_, ok := db.(ycsb.TransactionalDB)
	require.True(t, ok)
}

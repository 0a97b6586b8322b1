package mydb

import (
	"context"
	"testing"
	"time"

	"github.com/magiconair/properties"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromProperties(t *testing.T) {
	p := properties.NewProperties()
	cfg, err := configFromProperties(p)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "/tmp/mydbsocket", cfg.Socket)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, "balance", cfg.NumericField)

	p.Set(mydbSocket, "/run/mydb.sock")
	p.Set(mydbTimeout, "250ms")
	p.Set(mydbFraming, FramingRaw)
	p.Set(mydbReadBuffer, "128")
	cfg, err = configFromProperties(p)
	require.NoError(t, err)
	assert.Equal(t, "/run/mydb.sock", cfg.Socket)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, FramingRaw, cfg.Framing)
	assert.Equal(t, 128, cfg.ReadBuffer)

	p = properties.NewProperties()
	p.Set(mydbFraming, FramingRaw)
	cfg, err = configFromProperties(p)
	require.NoError(t, err)
	assert.Equal(t, mydbRawTimeoutDefault, cfg.Timeout)

	p.Set(mydbFraming, "chunked")
	_, err = configFromProperties(p)
	assert.Error(t, err)
}

func TestRegistered(t *testing.T) {
	creator := ycsb.GetDBCreator("mydb")
	require.NotNil(t, creator)

	p := properties.NewProperties()
	p.Set(mydbSocket, "/nonexistent/mydb.sock")
	p.Set(mydbDialTimeout, "100ms")
	db, err := creator.Create(p)
	require.NoError(t, err)
	_, ok := db.(ycsb.TransactionalDB)
	assert.True(t, ok)

	_, err = db.InitThread(context.Background(), 0, 1)
	assert.Equal(t, ErrTransportFailure, errors.Cause(err))
}

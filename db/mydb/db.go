package mydb

import (
	"context"
	"time"

	"github.com/magiconair/properties"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/ngaut/log"
	"github.com/pingcap/errors"
)

// properties
const (
	mydbSocket             = "mydb.socket"
	mydbSocketDefault      = "/tmp/mydbsocket"
	mydbDialTimeout        = "mydb.dial_timeout"
	mydbDialTimeoutDefault = 5 * time.Second
	mydbTimeout            = "mydb.timeout"
	// raw framing cannot see empty replies, so it always needs a deadline
	mydbRawTimeoutDefault   = 5 * time.Second
	mydbNumericField        = "mydb.numeric_field"
	mydbNumericFieldDefault = "balance"
	mydbFraming             = "mydb.framing"
	mydbMaxFrameSize        = "mydb.max_frame_size"
	mydbMaxFrameSizeDefault = 16 << 20
	mydbReadBuffer          = "mydb.read_buffer"
	mydbReadBufferDefault   = 512
)

type contextKey string

const clientKey = contextKey("mydbClient")

type mydbCreator struct{}

// mydb opens one Client per worker in InitThread and keeps it in the
// worker's context.
type mydb struct {
	cfg Config
}

func (c mydbCreator) Create(p *properties.Properties) (ycsb.DB, error) {
	cfg, err := configFromProperties(p)
	if err != nil {
		return nil, err
	}
	log.Infof("[mydb] using socket %s, %s framing", cfg.Socket, cfg.Framing)
	return &mydb{cfg: cfg}, nil
}

func configFromProperties(p *properties.Properties) (Config, error) {
	cfg := DefaultConfig()
	cfg.Socket = p.GetString(mydbSocket, cfg.Socket)
	cfg.DialTimeout = p.GetParsedDuration(mydbDialTimeout, cfg.DialTimeout)
	cfg.Timeout = p.GetParsedDuration(mydbTimeout, 0)
	cfg.NumericField = p.GetString(mydbNumericField, cfg.NumericField)
	cfg.Framing = p.GetString(mydbFraming, cfg.Framing)
	cfg.MaxFrameSize = p.GetInt(mydbMaxFrameSize, cfg.MaxFrameSize)
	cfg.ReadBuffer = p.GetInt(mydbReadBuffer, cfg.ReadBuffer)

	switch cfg.Framing {
	case FramingDelimited, FramingRaw:
	default:
		return cfg, errors.Errorf("unknown %s %q, want %s or %s", mydbFraming, cfg.Framing, FramingDelimited, FramingRaw)
	}
	if cfg.ReadBuffer <= 0 {
		return cfg, errors.Errorf("%s must be positive, got %d", mydbReadBuffer, cfg.ReadBuffer)
	}
	if cfg.Framing == FramingRaw && cfg.Timeout <= 0 {
		cfg.Timeout = mydbRawTimeoutDefault
	}
	return cfg, nil
}

func (db *mydb) Close() error {
	return nil
}

func (db *mydb) InitThread(ctx context.Context, threadID int, _ int) (context.Context, error) {
	cli, err := Dial(ctx, db.cfg)
	if err != nil {
		log.Errorf("[mydb] worker %d cannot connect: %v", threadID, err)
		return ctx, errors.Trace(err)
	}
	return context.WithValue(ctx, clientKey, cli), nil
}

func (db *mydb) CleanupThread(ctx context.Context) {
	if cli, ok := ctx.Value(clientKey).(*Client); ok {
		cli.Close()
	}
}

func (db *mydb) client(ctx context.Context) *Client {
	cli, ok := ctx.Value(clientKey).(*Client)
	if !ok {
		panic("mydb: no client in context, InitThread was not called")
	}
	return cli
}

func (db *mydb) Read(ctx context.Context, table string, key string, fields []string) (ycsb.Status, ycsb.Record) {
	return db.client(ctx).Read(ctx, table, key, fields)
}

func (db *mydb) Scan(ctx context.Context, table string, startKey string, count int, fields []string) (ycsb.Status, []ycsb.Record) {
	return db.client(ctx).Scan(ctx, table, startKey, count, fields)
}

func (db *mydb) Update(ctx context.Context, table string, key string, values ycsb.Record) ycsb.Status {
	return db.client(ctx).Update(ctx, table, key, values)
}

func (db *mydb) Insert(ctx context.Context, table string, key string, values ycsb.Record) ycsb.Status {
	return db.client(ctx).Insert(ctx, table, key, values)
}

func (db *mydb) Delete(ctx context.Context, table string, key string) ycsb.Status {
	return db.client(ctx).Delete(ctx, table, key)
}

func (db *mydb) StartTransaction(ctx context.Context, key string) ycsb.Status {
	return db.client(ctx).StartTransaction(ctx, key)
}

func (db *mydb) Commit(ctx context.Context, key string) ycsb.Status {
	return db.client(ctx).Commit(ctx, key)
}

func (db *mydb) Abort(ctx context.Context, key string) ycsb.Status {
	return db.client(ctx).Abort(ctx, key)
}

func init() {
	ycsb.RegisterDBCreator("mydb", mydbCreator{})
}

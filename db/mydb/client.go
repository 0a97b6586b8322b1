package mydb

import (
	"context"
	"net"
	"time"

	"github.com/mydb-bench/go-ycsb/pkg/util"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/ngaut/log"
	"github.com/pingcap/errors"
)

// Config holds the connection settings of a Client.
type Config struct {
	// Socket is the path of the store's unix socket.
	Socket      string
	DialTimeout time.Duration
	// Timeout bounds every request/response exchange, 0 means no limit.
	Timeout time.Duration
	// NumericField is the field a numeric read asks for.
	NumericField string
	Framing      string
	MaxFrameSize int
	// ReadBuffer is the size of the single read in raw framing mode.
	ReadBuffer int
}

// DefaultConfig returns the settings used when no property overrides them.
func DefaultConfig() Config {
	return Config{
		Socket:       mydbSocketDefault,
		DialTimeout:  mydbDialTimeoutDefault,
		NumericField: mydbNumericFieldDefault,
		Framing:      FramingDelimited,
		MaxFrameSize: mydbMaxFrameSizeDefault,
		ReadBuffer:   mydbReadBufferDefault,
	}
}

// Client speaks the mydb protocol over one connection. It is strictly
// half-duplex: each request waits for its reply before the next one is sent.
// A Client must not be used from more than one goroutine.
type Client struct {
	cfg    Config
	conn   net.Conn
	framer framer
	bufs   *util.BufPool

	inTxn  bool
	txnKey string
	err    error
}

// Dial connects to the store at cfg.Socket.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "unix", cfg.Socket)
	if err != nil {
		return nil, errors.Annotatef(ErrTransportFailure, "dial %s: %v", cfg.Socket, err)
	}
	c, err := NewClient(conn, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, cfg Config) (*Client, error) {
	if cfg.NumericField == "" {
		cfg.NumericField = mydbNumericFieldDefault
	}
	if cfg.ReadBuffer <= 0 {
		cfg.ReadBuffer = mydbReadBufferDefault
	}
	if cfg.Framing == FramingRaw && cfg.Timeout <= 0 {
		cfg.Timeout = mydbRawTimeoutDefault
	}
	f, err := newFramer(cfg.Framing, conn, cfg.MaxFrameSize, cfg.ReadBuffer)
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		conn:   conn,
		framer: f,
		bufs:   util.NewBufPool(2 * cfg.ReadBuffer),
	}, nil
}

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Err returns the error behind the last failed operation.
func (c *Client) Err() error {
	return c.err
}

// Broken reports whether an earlier transport failure closed the connection.
func (c *Client) Broken() bool {
	return c.conn == nil
}

// InTransaction reports whether a transaction is open on this client.
func (c *Client) InTransaction() bool {
	return c.inTxn
}

// Read reads one record. With no fields it asks for the numeric value of the
// configured numeric field, otherwise for the text values of fields.
func (c *Client) Read(ctx context.Context, table string, key string, fields []string) (ycsb.Status, ycsb.Record) {
	var req *Request
	if len(fields) == 0 {
		req = NewReadNumeric(table, key, c.cfg.NumericField)
	} else {
		req = NewReadText(table, key, fields)
	}

	resp, err := c.call(ctx, req)
	if err != nil {
		return c.fail(req.Type, err), nil
	}

	switch {
	case req.Type == ReadNumeric && resp.Type == LongResult:
		c.succeed(req.Type)
		return ycsb.OK, ycsb.Record{c.cfg.NumericField: ycsb.NumericValue(resp.Long)}
	case req.Type == ReadText && resp.Type == TextResult:
		c.succeed(req.Type)
		return ycsb.OK, ycsb.NewTextRecord(resp.Text)
	case resp.Type == StatusResult && !resp.OK:
		return c.fail(req.Type, errors.Annotatef(ErrRemoteError, "%s %s/%s", req.Type, table, key)), nil
	default:
		return c.fail(req.Type, errors.Annotatef(ErrUnexpectedResponseShape, "%s answered with %s", req.Type, resp.Type)), nil
	}
}

// Scan is not part of the protocol.
func (c *Client) Scan(_ context.Context, _ string, _ string, _ int, _ []string) (ycsb.Status, []ycsb.Record) {
	c.err = errors.Annotate(ErrUnsupported, "scan")
	return ycsb.NotImplemented, nil
}

// Update writes record under key. A record whose values are all numeric is
// sent as a single numeric field update, anything else as a text update.
func (c *Client) Update(ctx context.Context, table string, key string, record ycsb.Record) ycsb.Status {
	return c.write(ctx, UpdateNumeric, UpdateText, table, key, record)
}

// Insert writes a new record under key, choosing the encoding like Update.
func (c *Client) Insert(ctx context.Context, table string, key string, record ycsb.Record) ycsb.Status {
	return c.write(ctx, InsertNumeric, InsertText, table, key, record)
}

// Delete removes the record under key.
func (c *Client) Delete(ctx context.Context, table string, key string) ycsb.Status {
	return c.status(ctx, NewDelete(table, key))
}

// StartTransaction opens a transaction anchored at key. Only one transaction
// may be open at a time.
func (c *Client) StartTransaction(ctx context.Context, key string) ycsb.Status {
	if c.inTxn {
		return c.fail(StartTransaction, errors.Annotatef(ErrTransactionOpen, "open at %s, asked for %s", c.txnKey, key))
	}
	st := c.status(ctx, NewControl(StartTransaction, key))
	if st == ycsb.OK {
		c.inTxn = true
		c.txnKey = key
	}
	return st
}

// Commit commits the transaction anchored at key.
func (c *Client) Commit(ctx context.Context, key string) ycsb.Status {
	return c.finish(ctx, Commit, key)
}

// Abort rolls back the transaction anchored at key.
func (c *Client) Abort(ctx context.Context, key string) ycsb.Status {
	return c.finish(ctx, Abort, key)
}

func (c *Client) finish(ctx context.Context, t RequestType, key string) ycsb.Status {
	st := c.status(ctx, NewControl(t, key))
	// The store drops the transaction on either outcome, and a broken
	// connection cannot carry it further.
	c.inTxn = false
	c.txnKey = ""
	return st
}

func (c *Client) write(ctx context.Context, numeric, text RequestType, table, key string, record ycsb.Record) ycsb.Status {
	var req *Request
	if record.IsNumeric() {
		fields := record.Fields()
		if len(fields) > 1 {
			log.Warnf("[mydb] %s %s/%s carries %d numeric fields, only %s is sent", numeric, table, key, len(fields), fields[0])
		}
		v, _ := record[fields[0]].Int64()
		req = NewNumericWrite(numeric, table, key, fields[0], v)
	} else {
		req = NewTextWrite(text, table, key, record.TextMap())
	}
	return c.status(ctx, req)
}

// status sends a request whose only expected reply is a status.
func (c *Client) status(ctx context.Context, req *Request) ycsb.Status {
	resp, err := c.call(ctx, req)
	if err != nil {
		return c.fail(req.Type, err)
	}
	if resp.Type != StatusResult {
		return c.fail(req.Type, errors.Annotatef(ErrUnexpectedResponseShape, "%s answered with %s", req.Type, resp.Type))
	}
	if !resp.OK {
		return c.fail(req.Type, errors.Annotatef(ErrRemoteError, "%s %s/%s", req.Type, req.Table, req.Key))
	}
	c.succeed(req.Type)
	return ycsb.OK
}

func (c *Client) succeed(t RequestType) {
	observe(t, ycsb.OK)
}

func (c *Client) fail(t RequestType, err error) ycsb.Status {
	c.err = err
	observe(t, ycsb.Error)
	switch errors.Cause(err) {
	case ErrRemoteError:
		log.Debugf("[mydb] %v", err)
	case ErrChannelBroken:
	default:
		log.Warnf("[mydb] %v", err)
	}
	return ycsb.Error
}

// call performs one request/response exchange.
func (c *Client) call(ctx context.Context, req *Request) (*Response, error) {
	if c.conn == nil {
		return nil, errors.Annotatef(ErrChannelBroken, "%s not sent", req.Type)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Annotatef(ErrTransportFailure, "%s not sent: %v", req.Type, err)
	}

	buf := c.bufs.Get()
	defer func() { c.bufs.Put(buf) }()

	payload, err := AppendRequest(buf, req)
	if err != nil {
		return nil, err
	}
	buf = payload

	if err := c.conn.SetDeadline(c.deadline(ctx)); err != nil {
		return nil, c.breakConn(req.Type, "set deadline", err)
	}
	if err := c.framer.writeFrame(payload); err != nil {
		return nil, c.breakConn(req.Type, "write", err)
	}

	frame, err := c.framer.readFrame(buf[len(buf):])
	if err != nil {
		brokenErr := c.breakConn(req.Type, "read", err)
		if errors.Cause(err) == ErrMalformedMessage {
			// a bad frame header loses the stream position too
			return nil, err
		}
		return nil, brokenErr
	}
	if cap(frame) > cap(buf) {
		buf = frame
	}

	resp, err := DecodeResponse(frame)
	if err != nil {
		return nil, errors.Annotatef(err, "reply to %s", req.Type)
	}
	return resp, nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	var d time.Time
	if c.cfg.Timeout > 0 {
		d = time.Now().Add(c.cfg.Timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (d.IsZero() || ctxDeadline.Before(d)) {
		d = ctxDeadline
	}
	return d
}

// breakConn closes the connection after a transport failure. The remainder
// of a half-read reply would otherwise be taken as the answer to the next
// request.
func (c *Client) breakConn(t RequestType, what string, cause error) error {
	c.Close()
	c.inTxn = false
	return errors.Annotatef(ErrTransportFailure, "%s %s: %v", what, t, cause)
}

// Package mydbtest provides an in-process mydb store for tests. It speaks the
// same wire protocol as a real store and can be scripted to fail.
package mydbtest

import (
	"bufio"
	"io"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/mydb-bench/go-ycsb/db/mydb"
	"github.com/ngaut/log"
	"github.com/pingcap/errors"
)

type record map[string][]byte

type snapshot struct {
	table string
	key   string
	rec   record // nil when the record did not exist
}

// session is the transaction state of one connection.
type session struct {
	open bool
	key  string
	undo []snapshot
}

// Server is a fake store keeping its tables in memory.
type Server struct {
	mu sync.Mutex

	tables   map[string]map[string]record
	requests []*mydb.Request

	failNext  int
	dropAfter int
	handler   func(*mydb.Request) *mydb.Response
	raw       bool

	ln    net.Listener
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// NewServer creates an empty store.
func NewServer() *Server {
	return &Server{
		tables:    make(map[string]map[string]record),
		dropAfter: -1,
		conns:     make(map[net.Conn]struct{}),
	}
}

// SetRaw switches to unframed messages, one message per read.
func (s *Server) SetRaw(raw bool) {
	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
}

// Listen serves connections on a unix socket at path until Close.
func (s *Server) Listen(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return errors.Annotatef(err, "remove stale socket %s", path)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return errors.Annotatef(err, "listen on %s", path)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			s.serve(conn)
		}
	}()
	return nil
}

// Pipe returns the client end of an in-memory connection served by s.
func (s *Server) Pipe() net.Conn {
	client, server := net.Pipe()
	s.serve(server)
	return client
}

// Close stops listening and closes every open connection.
func (s *Server) Close() error {
	s.mu.Lock()
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return err
}

// Put stores a text field.
func (s *Server) Put(table, key, field string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.record(table, key, true)
	rec[field] = append([]byte{}, value...)
}

// PutNumeric stores a numeric field.
func (s *Server) PutNumeric(table, key, field string, v int64) {
	s.Put(table, key, field, strconv.AppendInt(nil, v, 10))
}

// Get returns a stored field.
func (s *Server) Get(table, key, field string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.record(table, key, false)
	if rec == nil {
		return nil, false
	}
	v, ok := rec[field]
	return v, ok
}

// Numeric returns a stored field parsed as an integer.
func (s *Server) Numeric(table, key, field string) (int64, bool) {
	v, ok := s.Get(table, key, field)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(string(v), 10, 64)
	return n, err == nil
}

// FailNext answers the next n requests with a failed status without
// applying them.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	s.failNext = n
	s.mu.Unlock()
}

// DropAfter closes the connection instead of answering once n more requests
// have been answered. A negative n disables it.
func (s *Server) DropAfter(n int) {
	s.mu.Lock()
	s.dropAfter = n
	s.mu.Unlock()
}

// Handle installs h ahead of the normal processing. A nil reply from h falls
// back to the store. h runs with the store locked and must not call s.
func (s *Server) Handle(h func(*mydb.Request) *mydb.Response) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// Requests returns every request received so far, in order.
func (s *Server) Requests() []*mydb.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*mydb.Request(nil), s.requests...)
}

// Count returns how many requests of kind t were received.
func (s *Server) Count(t mydb.RequestType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, req := range s.requests {
		if req.Type == t {
			n++
		}
	}
	return n
}

func (s *Server) serve(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	raw := s.raw
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
			conn.Close()
		}()

		sess := &session{}
		r := bufio.NewReader(conn)
		buf := make([]byte, 64*1024)
		for {
			var (
				payload []byte
				err     error
			)
			if raw {
				var n int
				n, err = conn.Read(buf)
				payload = buf[:n]
			} else {
				payload, err = mydb.ReadDelimited(r, buf, 0)
			}
			if err != nil {
				if err != io.EOF {
					log.Debugf("[mydbtest] read: %v", err)
				}
				return
			}

			req, err := mydb.DecodeRequest(payload)
			if err != nil {
				log.Debugf("[mydbtest] decode: %v", err)
				return
			}
			resp, ok := s.process(sess, req)
			if !ok {
				return
			}
			out, err := mydb.EncodeResponse(resp)
			if err != nil {
				log.Debugf("[mydbtest] encode: %v", err)
				return
			}
			if raw {
				// an empty reply has nothing to put on the wire
				if len(out) > 0 {
					_, err = conn.Write(out)
				}
			} else {
				err = mydb.WriteDelimited(conn, out)
			}
			if err != nil {
				return
			}
		}
	}()
}

// process answers one request. It returns false when the connection should
// be dropped instead.
func (s *Server) process(sess *session, req *mydb.Request) (*mydb.Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if s.dropAfter == 0 {
		s.dropAfter = -1
		return nil, false
	}
	if s.dropAfter > 0 {
		s.dropAfter--
	}
	if s.failNext > 0 {
		s.failNext--
		return mydb.NewStatusResponse(false), true
	}
	if s.handler != nil {
		if resp := s.handler(req); resp != nil {
			return resp, true
		}
	}
	return s.apply(sess, req), true
}

func (s *Server) apply(sess *session, req *mydb.Request) *mydb.Response {
	switch req.Type {
	case mydb.ReadNumeric:
		rec := s.record(req.Table, req.Key, false)
		if rec == nil || len(req.Fields) == 0 {
			return mydb.NewStatusResponse(false)
		}
		n, err := strconv.ParseInt(string(rec[req.Fields[0]]), 10, 64)
		if err != nil {
			return mydb.NewStatusResponse(false)
		}
		return mydb.NewLongResponse(n)
	case mydb.ReadText:
		rec := s.record(req.Table, req.Key, false)
		if rec == nil {
			return mydb.NewStatusResponse(false)
		}
		out := make(map[string][]byte, len(req.Fields))
		for _, f := range req.Fields {
			if v, ok := rec[f]; ok {
				out[f] = append([]byte{}, v...)
			}
		}
		return mydb.NewTextResponse(out)
	case mydb.UpdateNumeric, mydb.UpdateText:
		if s.record(req.Table, req.Key, false) == nil {
			return mydb.NewStatusResponse(false)
		}
		s.write(sess, req)
		return mydb.NewStatusResponse(true)
	case mydb.InsertNumeric, mydb.InsertText:
		if s.record(req.Table, req.Key, false) != nil {
			return mydb.NewStatusResponse(false)
		}
		s.write(sess, req)
		return mydb.NewStatusResponse(true)
	case mydb.Delete:
		if s.record(req.Table, req.Key, false) == nil {
			return mydb.NewStatusResponse(false)
		}
		s.remember(sess, req.Table, req.Key)
		delete(s.tables[req.Table], req.Key)
		return mydb.NewStatusResponse(true)
	case mydb.StartTransaction:
		if sess.open {
			return mydb.NewStatusResponse(false)
		}
		sess.open, sess.key, sess.undo = true, req.Key, nil
		return mydb.NewStatusResponse(true)
	case mydb.Commit, mydb.Abort:
		if !sess.open || sess.key != req.Key {
			return mydb.NewStatusResponse(false)
		}
		if req.Type == mydb.Abort {
			s.rollback(sess)
		}
		sess.open, sess.key, sess.undo = false, "", nil
		return mydb.NewStatusResponse(true)
	}
	return mydb.NewStatusResponse(false)
}

func (s *Server) write(sess *session, req *mydb.Request) {
	s.remember(sess, req.Table, req.Key)
	rec := s.record(req.Table, req.Key, true)
	if req.Type == mydb.UpdateNumeric || req.Type == mydb.InsertNumeric {
		rec[req.LongField] = strconv.AppendInt(nil, req.LongRow, 10)
		return
	}
	for f, v := range req.TextRow {
		rec[f] = append([]byte{}, v...)
	}
}

// remember saves the record before its first change in a transaction.
func (s *Server) remember(sess *session, table, key string) {
	if !sess.open {
		return
	}
	for _, snap := range sess.undo {
		if snap.table == table && snap.key == key {
			return
		}
	}
	snap := snapshot{table: table, key: key}
	if rec := s.record(table, key, false); rec != nil {
		snap.rec = make(record, len(rec))
		for f, v := range rec {
			snap.rec[f] = v
		}
	}
	sess.undo = append(sess.undo, snap)
}

func (s *Server) rollback(sess *session) {
	for i := len(sess.undo) - 1; i >= 0; i-- {
		snap := sess.undo[i]
		if snap.rec == nil {
			delete(s.tables[snap.table], snap.key)
			continue
		}
		s.tables[snap.table][snap.key] = snap.rec
	}
}

func (s *Server) record(table, key string, create bool) record {
	t, ok := s.tables[table]
	if !ok {
		if !create {
			return nil
		}
		t = make(map[string]record)
		s.tables[table] = t
	}
	rec, ok := t[key]
	if !ok && create {
		rec = make(record)
		t[key] = rec
	}
	return rec
}

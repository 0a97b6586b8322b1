package mydb

import (
	"github.com/pingcap/errors"
)

// Errors reported by the protocol client. They are collapsed into a
// ycsb.Status before reaching the harness; use errors.Cause on Client.Err to
// classify the last failure.
var (
	// ErrTransportFailure means the socket could not be written or read.
	ErrTransportFailure = errors.New("mydb: transport failure")
	// ErrMalformedMessage means a frame could not be decoded.
	ErrMalformedMessage = errors.New("mydb: malformed message")
	// ErrUnexpectedResponseShape means the reply kind does not fit the request.
	ErrUnexpectedResponseShape = errors.New("mydb: unexpected response shape")
	// ErrRemoteError means the store answered with a failed status.
	ErrRemoteError = errors.New("mydb: remote error")
	// ErrUnsupported is returned for operations the protocol has no message for.
	ErrUnsupported = errors.New("mydb: unsupported operation")
	// ErrChannelBroken means an earlier transport failure closed the connection.
	ErrChannelBroken = errors.New("mydb: channel broken")
	// ErrTransactionOpen means a transaction is already open on this client.
	ErrTransactionOpen = errors.New("mydb: transaction already open")
)

func malformed(format string, args ...interface{}) error {
	return errors.Annotatef(ErrMalformedMessage, format, args...)
}

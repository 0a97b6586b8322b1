package mydb

import (
	"bufio"
	"encoding/binary"
	"io"
	"net"

	"github.com/pingcap/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Framing modes.
const (
	// FramingDelimited prefixes every message with its varint length.
	FramingDelimited = "delimited"
	// FramingRaw sends bare messages and takes whatever a single read returns
	// as the reply. A false status encodes to zero bytes and never arrives,
	// so raw clients always run with a read deadline.
	FramingRaw = "raw"
)

// WriteDelimited writes payload preceded by its varint length. An empty
// payload is sent as the bare header: a zero-length write would block on a
// synchronous pipe until the peer reads again.
func WriteDelimited(w io.Writer, payload []byte) error {
	var hdr [binary.MaxVarintLen64]byte
	bufs := net.Buffers{protowire.AppendVarint(hdr[:0], uint64(len(payload)))}
	if len(payload) > 0 {
		bufs = append(bufs, payload)
	}
	_, err := bufs.WriteTo(w)
	return err
}

// ReadDelimited reads one length-prefixed message. The payload is stored in
// buf when it fits, otherwise a larger slice is allocated. Messages longer
// than maxSize are rejected as malformed.
func ReadDelimited(r *bufio.Reader, buf []byte, maxSize int) ([]byte, error) {
	size, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && size > uint64(maxSize) {
		return nil, malformed("frame of %d bytes exceeds limit %d", size, maxSize)
	}
	if uint64(cap(buf)) < size {
		buf = make([]byte, size)
	}
	buf = buf[:size]
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readUvarint(r io.ByteReader) (uint64, error) {
	var x uint64
	for i := 0; i < binary.MaxVarintLen64; i++ {
		c, err := r.ReadByte()
		if err != nil {
			if i > 0 && err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		x |= uint64(c&0x7f) << (7 * uint(i))
		if c < 0x80 {
			return x, nil
		}
	}
	return 0, malformed("frame length overflows 64 bits")
}

type framer interface {
	writeFrame(payload []byte) error
	// readFrame returns the next message, possibly backed by buf.
	readFrame(buf []byte) ([]byte, error)
}

type delimitedFramer struct {
	w       io.Writer
	r       *bufio.Reader
	maxSize int
}

func (f *delimitedFramer) writeFrame(payload []byte) error {
	return WriteDelimited(f.w, payload)
}

func (f *delimitedFramer) readFrame(buf []byte) ([]byte, error) {
	return ReadDelimited(f.r, buf, f.maxSize)
}

type rawFramer struct {
	rw       io.ReadWriter
	readSize int
}

func (f *rawFramer) writeFrame(payload []byte) error {
	_, err := f.rw.Write(payload)
	return err
}

func (f *rawFramer) readFrame(buf []byte) ([]byte, error) {
	if cap(buf) < f.readSize {
		buf = make([]byte, f.readSize)
	}
	buf = buf[:f.readSize]
	n, err := f.rw.Read(buf)
	if n == 0 && err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func newFramer(mode string, rw io.ReadWriter, maxSize int, readSize int) (framer, error) {
	switch mode {
	case FramingDelimited, "":
		return &delimitedFramer{w: rw, r: bufio.NewReader(rw), maxSize: maxSize}, nil
	case FramingRaw:
		return &rawFramer{rw: rw, readSize: readSize}, nil
	default:
		return nil, errors.Errorf("unknown mydb framing %q", mode)
	}
}

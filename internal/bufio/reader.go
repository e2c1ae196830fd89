// Package bufio provides the line-oriented readers the message scanner
// works on: one over an in-memory message and one over any io.Reader.
package bufio

import (
	_bufio "bufio"
	"errors"
	"io"
)

var ErrBufferFull = _bufio.ErrBufferFull

var errUnreadAtStart = errors.New("bufio: UnreadByte at beginning of input")

// Reader is a byte reader that can return whole lines without copying.
type Reader interface {
	io.Reader
	io.ByteScanner
	// ReadUpTo reads until the first occurrence of delim, which is
	// included. stable reports whether the returned slice stays valid
	// after further reads. At the end of input the remaining bytes are
	// returned along with io.EOF.
	ReadUpTo(delim byte) (line []byte, stable bool, err error)
}

// BytesReader reads from a byte slice. Lines it returns are subslices of
// the input and stay valid.
type BytesReader struct {
	b   []byte
	pos int
}

func NewBytesReader(b []byte) *BytesReader {
	return &BytesReader{b: b}
}

func (r *BytesReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}

func (r *BytesReader) ReadByte() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	c := r.b[r.pos]
	r.pos++
	return c, nil
}

func (r *BytesReader) UnreadByte() error {
	if r.pos <= 0 {
		return errUnreadAtStart
	}
	r.pos--
	return nil
}

func (r *BytesReader) ReadUpTo(delim byte) ([]byte, bool, error) {
	rest := r.b[r.pos:]
	for i, c := range rest {
		if c == delim {
			r.pos += i + 1
			return rest[:i+1], true, nil
		}
	}
	r.pos = len(r.b)
	return rest, true, io.EOF
}

// Len returns the number of unread bytes.
func (r *BytesReader) Len() int {
	return len(r.b) - r.pos
}

var _ Reader = &BytesReader{}

// BufferWrapper adapts a bufio.Reader. Lines it returns point into the
// internal buffer and are overwritten by the next read.
type BufferWrapper struct {
	*_bufio.Reader
}

func (w *BufferWrapper) ReadUpTo(delim byte) ([]byte, bool, error) {
	b, err := w.ReadSlice(delim)
	return b, false, err
}

var _ Reader = &BufferWrapper{}

// NewReader returns r itself if it already implements Reader, and wraps
// it in a bufio.Reader otherwise.
func NewReader(r io.Reader) Reader {
	switch r := r.(type) {
	case Reader:
		return r
	case *_bufio.Reader:
		return &BufferWrapper{Reader: r}
	}
	return &BufferWrapper{Reader: _bufio.NewReader(r)}
}

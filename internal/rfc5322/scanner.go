// Package rfc5322 splits a message into its header fields and body and
// writes them back.
package rfc5322

import (
	"io"

	"github.com/moriyoshi/mailaddr/internal/bufio"
)

// ScannerHandler receives the parts of a message in order.
type ScannerHandler interface {
	// HandleStraggler is called for continuation lines that precede the
	// first field.
	HandleStraggler([]byte) error
	HandleField(*Field) error
	HandleBody(bufio.Reader) error
}

func readLineSlice(r bufio.Reader) ([]byte, bool, error) {
	l, stable, err := r.ReadUpTo('\n')
	if err == bufio.ErrBufferFull {
		err = nil
		if l[len(l)-1] == '\r' {
			l = l[:len(l)-1]
			err = r.UnreadByte()
		}
	}
	if len(l) == 0 {
		return nil, true, err
	}
	if l[len(l)-1] == '\n' {
		if len(l) >= 2 && l[len(l)-2] == '\r' {
			l = l[:len(l)-2]
		} else {
			l = l[:len(l)-1]
		}
	}
	return l, stable, err
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t'
}

// Scan reads header fields up to the first empty line and hands the rest
// of r to HandleBody. Lines may end with CRLF or a bare LF.
func Scan(r bufio.Reader, handler ScannerHandler) error {
	var chunks [][]byte
	flush := func() error {
		if len(chunks) == 0 {
			return nil
		}
		f := &Field{Lines: chunks}
		chunks = nil
		return handler.HandleField(f)
	}
	for {
		l, stable, err := readLineSlice(r)
		eof := false
		if err != nil {
			if err != io.EOF {
				return err
			}
			eof = true
		}
		if len(l) > 0 && isWhitespace(l[0]) {
			if len(chunks) == 0 {
				if err := handler.HandleStraggler(l); err != nil {
					return err
				}
				if eof {
					break
				}
				continue
			}
		} else {
			if err := flush(); err != nil {
				return err
			}
			if len(l) == 0 {
				break
			}
		}
		if !stable {
			l = append([]byte(nil), l...)
		}
		chunks = append(chunks, l)
		if eof {
			break
		}
	}
	if err := flush(); err != nil {
		return err
	}
	return handler.HandleBody(r)
}

type functionBackedScannerHandler struct {
	StragglerHandler func([]byte) error
	FieldHandler     func(*Field) error
	BodyHandler      func(bufio.Reader) error
}

func (h *functionBackedScannerHandler) HandleStraggler(l []byte) error {
	if h.StragglerHandler == nil {
		return nil
	}
	return h.StragglerHandler(l)
}

func (h *functionBackedScannerHandler) HandleField(f *Field) error {
	if h.FieldHandler == nil {
		return nil
	}
	return h.FieldHandler(f)
}

func (h *functionBackedScannerHandler) HandleBody(r bufio.Reader) error {
	if h.BodyHandler == nil {
		return nil
	}
	return h.BodyHandler(r)
}

// ScannerHandlerFromFunctions builds a ScannerHandler out of callbacks;
// nil callbacks ignore their part.
func ScannerHandlerFromFunctions(
	stragglerHandler func([]byte) error,
	fieldHandler func(*Field) error,
	bodyHandler func(bufio.Reader) error,
) ScannerHandler {
	return &functionBackedScannerHandler{
		StragglerHandler: stragglerHandler,
		FieldHandler:     fieldHandler,
		BodyHandler:      bodyHandler,
	}
}

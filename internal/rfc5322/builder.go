package rfc5322

import (
	"io"

	"github.com/moriyoshi/mailaddr/internal/bufio"
)

// Builder is a ScannerHandler writing the message back out with CRLF line
// endings.
type Builder struct {
	io.Writer
	shortWrite bool
}

func (bl *Builder) write(b []byte) error {
	n, err := bl.Writer.Write(b)
	if n != len(b) {
		bl.shortWrite = true
	}
	if err == nil && bl.shortWrite {
		err = io.ErrShortWrite
	}
	return err
}

func (bl *Builder) HandleStraggler(b []byte) error {
	if err := bl.write(b); err != nil {
		return err
	}
	return bl.write(crlf)
}

func (bl *Builder) HandleField(f *Field) error {
	for _, l := range f.Lines {
		if err := bl.write(l); err != nil {
			return err
		}
		if err := bl.write(crlf); err != nil {
			return err
		}
	}
	return nil
}

func (bl *Builder) HandleBody(r bufio.Reader) error {
	if err := bl.write(crlf); err != nil {
		return err
	}
	_, err := io.Copy(bl.Writer, r)
	return err
}

func (bl *Builder) ShortWrite() bool {
	return bl.shortWrite
}

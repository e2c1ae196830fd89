package rfc5322

import (
	"bytes"
)

var crlf = []byte{'\r', '\n'}

// Field is a header field as it appeared in the message: the first line
// starting with the field name, followed by its continuation lines. Line
// terminators are not included.
type Field struct {
	Lines [][]byte
}

// NewField builds a field from a name and a value. The value is split at
// CRLF into continuation lines; a single space separates it from the
// colon.
func NewField(name string, value []byte) *Field {
	lines := bytes.Split(value, crlf)
	first := make([]byte, 0, len(name)+2+len(lines[0]))
	first = append(first, name...)
	first = append(first, ':', ' ')
	lines[0] = append(first, lines[0]...)
	return &Field{Lines: lines}
}

func (f *Field) colon() int {
	if len(f.Lines) == 0 {
		return -1
	}
	return bytes.IndexByte(f.Lines[0], ':')
}

// Valid reports whether the first line has a colon.
func (f *Field) Valid() bool {
	return f.colon() >= 0
}

// Name returns the field name, or nil if the field has no colon.
func (f *Field) Name() []byte {
	i := f.colon()
	if i < 0 {
		return nil
	}
	return bytes.TrimRight(f.Lines[0][:i], " \t")
}

// Value returns the raw field body, continuation lines joined with CRLF
// so that the folding is kept.
func (f *Field) Value() []byte {
	i := f.colon()
	if i < 0 {
		return nil
	}
	n := len(f.Lines[0]) - i - 1
	for _, l := range f.Lines[1:] {
		n += len(crlf) + len(l)
	}
	b := make([]byte, 0, n)
	b = append(b, f.Lines[0][i+1:]...)
	for _, l := range f.Lines[1:] {
		b = append(b, crlf...)
		b = append(b, l...)
	}
	return b
}

// Is reports whether the field is named name, ignoring case.
func (f *Field) Is(name string) bool {
	return bytes.EqualFold(f.Name(), []byte(name))
}

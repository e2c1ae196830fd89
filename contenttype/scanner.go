package contenttype

import (
	"fmt"

	"github.com/moriyoshi/mailaddr/internal/rfc822"
)

// ParamScanner reads the parameters of a Content-Type value one at a time.
// Like bufio.Scanner, it is driven by Scan and cannot be rewound.
type ParamScanner struct {
	p     *rfc822.Parser
	key   []byte
	value []byte
	err   error
	done  bool
}

// NewParamScanner parses the type/subtype of b and returns the type along
// with a scanner positioned at the first parameter.
func NewParamScanner(b []byte) (string, *ParamScanner, error) {
	p := rfc822.NewParser(b)
	ct, err := parseType(p)
	if err != nil {
		return "", nil, err
	}
	return ct.Type, &ParamScanner{p: p}, nil
}

// Scan advances to the next parameter. It returns false at the end of the
// input or on a malformed parameter; Err tells the two apart.
func (s *ParamScanner) Scan() bool {
	if s.done {
		return false
	}
	offset := s.p.Offset()
	key, value, ok, err := s.p.ParseContentParam()
	if err != nil {
		s.done = true
		s.err = fmt.Errorf("%w at offset %d: %w", ErrInvalidParameter, offset, err)
		return false
	}
	if !ok {
		s.done = true
		return false
	}
	s.key, s.value = key, value
	return true
}

// Key returns the attribute of the current parameter. The slice is valid
// until the next call to Scan.
func (s *ParamScanner) Key() []byte {
	return s.key
}

// Value returns the value of the current parameter, unquoted.
func (s *ParamScanner) Value() []byte {
	return s.value
}

func (s *ParamScanner) Err() error {
	return s.err
}

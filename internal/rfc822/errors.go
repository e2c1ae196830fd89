package rfc822

import (
	"errors"
	"fmt"
)

var (
	ErrUnterminatedComment       = errors.New("unterminated comment")
	ErrUnterminatedQuotedString  = errors.New("unterminated quoted-string")
	ErrUnterminatedDomainLiteral = errors.New("unterminated domain-literal")
	ErrTrailingEscape            = errors.New("backslash at end of input")
	ErrUnexpectedEnd             = errors.New("unexpected end of input")
)

// UnexpectedCharError is returned when a production requires a byte that is
// not present at the cursor.
type UnexpectedCharError struct {
	Offset int
	Char   byte
	Want   string
}

func (e *UnexpectedCharError) Error() string {
	return fmt.Sprintf("unexpected %q at offset %d, expecting %s", e.Char, e.Offset, e.Want)
}

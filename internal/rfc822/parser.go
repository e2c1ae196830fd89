// Package rfc822 implements the low-level token scanner for RFC 822 / RFC 2822
// structured header fields.
//
// Every scanning operation advances the cursor and reports a tri-state result
// as (more, err): a non-nil err means the construct at the cursor is
// malformed, otherwise more tells whether input remains after the token and
// the whitespace that followed it.
//
// The scanner is lenient on purpose. It accepts whitespace and comments around
// the dots of a dot-atom, dots inside phrases and MIME tokens, and removes
// folding line breaks inside quoted strings.
package rfc822

import (
	"bytes"
)

// Checkpoint is a saved cursor position.
type Checkpoint int

// Parser is a cursor over an immutable byte slice.
type Parser struct {
	data    []byte
	pos     int
	comment *[]byte
}

// NewParser returns a Parser positioned at the start of data.
func NewParser(data []byte) *Parser {
	return &Parser{data: data}
}

// Save returns the current cursor position.
func (p *Parser) Save() Checkpoint {
	return Checkpoint(p.pos)
}

// Restore moves the cursor back to a position obtained from Save.
func (p *Parser) Restore(c Checkpoint) {
	p.pos = int(c)
}

// AtEnd reports whether the whole input has been consumed.
func (p *Parser) AtEnd() bool {
	return p.pos >= len(p.data)
}

// Peek returns the byte at the cursor, or 0 at the end of input.
func (p *Parser) Peek() byte {
	if p.pos >= len(p.data) {
		return 0
	}
	return p.data[p.pos]
}

// Advance moves the cursor one byte forward.
func (p *Parser) Advance() {
	if p.pos < len(p.data) {
		p.pos++
	}
}

// Offset returns the cursor position relative to the start of input.
func (p *Parser) Offset() int {
	return p.pos
}

// Rest returns the unconsumed input.
func (p *Parser) Rest() []byte {
	return p.data[p.pos:]
}

// CaptureComments makes the parser store the unescaped text of every comment
// it skips into *buf, replacing what was there before. A nil buf stops the
// capture.
func (p *Parser) CaptureComments(buf *[]byte) {
	p.comment = buf
}

func (p *Parser) more() bool {
	return p.pos < len(p.data)
}

func (p *Parser) unexpected(want string) error {
	if p.pos >= len(p.data) {
		return ErrUnexpectedEnd
	}
	return &UnexpectedCharError{Offset: p.pos, Char: p.data[p.pos], Want: want}
}

func (p *Parser) appendComment(b []byte) {
	if p.comment != nil {
		*p.comment = append(*p.comment, b...)
	}
}

// SkipComment skips a possibly nested parenthesized comment. The cursor must
// be at '('.
func (p *Parser) SkipComment() (bool, error) {
	if p.Peek() != '(' {
		return false, p.unexpected("'('")
	}
	if p.comment != nil {
		*p.comment = (*p.comment)[:0]
	}
	p.pos++
	start := p.pos
	depth := 1
	for ; p.pos < len(p.data); p.pos++ {
		switch p.data[p.pos] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				p.appendComment(p.data[start:p.pos])
				p.pos++
				return p.more(), nil
			}
		case '\\':
			p.appendComment(p.data[start:p.pos])
			start = p.pos + 1
			p.pos++
			if p.pos == len(p.data) {
				return false, ErrTrailingEscape
			}
		}
	}
	return false, ErrUnterminatedComment
}

// SkipLWSP skips spaces, tabs, line breaks and comments.
func (p *Parser) SkipLWSP() (bool, error) {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			p.pos++
			continue
		}
		if c != '(' {
			break
		}
		if _, err := p.SkipComment(); err != nil {
			return false, err
		}
	}
	return p.more(), nil
}

// ParseAtom appends an atom to buf.
func (p *Parser) ParseAtom(buf *bytes.Buffer) (bool, error) {
	if !p.more() || !IsAtext(p.data[p.pos]) {
		return false, p.unexpected("atom")
	}
	start := p.pos
	for p.pos++; p.pos < len(p.data) && IsAtext(p.data[p.pos]); p.pos++ {
	}
	buf.Write(p.data[start:p.pos])
	return p.SkipLWSP()
}

// ParseDotAtom appends a dot-atom to buf. Whitespace and comments are
// allowed around the dots, as RFC 822 did.
func (p *Parser) ParseDotAtom(buf *bytes.Buffer) (bool, error) {
	if !p.more() || !IsAtext(p.data[p.pos]) {
		return false, p.unexpected("atom")
	}
	start := p.pos
	for p.pos++; p.pos < len(p.data); {
		if IsAtext(p.data[p.pos]) {
			p.pos++
			continue
		}
		buf.Write(p.data[start:p.pos])

		if more, err := p.SkipLWSP(); err != nil || !more {
			return more, err
		}
		if p.data[p.pos] != '.' {
			return true, nil
		}
		p.pos++
		buf.WriteByte('.')

		if more, err := p.SkipLWSP(); err != nil || !more {
			return more, err
		}
		start = p.pos
	}
	buf.Write(p.data[start:p.pos])
	return false, nil
}

// ParseMimeToken appends a MIME token to buf. Dots are accepted inside
// tokens. An empty token is not an error.
func (p *Parser) ParseMimeToken(buf *bytes.Buffer) (bool, error) {
	start := p.pos
	for ; p.pos < len(p.data); p.pos++ {
		c := p.data[p.pos]
		if !IsTokenChar(c) && c != '.' {
			break
		}
	}
	buf.Write(p.data[start:p.pos])
	return p.SkipLWSP()
}

// ParseQuotedString appends the unescaped content of a quoted string to
// buf. The cursor must be at '"'. A (CR)LF inside the string is folding and
// is dropped.
func (p *Parser) ParseQuotedString(buf *bytes.Buffer) (bool, error) {
	if p.Peek() != '"' {
		return false, p.unexpected("'\"'")
	}
	p.pos++
	start := p.pos
	for ; p.pos < len(p.data); p.pos++ {
		switch p.data[p.pos] {
		case '"':
			buf.Write(p.data[start:p.pos])
			p.pos++
			return p.SkipLWSP()
		case '\n':
			end := p.pos
			if end > start && p.data[end-1] == '\r' {
				end--
			}
			buf.Write(p.data[start:end])
			start = p.pos + 1
		case '\\':
			p.pos++
			if p.pos == len(p.data) {
				return false, ErrTrailingEscape
			}
			buf.Write(p.data[start : p.pos-1])
			start = p.pos
		}
	}
	return false, ErrUnterminatedQuotedString
}

// parseAtomOrDot is like ParseDotAtom except that whitespace ends the word.
func (p *Parser) parseAtomOrDot(buf *bytes.Buffer) (bool, error) {
	start := p.pos
	for ; p.pos < len(p.data); p.pos++ {
		c := p.data[p.pos]
		if !IsAtext(c) && c != '.' {
			break
		}
	}
	buf.Write(p.data[start:p.pos])
	return p.SkipLWSP()
}

// ParsePhrase appends a phrase to buf, joining its words with a single
// space. Stray dots between words are accepted (obs-phrase).
//
//	phrase     = 1*word / obs-phrase
//	word       = atom / quoted-string
//	obs-phrase = word *(word / "." / CFWS)
func (p *Parser) ParsePhrase(buf *bytes.Buffer) (bool, error) {
	if !p.more() {
		return false, nil
	}
	if p.data[p.pos] == '.' {
		return false, p.unexpected("word")
	}
	for {
		var more bool
		var err error
		if p.data[p.pos] == '"' {
			more, err = p.ParseQuotedString(buf)
		} else {
			more, err = p.parseAtomOrDot(buf)
		}
		if err != nil || !more {
			return more, err
		}
		c := p.data[p.pos]
		if !IsAtext(c) && c != '"' && c != '.' {
			break
		}
		buf.WriteByte(' ')
	}
	return p.SkipLWSP()
}

// ParseDomainLiteral appends a bracketed domain literal to buf, brackets and
// escapes included. The cursor must be at '['.
func (p *Parser) ParseDomainLiteral(buf *bytes.Buffer) (bool, error) {
	if p.Peek() != '[' {
		return false, p.unexpected("'['")
	}
	start := p.pos
	for ; p.pos < len(p.data); p.pos++ {
		switch p.data[p.pos] {
		case '\\':
			p.pos++
			if p.pos == len(p.data) {
				return false, ErrTrailingEscape
			}
		case ']':
			p.pos++
			buf.Write(p.data[start:p.pos])
			return p.SkipLWSP()
		}
	}
	return false, ErrUnterminatedDomainLiteral
}

// ParseDomain appends the domain following an '@' to buf. The cursor must be
// at '@', which is consumed but not appended.
func (p *Parser) ParseDomain(buf *bytes.Buffer) (bool, error) {
	if p.Peek() != '@' {
		return false, p.unexpected("'@'")
	}
	p.pos++
	more, err := p.SkipLWSP()
	if err != nil {
		return false, err
	}
	if !more {
		return false, ErrUnexpectedEnd
	}
	if p.data[p.pos] == '[' {
		return p.ParseDomainLiteral(buf)
	}
	return p.ParseDotAtom(buf)
}

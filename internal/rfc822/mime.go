package rfc822

import (
	"bytes"
)

// ParseContentType appends "type/subtype" to buf.
func (p *Parser) ParseContentType(buf *bytes.Buffer) (bool, error) {
	if more, err := p.SkipLWSP(); err != nil || !more {
		return false, orUnexpectedEnd(err)
	}

	// main type
	if more, err := p.ParseMimeToken(buf); err != nil || !more {
		return false, orUnexpectedEnd(err)
	}

	if p.data[p.pos] != '/' {
		return false, p.unexpected("'/'")
	}
	p.pos++
	if more, err := p.SkipLWSP(); err != nil || !more {
		return false, orUnexpectedEnd(err)
	}
	buf.WriteByte('/')

	// subtype
	return p.ParseMimeToken(buf)
}

// ParseContentParam parses one parameter of the form
//
//	";" attribute "=" value
//
// ok is false once the input is exhausted. key and value share one backing
// array; key is capped so appending to it never overwrites value. On error
// the partially parsed parameter is still returned.
func (p *Parser) ParseContentParam() (key, value []byte, ok bool, err error) {
	if !p.more() {
		return nil, nil, false, nil
	}
	if p.data[p.pos] != ';' {
		return nil, nil, false, p.unexpected("';'")
	}
	p.pos++

	if more, err := p.SkipLWSP(); err != nil || !more {
		return nil, nil, false, orUnexpectedEnd(err)
	}

	var buf bytes.Buffer
	if more, err := p.ParseMimeToken(&buf); err != nil || !more {
		return nil, nil, false, orUnexpectedEnd(err)
	}
	keyLen := buf.Len()

	if p.data[p.pos] != '=' {
		return nil, nil, false, p.unexpected("'='")
	}
	p.pos++

	more, err := p.SkipLWSP()
	switch {
	case err != nil || !more:
		// broken or missing value
	case p.data[p.pos] == '"':
		_, err = p.ParseQuotedString(&buf)
		unescaped := unescape(buf.Bytes()[keyLen:])
		buf.Truncate(keyLen + len(unescaped))
	case p.data[p.pos] == '=':
		// broken input seen in the wild: name==?utf-8?b?...?=
		start := p.pos
		for ; p.pos < len(p.data); p.pos++ {
			c := p.data[p.pos]
			if c == ';' || c == ' ' || c == '\t' || c == '\r' || c == '\n' {
				break
			}
		}
		buf.Write(p.data[start:p.pos])
	default:
		_, err = p.ParseMimeToken(&buf)
	}

	b := buf.Bytes()
	return b[:keyLen:keyLen], b[keyLen:], true, err
}

// unescape removes backslash escapes from b in place and returns the
// shortened slice. A trailing lone backslash is dropped.
func unescape(b []byte) []byte {
	i := bytes.IndexByte(b, '\\')
	if i < 0 {
		return b
	}
	d := i
	for ; i < len(b); i++ {
		if b[i] == '\\' {
			i++
			if i == len(b) {
				break
			}
		}
		b[d] = b[i]
		d++
	}
	return b[:d]
}

func orUnexpectedEnd(err error) error {
	if err != nil {
		return err
	}
	return ErrUnexpectedEnd
}

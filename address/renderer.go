package address

import (
	"bytes"

	"github.com/moriyoshi/mailaddr/internal/rfc822"
)

// AddressRenderer formats a List back to header text. The zero value writes
// the plain form:
//
//	mailbox@domain
//	name <[route:]mailbox@domain>
//	group: member, member;
type AddressRenderer struct {
	// Wrap is inserted between two entries when the current line would
	// reach WrapLen. WrapLen <= 0 disables wrapping.
	Wrap    []byte
	WrapLen int
	// Quote renders local-parts and names that would not parse back to
	// the same value as quoted strings.
	Quote bool
}

// Write renders l with the zero AddressRenderer.
func Write(l List) string {
	return string((&AddressRenderer{}).AppendList(nil, l))
}

// String renders l.
func (ar *AddressRenderer) String(l List) string {
	return string(ar.AppendList(nil, l))
}

// AppendList appends the rendered list to b.
func (ar *AddressRenderer) AppendList(b []byte, l List) []byte {
	first := true
	members := 0
	for i := range l {
		addr := &l[i]
		if first {
			first = false
		} else {
			b = append(b, ',', ' ')
		}

		switch addr.Kind {
		case GroupStart:
			b = ar.wrap(b, len(addr.Name)+2)
			b = ar.appendPhrase(b, addr.Name)
			b = append(b, ':', ' ')
			first = true
			members = 0
		case GroupEnd:
			if members > 0 {
				// cut out the ", "
				b = b[:len(b)-2]
			}
			b = append(b, ';')
			members = 0
		default:
			members++
			b = ar.appendMailbox(b, addr)
		}
	}
	return b
}

func (ar *AddressRenderer) appendMailbox(b []byte, addr *Address) []byte {
	var entry []byte
	if addr.Name == "" && addr.Route == "" {
		entry = ar.appendAddrSpec(entry, addr)
	} else {
		if addr.Name != "" {
			entry = ar.appendPhrase(entry, addr.Name)
			entry = append(entry, ' ')
		}
		entry = append(entry, '<')
		if addr.Route != "" {
			entry = append(entry, addr.Route...)
			entry = append(entry, ':')
		}
		entry = ar.appendAddrSpec(entry, addr)
		entry = append(entry, '>')
	}
	b = ar.wrap(b, len(entry))
	return append(b, entry...)
}

func (ar *AddressRenderer) appendAddrSpec(b []byte, addr *Address) []byte {
	if ar.Quote {
		b = appendAtomOrQuotedString(b, []byte(addr.Mailbox))
	} else {
		b = append(b, addr.Mailbox...)
	}
	b = append(b, '@')
	return append(b, addr.Domain...)
}

func (ar *AddressRenderer) appendPhrase(b []byte, name string) []byte {
	if ar.Quote && !isPhrase([]byte(name)) {
		return appendQuotedString(b, []byte(name))
	}
	return append(b, name...)
}

// wrap appends Wrap if an entry of n bytes would not fit on the current
// line. A trailing space left by the separator is replaced.
func (ar *AddressRenderer) wrap(b []byte, n int) []byte {
	if ar.WrapLen <= 0 || len(b) == 0 {
		return b
	}
	lnl := bytes.LastIndexByte(b, '\n') + 1
	if len(b)+n-lnl < ar.WrapLen {
		return b
	}
	if b[len(b)-1] == ' ' {
		b = b[:len(b)-1]
	}
	return append(b, ar.Wrap...)
}

func isBackslashOrQuote(c byte) bool {
	return c == '\\' || c == '"'
}

// appendQuotedString renders v as an RFC 5322 quoted-string.
func appendQuotedString(b []byte, v []byte) []byte {
	nr := len(b) + len(v) + ((len(v) + 1) >> 1) + 2
	if cap(b) < nr {
		nb := make([]byte, len(b), nr)
		copy(nb, b)
		b = nb
	}
	b = append(b, '"')
	s := 0
	for i := 0; i < len(v); i++ {
		c := v[i]
		if isBackslashOrQuote(c) {
			b = append(b, v[s:i]...)
			b = append(b, '\\', c)
			s = i + 1
		}
	}
	b = append(b, v[s:]...)
	return append(b, '"')
}

// isDotAtom reports whether v reads back unchanged as a dot-atom. Empty and
// doubled dots are tolerated by the parser and therefore accepted here.
func isDotAtom(v []byte) bool {
	if len(v) == 0 || v[0] == '.' {
		return false
	}
	for _, c := range v {
		if c != '.' && !rfc822.IsAtext(c) {
			return false
		}
	}
	return true
}

// isPhrase reports whether v reads back unchanged as a phrase: words of
// atext and dots separated by single spaces.
func isPhrase(v []byte) bool {
	if len(v) == 0 {
		return true
	}
	if v[0] == '.' || v[0] == ' ' || v[len(v)-1] == ' ' {
		return false
	}
	for i, c := range v {
		if c == ' ' {
			if v[i-1] == ' ' {
				return false
			}
			continue
		}
		if c != '.' && !rfc822.IsAtext(c) {
			return false
		}
	}
	return true
}

func appendAtomOrQuotedString(b []byte, v []byte) []byte {
	if isDotAtom(v) {
		return append(b, v...)
	}
	return appendQuotedString(b, v)
}

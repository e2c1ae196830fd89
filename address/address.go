package address

import (
	"fmt"
	"strings"
)

// Kind tells the three shapes of entries apart.
type Kind int

const (
	// Mailbox is an ordinary address.
	Mailbox Kind = iota
	// GroupStart opens a group; Name holds the group's display name.
	GroupStart
	// GroupEnd closes the group opened by the preceding GroupStart.
	GroupEnd
)

func (k Kind) String() string {
	switch k {
	case Mailbox:
		return "mailbox"
	case GroupStart:
		return "group-start"
	case GroupEnd:
		return "group-end"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < Mailbox || k > GroupEnd {
		return nil, fmt.Errorf("invalid address kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "mailbox", "":
		*k = Mailbox
	case "group-start":
		*k = GroupStart
	case "group-end":
		*k = GroupEnd
	default:
		return fmt.Errorf("unknown address kind %q", b)
	}
	return nil
}

// Placeholders substituted for parts that could not be parsed.
const (
	MissingMailbox = "MISSING_MAILBOX"
	MissingDomain  = "MISSING_DOMAIN"
	SyntaxError    = "SYNTAX_ERROR"
	InvalidRoute   = "INVALID_ROUTE"
)

// Address is a single entry of a parsed address header.
//
// A group "grp: a@b, c@d;" is stored flat as a GroupStart entry, one
// Mailbox entry per member and a GroupEnd entry. Groups do not nest.
type Address struct {
	Kind Kind `json:"kind" yaml:"kind"`
	// Name is the display name, or the group name for GroupStart.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Route is the obsolete source route including its leading '@',
	// e.g. "@a.example,@b.example".
	Route   string `json:"route,omitempty" yaml:"route,omitempty"`
	Mailbox string `json:"mailbox,omitempty" yaml:"mailbox,omitempty"`
	Domain  string `json:"domain,omitempty" yaml:"domain,omitempty"`
	// InvalidSyntax is set when any part of the entry was malformed.
	InvalidSyntax bool `json:"invalid_syntax,omitempty" yaml:"invalid_syntax,omitempty"`
}

// IsGroupMarker reports whether a is a GroupStart or GroupEnd entry.
func (a *Address) IsGroupMarker() bool {
	return a.Kind == GroupStart || a.Kind == GroupEnd
}

// Addr returns "mailbox@domain".
func (a *Address) Addr() string {
	if a.IsGroupMarker() {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(a.Mailbox) + len(a.Domain) + 1)
	sb.WriteString(a.Mailbox)
	sb.WriteByte('@')
	sb.WriteString(a.Domain)
	return sb.String()
}

// List is an ordered sequence of entries as produced by the parser.
type List []Address

// String renders the list with the default renderer.
func (l List) String() string {
	return Write(l)
}

// TopLevelCount returns the number of top-level addresses; a group counts
// as one regardless of its members.
func (l List) TopLevelCount() int {
	n := 0
	inGroup := false
	for i := range l {
		switch l[i].Kind {
		case GroupStart:
			n++
			inGroup = true
		case GroupEnd:
			inGroup = false
		default:
			if !inGroup {
				n++
			}
		}
	}
	return n
}

// Mailboxes returns the ordinary entries, group members included.
func (l List) Mailboxes() []Address {
	var r []Address
	for _, a := range l {
		if a.Kind == Mailbox {
			r = append(r, a)
		}
	}
	return r
}

// HasInvalid reports whether any entry is flagged as malformed.
func (l List) HasInvalid() bool {
	for i := range l {
		if l[i].InvalidSyntax {
			return true
		}
	}
	return false
}

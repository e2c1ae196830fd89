package address

import (
	"bytes"
	"errors"

	"github.com/moriyoshi/mailaddr/internal/rfc822"
)

var (
	errNotGroup              = errors.New("not a group")
	errNotNameAddr           = errors.New("not a name-addr")
	errInvalidRoute          = errors.New("invalid route")
	errUnterminatedAngleAddr = errors.New("unclosed angle-addr")
)

// addrParser holds the state of a single parse. addr is the entry under
// construction; hasMailbox and hasDomain tell an absent part from an empty
// one.
type addrParser struct {
	p           *rfc822.Parser
	list        List
	addr        Address
	hasMailbox  bool
	hasDomain   bool
	str         bytes.Buffer
	comment     []byte
	fillMissing bool
}

func parseAddresses(data []byte, maxAddresses int, fillMissing bool) List {
	a := &addrParser{
		p:           rfc822.NewParser(data),
		fillMissing: fillMissing,
	}
	if more, err := a.p.SkipLWSP(); err != nil || !more {
		// no addresses
		return nil
	}
	a.parseAddressList(maxAddresses)
	return a.list
}

func (a *addrParser) addAddress() {
	a.list = append(a.list, a.addr)
	a.addr = Address{}
	a.hasMailbox = false
	a.hasDomain = false
}

func (a *addrParser) addFixedAddress() {
	if !a.hasMailbox {
		if a.fillMissing {
			a.addr.Mailbox = MissingMailbox
		}
		a.addr.InvalidSyntax = true
	}
	if !a.hasDomain {
		if a.fillMissing {
			a.addr.Domain = MissingDomain
		}
		a.addr.InvalidSyntax = true
	}
	a.addAddress()
}

// parseLocalPart parses the local-part into addr.Mailbox.
//
//	local-part     = dot-atom / quoted-string / obs-local-part
//	obs-local-part = word *("." word)
func (a *addrParser) parseLocalPart() (bool, error) {
	var more bool
	var err error
	a.str.Reset()
	if a.p.Peek() == '"' {
		more, err = a.p.ParseQuotedString(&a.str)
	} else {
		more, err = a.p.ParseDotAtom(&a.str)
	}
	if err != nil {
		return false, err
	}
	a.addr.Mailbox = a.str.String()
	a.hasMailbox = true
	return more, nil
}

func (a *addrParser) parseDomain() (bool, error) {
	a.str.Reset()
	more, err := a.p.ParseDomain(&a.str)
	if err != nil {
		return false, err
	}
	a.addr.Domain = a.str.String()
	a.hasDomain = true
	return more, nil
}

// parseDomainList parses an obsolete source route into addr.Route. Entries
// may be separated by commas or by whitespace alone.
//
//	obs-domain-list = "@" domain *(*(CFWS / ",") [CFWS] "@" domain)
func (a *addrParser) parseDomainList() (bool, error) {
	a.str.Reset()
	for {
		if a.p.AtEnd() {
			return false, nil
		}
		if a.p.Peek() != '@' {
			break
		}
		if a.str.Len() > 0 {
			a.str.WriteByte(',')
		}
		a.str.WriteByte('@')
		if more, err := a.p.ParseDomain(&a.str); err != nil || !more {
			return more, err
		}
		for {
			more, err := a.p.SkipLWSP()
			if err != nil || !more || a.p.Peek() != ',' {
				break
			}
			a.p.Advance()
		}
	}
	a.addr.Route = a.str.String()
	return true, nil
}

// parseAngleAddr parses "<" [route ":"] local-part ["@" domain] ">". Running
// out of input before the closing bracket is an error.
func (a *addrParser) parseAngleAddr() (bool, error) {
	a.p.Advance()

	if more, err := a.p.SkipLWSP(); err != nil || !more {
		return false, orUnterminated(err)
	}

	if a.p.Peek() == '@' {
		more, err := a.parseDomainList()
		if err != nil || !more || a.p.Peek() != ':' {
			a.addr.Route = InvalidRoute
			return false, errInvalidRoute
		}
		a.p.Advance()
		if more, err := a.p.SkipLWSP(); err != nil || !more {
			return false, orUnterminated(err)
		}
	}

	if more, err := a.parseLocalPart(); err != nil || !more {
		return false, orUnterminated(err)
	}
	if a.p.Peek() == '@' {
		if more, err := a.parseDomain(); err != nil || !more {
			return false, orUnterminated(err)
		}
	}

	if a.p.Peek() != '>' {
		return false, errUnterminatedAngleAddr
	}
	a.p.Advance()

	return a.p.SkipLWSP()
}

// parseNameAddr parses [display-name] angle-addr. Once the '<' is reached
// the entry is kept whatever follows; a broken angle-addr only marks it.
func (a *addrParser) parseNameAddr() (bool, error) {
	a.str.Reset()
	if more, err := a.p.ParsePhrase(&a.str); err != nil || !more || a.p.Peek() != '<' {
		return false, errNotNameAddr
	}

	// "<address>" without a display name gives an empty name
	a.addr.Name = a.str.String()
	if _, err := a.parseAngleAddr(); err != nil {
		a.addr.Domain = SyntaxError
		a.hasDomain = true
		a.addr.InvalidSyntax = true
	}
	return !a.p.AtEnd(), nil
}

// parseAddrSpec parses local-part "@" domain. A comment skipped on the way
// becomes the display name, as in "user@host (Real Name)".
func (a *addrParser) parseAddrSpec() (bool, error) {
	a.comment = a.comment[:0]
	a.p.CaptureComments(&a.comment)
	defer a.p.CaptureComments(nil)

	more, err := a.parseLocalPart()
	if (err != nil || more) && a.p.Peek() == '@' {
		more2, err2 := a.parseDomain()
		if err2 != nil || !more2 {
			more, err = more2, err2
		}
	}

	if len(a.comment) > 0 {
		a.addr.Name = string(a.comment)
	}
	return more, err
}

// parseMailbox parses name-addr / addr-spec and always appends an entry.
func (a *addrParser) parseMailbox() (bool, error) {
	start := a.p.Save()
	more, err := a.parseNameAddr()
	if err != nil {
		// should be addr-spec
		a.p.Restore(start)
		more, err = a.parseAddrSpec()
	}

	if err != nil {
		a.addr.InvalidSyntax = true
	}
	a.addFixedAddress()
	return more, err
}

// parseGroup parses display-name ":" [mailbox-list / CFWS] ";" [CFWS].
// Only a missing phrase or ':' is reported as an error; after the ':' all
// problems are recorded on the markers and members.
func (a *addrParser) parseGroup() (bool, error) {
	a.str.Reset()
	if more, err := a.p.ParsePhrase(&a.str); err != nil || !more || a.p.Peek() != ':' {
		return false, errNotGroup
	}

	a.p.Advance()
	more, err := a.p.SkipLWSP()
	failed := err != nil
	if failed || !more {
		a.addr.InvalidSyntax = true
	}

	a.addr.Kind = GroupStart
	a.addr.Name = a.str.String()
	a.addAddress()

	if !failed && more && a.p.Peek() != ';' {
		for {
			more, err = a.parseMailbox()
			if err != nil || !more {
				failed = true
				break
			}
			if a.p.Peek() != ',' {
				break
			}
			a.p.Advance()
			more, err = a.p.SkipLWSP()
			if err != nil || !more {
				failed = true
				break
			}
		}
	}
	if !failed {
		if a.p.Peek() != ';' {
			failed = true
		} else {
			a.p.Advance()
			more, err = a.p.SkipLWSP()
			failed = err != nil
		}
	}
	if failed {
		a.addr.InvalidSyntax = true
	}

	a.addr.Kind = GroupEnd
	a.addAddress()
	return failed || more, nil
}

// parseAddress parses mailbox / group.
func (a *addrParser) parseAddress() (bool, error) {
	start := a.p.Save()
	more, err := a.parseGroup()
	if err != nil {
		// not a group, try mailbox
		a.p.Restore(start)
		more, err = a.parseMailbox()
	}
	return more, err
}

// parseAddressList parses address *("," address), stopping after
// maxAddresses top-level entries.
func (a *addrParser) parseAddressList(maxAddresses int) {
	for ; maxAddresses > 0; maxAddresses-- {
		more, err := a.parseAddress()
		if err == nil && !more {
			break
		}
		if a.p.Peek() != ',' {
			break
		}
		a.p.Advance()
		if more, err := a.p.SkipLWSP(); err != nil || !more {
			if err != nil && maxAddresses > 1 {
				// ends with some garbage
				a.addFixedAddress()
			}
			break
		}
	}
}

func orUnterminated(err error) error {
	if err != nil {
		return err
	}
	return errUnterminatedAngleAddr
}

/*
Package address parses and formats RFC 822 / RFC 2822 address headers such as
From, To and Cc.

The parser never fails. Malformed input yields entries flagged with
InvalidSyntax, and parts that could not be recovered are replaced by
placeholders (SyntaxError, InvalidRoute, MissingMailbox, MissingDomain).
Notable leniencies:
  - Obsolete source routes ("<@a,@b:user@host>") are accepted and kept.
  - Whitespace and comments are accepted around the dots of local-parts and
    domains, and stray dots are accepted inside display names.
  - A comment following a bare addr-spec, as in "user@host (Real Name)",
    becomes the display name.
  - Folding line breaks inside quoted strings are removed.

RFC 2047 encoded-words are left as they are.
*/
package address

// DefaultMaxAddresses is used by the package-level functions.
const DefaultMaxAddresses = 100

// An AddressParser parses address lists.
type AddressParser struct {
	// MaxAddresses bounds the number of top-level addresses returned;
	// members of a group do not count. Parsing stops silently once reached.
	// Zero or less means DefaultMaxAddresses.
	MaxAddresses int
	// FillMissing makes the parser use MissingMailbox and MissingDomain
	// for absent parts instead of empty strings.
	FillMissing bool
}

// Parse parses a comma-separated list of addresses of the form
// "Gogh Fir <gf@example.com>", "foo@example.com" or "group: a@b, c@d;".
// An empty or whitespace-only input gives a nil List.
func (p *AddressParser) Parse(list string) List {
	return p.ParseBytes([]byte(list))
}

// ParseBytes is like Parse but takes a byte slice.
func (p *AddressParser) ParseBytes(list []byte) List {
	limit := p.MaxAddresses
	if limit <= 0 {
		limit = DefaultMaxAddresses
	}
	return parseAddresses(list, limit, p.FillMissing)
}

// ParseList parses addresses with at most maxAddresses top-level entries.
// Unlike AddressParser, a maxAddresses of zero yields no addresses.
func ParseList(list []byte, maxAddresses int, fillMissing bool) List {
	return parseAddresses(list, maxAddresses, fillMissing)
}

// Parse parses addresses with DefaultMaxAddresses and no placeholders.
func Parse(list string) List {
	return parseAddresses([]byte(list), DefaultMaxAddresses, false)
}

package rfc822

// CharClass tags a byte by the grammar classes it belongs to.
type CharClass uint8

const (
	// ClassAtext marks punctuation usable inside an atom.
	ClassAtext CharClass = 1 << iota
	// ClassAlnum marks letters, digits and 8-bit bytes. Always atext.
	ClassAlnum
	// ClassTSpecial marks atext that is a MIME tspecial ('/', '=', '?').
	ClassTSpecial
)

// Atoms are built from atext:
//
//	atom  = [CFWS] 1*atext [CFWS]
//	atext = ALPHA / DIGIT / "!" / "#" / "$" / "%" / "&" / "'" / "*" / "+" /
//	        "-" / "/" / "=" / "?" / "^" / "_" / "`" / "{" / "|" / "}" / "~"
//
// A MIME token is the same set minus the tspecials.
var charClasses = [256]CharClass{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0-15
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 16-31
	0, 1, 0, 1, 1, 1, 1, 1, 0, 0, 1, 1, 0, 1, 0, 4, // 32-47
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 0, 0, 0, 4, 0, 4, // 48-63
	0, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // 64-79
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 0, 0, 0, 1, 1, // 80-95
	1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // 96-111
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 0, // 112-127

	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
}

// Class returns the classes c belongs to.
func Class(c byte) CharClass {
	return charClasses[c]
}

// IsAtext reports whether c may appear in an atom.
func IsAtext(c byte) bool {
	return charClasses[c] != 0
}

// IsAlnum reports whether c is a letter, a digit or an 8-bit byte.
func IsAlnum(c byte) bool {
	return charClasses[c]&ClassAlnum != 0
}

// IsTokenChar reports whether c may appear in a MIME token.
// The dot is not included here; ParseMimeToken accepts it separately.
func IsTokenChar(c byte) bool {
	return charClasses[c]&(ClassAtext|ClassAlnum) != 0
}

package address

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressParser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addrsStr string
		exp      List
	}{
		// Bare address
		0: {
			`jdoe@machine.example`,
			List{{Mailbox: "jdoe", Domain: "machine.example"}},
		},
		// RFC 5322, Appendix A.1.1
		1: {
			`John Doe <jdoe@machine.example>`,
			List{{Name: "John Doe", Mailbox: "jdoe", Domain: "machine.example"}},
		},
		// RFC 5322, Appendix A.1.2
		2: {
			`"Joe Q. Public" <john.q.public@example.com>`,
			List{{Name: "Joe Q. Public", Mailbox: "john.q.public", Domain: "example.com"}},
		},
		3: {
			`Mary Smith <mary@x.test>, jdoe@example.org, Who? <one@y.test>`,
			List{
				{Name: "Mary Smith", Mailbox: "mary", Domain: "x.test"},
				{Mailbox: "jdoe", Domain: "example.org"},
				{Name: "Who?", Mailbox: "one", Domain: "y.test"},
			},
		},
		4: {
			`<boss@nil.test>, "Giant; \"Big\" Box" <sysservices@example.net>`,
			List{
				{Mailbox: "boss", Domain: "nil.test"},
				{Name: `Giant; "Big" Box`, Mailbox: "sysservices", Domain: "example.net"},
			},
		},
		// RFC 5322, Appendix A.1.3
		5: {
			`A Group:Ed Jones <c@a.test>,joe@where.test,John <jdoe@one.test>;`,
			List{
				{Kind: GroupStart, Name: "A Group"},
				{Name: "Ed Jones", Mailbox: "c", Domain: "a.test"},
				{Mailbox: "joe", Domain: "where.test"},
				{Name: "John", Mailbox: "jdoe", Domain: "one.test"},
				{Kind: GroupEnd},
			},
		},
		6: {
			`Undisclosed recipients:;`,
			List{
				{Kind: GroupStart, Name: "Undisclosed recipients"},
				{Kind: GroupEnd},
			},
		},
		// RFC 5322, Appendix A.6.1 (obsolete route)
		7: {
			`<@r1.example,@r2.example:jdoe@example.com>`,
			List{{Route: "@r1.example,@r2.example", Mailbox: "jdoe", Domain: "example.com"}},
		},
		8: {
			`<@r1 @r2:a@b>`,
			List{{Route: "@r1,@r2", Mailbox: "a", Domain: "b"}},
		},
		9: {
			`user@host (Real Name)`,
			List{{Name: "Real Name", Mailbox: "user", Domain: "host"}},
		},
		10: {
			`Name <bad`,
			List{{Name: "Name", Mailbox: "bad", Domain: SyntaxError, InvalidSyntax: true}},
		},
		11: {
			`Name <`,
			List{{Name: "Name", Domain: SyntaxError, InvalidSyntax: true}},
		},
		12: {
			`<@bad a@b>`,
			List{{Route: InvalidRoute, Domain: SyntaxError, InvalidSyntax: true}},
		},
		13: {
			"\"foo\r\nbar\"@example.com",
			List{{Mailbox: "foobar", Domain: "example.com"}},
		},
		14: {
			`jdoe@[192.0.2.1]`,
			List{{Mailbox: "jdoe", Domain: "[192.0.2.1]"}},
		},
		// RFC 5322, Appendix A.5
		15: {
			`Pete(A nice \) chap) <pete(his account)@silly.test(his host)>`,
			List{{Name: "Pete", Mailbox: "pete", Domain: "silly.test"}},
		},
		16: {
			`Joe Q. Public <john.q.public@example.com>`,
			List{{Name: "Joe Q. Public", Mailbox: "john.q.public", Domain: "example.com"}},
		},
		17: {
			`john . q . public @ example . com`,
			List{{Mailbox: "john.q.public", Domain: "example.com"}},
		},
		18: {
			`a@b,`,
			List{{Mailbox: "a", Domain: "b"}},
		},
		19: {
			`a@b, (unterminated`,
			List{
				{Mailbox: "a", Domain: "b"},
				{InvalidSyntax: true},
			},
		},
		20: {
			`grp: a@b`,
			List{
				{Kind: GroupStart, Name: "grp"},
				{Mailbox: "a", Domain: "b"},
				{Kind: GroupEnd, InvalidSyntax: true},
			},
		},
		21: {
			`outer: inner: a@b;;`,
			List{
				{Kind: GroupStart, Name: "outer"},
				{Mailbox: "inner", InvalidSyntax: true},
				{Kind: GroupEnd, InvalidSyntax: true},
			},
		},
		22: {
			`john`,
			List{{Mailbox: "john", InvalidSyntax: true}},
		},
		23: {
			`John <jdoe(comment)@example.com>`,
			List{{Name: "John", Mailbox: "jdoe", Domain: "example.com"}},
		},
		24: {
			`""@example.com`,
			List{{Mailbox: "", Domain: "example.com"}},
		},
		25: {
			`a@b c@d`,
			List{{Mailbox: "a", Domain: "b"}},
		},
	}

	for i, tc := range tests {
		t.Run(fmt.Sprintf("#%d: %s", i, tc.addrsStr), func(t *testing.T) {
			t.Parallel()
			addrs := (&AddressParser{MaxAddresses: DefaultMaxAddresses}).Parse(tc.addrsStr)
			assert.Equal(t, tc.exp, addrs)
		})
	}
}

func TestAddressParserFillMissing(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    string
		expected List
	}{
		0: {
			input:    `john`,
			expected: List{{Mailbox: "john", Domain: MissingDomain, InvalidSyntax: true}},
		},
		1: {
			input:    `@example.com`,
			expected: List{{Mailbox: MissingMailbox, Domain: "example.com", InvalidSyntax: true}},
		},
		2: {
			input: `a@b, (unterminated`,
			expected: List{
				{Mailbox: "a", Domain: "b"},
				{Mailbox: MissingMailbox, Domain: MissingDomain, InvalidSyntax: true},
			},
		},
		3: {
			input:    `Name <`,
			expected: List{{Name: "Name", Mailbox: MissingMailbox, Domain: SyntaxError, InvalidSyntax: true}},
		},
	}
	p := &AddressParser{MaxAddresses: DefaultMaxAddresses, FillMissing: true}
	for i, c := range cases {
		assert.Equal(t, c.expected, p.Parse(c.input), "#%d: %s", i, c.input)
	}
}

func TestAddressParserEmpty(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "   ", " \r\n\t", "(just a comment)", " (open"} {
		assert.Empty(t, Parse(s), "%q", s)
		assert.Nil(t, Parse(s), "%q", s)
	}
	// a non-empty header of garbage still yields flagged entries
	l := Parse(",")
	if assert.Len(t, l, 1) {
		assert.True(t, l[0].InvalidSyntax)
	}
}

func TestAddressParserMaxAddresses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    string
		max      int
		count    int
		toplevel int
	}{
		0: {input: "a@b, c@d, e@f", max: 2, count: 2, toplevel: 2},
		1: {input: "a@b, c@d, e@f", max: 3, count: 3, toplevel: 3},
		2: {input: "g: a@b, c@d;, e@f", max: 1, count: 4, toplevel: 1},
		3: {input: "a@b, c@d", max: 0, count: 0, toplevel: 0},
		4: {input: "a@b, (open", max: 1, count: 1, toplevel: 1},
		5: {input: strings.Repeat(",", 5000), max: 10, count: 10, toplevel: 10},
	}
	for i, c := range cases {
		t.Run(fmt.Sprintf("#%d", i), func(t *testing.T) {
			l := ParseList([]byte(c.input), c.max, false)
			assert.Len(t, l, c.count)
			assert.Equal(t, c.toplevel, l.TopLevelCount())
			assert.LessOrEqual(t, l.TopLevelCount(), c.max)
		})
	}
}

func TestAddressParserZeroValue(t *testing.T) {
	t.Parallel()

	var p AddressParser
	assert.Equal(t, Parse("a@b, c@d"), p.Parse("a@b, c@d"))
	input := strings.Repeat("a@b, ", DefaultMaxAddresses+5)
	assert.Equal(t, DefaultMaxAddresses, p.Parse(input).TopLevelCount())
	assert.Len(t, (&AddressParser{MaxAddresses: -1}).Parse("a@b"), 1)
}

func TestAddressParserTerminates(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"<<<<", ">>>>", "::::", ";;;;", "@@@@", "....", "((((", "))))",
		"[[[[", "]]]]", "\\\\\\", "a:b:c:d", "<@", "<@a", "<@a,", "<@a:", "a <b@",
		"g: <", "g: a@b,", "g: ,,,;", ". a@b", "\"a\\", "a@[b\\", "a@[b",
	}
	for _, s := range inputs {
		l := ParseList([]byte(s), 5, true)
		assert.LessOrEqual(t, l.TopLevelCount(), 5, "%q", s)
		for _, a := range l {
			if a.Kind == Mailbox {
				assert.NotEmpty(t, a.Mailbox, "%q", s)
				assert.NotEmpty(t, a.Domain, "%q", s)
			}
		}
	}
}

func TestRoundtrips(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`jdoe@machine.example`,
		`John Doe <jdoe@machine.example>`,
		`"Joe Q. Public" <john.q.public@example.com>`,
		`Mary Smith <mary@x.test>, jdoe@example.org, Who? <one@y.test>`,
		`A Group:Ed Jones <c@a.test>,joe@where.test,John <jdoe@one.test>;`,
		`Undisclosed recipients:;`,
		`<@r1,@r2:a@b>`,
		`user@host (Real Name)`,
		`jdoe@[192.0.2.1]`,
		`a@b, grp: c@d;, Name <e@f>`,
	}
	for i, input := range inputs {
		t.Run(fmt.Sprintf("#%d: %s", i, input), func(t *testing.T) {
			t.Parallel()
			first := Parse(input)
			second := Parse(Write(first))
			assert.Equal(t, first, second)
			assert.Equal(t, Write(first), Write(second))
		})
	}
}

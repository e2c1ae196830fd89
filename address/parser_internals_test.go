package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moriyoshi/mailaddr/internal/rfc822"
)

func newTestParser(s string) *addrParser {
	return &addrParser{p: rfc822.NewParser([]byte(s))}
}

func TestParseDomainList(t *testing.T) {
	cases := []struct {
		input string
		route string
		more  bool
		rest  string
	}{
		0: {input: "@a, @b ,@c:x@y", route: "@a,@b,@c", more: true, rest: ":x@y"},
		1: {input: "@a @b:x@y", route: "@a,@b", more: true, rest: ":x@y"},
		2: {input: "@a,,,@b:x", route: "@a,@b", more: true, rest: ":x"},
		3: {input: "@a,", route: "", more: false, rest: ""},
	}
	for i, c := range cases {
		a := newTestParser(c.input)
		more, err := a.parseDomainList()
		require.NoError(t, err, "#%d", i)
		assert.Equal(t, c.more, more, "#%d", i)
		assert.Equal(t, c.route, a.addr.Route, "#%d", i)
		assert.Equal(t, c.rest, string(a.p.Rest()), "#%d", i)
	}
}

func TestParseAngleAddr(t *testing.T) {
	cases := []struct {
		input   string
		fail    bool
		route   string
		mailbox string
		domain  string
	}{
		0: {input: "<a@b>", mailbox: "a", domain: "b"},
		1: {input: "< a @ b >", mailbox: "a", domain: "b"},
		2: {input: "<@r:a@b>", route: "@r", mailbox: "a", domain: "b"},
		3: {input: "<local>", mailbox: "local"},
		4: {input: "<a@b", fail: true, mailbox: "a", domain: "b"},
		5: {input: "<@r a@b>", fail: true, route: InvalidRoute},
		6: {input: "<a@b c>", fail: true, mailbox: "a", domain: "b"},
	}
	for i, c := range cases {
		a := newTestParser(c.input)
		_, err := a.parseAngleAddr()
		if c.fail {
			assert.Error(t, err, "#%d", i)
		} else {
			assert.NoError(t, err, "#%d", i)
		}
		assert.Equal(t, c.route, a.addr.Route, "#%d", i)
		assert.Equal(t, c.mailbox, a.addr.Mailbox, "#%d", i)
		assert.Equal(t, c.domain, a.addr.Domain, "#%d", i)
	}
}

func TestParseMailboxBacktracks(t *testing.T) {
	a := newTestParser("user.name@example.com (User Name), next@example.com")
	more, err := a.parseMailbox()
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, List{{Name: "User Name", Mailbox: "user.name", Domain: "example.com"}}, a.list)
	assert.Equal(t, ", next@example.com", string(a.p.Rest()))
}

func TestParseGroupCommits(t *testing.T) {
	a := newTestParser("grp: <broken, x@y;")
	_, err := a.parseGroup()
	require.NoError(t, err)
	if assert.Len(t, a.list, 4) {
		assert.Equal(t, GroupStart, a.list[0].Kind)
		assert.True(t, a.list[1].InvalidSyntax)
		assert.Equal(t, "x@y", a.list[2].Addr())
		assert.Equal(t, GroupEnd, a.list[3].Kind)
		assert.False(t, a.list[3].InvalidSyntax)
	}

	a = newTestParser("not a group <x@y>")
	_, err = a.parseGroup()
	assert.Error(t, err)
	assert.Empty(t, a.list)
}

func TestCommentCaptureIsScoped(t *testing.T) {
	// a comment inside a name-addr does not become a name
	a := newTestParser("(ignored) <x@y>")
	_, err := a.parseMailbox()
	require.NoError(t, err)
	assert.Equal(t, List{{Mailbox: "x", Domain: "y"}}, a.list)
}

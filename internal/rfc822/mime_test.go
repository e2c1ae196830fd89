package rfc822

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    string
		expected string
		fail     bool
		rest     string
	}{
		0: {input: "text/plain", expected: "text/plain"},
		1: {input: "  text / plain ; charset=us-ascii", expected: "text/plain", rest: "; charset=us-ascii"},
		2: {input: "application/vnd.ms-excel", expected: "application/vnd.ms-excel"},
		3: {input: "text", fail: true},
		4: {input: "text;plain", fail: true},
		5: {input: "", fail: true},
		6: {input: "text/", fail: true},
		7: {input: "multipart/mixed (comment); boundary=x", expected: "multipart/mixed", rest: "; boundary=x"},
	}
	for i, c := range cases {
		t.Run(fmt.Sprintf("#%d: %q", i, c.input), func(t *testing.T) {
			var buf bytes.Buffer
			p := NewParser([]byte(c.input))
			_, err := p.ParseContentType(&buf)
			if c.fail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.expected, buf.String())
			assert.Equal(t, c.rest, string(p.Rest()))
		})
	}
}

type param struct {
	key   string
	value string
}

func collectParams(p *Parser) ([]param, error) {
	var params []param
	for {
		key, value, ok, err := p.ParseContentParam()
		if err != nil {
			return params, err
		}
		if !ok {
			return params, nil
		}
		params = append(params, param{string(key), string(value)})
	}
}

func TestParseContentParam(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    string
		expected []param
		fail     bool
	}{
		0: {
			input:    `; charset=us-ascii`,
			expected: []param{{"charset", "us-ascii"}},
		},
		1: {
			input:    `; charset="us-ascii"; boundary="D7F------------D7FD5A0B8AB9C65CCDBFA872"`,
			expected: []param{{"charset", "us-ascii"}, {"boundary", "D7F------------D7FD5A0B8AB9C65CCDBFA872"}},
		},
		2: {
			input:    `; name="a\\\\b"`,
			expected: []param{{"name", `a\b`}},
		},
		3: {
			input:    `; name==?utf-8?b?Zm9v?=; size=3`,
			expected: []param{{"name", "=?utf-8?b?Zm9v?="}, {"size", "3"}},
		},
		4: {
			input:    `; format=flowed (comment) ; delsp=yes`,
			expected: []param{{"format", "flowed"}, {"delsp", "yes"}},
		},
		5: {
			input:    `; name=`,
			expected: []param{{"name", ""}},
		},
		6: {
			input:    `; name="broken`,
			expected: nil,
			fail:     true,
		},
		7: {
			input: `charset=us-ascii`,
			fail:  true,
		},
		8: {
			input: `; charset`,
			fail:  true,
		},
		9: {
			input:    `; charset="us-ascii"  boundary="foo"`,
			expected: []param{{"charset", "us-ascii"}},
			fail:     true,
		},
		10: {
			input:    `; file.name=a.b.c`,
			expected: []param{{"file.name", "a.b.c"}},
		},
	}
	for i, c := range cases {
		t.Run(fmt.Sprintf("#%d: %q", i, c.input), func(t *testing.T) {
			params, err := collectParams(NewParser([]byte(c.input)))
			if c.fail {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, c.expected, params)
		})
	}
}

func TestParseContentParamSharedBuffer(t *testing.T) {
	p := NewParser([]byte("; charset=utf-8"))
	key, value, ok, err := p.ParseContentParam()
	require.NoError(t, err)
	require.True(t, ok)
	key = append(key, "XX"...)
	assert.Equal(t, "charsetXX", string(key))
	assert.Equal(t, "utf-8", string(value))
}

func TestUnescape(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		0: {input: "plain", expected: "plain"},
		1: {input: `a\"b`, expected: `a"b`},
		2: {input: `a\\b`, expected: `a\b`},
		3: {input: `trailing\`, expected: "trailing"},
		4: {input: `\`, expected: ""},
	}
	for i, c := range cases {
		assert.Equal(t, c.expected, string(unescape([]byte(c.input))), "#%d", i)
	}
}
